package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func TestGenerateKeyPair(t *testing.T) {
	t.Parallel()
	kp := GenerateKeyPair(t)

	signer, err := ssh.ParsePrivateKey(kp.PrivateKey)
	require.NoError(t, err)

	pub, _, _, _, err := ssh.ParseAuthorizedKey(kp.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, ssh.KeyAlgoED25519, pub.Type())
	assert.Equal(t, pub.Marshal(), signer.PublicKey().Marshal())

	other := GenerateKeyPair(t)
	assert.NotEqual(t, kp.PrivateKey, other.PrivateKey)
}
