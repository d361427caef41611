package testing

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"testing"

	"golang.org/x/crypto/ssh"
)

// KeyPair is an SSH key in the formats fleetctl reads from disk.
type KeyPair struct {
	// PrivateKey is PEM in OpenSSH format, like $AWS_HOME/$AWS_KEYPAIR.pem.
	PrivateKey []byte
	// PublicKey is an authorized_keys line.
	PublicKey []byte
}

// GenerateKeyPair creates a fresh ed25519 key pair and fails the test on error.
func GenerateKeyPair(t *testing.T) *KeyPair {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "fleetctl-test")
	if err != nil {
		t.Fatalf("failed to encode private key: %v", err)
	}
	sshPub, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("failed to encode public key: %v", err)
	}

	return &KeyPair{
		PrivateKey: pem.EncodeToMemory(block),
		PublicKey:  ssh.MarshalAuthorizedKey(sshPub),
	}
}
