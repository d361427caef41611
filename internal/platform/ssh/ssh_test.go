package ssh

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

func newTestClient(t *testing.T, server *testSSHServer, key []byte) *Client {
	t.Helper()
	client, err := NewClient(&Config{
		Port:       server.port(),
		User:       "ubuntu",
		PrivateKey: key,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
		Stdin:      bytes.NewReader(nil),
		Stdout:     &bytes.Buffer{},
		Stderr:     &bytes.Buffer{},
	})
	require.NoError(t, err)
	return client
}

func TestNewClient_Success(t *testing.T) {
	keyPair := generateTestKey(t)

	client, err := NewClient(&Config{
		User:       "ubuntu",
		PrivateKey: keyPair.PrivateKey,
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.Equal(t, defaultPort, client.config.Port)
	assert.Equal(t, defaultDialTimeout, client.config.DialTimeout)
	assert.Equal(t, defaultMaxRetries, client.config.MaxRetries)
	assert.Equal(t, defaultRetryDelay, client.config.RetryDelay)
	assert.NotNil(t, client.config.HostKeyCallback)
	assert.Equal(t, "ubuntu", client.User())
}

func TestNewClient_Validation(t *testing.T) {
	keyPair := generateTestKey(t)

	tests := []struct {
		name    string
		cfg     *Config
		wantErr string
	}{
		{name: "nil config", cfg: nil, wantErr: "config cannot be nil"},
		{name: "empty user", cfg: &Config{PrivateKey: keyPair.PrivateKey}, wantErr: "config user cannot be empty"},
		{name: "empty key", cfg: &Config{User: "ubuntu"}, wantErr: "config private key cannot be empty"},
		{name: "invalid key", cfg: &Config{User: "ubuntu", PrivateKey: []byte("invalid key")}, wantErr: "failed to parse private key"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewClient_ConfigNotMutated(t *testing.T) {
	keyPair := generateTestKey(t)
	cfg := &Config{User: "ubuntu", PrivateKey: keyPair.PrivateKey}

	_, err := NewClient(cfg)
	require.NoError(t, err)

	assert.Zero(t, cfg.Port)
	assert.Zero(t, cfg.DialTimeout)
	assert.Zero(t, cfg.MaxRetries)
	assert.Zero(t, cfg.RetryDelay)
	assert.Nil(t, cfg.Stdout)
}

func TestClient_Run(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	client := newTestClient(t, server, key.PrivateKey)

	out, err := client.Run(context.Background(), "127.0.0.1", "uptime")
	require.NoError(t, err)
	assert.Equal(t, "ran: uptime\n", out)
	assert.Equal(t, []string{"uptime"}, server.recordedCommands())
}

func TestClient_Run_NonZeroExit(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	client := newTestClient(t, server, key.PrivateKey)

	out, err := client.Run(context.Background(), "127.0.0.1", "exit 3")
	require.Error(t, err)
	assert.Equal(t, "boom\n", out)

	var exitErr *ssh.ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.ExitStatus())
}

func TestClient_Run_RejectedKey(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	other := generateTestKey(t)
	client := newTestClient(t, server, other.PrivateKey)

	_, err := client.Run(context.Background(), "127.0.0.1", "uptime")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to establish SSH connection")
}

func TestClient_Run_ContextCancelled(t *testing.T) {
	key := generateTestKey(t)
	client, err := NewClient(&Config{
		User:       "ubuntu",
		PrivateKey: key.PrivateKey,
		MaxRetries: 3,
		RetryDelay: 100 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = client.Run(ctx, "192.0.2.1", "echo test")
	require.Error(t, err)
}

func TestClient_Copy_File(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	client := newTestClient(t, server, key.PrivateKey)

	local := filepath.Join(t.TempDir(), "setup.sh")
	require.NoError(t, os.WriteFile(local, []byte("#!/bin/sh\necho hi\n"), 0o755))

	require.NoError(t, client.Copy(context.Background(), "127.0.0.1", local, "/tmp"))
	assert.Equal(t, "#!/bin/sh\necho hi\n", server.recordedFiles()["/tmp/setup.sh"])
	assert.Equal(t, []string{"scp -t '/tmp'"}, server.recordedCommands())
}

func TestClient_Copy_DirectoryDefaultsToHome(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	client := newTestClient(t, server, key.PrivateKey)

	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "b.txt"), []byte("bb"), 0o644))

	require.NoError(t, client.Copy(context.Background(), "127.0.0.1", root, ""))

	assert.Equal(t, map[string]string{
		"data/a.txt":        "a",
		"data/nested/b.txt": "bb",
	}, server.recordedFiles())
	assert.Equal(t, []string{"data", "data/nested"}, server.recordedDirs())
	assert.Equal(t, []string{"scp -rt '.'"}, server.recordedCommands())
}

func TestClient_Copy_DirectorySkipsSymlinkedDirs(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	client := newTestClient(t, server, key.PrivateKey)

	root := filepath.Join(t.TempDir(), "data")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.Symlink("..", filepath.Join(root, "loop")))
	require.NoError(t, os.Symlink("a.txt", filepath.Join(root, "alias.txt")))
	require.NoError(t, os.Symlink("missing", filepath.Join(root, "dangling")))

	require.NoError(t, client.Copy(context.Background(), "127.0.0.1", root, ""))

	assert.Equal(t, map[string]string{
		"data/a.txt":     "a",
		"data/alias.txt": "a",
	}, server.recordedFiles())
	assert.Equal(t, []string{"data"}, server.recordedDirs())
}

func TestClient_Copy_MissingLocalPath(t *testing.T) {
	key := generateTestKey(t)
	client, err := NewClient(&Config{User: "ubuntu", PrivateKey: key.PrivateKey})
	require.NoError(t, err)

	err = client.Copy(context.Background(), "127.0.0.1", filepath.Join(t.TempDir(), "missing"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to stat")
}

func TestClient_Login(t *testing.T) {
	key := generateTestKey(t)
	server := newTestSSHServer(t, key)
	client := newTestClient(t, server, key.PrivateKey)

	require.NoError(t, client.Login(context.Background(), "127.0.0.1"))
	assert.Equal(t, "welcome\n", client.config.Stdout.(*bytes.Buffer).String())
}

func TestShellQuote(t *testing.T) {
	assert.Equal(t, `'.'`, shellQuote("."))
	assert.Equal(t, `'it'"'"'s'`, shellQuote("it's"))
}
