package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{"FLEETCTL_CONFIG", "FLEETCTL_PROVIDER", "AWS_REGION", "FLEETCTL_LOG_LEVEL", "FLEETCTL_PUSHGATEWAY"} {
		t.Setenv(name, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearConfigEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, ProviderEC2, cfg.Provider)
	assert.Equal(t, "us-west-2", cfg.Region)
	assert.Equal(t, "ubuntu", cfg.RemoteUser)
	assert.Equal(t, 4, cfg.Parallelism)
	assert.Equal(t, 10*time.Second, cfg.LockTimeout)
	assert.Equal(t, "us-west-2", cfg.Backup.Region)
	assert.Equal(t, "m3.xlarge", cfg.InstanceType(cfg.Provider))
	assert.Equal(t, "ami-02938c63", cfg.Image(cfg.Provider))
}

func TestLoad_File(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, `
provider: hcloud
location: nbg1
remote_user: root
parallelism: 8
lock_timeout: 30s
default_instance_type: cx32
backup:
  bucket: fleet-state
  endpoint: https://s3.example.com
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderHCloud, cfg.Provider)
	assert.Equal(t, "nbg1", cfg.Location)
	assert.Equal(t, "root", cfg.RemoteUser)
	assert.Equal(t, 8, cfg.Parallelism)
	assert.Equal(t, 30*time.Second, cfg.LockTimeout)
	assert.Equal(t, "cx32", cfg.InstanceType(ProviderHCloud))
	assert.Equal(t, "ubuntu-24.04", cfg.Image(ProviderHCloud))
	assert.Equal(t, "fleet-state", cfg.Backup.Bucket)
	assert.Equal(t, "fleetctl/registry.json", cfg.Backup.Key)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	clearConfigEnv(t)
	path := writeConfig(t, "provider: hcloud\nregion: eu-west-1\n")
	t.Setenv("FLEETCTL_PROVIDER", "EC2")
	t.Setenv("AWS_REGION", "ap-south-1")
	t.Setenv("FLEETCTL_PUSHGATEWAY", "http://pushgateway:9091")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderEC2, cfg.Provider)
	assert.Equal(t, "ap-south-1", cfg.Region)
	assert.Equal(t, "http://pushgateway:9091", cfg.Pushgateway)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{name: "unknown provider", body: "provider: gcp\n", wantErr: "unknown provider"},
		{name: "negative parallelism", body: "parallelism: -2\n", wantErr: "parallelism"},
		{name: "malformed yaml", body: "provider: [\n", wantErr: "failed to parse"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearConfigEnv(t)
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestPath(t *testing.T) {
	clearConfigEnv(t)
	assert.Equal(t, filepath.Join("/home/op", DefaultFileName), Path("/home/op"))

	t.Setenv("FLEETCTL_CONFIG", "/etc/fleetctl.yaml")
	assert.Equal(t, "/etc/fleetctl.yaml", Path("/home/op"))
}
