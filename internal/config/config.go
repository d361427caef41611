package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Supported providers.
const (
	ProviderEC2    = "ec2"
	ProviderHCloud = "hcloud"
)

// DefaultFileName is the settings file looked up in the home directory.
const DefaultFileName = ".fleetctl.yaml"

const (
	defaultRegion      = "us-west-2"
	defaultRemoteUser  = "ubuntu"
	defaultParallelism = 4
	defaultLockTimeout = 10 * time.Second
	defaultBackupKey   = "fleetctl/registry.json"
)

// Config holds the user-tunable defaults.
type Config struct {
	Provider            string        `yaml:"provider"`
	Region              string        `yaml:"region"`
	Location            string        `yaml:"location"`
	RemoteUser          string        `yaml:"remote_user"`
	DefaultInstanceType string        `yaml:"default_instance_type"`
	DefaultImage        string        `yaml:"default_image"`
	RegistryPath        string        `yaml:"registry_path"`
	Parallelism         int           `yaml:"parallelism"`
	LockTimeout         time.Duration `yaml:"lock_timeout"`
	LogLevel            string        `yaml:"log_level"`
	Pushgateway         string        `yaml:"pushgateway"`
	Backup              BackupConfig  `yaml:"backup"`
}

// BackupConfig points at the bucket holding registry snapshots.
type BackupConfig struct {
	Bucket   string `yaml:"bucket"`
	Key      string `yaml:"key"`
	Endpoint string `yaml:"endpoint"`
	Region   string `yaml:"region"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Provider:    ProviderEC2,
		Region:      defaultRegion,
		RemoteUser:  defaultRemoteUser,
		Parallelism: defaultParallelism,
		LockTimeout: defaultLockTimeout,
		Backup:      BackupConfig{Key: defaultBackupKey},
	}
}

// Path returns the settings file location: $FLEETCTL_CONFIG if set,
// otherwise DefaultFileName in home.
func Path(home string) string {
	if p := os.Getenv("FLEETCTL_CONFIG"); p != "" {
		return p
	}
	return filepath.Join(home, DefaultFileName)
}

// Load reads the settings file at path (a missing file is not an error),
// applies environment overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	// #nosec G304
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("FLEETCTL_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.Region = v
	}
	if v := os.Getenv("FLEETCTL_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("FLEETCTL_PUSHGATEWAY"); v != "" {
		c.Pushgateway = v
	}
}

func (c *Config) applyDefaults() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = ProviderEC2
	}
	if c.Region == "" {
		c.Region = defaultRegion
	}
	if c.RemoteUser == "" {
		c.RemoteUser = defaultRemoteUser
	}
	if c.Parallelism == 0 {
		c.Parallelism = defaultParallelism
	}
	if c.LockTimeout == 0 {
		c.LockTimeout = defaultLockTimeout
	}
	if c.Backup.Key == "" {
		c.Backup.Key = defaultBackupKey
	}
	if c.Backup.Region == "" {
		c.Backup.Region = c.Region
	}
}

// Validate checks the settings for values no command can work with.
func (c *Config) Validate() error {
	if err := ValidateProvider(c.Provider); err != nil {
		return err
	}
	if c.Parallelism < 1 {
		return fmt.Errorf("parallelism must be at least 1, got %d", c.Parallelism)
	}
	if c.LockTimeout < 0 {
		return fmt.Errorf("lock_timeout cannot be negative")
	}
	return nil
}

// ValidateProvider rejects unknown provider names.
func ValidateProvider(name string) error {
	switch name {
	case ProviderEC2, ProviderHCloud:
		return nil
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", name, ProviderEC2, ProviderHCloud)
	}
}

// InstanceType returns the configured default instance type, falling back
// to the provider's built-in one.
func (c *Config) InstanceType(provider string) string {
	if c.DefaultInstanceType != "" {
		return c.DefaultInstanceType
	}
	if provider == ProviderHCloud {
		return "cx22"
	}
	return "m3.xlarge"
}

// Image returns the configured default image, falling back to the
// provider's built-in one.
func (c *Config) Image(provider string) string {
	if c.DefaultImage != "" {
		return c.DefaultImage
	}
	if provider == ProviderHCloud {
		return "ubuntu-24.04"
	}
	return "ami-02938c63"
}
