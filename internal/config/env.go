package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MissingEnvError lists required environment variables that are unset.
type MissingEnvError struct {
	Names []string
}

func (e *MissingEnvError) Error() string {
	return fmt.Sprintf("missing required environment variables: %s", strings.Join(e.Names, ", "))
}

// Env holds the values fleetctl only reads from the environment.
type Env struct {
	Home            string
	AWSHome         string
	KeyPair         string
	AccessKeyID     string
	SecretAccessKey string
	SessionToken    string
	HCloudToken     string
}

// LoadEnv reads the process environment.
func LoadEnv() Env {
	home := os.Getenv("HOME")
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	return Env{
		Home:            home,
		AWSHome:         os.Getenv("AWS_HOME"),
		KeyPair:         os.Getenv("AWS_KEYPAIR"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		SessionToken:    os.Getenv("AWS_SESSION_TOKEN"),
		HCloudToken:     os.Getenv("HCLOUD_TOKEN"),
	}
}

// Validate reports every variable provider needs that is empty.
func (e Env) Validate(provider string) error {
	var missing []string
	check := func(name, value string) {
		if value == "" {
			missing = append(missing, name)
		}
	}

	check("AWS_HOME", e.AWSHome)
	check("AWS_KEYPAIR", e.KeyPair)
	switch provider {
	case ProviderHCloud:
		check("HCLOUD_TOKEN", e.HCloudToken)
	default:
		check("AWS_ACCESS_KEY_ID", e.AccessKeyID)
		check("AWS_SECRET_ACCESS_KEY", e.SecretAccessKey)
	}

	if len(missing) > 0 {
		return &MissingEnvError{Names: missing}
	}
	return nil
}

// KeyPath is the private key used for every SSH connection.
func (e Env) KeyPath() string {
	return filepath.Join(e.AWSHome, e.KeyPair+".pem")
}
