package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	PollInterval      time.Duration // Delay between readiness checks while provisioning
	PollMaxAttempts   int           // Readiness checks before provisioning gives up
	RetryMaxAttempts  int           // Maximum number of retry attempts for provider API calls
	RetryInitialDelay time.Duration // Initial delay between retries
	SSHDialTimeout    time.Duration // TCP connect timeout for SSH
	SSHMaxRetries     int           // SSH connection attempts before a host is reported failed
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - FLEETCTL_POLL_INTERVAL (default: 1s)
//   - FLEETCTL_POLL_MAX_ATTEMPTS (default: 600)
//   - FLEETCTL_RETRY_MAX_ATTEMPTS (default: 5)
//   - FLEETCTL_RETRY_INITIAL_DELAY (default: 1s)
//   - FLEETCTL_SSH_DIAL_TIMEOUT (default: 10s)
//   - FLEETCTL_SSH_MAX_RETRIES (default: 3)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		PollInterval:      parseDuration("FLEETCTL_POLL_INTERVAL", 1*time.Second),
		PollMaxAttempts:   parseInt("FLEETCTL_POLL_MAX_ATTEMPTS", 600),
		RetryMaxAttempts:  parseInt("FLEETCTL_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("FLEETCTL_RETRY_INITIAL_DELAY", 1*time.Second),
		SSHDialTimeout:    parseDuration("FLEETCTL_SSH_DIAL_TIMEOUT", 10*time.Second),
		SSHMaxRetries:     parseInt("FLEETCTL_SSH_MAX_RETRIES", 3),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
