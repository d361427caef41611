// Package handlers implements the business logic for CLI commands.
//
// Each handler loads configuration, validates the environment, builds the
// lifecycle manager or fleet executor and prints results. Collaborators are
// created through package-level factory variables so tests can replace them.
package handlers

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"

	"github.com/imamik/fleetctl/internal/config"
	"github.com/imamik/fleetctl/internal/fleet"
	"github.com/imamik/fleetctl/internal/lifecycle"
	"github.com/imamik/fleetctl/internal/logging"
	"github.com/imamik/fleetctl/internal/metrics"
	"github.com/imamik/fleetctl/internal/platform/ec2"
	"github.com/imamik/fleetctl/internal/platform/hcloud"
	"github.com/imamik/fleetctl/internal/platform/s3"
	"github.com/imamik/fleetctl/internal/platform/ssh"
	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
)

// Factory function variables - can be replaced in tests.
var (
	// stdout receives tables and command output.
	stdout io.Writer = os.Stdout

	// logOutput receives log lines.
	logOutput io.Writer = os.Stderr

	loadConfig = func() (*config.Config, error) {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %w", err)
		}
		return config.Load(config.Path(home))
	}

	loadEnv = config.LoadEnv

	loadTimeouts = config.LoadTimeouts

	newProvider = func(ctx context.Context, name string, cfg *config.Config, env config.Env, t *config.Timeouts) (provisioning.Provider, error) {
		if err := config.ValidateProvider(name); err != nil {
			return nil, err
		}
		if err := env.Validate(name); err != nil {
			return nil, err
		}
		if name == config.ProviderHCloud {
			return hcloud.NewProvider(env.HCloudToken,
				hcloud.WithLocation(cfg.Location),
				hcloud.WithRetry(t.RetryMaxAttempts, t.RetryInitialDelay),
			), nil
		}
		p, err := ec2.NewProvider(ctx, ec2.Credentials{
			AccessKeyID:     env.AccessKeyID,
			SecretAccessKey: env.SecretAccessKey,
			Region:          cfg.Region,
		}, ec2.WithRetry(t.RetryMaxAttempts, t.RetryInitialDelay))
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	newRemote = func(cfg *config.Config, env config.Env, t *config.Timeouts) (fleet.Remote, error) {
		key, err := os.ReadFile(env.KeyPath())
		if err != nil {
			return nil, fmt.Errorf("failed to read private key: %w", err)
		}
		c, err := ssh.NewClient(&ssh.Config{
			User:        cfg.RemoteUser,
			PrivateKey:  key,
			DialTimeout: t.SSHDialTimeout,
			MaxRetries:  t.SSHMaxRetries,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	}

	newBackupStore = func(ctx context.Context, cfg *config.Config, env config.Env) (backupStore, error) {
		c, err := s3.NewClient(ctx, cfg.Backup.Endpoint, cfg.Backup.Region,
			env.AccessKeyID, env.SecretAccessKey, env.SessionToken)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
)

// backupStore is the object storage used for registry snapshots.
type backupStore interface {
	lifecycle.ObjectStore
	EnsureBucket(ctx context.Context, bucket string) error
}

// session carries what a single command invocation needs.
type session struct {
	cfg      *config.Config
	env      config.Env
	timeouts *config.Timeouts
	log      logr.Logger
	metrics  *metrics.Recorder
	manager  *lifecycle.Manager
	syncLog  func()
}

// newSession loads configuration and validates the environment for
// provider. An empty provider means the configured default.
func newSession(provider string) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if provider == "" {
		provider = cfg.Provider
	}
	if err := config.ValidateProvider(provider); err != nil {
		return nil, err
	}

	env := loadEnv()
	if err := env.Validate(provider); err != nil {
		return nil, err
	}

	log, syncLog, err := logging.New(logging.Config{Level: cfg.LogLevel, Output: logOutput})
	if err != nil {
		return nil, err
	}

	s := &session{
		cfg:      cfg,
		env:      env,
		timeouts: loadTimeouts(),
		log:      log,
		metrics:  metrics.New(),
		syncLog:  syncLog,
	}

	registryPath := cfg.RegistryPath
	if registryPath == "" {
		registryPath = registry.DefaultPath(env.Home)
	}
	s.manager = lifecycle.New(lifecycle.Config{
		RegistryPath:    registryPath,
		LockTimeout:     cfg.LockTimeout,
		DefaultProvider: provider,
		KeyName:         env.KeyPair,
		RemoteUser:      cfg.RemoteUser,
		PollInterval:    s.timeouts.PollInterval,
		MaxPollAttempts: s.timeouts.PollMaxAttempts,
	}, s.provider, lifecycle.WithLogger(log), lifecycle.WithMetrics(s.metrics))

	return s, nil
}

func (s *session) provider(ctx context.Context, name string) (provisioning.Provider, error) {
	return newProvider(ctx, name, s.cfg, s.env, s.timeouts)
}

// executor builds a fleet executor over the session's registry.
func (s *session) executor(parallelism int) (*fleet.Executor, error) {
	remote, err := newRemote(s.cfg, s.env, s.timeouts)
	if err != nil {
		return nil, err
	}
	if parallelism <= 0 {
		parallelism = s.cfg.Parallelism
	}
	return fleet.NewExecutor(s.manager, remote,
		fleet.WithParallelism(parallelism),
		fleet.WithLogger(s.log),
		fleet.WithMetrics(s.metrics),
	), nil
}

// close pushes metrics when a Pushgateway is configured and flushes the log.
// Push failures are logged only.
func (s *session) close(ctx context.Context) {
	if s.cfg.Pushgateway != "" {
		instance, _ := os.Hostname()
		if err := s.metrics.Push(ctx, s.cfg.Pushgateway, instance); err != nil {
			s.log.Error(err, "Failed to push metrics", "endpoint", s.cfg.Pushgateway)
		}
	}
	s.syncLog()
}
