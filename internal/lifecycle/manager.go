package lifecycle

import (
	"context"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/imamik/fleetctl/internal/metrics"
	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
)

// Cluster size limits for Create.
const (
	MinClusterSize = 1
	MaxClusterSize = 20
)

// ProviderFactory returns the provider registered under name.
type ProviderFactory func(ctx context.Context, name string) (provisioning.Provider, error)

// Config holds the settings the manager needs from the CLI configuration.
type Config struct {
	RegistryPath    string
	LockTimeout     time.Duration
	DefaultProvider string
	KeyName         string
	RemoteUser      string
	PollInterval    time.Duration
	MaxPollAttempts int
}

// Manager runs lifecycle operations against one registry file.
type Manager struct {
	cfg       Config
	providers ProviderFactory
	log       logr.Logger
	metrics   *metrics.Recorder
	now       func() time.Time
	newID     func() string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger.
func WithLogger(log logr.Logger) Option {
	return func(m *Manager) {
		m.log = log
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) {
		m.metrics = r
	}
}

// WithClock overrides time.Now (useful for testing).
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// New creates a Manager.
func New(cfg Config, providers ProviderFactory, opts ...Option) *Manager {
	m := &Manager{
		cfg:       cfg,
		providers: providers,
		log:       logr.Discard(),
		now:       time.Now,
		newID:     newPendingID,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.cfg.RemoteUser == "" {
		m.cfg.RemoteUser = "ubuntu"
	}
	return m
}

// withStore opens the registry for fn and always closes it again. Read-only
// opens share the lock with other readers.
func (m *Manager) withStore(readOnly bool, fn func(*registry.Store) error) (err error) {
	s, err := registry.Open(m.cfg.RegistryPath, registry.Options{
		LockTimeout: m.cfg.LockTimeout,
		ReadOnly:    readOnly,
	})
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close registry: %w", cerr)
		}
	}()
	return fn(s)
}

// lookup returns the named cluster or ErrClusterNotFound.
func lookup(s *registry.Store, name string) (*registry.Cluster, error) {
	c, ok, err := s.Get(name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrClusterNotFound, name)
	}
	return c, nil
}

func (m *Manager) provider(ctx context.Context, name string) (provisioning.Provider, error) {
	if name == "" {
		name = m.cfg.DefaultProvider
	}
	p, err := m.providers(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize %s provider: %w", name, err)
	}
	return p, nil
}

func (m *Manager) observe(operation string, err error) {
	m.metrics.Operation(operation, err)
	if err != nil && !IsUserError(err) {
		m.log.Error(err, "Operation failed", "operation", operation)
	}
}
