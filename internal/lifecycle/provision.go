package lifecycle

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
)

// CreateRequest describes a new cluster.
type CreateRequest struct {
	Name         string
	Count        int
	InstanceType string
	ImageID      string
	// Provider defaults to the configured provider when empty.
	Provider string
}

// Create provisions req.Count instances and records them as a new cluster.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (c *registry.Cluster, err error) {
	defer func() { m.observe("create", err) }()

	if req.Name == "" {
		return nil, fmt.Errorf("%w: cluster name cannot be empty", ErrInvalidName)
	}
	if req.Count < MinClusterSize || req.Count > MaxClusterSize {
		return nil, fmt.Errorf("%w: a cluster must have between %d and %d instances, got %d",
			ErrInvalidSize, MinClusterSize, MaxClusterSize, req.Count)
	}
	if req.Provider == "" {
		req.Provider = m.cfg.DefaultProvider
	}

	err = m.withStore(false, func(s *registry.Store) error {
		exists, err := s.Contains(req.Name)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("%w: %s", ErrClusterExists, req.Name)
		}

		p, err := m.provider(ctx, req.Provider)
		if err != nil {
			return err
		}

		cluster := &registry.Cluster{
			Name:         req.Name,
			Provider:     p.Name(),
			InstanceType: req.InstanceType,
			ImageID:      req.ImageID,
			CreatedAt:    m.now().UTC(),
		}
		instances, pendingID, err := m.launch(ctx, s, p, cluster, req.Count)
		if err != nil {
			return err
		}
		cluster.Instances = instances

		if err := s.Commit(cluster, pendingID); err != nil {
			return fmt.Errorf("failed to record cluster %s: %w", cluster.Name, err)
		}
		c = cluster
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("Created cluster", "cluster", c.Name, "size", c.Size(), "provider", c.Provider)
	return c, nil
}

// Add provisions n more instances for an existing cluster and appends them.
func (m *Manager) Add(ctx context.Context, name string, n int) (c *registry.Cluster, err error) {
	defer func() { m.observe("add", err) }()

	if n < 1 {
		return nil, fmt.Errorf("%w: must add at least one instance, got %d", ErrInvalidSize, n)
	}

	err = m.withStore(false, func(s *registry.Store) error {
		cluster, err := lookup(s, name)
		if err != nil {
			return err
		}

		p, err := m.provider(ctx, cluster.Provider)
		if err != nil {
			return err
		}

		instances, pendingID, err := m.launch(ctx, s, p, cluster, n)
		if err != nil {
			return err
		}
		cluster.Instances = append(cluster.Instances, instances...)

		if err := s.Commit(cluster, pendingID); err != nil {
			return fmt.Errorf("failed to record cluster %s: %w", cluster.Name, err)
		}
		c = cluster
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.log.Info("Added instances", "cluster", name, "added", n, "size", c.Size())
	return c, nil
}

// launch provisions n instances shaped like cluster. Launched ids are
// journaled under the returned pending id until the caller commits them.
func (m *Manager) launch(ctx context.Context, s *registry.Store, p provisioning.Provider, cluster *registry.Cluster, n int) ([]registry.Instance, string, error) {
	pendingID := m.newID()
	start := m.now()

	instances, err := provisioning.Provision(ctx, p, provisioning.LaunchRequest{
		Cluster:      cluster.Name,
		Count:        n,
		InstanceType: cluster.InstanceType,
		ImageID:      cluster.ImageID,
		KeyName:      m.cfg.KeyName,
	}, provisioning.Options{
		PollInterval:    m.cfg.PollInterval,
		MaxPollAttempts: m.cfg.MaxPollAttempts,
		Log:             m.log,
		Launched: func(ids []string) error {
			return s.RecordPending(registry.Pending{
				ID:           pendingID,
				Cluster:      cluster.Name,
				Provider:     p.Name(),
				InstanceType: cluster.InstanceType,
				ImageID:      cluster.ImageID,
				InstanceIDs:  ids,
				CreatedAt:    m.now().UTC(),
			})
		},
	})
	if err != nil {
		return nil, "", journaledFailure(s, pendingID, err)
	}

	m.metrics.Provisioned(len(instances), m.now().Sub(start))
	return instances, pendingID, nil
}

func newPendingID() string {
	return uuid.NewString()
}

type pendingLister interface {
	Pending() ([]registry.Pending, error)
}

// journaledFailure annotates a provisioning failure with the instance ids
// journaled under pendingID, if any.
func journaledFailure(s pendingLister, pendingID string, err error) error {
	pending, perr := s.Pending()
	if perr != nil {
		return fmt.Errorf("%w (failed to read launch journal, run 'fleetctl recover' to check for orphans: %v)", err, perr)
	}
	for _, entry := range pending {
		if entry.ID == pendingID {
			return fmt.Errorf("%w (launched instances %v are journaled, run 'fleetctl recover' to terminate them)",
				err, entry.InstanceIDs)
		}
	}
	return err
}
