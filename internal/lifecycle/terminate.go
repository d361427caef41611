package lifecycle

import (
	"context"
	"fmt"
	"slices"

	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
)

// Kill terminates the instance at index and removes it from the cluster.
// When it is the last instance the whole cluster is shut down instead and
// clusterRemoved is true.
func (m *Manager) Kill(ctx context.Context, name string, index int) (clusterRemoved bool, err error) {
	defer func() { m.observe("kill", err) }()

	err = m.withStore(false, func(s *registry.Store) error {
		cluster, err := lookup(s, name)
		if err != nil {
			return err
		}
		inst, err := cluster.Instance(index)
		if err != nil {
			return fmt.Errorf("cluster %s: %w", name, err)
		}

		if cluster.Size() == 1 {
			m.log.Info("Last machine in cluster, shutting down entire cluster", "cluster", name)
			clusterRemoved = true
			return m.shutdown(ctx, s, cluster)
		}

		p, err := m.provider(ctx, cluster.Provider)
		if err != nil {
			return err
		}
		if err := provisioning.Terminate(ctx, p, []string{inst.ID}); err != nil {
			return err
		}

		cluster.Instances = slices.Delete(cluster.Instances, index, index+1)
		if err := s.Put(cluster); err != nil {
			return fmt.Errorf("instance %s terminated but cluster %s could not be updated: %w", inst.ID, name, err)
		}
		m.metrics.Terminated(1)
		m.log.Info("Killed instance", "cluster", name, "index", index, "id", inst.ID)
		return nil
	})
	return clusterRemoved, err
}

// Shutdown terminates every instance of the cluster and removes it.
func (m *Manager) Shutdown(ctx context.Context, name string) (err error) {
	defer func() { m.observe("shutdown", err) }()

	return m.withStore(false, func(s *registry.Store) error {
		cluster, err := lookup(s, name)
		if err != nil {
			return err
		}
		return m.shutdown(ctx, s, cluster)
	})
}

// ShutdownAll shuts down every cluster in key order and returns the names
// it removed. It stops at the first failure.
func (m *Manager) ShutdownAll(ctx context.Context) (removed []string, err error) {
	defer func() { m.observe("shutdown_all", err) }()

	err = m.withStore(false, func(s *registry.Store) error {
		names, err := s.Keys()
		if err != nil {
			return err
		}
		if len(names) == 0 {
			return ErrNoClusters
		}

		for _, name := range names {
			cluster, err := lookup(s, name)
			if err != nil {
				return err
			}
			if err := m.shutdown(ctx, s, cluster); err != nil {
				return err
			}
			removed = append(removed, name)
		}
		return nil
	})
	return removed, err
}

// shutdown works on an already open store so Kill can delegate to it while
// holding the lock.
func (m *Manager) shutdown(ctx context.Context, s *registry.Store, cluster *registry.Cluster) error {
	p, err := m.provider(ctx, cluster.Provider)
	if err != nil {
		return err
	}
	ids := cluster.InstanceIDs()
	if err := provisioning.Terminate(ctx, p, ids); err != nil {
		return err
	}
	if err := s.Delete(cluster.Name); err != nil {
		return fmt.Errorf("instances of %s terminated but the cluster could not be removed: %w", cluster.Name, err)
	}
	m.metrics.Terminated(len(ids))
	m.log.Info("Shut down cluster", "cluster", cluster.Name, "terminated", len(ids))
	return nil
}
