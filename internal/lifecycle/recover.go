package lifecycle

import (
	"context"
	"fmt"

	"github.com/imamik/fleetctl/internal/provisioning"
	"github.com/imamik/fleetctl/internal/registry"
)

// Recover lists launches that were never recorded on a cluster. Unless
// dryRun is set their instances are terminated and the entries cleared.
func (m *Manager) Recover(ctx context.Context, dryRun bool) (entries []registry.Pending, err error) {
	defer func() {
		if !dryRun {
			m.observe("recover", err)
		}
	}()

	err = m.withStore(dryRun, func(s *registry.Store) error {
		var err error
		entries, err = s.Pending()
		if err != nil {
			return err
		}
		if dryRun {
			return nil
		}

		for _, entry := range entries {
			p, err := m.provider(ctx, entry.Provider)
			if err != nil {
				return err
			}
			if err := provisioning.Terminate(ctx, p, entry.InstanceIDs); err != nil {
				return fmt.Errorf("failed to recover launch %s for cluster %s: %w", entry.ID, entry.Cluster, err)
			}
			if err := s.ClearPending(entry.ID); err != nil {
				return err
			}
			m.metrics.Terminated(len(entry.InstanceIDs))
			m.log.Info("Terminated orphaned instances", "cluster", entry.Cluster, "ids", entry.InstanceIDs)
		}
		return nil
	})
	return entries, err
}
