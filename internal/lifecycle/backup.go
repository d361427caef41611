package lifecycle

import (
	"context"
	"fmt"

	"github.com/imamik/fleetctl/internal/registry"
)

// ObjectStore stores registry snapshots.
type ObjectStore interface {
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Backup uploads a snapshot of every cluster to bucket/key and returns the
// number of clusters written.
func (m *Manager) Backup(ctx context.Context, store ObjectStore, bucket, key string) (n int, err error) {
	defer func() { m.observe("backup", err) }()

	var data []byte
	err = m.withStore(true, func(s *registry.Store) error {
		keys, err := s.Keys()
		if err != nil {
			return err
		}
		n = len(keys)
		data, err = s.Export()
		return err
	})
	if err != nil {
		return 0, err
	}

	if err := store.PutObject(ctx, bucket, key, data); err != nil {
		return 0, fmt.Errorf("failed to upload registry snapshot: %w", err)
	}
	m.log.Info("Uploaded registry snapshot", "bucket", bucket, "key", key, "clusters", n)
	return n, nil
}

// Restore replaces the registry contents with the snapshot at bucket/key.
// A registry that already holds clusters is only overwritten with force.
func (m *Manager) Restore(ctx context.Context, store ObjectStore, bucket, key string, force bool) (n int, err error) {
	defer func() { m.observe("restore", err) }()

	data, err := store.GetObject(ctx, bucket, key)
	if err != nil {
		return 0, fmt.Errorf("failed to download registry snapshot: %w", err)
	}

	err = m.withStore(false, func(s *registry.Store) error {
		keys, err := s.Keys()
		if err != nil {
			return err
		}
		if len(keys) > 0 && !force {
			return fmt.Errorf("%w: %d clusters would be replaced, use --force", ErrRegistryNotEmpty, len(keys))
		}
		n, err = s.Import(data)
		return err
	})
	if err != nil {
		return 0, err
	}
	m.log.Info("Restored registry snapshot", "bucket", bucket, "key", key, "clusters", n)
	return n, nil
}
