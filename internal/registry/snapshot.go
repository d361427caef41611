package registry

import (
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

const snapshotVersion = 1

// Snapshot is the portable form of every cluster record.
type Snapshot struct {
	Version  int        `json:"version"`
	TakenAt  time.Time  `json:"taken_at"`
	Clusters []*Cluster `json:"clusters"`
}

// Export serialises all clusters.
func (s *Store) Export() ([]byte, error) {
	clusters, err := s.Clusters()
	if err != nil {
		return nil, err
	}
	if clusters == nil {
		clusters = []*Cluster{}
	}
	return json.MarshalIndent(Snapshot{
		Version:  snapshotVersion,
		TakenAt:  time.Now().UTC(),
		Clusters: clusters,
	}, "", "  ")
}

// Import replaces every cluster record with the ones in data. The journal is
// left alone.
func (s *Store) Import(data []byte) (int, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	if snap.Version != snapshotVersion {
		return 0, fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	encoded := make(map[string][]byte, len(snap.Clusters))
	for _, c := range snap.Clusters {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("snapshot: %w", err)
		}
		if _, dup := encoded[c.Name]; dup {
			return 0, fmt.Errorf("snapshot: cluster %s appears twice", c.Name)
		}
		b, err := json.Marshal(c)
		if err != nil {
			return 0, err
		}
		encoded[c.Name] = b
	}

	err := s.update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(clustersBucket); err != nil {
			return err
		}
		b, err := tx.CreateBucket(clustersBucket)
		if err != nil {
			return err
		}
		for name, v := range encoded {
			if err := b.Put([]byte(name), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to import snapshot: %w", err)
	}
	return len(encoded), nil
}
