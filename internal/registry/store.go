package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"
)

const (
	// DefaultFileName is the registry file created in the operator's home directory.
	DefaultFileName = ".fleetctl.db"

	defaultLockTimeout = 10 * time.Second
	fileMode           = 0o600
)

var (
	clustersBucket = []byte("clusters")
	pendingBucket  = []byte("pending")
)

// ErrLocked is returned by Open when another invocation holds the registry.
var ErrLocked = errors.New("registry is locked by another fleetctl process")

// Options configures how the registry file is opened.
type Options struct {
	// LockTimeout bounds how long Open waits for the file lock.
	// If zero, defaultLockTimeout is used.
	LockTimeout time.Duration

	// ReadOnly takes a shared lock and rejects writes.
	ReadOnly bool
}

// Store is an open registry file. It must be closed on every path.
type Store struct {
	db       *bolt.DB
	path     string
	readOnly bool
}

// DefaultPath returns the registry location under home.
func DefaultPath(home string) string {
	return filepath.Join(home, DefaultFileName)
}

// Open opens (creating if needed) the registry at path.
func Open(path string, opts Options) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("registry path cannot be empty")
	}
	if opts.LockTimeout == 0 {
		opts.LockTimeout = defaultLockTimeout
	}

	// A read-only open cannot create the file, so an absent registry is
	// initialised with a short writable open first.
	if opts.ReadOnly {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			s, err := Open(path, Options{LockTimeout: opts.LockTimeout})
			if err != nil {
				return nil, err
			}
			if err := s.Close(); err != nil {
				return nil, err
			}
		}
	}

	db, err := bolt.Open(path, fileMode, &bolt.Options{
		Timeout:  opts.LockTimeout,
		ReadOnly: opts.ReadOnly,
	})
	if err != nil {
		if errors.Is(err, bolt.ErrTimeout) {
			return nil, fmt.Errorf("%w: %s", ErrLocked, path)
		}
		return nil, fmt.Errorf("failed to open registry %s: %w", path, err)
	}

	s := &Store{db: db, path: path, readOnly: opts.ReadOnly}
	if !opts.ReadOnly {
		err := db.Update(func(tx *bolt.Tx) error {
			for _, name := range [][]byte{clustersBucket, pendingBucket} {
				if _, err := tx.CreateBucketIfNotExists(name); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialise registry %s: %w", path, err)
		}
	}

	return s, nil
}

// Path returns the file backing the store.
func (s *Store) Path() string {
	return s.path
}

// Close flushes and releases the registry file.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close registry %s: %w", s.path, err)
	}
	return nil
}

// Get returns the cluster stored under name. The boolean is false when no
// such cluster exists.
func (s *Store) Get(name string) (*Cluster, bool, error) {
	var cluster *Cluster
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(clustersBucket)
		if b == nil {
			return nil
		}
		data := b.Get([]byte(name))
		if data == nil {
			return nil
		}
		cluster = &Cluster{}
		if err := json.Unmarshal(data, cluster); err != nil {
			return fmt.Errorf("failed to decode cluster %s: %w", name, err)
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return cluster, cluster != nil, nil
}

// Contains reports whether a cluster called name exists.
func (s *Store) Contains(name string) (bool, error) {
	_, ok, err := s.Get(name)
	return ok, err
}

// Put writes the cluster under its name, replacing any previous record.
func (s *Store) Put(c *Cluster) error {
	return s.Commit(c, "")
}

// Commit writes the cluster and, when pendingID is set, removes that journal
// entry in the same transaction.
func (s *Store) Commit(c *Cluster, pendingID string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode cluster %s: %w", c.Name, err)
	}

	return s.update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(clustersBucket).Put([]byte(c.Name), data); err != nil {
			return fmt.Errorf("failed to write cluster %s: %w", c.Name, err)
		}
		if pendingID != "" {
			if err := tx.Bucket(pendingBucket).Delete([]byte(pendingID)); err != nil {
				return fmt.Errorf("failed to clear pending entry %s: %w", pendingID, err)
			}
		}
		return nil
	})
}

// Delete removes the cluster called name. Deleting an absent cluster is a no-op.
func (s *Store) Delete(name string) error {
	return s.update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(clustersBucket).Delete([]byte(name)); err != nil {
			return fmt.Errorf("failed to delete cluster %s: %w", name, err)
		}
		return nil
	})
}

// Keys returns every cluster name in sorted order.
func (s *Store) Keys() ([]string, error) {
	keys := []string{}
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(clustersBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list clusters: %w", err)
	}
	return keys, nil
}

// Clusters returns every stored cluster ordered by name.
func (s *Store) Clusters() ([]*Cluster, error) {
	var clusters []*Cluster
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(clustersBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			c := &Cluster{}
			if err := json.Unmarshal(v, c); err != nil {
				return fmt.Errorf("failed to decode cluster %s: %w", k, err)
			}
			clusters = append(clusters, c)
			return nil
		})
	})
	return clusters, err
}

func (s *Store) update(fn func(tx *bolt.Tx) error) error {
	if s.readOnly {
		return fmt.Errorf("registry %s is open read-only", s.path)
	}
	return s.db.Update(fn)
}
