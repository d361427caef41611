package registry

import (
	"encoding/json"
	"fmt"
	"sort"

	bolt "go.etcd.io/bbolt"
)

// RecordPending journals launched instances before they are waited on.
func (s *Store) RecordPending(p Pending) error {
	if p.ID == "" {
		return fmt.Errorf("pending entry id cannot be empty")
	}
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode pending entry %s: %w", p.ID, err)
	}
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Put([]byte(p.ID), data)
	})
}

// ClearPending drops a journal entry.
func (s *Store) ClearPending(id string) error {
	return s.update(func(tx *bolt.Tx) error {
		return tx.Bucket(pendingBucket).Delete([]byte(id))
	})
}

// Pending lists journal entries, oldest first.
func (s *Store) Pending() ([]Pending, error) {
	var entries []Pending
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(pendingBucket)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var p Pending
			if err := json.Unmarshal(v, &p); err != nil {
				return fmt.Errorf("failed to decode pending entry %s: %w", k, err)
			}
			entries = append(entries, p)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
	return entries, nil
}
