package boltdb

import (
	"context"
	"fmt"

	"go.etcd.io/bbolt"
)

// ClearAll wipes every collection and re-creates the empty buckets with the
// current schema version.
func (s *Storage) ClearAll(ctx context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return fmt.Errorf("failed to delete bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.initSchema()
}

// Counts returns the physical entry count of every collection, expired
// entries included. Used for diagnostics and size reporting only.
func (s *Storage) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, len(allBuckets))

	err := s.db.View(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			bucket := tx.Bucket(name)
			if bucket == nil {
				return fmt.Errorf("bucket %s not found", name)
			}
			counts[string(name)] = bucket.Stats().KeyN
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return counts, nil
}
