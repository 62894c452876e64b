package boltdb

import (
	"context"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
)

// SaveOperation appends a pending operation to the queue.
func (s *Storage) SaveOperation(ctx context.Context, op *models.PendingOperation) error {
	return s.putEntry(bucketOperations, op.ID, op, 0)
}

// ListOperations returns the user's queued operations ordered by timestamp
// ascending, so replay preserves the order the mutations were made in.
func (s *Storage) ListOperations(ctx context.Context, userID string) ([]*models.PendingOperation, error) {
	var ops []*models.PendingOperation

	err := s.forEachLive(bucketOperations, func(key string, entry *storage.CachedEntry) error {
		op := &models.PendingOperation{}
		if err := entry.Decode(op); err != nil {
			return fmt.Errorf("failed to unmarshal operation: %w", err)
		}

		if op.UserID == userID {
			ops = append(ops, op)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].Timestamp < ops[j].Timestamp
	})

	return ops, nil
}

// DeleteOperation removes an operation by id. Idempotent: deleting an absent
// id is not an error and touches nothing else.
func (s *Storage) DeleteOperation(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOperations)
		if bucket == nil {
			return fmt.Errorf("operations bucket not found")
		}
		return bucket.Delete([]byte(id))
	})
}

// CountOperations returns the number of queued operations for the user.
func (s *Storage) CountOperations(ctx context.Context, userID string) (int, error) {
	count := 0

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketOperations)
		if bucket == nil {
			return fmt.Errorf("operations bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			op := &models.PendingOperation{}
			if err := entry.Decode(op); err != nil {
				return fmt.Errorf("failed to unmarshal operation: %w", err)
			}
			if op.UserID == userID {
				count++
			}
			return nil
		})
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
