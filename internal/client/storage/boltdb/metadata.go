package boltdb

import (
	"context"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

const keyLastSyncPrefix = "last_sync_"

// SaveLastSyncTime records the time of the user's last successful sync.
func (s *Storage) SaveLastSyncTime(ctx context.Context, userID string, t time.Time) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		key := []byte(keyLastSyncPrefix + userID)
		if err := bucket.Put(key, writeUint64(uint64(t.UnixMilli()))); err != nil {
			return fmt.Errorf("failed to save last sync time: %w", err)
		}

		return nil
	})
}

// GetLastSyncTime returns the user's last successful sync time.
// Returns the zero time if the user has never synced.
func (s *Storage) GetLastSyncTime(ctx context.Context, userID string) (time.Time, error) {
	var t time.Time

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketMetadata)
		if bucket == nil {
			return fmt.Errorf("metadata bucket not found")
		}

		data := bucket.Get([]byte(keyLastSyncPrefix + userID))
		if data == nil {
			// Never synced yet.
			return nil
		}

		t = time.UnixMilli(int64(readUint64(data)))
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to get last sync time: %w", err)
	}

	return t, nil
}
