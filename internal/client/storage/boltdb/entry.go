package boltdb

import (
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/rsoares/grimorio/internal/client/storage"
)

func encodeEntry(e *storage.CachedEntry) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to encode entry: %w", err)
	}
	return data, nil
}

func decodeEntry(b []byte) (*storage.CachedEntry, error) {
	entry := &storage.CachedEntry{}
	if err := json.Unmarshal(b, entry); err != nil {
		return nil, fmt.Errorf("failed to decode entry: %w", err)
	}
	return entry, nil
}

// forEachLive iterates the live entries of a bucket. It runs in a write
// transaction so that expired entries can be reaped in place as they are
// encountered; reads never observe an expired entry.
func (s *Storage) forEachLive(bucketName []byte, fn func(key string, entry *storage.CachedEntry) error) error {
	now := s.now()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		var expired [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			if !entry.Live(now) {
				expired = append(expired, append([]byte(nil), k...))
				return nil
			}
			return fn(string(k), entry)
		})
		if err != nil {
			return err
		}

		// Deletion is deferred: bbolt forbids mutating a bucket mid-ForEach.
		for _, k := range expired {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to reap expired entry: %w", err)
			}
		}

		return nil
	})
}
