// Package boltdb implements the local durable store on top of BoltDB.
package boltdb

import (
	"context"
	"encoding/binary"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/rsoares/grimorio/internal/client/storage"
)

// schemaVersion is the current layout version of the database. A version
// bump must ship a matching upgrade step in runUpgrade.
const schemaVersion = 1

var (
	// BoltDB bucket names, one per collection
	bucketSpells     = []byte("spells")
	bucketPresets    = []byte("favorite_presets")
	bucketMagiaLinks = []byte("magia_links")
	bucketOperations = []byte("pending_operations")
	bucketMetadata   = []byte("metadata")

	keySchemaVersion = []byte("schema_version")
)

var allBuckets = [][]byte{
	bucketSpells,
	bucketPresets,
	bucketMagiaLinks,
	bucketOperations,
	bucketMetadata,
}

// Storage represents the BoltDB-backed local store.
type Storage struct {
	db *bbolt.DB

	// now is replaceable in tests to control ttl expiry.
	now func() time.Time
}

var _ storage.Store = (*Storage)(nil)

// Open opens (creating if needed) the database at dbPath and runs the
// one-time schema setup. Opening is idempotent: an already-initialized
// database passes through untouched.
func Open(ctx context.Context, dbPath string) (*Storage, error) {
	db, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open boltdb: %w", err)
	}

	s := &Storage{db: db, now: time.Now}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// initSchema creates the collection buckets and brings the persisted schema
// version up to date. Runs in a single transaction so concurrent openers see
// either nothing or the finished layout.
func (s *Storage) initSchema() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		meta := tx.Bucket(bucketMetadata)
		current := readUint64(meta.Get(keySchemaVersion))

		switch {
		case current == schemaVersion:
			return nil
		case current > schemaVersion:
			return fmt.Errorf("database schema version %d is newer than supported %d", current, schemaVersion)
		case current > 0:
			if err := runUpgrade(tx, current); err != nil {
				return fmt.Errorf("failed to upgrade schema from version %d: %w", current, err)
			}
		}

		return meta.Put(keySchemaVersion, writeUint64(schemaVersion))
	})
}

// runUpgrade performs the one-time migration from an older schema version.
// Version 1 is the initial layout, so there is nothing to migrate from yet.
func runUpgrade(tx *bbolt.Tx, from uint64) error {
	_ = tx
	_ = from
	return nil
}

func readUint64(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}

func writeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

// putEntry wraps value in a CachedEntry envelope and stores it under key.
func (s *Storage) putEntry(bucketName []byte, key string, value any, ttl time.Duration) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketName)
		if bucket == nil {
			return fmt.Errorf("bucket %s not found", bucketName)
		}

		entry, err := storage.NewCachedEntry(value, ttl, s.now())
		if err != nil {
			return fmt.Errorf("failed to marshal entry: %w", err)
		}

		data, err := encodeEntry(entry)
		if err != nil {
			return err
		}

		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save entry: %w", err)
		}

		return nil
	})
}
