package boltdb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"
)

// createTestStorage opens a temporary database with all buckets initialized.
func createTestStorage(t *testing.T) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "grimorio_test.db")

	store, err := Open(context.Background(), dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestOpen_CreatesBucketsAndSchemaVersion(t *testing.T) {
	store := createTestStorage(t)

	err := store.db.View(func(tx *bbolt.Tx) error {
		for _, name := range allBuckets {
			assert.NotNil(t, tx.Bucket(name), "bucket %s missing", name)
		}

		version := readUint64(tx.Bucket(bucketMetadata).Get(keySchemaVersion))
		assert.Equal(t, uint64(schemaVersion), version)
		return nil
	})
	require.NoError(t, err)
}

func TestOpen_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "reopen_test.db")
	ctx := context.Background()

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening an initialized database passes through untouched.
	store, err = Open(ctx, dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Close())
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "newer_test.db")
	ctx := context.Background()

	store, err := Open(ctx, dbPath)
	require.NoError(t, err)

	err = store.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMetadata).Put(keySchemaVersion, writeUint64(schemaVersion+1))
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	_, err = Open(ctx, dbPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "newer than supported")
}
