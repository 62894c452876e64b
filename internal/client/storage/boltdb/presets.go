package boltdb

import (
	"context"
	"fmt"
	"sort"

	"go.etcd.io/bbolt"

	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
)

// SavePreset stores or updates a preset.
func (s *Storage) SavePreset(ctx context.Context, preset *models.FavoritePreset) error {
	return s.putEntry(bucketPresets, preset.ID, preset, 0)
}

// GetPreset retrieves a preset by id.
func (s *Storage) GetPreset(ctx context.Context, id string) (*models.FavoritePreset, error) {
	var preset *models.FavoritePreset

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPresets)
		if bucket == nil {
			return fmt.Errorf("presets bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrPresetNotFound
		}

		entry, err := decodeEntry(data)
		if err != nil {
			return err
		}

		preset = &models.FavoritePreset{}
		if err := entry.Decode(preset); err != nil {
			return fmt.Errorf("failed to unmarshal preset: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return preset, nil
}

// ListPresets returns all presets of the user, ordered by creation time.
func (s *Storage) ListPresets(ctx context.Context, userID string) ([]*models.FavoritePreset, error) {
	var presets []*models.FavoritePreset

	err := s.forEachLive(bucketPresets, func(key string, entry *storage.CachedEntry) error {
		preset := &models.FavoritePreset{}
		if err := entry.Decode(preset); err != nil {
			return fmt.Errorf("failed to unmarshal preset: %w", err)
		}

		if preset.UserID == userID {
			presets = append(presets, preset)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(presets, func(i, j int) bool {
		if !presets[i].CreatedAt.Equal(presets[j].CreatedAt) {
			return presets[i].CreatedAt.Before(presets[j].CreatedAt)
		}
		return presets[i].ID < presets[j].ID
	})

	return presets, nil
}

// DeletePreset removes a preset by id. Deleting an absent id is not an error.
func (s *Storage) DeletePreset(ctx context.Context, id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPresets)
		if bucket == nil {
			return fmt.Errorf("presets bucket not found")
		}
		return bucket.Delete([]byte(id))
	})
}

// ReplacePresets supersedes every cached preset of the user with the given
// set in a single transaction, so stale rows cannot resurface.
func (s *Storage) ReplacePresets(ctx context.Context, userID string, presets []*models.FavoritePreset) error {
	now := s.now()

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketPresets)
		if bucket == nil {
			return fmt.Errorf("presets bucket not found")
		}

		// Collect the user's existing keys first: bbolt forbids mutating a
		// bucket mid-ForEach.
		var stale [][]byte
		err := bucket.ForEach(func(k, v []byte) error {
			entry, err := decodeEntry(v)
			if err != nil {
				return err
			}
			preset := &models.FavoritePreset{}
			if err := entry.Decode(preset); err != nil {
				return fmt.Errorf("failed to unmarshal preset: %w", err)
			}
			if preset.UserID == userID {
				stale = append(stale, append([]byte(nil), k...))
			}
			return nil
		})
		if err != nil {
			return err
		}

		for _, k := range stale {
			if err := bucket.Delete(k); err != nil {
				return fmt.Errorf("failed to delete stale preset: %w", err)
			}
		}

		for _, preset := range presets {
			entry, err := storage.NewCachedEntry(preset, 0, now)
			if err != nil {
				return fmt.Errorf("failed to marshal preset: %w", err)
			}
			data, err := encodeEntry(entry)
			if err != nil {
				return err
			}
			if err := bucket.Put([]byte(preset.ID), data); err != nil {
				return fmt.Errorf("failed to save preset: %w", err)
			}
		}

		return nil
	})
}
