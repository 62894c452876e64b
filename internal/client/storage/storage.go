// Package storage defines the interfaces of the local durable store. The
// physical persistence is owned exclusively by the implementation (boltdb);
// every other component goes through these interfaces.
package storage

import (
	"context"
	"time"

	"github.com/rsoares/grimorio/internal/models"
)

// PresetStore persists favorite presets, with secondary lookup by user.
type PresetStore interface {
	// SavePreset stores or updates a preset. No error on new vs existing id.
	SavePreset(ctx context.Context, preset *models.FavoritePreset) error

	// GetPreset retrieves a preset by id.
	// Returns ErrPresetNotFound if it does not exist.
	GetPreset(ctx context.Context, id string) (*models.FavoritePreset, error)

	// ListPresets returns all presets for the user, ordered by creation time.
	ListPresets(ctx context.Context, userID string) ([]*models.FavoritePreset, error)

	// DeletePreset removes a preset. Deleting an absent id is not an error.
	DeletePreset(ctx context.Context, id string) error

	// ReplacePresets atomically supersedes every cached preset of the user
	// with the given set. Stale rows must not survive the replacement.
	ReplacePresets(ctx context.Context, userID string, presets []*models.FavoritePreset) error
}

// OperationStore persists the pending-operation queue.
type OperationStore interface {
	// SaveOperation appends an operation to the queue.
	SaveOperation(ctx context.Context, op *models.PendingOperation) error

	// ListOperations returns the user's queued operations, timestamp ascending.
	ListOperations(ctx context.Context, userID string) ([]*models.PendingOperation, error)

	// DeleteOperation removes an operation by id. Idempotent.
	DeleteOperation(ctx context.Context, id string) error

	// CountOperations returns the number of queued operations for the user.
	CountOperations(ctx context.Context, userID string) (int, error)
}

// SpellStore caches the spell compendium and the class-link table.
type SpellStore interface {
	// SaveSpells caches the full spell list with the given ttl.
	// A zero ttl means the entries never expire.
	SaveSpells(ctx context.Context, spells []*models.Spell, ttl time.Duration) error

	// ListSpells returns the live (non-expired) cached spells.
	ListSpells(ctx context.Context) ([]*models.Spell, error)

	// SaveClassLinks caches the spell-to-class cross-reference table.
	SaveClassLinks(ctx context.Context, links []*models.SpellClassLink) error

	// ListClassLinks returns the cached cross-reference table.
	ListClassLinks(ctx context.Context) ([]*models.SpellClassLink, error)
}

// MetadataStore keeps flat bookkeeping values such as sync timestamps.
type MetadataStore interface {
	// SaveLastSyncTime records the time of the user's last successful sync.
	SaveLastSyncTime(ctx context.Context, userID string, t time.Time) error

	// GetLastSyncTime returns the last successful sync time, or the zero
	// time if the user has never synced.
	GetLastSyncTime(ctx context.Context, userID string) (time.Time, error)
}

// Maintenance groups the diagnostics and reset operations of the store.
type Maintenance interface {
	// ClearAll wipes every collection.
	ClearAll(ctx context.Context) error

	// Counts returns the physical entry count per collection, expired
	// entries included. Diagnostics only.
	Counts(ctx context.Context) (map[string]int, error)
}

// Store is the full surface of the local durable store.
type Store interface {
	PresetStore
	OperationStore
	SpellStore
	MetadataStore
	Maintenance

	Close() error
}
