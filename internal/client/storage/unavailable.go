package storage

import (
	"context"
	"time"

	"github.com/rsoares/grimorio/internal/models"
)

// Unavailable is the degraded no-op store used when the durable store fails
// to initialize. Reads return empty results, writes are silently skipped,
// and nothing ever errors: the application keeps working without a cache
// instead of crashing.
type Unavailable struct{}

var _ Store = (*Unavailable)(nil)

func (Unavailable) SavePreset(context.Context, *models.FavoritePreset) error { return nil }

func (Unavailable) GetPreset(context.Context, string) (*models.FavoritePreset, error) {
	return nil, ErrPresetNotFound
}

func (Unavailable) ListPresets(context.Context, string) ([]*models.FavoritePreset, error) {
	return nil, nil
}

func (Unavailable) DeletePreset(context.Context, string) error { return nil }

func (Unavailable) ReplacePresets(context.Context, string, []*models.FavoritePreset) error {
	return nil
}

func (Unavailable) SaveOperation(context.Context, *models.PendingOperation) error { return nil }

func (Unavailable) ListOperations(context.Context, string) ([]*models.PendingOperation, error) {
	return nil, nil
}

func (Unavailable) DeleteOperation(context.Context, string) error { return nil }

func (Unavailable) CountOperations(context.Context, string) (int, error) { return 0, nil }

func (Unavailable) SaveSpells(context.Context, []*models.Spell, time.Duration) error { return nil }

func (Unavailable) ListSpells(context.Context) ([]*models.Spell, error) { return nil, nil }

func (Unavailable) SaveClassLinks(context.Context, []*models.SpellClassLink) error { return nil }

func (Unavailable) ListClassLinks(context.Context) ([]*models.SpellClassLink, error) {
	return nil, nil
}

func (Unavailable) SaveLastSyncTime(context.Context, string, time.Time) error { return nil }

func (Unavailable) GetLastSyncTime(context.Context, string) (time.Time, error) {
	return time.Time{}, nil
}

func (Unavailable) ClearAll(context.Context) error { return nil }

func (Unavailable) Counts(context.Context) (map[string]int, error) {
	return map[string]int{}, nil
}

func (Unavailable) Close() error { return nil }
