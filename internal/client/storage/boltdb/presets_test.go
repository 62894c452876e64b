package boltdb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
)

func testPreset(id, userID, name string, createdAt time.Time) *models.FavoritePreset {
	return &models.FavoritePreset{
		ID:        id,
		Name:      name,
		UserID:    userID,
		Origin:    models.OriginRemote,
		SpellIDs:  []string{},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
}

func TestSaveAndGetPreset(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	preset := testPreset("p1", "alice", "Meu Grimório", time.Now().UTC())
	preset.SpellIDs = []string{"s1", "s2"}

	require.NoError(t, store.SavePreset(ctx, preset))

	got, err := store.GetPreset(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Meu Grimório", got.Name)
	assert.Equal(t, []string{"s1", "s2"}, got.SpellIDs)
	assert.Equal(t, models.OriginRemote, got.Origin)
}

func TestGetPreset_NotFound(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	_, err := store.GetPreset(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrPresetNotFound)
}

func TestListPresets_FiltersByUserAndOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// Insert out of creation order and for two users.
	require.NoError(t, store.SavePreset(ctx, testPreset("p3", "alice", "Third", base.Add(2*time.Hour))))
	require.NoError(t, store.SavePreset(ctx, testPreset("p1", "alice", "First", base)))
	require.NoError(t, store.SavePreset(ctx, testPreset("px", "bob", "Other", base)))
	require.NoError(t, store.SavePreset(ctx, testPreset("p2", "alice", "Second", base.Add(time.Hour))))

	presets, err := store.ListPresets(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, presets, 3)
	assert.Equal(t, "p1", presets[0].ID)
	assert.Equal(t, "p2", presets[1].ID)
	assert.Equal(t, "p3", presets[2].ID)
}

func TestDeletePreset_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SavePreset(ctx, testPreset("p1", "alice", "Keep", time.Now())))

	// Deleting an absent id raises no error and touches nothing else.
	require.NoError(t, store.DeletePreset(ctx, "missing"))
	require.NoError(t, store.DeletePreset(ctx, "missing"))

	presets, err := store.ListPresets(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, presets, 1)
}

func TestReplacePresets_StaleRowsDoNotResurface(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, store.SavePreset(ctx, testPreset("a", "alice", "A", base)))
	require.NoError(t, store.SavePreset(ctx, testPreset("b", "alice", "B", base.Add(time.Minute))))
	require.NoError(t, store.SavePreset(ctx, testPreset("z", "bob", "Z", base)))

	fresh := []*models.FavoritePreset{
		testPreset("a", "alice", "A", base),
		testPreset("c", "alice", "C", base.Add(2*time.Minute)),
	}
	require.NoError(t, store.ReplacePresets(ctx, "alice", fresh))

	presets, err := store.ListPresets(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "a", presets[0].ID)
	assert.Equal(t, "c", presets[1].ID)

	// Another user's rows are untouched.
	other, err := store.ListPresets(ctx, "bob")
	require.NoError(t, err)
	assert.Len(t, other, 1)
}
