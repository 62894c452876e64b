// Package sync reconciles local state with the remote store: it replays the
// pending-operation queue and refreshes the local preset cache from remote
// truth.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	httpclient "github.com/rsoares/grimorio/internal/client/api"
	"github.com/rsoares/grimorio/internal/client/queue"
	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/models"
	"github.com/rsoares/grimorio/internal/notify"
	"github.com/rsoares/grimorio/pkg/api"
)

// DefaultPresetName is the preset created for a first-time user.
const DefaultPresetName = "Meu Grimório"

// Service is the sync reconciler.
type Service interface {
	// Drain replays the user's pending operations against the remote store.
	Drain(ctx context.Context, userID string) (*DrainResult, error)

	// RefreshPresets fetches the user's presets from the remote store and
	// atomically replaces the local cache with them.
	RefreshPresets(ctx context.Context, userID string) ([]*models.FavoritePreset, error)
}

// DrainResult aggregates one drain pass.
type DrainResult struct {
	Synced      int // operations confirmed and removed from the queue
	Failed      int // operations whose replay failed, left queued for retry
	Unconfirmed int // replays accepted remotely whose queue removal failed
}

type service struct {
	apiClient httpclient.ClientAPI
	presets   storage.PresetStore
	metadata  storage.MetadataStore
	queue     *queue.Service
	notifier  notify.Notifier
	logger    *slog.Logger

	now func() time.Time
}

// NewService creates a sync reconciler.
func NewService(apiClient httpclient.ClientAPI, presets storage.PresetStore, metadata storage.MetadataStore, q *queue.Service, notifier notify.Notifier, logger *slog.Logger) Service {
	return &service{
		apiClient: apiClient,
		presets:   presets,
		metadata:  metadata,
		queue:     q,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Drain replays queued operations strictly in timestamp order. One remote
// call completes and is recorded before the next begins; a failed operation
// stays queued and draining continues with the next.
func (s *service) Drain(ctx context.Context, userID string) (*DrainResult, error) {
	ops, err := s.queue.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending operations: %w", err)
	}

	s.logger.Info("draining pending operations", "user_id", userID, "count", len(ops))

	result := &DrainResult{}

	for _, op := range ops {
		if err := s.replay(ctx, op); err != nil {
			s.logger.Warn("operation replay failed",
				"op_id", op.ID,
				"type", op.Type,
				"error", err)
			result.Failed++
			continue
		}

		if err := s.queue.Remove(ctx, op.ID); err != nil {
			// The remote mutation went through; a failed removal only risks
			// a duplicate replay. Counted apart from Failed so the user is
			// not told a synced change "could not be synced".
			s.logger.Error("failed to remove replayed operation", "op_id", op.ID, "error", err)
			result.Unconfirmed++
			continue
		}

		result.Synced++
	}

	if result.Synced > 0 {
		if err := s.metadata.SaveLastSyncTime(ctx, userID, s.now()); err != nil {
			s.logger.Warn("failed to save last sync time", "error", err)
		}
		go s.notifier.Notify("Grimorio", fmt.Sprintf("%d change(s) synced.", result.Synced))
	}

	if result.Failed > 0 {
		go s.notifier.Notify("Grimorio", fmt.Sprintf("%d change(s) could not be synced and will be retried.", result.Failed))
	}

	if result.Unconfirmed > 0 {
		go s.notifier.Notify("Grimorio", fmt.Sprintf("%d change(s) were synced but could not be confirmed and may replay again.", result.Unconfirmed))
	}

	s.logger.Info("drain completed",
		"synced", result.Synced,
		"failed", result.Failed,
		"unconfirmed", result.Unconfirmed)

	return result, nil
}

// replay dispatches one operation to the matching remote mutation.
func (s *service) replay(ctx context.Context, op *models.PendingOperation) error {
	switch op.Type {
	case models.OpCreatePreset:
		var payload models.CreatePresetPayload
		if err := json.Unmarshal(op.Data, &payload); err != nil {
			return fmt.Errorf("failed to decode create payload: %w", err)
		}
		_, err := s.apiClient.CreatePreset(ctx, api.CreatePresetRequest{
			Name:        payload.Name,
			Description: payload.Description,
			UserID:      payload.UserID,
			SpellIDs:    payload.SpellIDs,
		})
		return err

	case models.OpUpdatePreset, models.OpAddSpell, models.OpRemoveSpell:
		var payload models.UpdatePresetPayload
		if err := json.Unmarshal(op.Data, &payload); err != nil {
			return fmt.Errorf("failed to decode update payload: %w", err)
		}
		_, err := s.apiClient.UpdatePreset(ctx, payload.ID, op.UserID, api.UpdatePresetRequest{
			Name:        payload.Updates.Name,
			Description: payload.Updates.Description,
			SpellIDs:    payload.Updates.SpellIDs,
		})
		return err

	case models.OpDeletePreset:
		var payload models.DeletePresetPayload
		if err := json.Unmarshal(op.Data, &payload); err != nil {
			return fmt.Errorf("failed to decode delete payload: %w", err)
		}
		return s.apiClient.DeletePreset(ctx, payload.ID, op.UserID)

	default:
		return fmt.Errorf("unknown operation type: %s", op.Type)
	}
}

// RefreshPresets fetches remote truth and overwrites the local cache for the
// user. For a first-time user with no remote presets, exactly one default
// preset is created remotely and treated as the fetched set.
func (s *service) RefreshPresets(ctx context.Context, userID string) ([]*models.FavoritePreset, error) {
	remote, err := s.apiClient.ListPresets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch presets: %w", err)
	}

	if len(remote) == 0 {
		created, err := s.apiClient.CreatePreset(ctx, api.CreatePresetRequest{
			Name:     DefaultPresetName,
			UserID:   userID,
			SpellIDs: []string{},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create default preset: %w", err)
		}
		remote = []api.Preset{*created}
	}

	presets := make([]*models.FavoritePreset, 0, len(remote))
	for _, p := range remote {
		presets = append(presets, presetFromWire(p))
	}

	// Stable creation order: active-preset fallback picks "the first".
	sort.SliceStable(presets, func(i, j int) bool {
		if !presets[i].CreatedAt.Equal(presets[j].CreatedAt) {
			return presets[i].CreatedAt.Before(presets[j].CreatedAt)
		}
		return presets[i].ID < presets[j].ID
	})

	// The fetched set fully supersedes whatever was cached for this user.
	if err := s.presets.ReplacePresets(ctx, userID, presets); err != nil {
		// Remote is the source of truth; a failed cache write only costs
		// offline freshness.
		s.logger.Warn("failed to refresh preset cache", "error", err)
	}

	return presets, nil
}

func presetFromWire(p api.Preset) *models.FavoritePreset {
	return &models.FavoritePreset{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		UserID:      p.UserID,
		Origin:      models.OriginRemote,
		SpellIDs:    append([]string(nil), p.SpellIDs...),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
