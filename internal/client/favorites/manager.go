// Package favorites implements the grimoire manager: create, edit and
// delete named favorite-spell collections, online or offline. Online
// mutations go to the remote store first and are cached best-effort;
// offline mutations apply optimistically to local state and are queued for
// replay.
package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	httpclient "github.com/rsoares/grimorio/internal/client/api"
	"github.com/rsoares/grimorio/internal/client/connectivity"
	"github.com/rsoares/grimorio/internal/client/queue"
	"github.com/rsoares/grimorio/internal/client/storage"
	syncer "github.com/rsoares/grimorio/internal/client/sync"
	"github.com/rsoares/grimorio/internal/models"
	"github.com/rsoares/grimorio/pkg/api"
)

// ErrNoActivePreset is returned by spell operations that need a target
// preset when none is active and none was given.
var ErrNoActivePreset = errors.New("no active preset")

// Manager owns the in-memory preset list and the active-preset id. Every
// operation takes the current user and a connectivity snapshot explicitly;
// a mutex serializes mutations so a timer-driven sync can never interleave
// with a half-applied edit.
type Manager struct {
	apiClient httpclient.ClientAPI
	store     storage.PresetStore
	queue     *queue.Service
	syncer    syncer.Service
	logger    *slog.Logger

	now func() time.Time

	mu       sync.Mutex
	presets  []*models.FavoritePreset
	activeID string
}

// NewManager creates a grimoire manager.
func NewManager(apiClient httpclient.ClientAPI, store storage.PresetStore, q *queue.Service, s syncer.Service, logger *slog.Logger) *Manager {
	return &Manager{
		apiClient: apiClient,
		store:     store,
		queue:     q,
		syncer:    s,
		logger:    logger,
		now:       time.Now,
	}
}

// Load populates the manager, cache first. A non-empty cache is usable
// immediately; when connected the cache is then refreshed from remote truth.
// Offline with an empty cache, a local-only default preset is synthesized so
// the favorites feature is never blocked.
func (m *Manager) Load(ctx context.Context, userID string, conn connectivity.Snapshot) ([]*models.FavoritePreset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cached, err := m.store.ListPresets(ctx, userID)
	if err != nil {
		m.logger.Warn("failed to read preset cache", "error", err)
	}
	if len(cached) > 0 {
		m.presets = cached
	}

	if conn.Connected() {
		fresh, err := m.syncer.RefreshPresets(ctx, userID)
		if err != nil {
			// The cache fast path already served; refresh is opportunistic.
			m.logger.Warn("preset refresh failed, using cache", "error", err)
		} else {
			m.presets = fresh
		}
	}

	if len(m.presets) == 0 {
		if !conn.Connected() {
			preset := m.synthesizeDefault(ctx, userID)
			m.presets = []*models.FavoritePreset{preset}
		}
	}

	m.reconcileActive()

	return m.clonePresets(), nil
}

// synthesizeDefault builds the local-only default preset used when offline
// with an empty cache. It is not queued while untouched: the next connected
// refresh creates the remote default and supersedes it. Editing it enqueues
// a CREATE so the edits reach the remote store.
func (m *Manager) synthesizeDefault(ctx context.Context, userID string) *models.FavoritePreset {
	now := m.now()
	preset := &models.FavoritePreset{
		ID:        uuid.New().String(),
		Name:      syncer.DefaultPresetName,
		UserID:    userID,
		Origin:    models.OriginLocal,
		SpellIDs:  []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.SavePreset(ctx, preset); err != nil {
		m.logger.Warn("failed to cache synthesized preset", "error", err)
	}

	return preset
}

// CreatePreset creates a named preset. Online, the remote store assigns the
// id; offline, a locally-synthesized preset is cached and a CREATE_PRESET
// operation is queued carrying the creation payload without the local id.
func (m *Manager) CreatePreset(ctx context.Context, userID string, conn connectivity.Snapshot, name, description string) (*models.FavoritePreset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var preset *models.FavoritePreset

	if conn.Connected() {
		created, err := m.apiClient.CreatePreset(ctx, api.CreatePresetRequest{
			Name:        name,
			Description: description,
			UserID:      userID,
			SpellIDs:    []string{},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create preset: %w", err)
		}

		preset = &models.FavoritePreset{
			ID:          created.ID,
			Name:        created.Name,
			Description: created.Description,
			UserID:      created.UserID,
			Origin:      models.OriginRemote,
			SpellIDs:    append([]string(nil), created.SpellIDs...),
			CreatedAt:   created.CreatedAt,
			UpdatedAt:   created.UpdatedAt,
		}

		m.cachePreset(ctx, preset)
	} else {
		now := m.now()
		preset = &models.FavoritePreset{
			ID:          uuid.New().String(),
			Name:        name,
			Description: description,
			UserID:      userID,
			Origin:      models.OriginLocal,
			SpellIDs:    []string{},
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		m.cachePreset(ctx, preset)

		payload := models.CreatePresetPayload{
			LocalID:     preset.ID,
			Name:        name,
			Description: description,
			UserID:      userID,
			SpellIDs:    []string{},
		}
		if _, err := m.queue.Enqueue(ctx, models.OpCreatePreset, payload, userID); err != nil {
			m.logger.Warn("failed to queue preset creation", "error", err)
		}
	}

	m.presets = append(m.presets, preset)
	if m.activeID == "" {
		m.activeID = preset.ID
	}

	return preset.Clone(), nil
}

// UpdatePreset applies a partial update. Online against a remote-known id
// the remote store is mutated first and local state only on success; any
// other combination mutates local state and queues an UPDATE_PRESET, or for
// a locally-synthesized target rewrites its pending CREATE so the edit rides
// it to the remote store.
func (m *Manager) UpdatePreset(ctx context.Context, userID string, conn connectivity.Snapshot, id string, updates models.PresetUpdates) (*models.FavoritePreset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.updateLocked(ctx, userID, conn, id, updates)
}

// updateLocked is UpdatePreset with the mutex already held, so callers that
// first read the preset keep the read and the write in one transition.
func (m *Manager) updateLocked(ctx context.Context, userID string, conn connectivity.Snapshot, id string, updates models.PresetUpdates) (*models.FavoritePreset, error) {
	target, idx := m.find(id)
	if target == nil {
		return nil, storage.ErrPresetNotFound
	}

	if conn.Connected() && !target.IsLocal() {
		updated, err := m.apiClient.UpdatePreset(ctx, id, userID, api.UpdatePresetRequest{
			Name:        updates.Name,
			Description: updates.Description,
			SpellIDs:    updates.SpellIDs,
		})
		if err != nil {
			// Local state deliberately untouched: the two stores must not
			// diverge on a failed direct mutation.
			return nil, fmt.Errorf("failed to update preset: %w", err)
		}

		fresh := target.Clone()
		fresh.Name = updated.Name
		fresh.Description = updated.Description
		fresh.SpellIDs = append([]string(nil), updated.SpellIDs...)
		fresh.UpdatedAt = updated.UpdatedAt

		m.presets[idx] = fresh
		m.cachePreset(ctx, fresh)

		return fresh.Clone(), nil
	}

	fresh := target.Clone()
	updates.Apply(fresh, m.now())
	m.presets[idx] = fresh
	m.cachePreset(ctx, fresh)

	if target.IsLocal() {
		m.rewritePendingCreate(ctx, userID, fresh)
	} else {
		payload := models.UpdatePresetPayload{ID: id, Updates: updates}
		if _, err := m.queue.Enqueue(ctx, models.OpUpdatePreset, payload, userID); err != nil {
			m.logger.Warn("failed to queue preset update", "error", err)
		}
	}

	return fresh.Clone(), nil
}

// rewritePendingCreate pushes the current state of a locally-synthesized
// preset into its queued CREATE, so offline edits survive the replay. A
// local preset with no queued CREATE (the synthesized default) gets one the
// moment it is first edited.
func (m *Manager) rewritePendingCreate(ctx context.Context, userID string, preset *models.FavoritePreset) {
	payload := models.CreatePresetPayload{
		LocalID:     preset.ID,
		Name:        preset.Name,
		Description: preset.Description,
		UserID:      userID,
		SpellIDs:    append([]string{}, preset.SpellIDs...),
	}

	op := m.findPendingCreate(ctx, userID, preset.ID)
	if op == nil {
		if _, err := m.queue.Enqueue(ctx, models.OpCreatePreset, payload, userID); err != nil {
			m.logger.Warn("failed to queue preset creation", "error", err)
		}
		return
	}

	if err := m.queue.Rewrite(ctx, op, payload); err != nil {
		m.logger.Warn("failed to rewrite queued preset creation", "op_id", op.ID, "error", err)
	}
}

// findPendingCreate locates the queued CREATE carrying the given local id.
func (m *Manager) findPendingCreate(ctx context.Context, userID, localID string) *models.PendingOperation {
	ops, err := m.queue.ListForUser(ctx, userID)
	if err != nil {
		m.logger.Warn("failed to list pending operations", "error", err)
		return nil
	}

	for _, op := range ops {
		if op.Type != models.OpCreatePreset {
			continue
		}
		var payload models.CreatePresetPayload
		if err := json.Unmarshal(op.Data, &payload); err != nil {
			continue
		}
		if payload.LocalID == localID {
			return op
		}
	}

	return nil
}

// DeletePreset removes a preset. Deleting the active preset moves the
// active selection to the first remaining preset, or to none.
func (m *Manager) DeletePreset(ctx context.Context, userID string, conn connectivity.Snapshot, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, idx := m.find(id)
	if target == nil {
		return storage.ErrPresetNotFound
	}

	if conn.Connected() && !target.IsLocal() {
		if err := m.apiClient.DeletePreset(ctx, id, userID); err != nil {
			return fmt.Errorf("failed to delete preset: %w", err)
		}
	}

	m.presets = append(m.presets[:idx], m.presets[idx+1:]...)

	if err := m.store.DeletePreset(ctx, id); err != nil {
		m.logger.Warn("failed to delete cached preset", "error", err)
	}

	if target.IsLocal() {
		// Cancelling the queued CREATE keeps the replay from resurrecting
		// a preset the user already deleted.
		if op := m.findPendingCreate(ctx, userID, id); op != nil {
			if err := m.queue.Remove(ctx, op.ID); err != nil {
				m.logger.Warn("failed to cancel queued preset creation", "op_id", op.ID, "error", err)
			}
		}
	} else if !conn.Connected() {
		payload := models.DeletePresetPayload{ID: id}
		if _, err := m.queue.Enqueue(ctx, models.OpDeletePreset, payload, userID); err != nil {
			m.logger.Warn("failed to queue preset deletion", "error", err)
		}
	}

	if m.activeID == id {
		if len(m.presets) > 0 {
			m.activeID = m.presets[0].ID
		} else {
			m.activeID = ""
		}
	}

	return nil
}

// AddSpell adds a spell to the given preset, or to the active one when
// presetID is empty. Adding a spell already present is a no-op success. The
// mutex is held across read, recompute and apply so concurrent adds to the
// same preset never lose one.
func (m *Manager) AddSpell(ctx context.Context, userID string, conn connectivity.Snapshot, spellID, presetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, err := m.resolveTargetLocked(presetID)
	if err != nil {
		return err
	}

	if target.HasSpell(spellID) {
		return nil
	}

	ids := append(append([]string(nil), target.SpellIDs...), spellID)
	_, err = m.updateLocked(ctx, userID, conn, target.ID, models.PresetUpdates{SpellIDs: &ids})
	return err
}

// RemoveSpell removes a spell from the given preset, or from the active one
// when presetID is empty. Removing an absent spell is a no-op success.
func (m *Manager) RemoveSpell(ctx context.Context, userID string, conn connectivity.Snapshot, spellID, presetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	target, err := m.resolveTargetLocked(presetID)
	if err != nil {
		return err
	}

	if !target.HasSpell(spellID) {
		return nil
	}

	ids := make([]string, 0, len(target.SpellIDs)-1)
	for _, id := range target.SpellIDs {
		if id != spellID {
			ids = append(ids, id)
		}
	}

	_, err = m.updateLocked(ctx, userID, conn, target.ID, models.PresetUpdates{SpellIDs: &ids})
	return err
}

// SetActive selects the preset used for filtering.
func (m *Manager) SetActive(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if target, _ := m.find(id); target == nil {
		return storage.ErrPresetNotFound
	}
	m.activeID = id
	return nil
}

// Active returns the id of the active preset, or empty when none is.
func (m *Manager) Active() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.activeID
}

// Presets returns a copy of the current preset list.
func (m *Manager) Presets() []*models.FavoritePreset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.clonePresets()
}

// resolveTargetLocked picks the explicit preset or falls back to the active
// one. Caller must hold the mutex.
func (m *Manager) resolveTargetLocked(presetID string) (*models.FavoritePreset, error) {
	if presetID == "" {
		presetID = m.activeID
	}
	if presetID == "" {
		return nil, ErrNoActivePreset
	}

	target, _ := m.find(presetID)
	if target == nil {
		return nil, storage.ErrPresetNotFound
	}

	return target, nil
}

// find returns the preset with the given id and its index, or (nil, -1).
// Caller must hold the mutex.
func (m *Manager) find(id string) (*models.FavoritePreset, int) {
	for i, p := range m.presets {
		if p.ID == id {
			return p, i
		}
	}
	return nil, -1
}

// reconcileActive keeps the active id pointing at an existing preset,
// falling back to the first by creation order. Caller must hold the mutex.
func (m *Manager) reconcileActive() {
	if m.activeID != "" {
		if target, _ := m.find(m.activeID); target != nil {
			return
		}
	}
	if len(m.presets) > 0 {
		m.activeID = m.presets[0].ID
	} else {
		m.activeID = ""
	}
}

// cachePreset writes a preset to the local store, best-effort. A failed
// cache write after a successful remote mutation is logged and swallowed:
// the remote store is the source of truth. Caller must hold the mutex.
func (m *Manager) cachePreset(ctx context.Context, preset *models.FavoritePreset) {
	if err := m.store.SavePreset(ctx, preset); err != nil {
		m.logger.Warn("failed to cache preset", "preset_id", preset.ID, "error", err)
	}
}

func (m *Manager) clonePresets() []*models.FavoritePreset {
	out := make([]*models.FavoritePreset, len(m.presets))
	for i, p := range m.presets {
		out[i] = p.Clone()
	}
	return out
}
