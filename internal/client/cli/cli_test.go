package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clientapi "github.com/rsoares/grimorio/internal/client/api"
	"github.com/rsoares/grimorio/internal/client/connectivity"
	"github.com/rsoares/grimorio/internal/client/favorites"
	"github.com/rsoares/grimorio/internal/client/queue"
	"github.com/rsoares/grimorio/internal/client/spellbook"
	"github.com/rsoares/grimorio/internal/client/storage/boltdb"
	syncsvc "github.com/rsoares/grimorio/internal/client/sync"
	"github.com/rsoares/grimorio/internal/notify"
	"github.com/rsoares/grimorio/pkg/api"
)

// fakeRemote serves the remote store's REST surface in-process.
type fakeRemote struct {
	mu      sync.Mutex
	presets map[string]*api.Preset
	nextID  int
	down    bool
}

func (f *fakeRemote) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/v1/health", func(w http.ResponseWriter, r *http.Request) {
		if f.isDown() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	mux.HandleFunc("/api/v1/presets", func(w http.ResponseWriter, r *http.Request) {
		if f.isDown() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
			out := []api.Preset{}
			for _, p := range f.presets {
				if p.UserID == r.URL.Query().Get("user_id") {
					out = append(out, *p)
				}
			}
			_ = json.NewEncoder(w).Encode(out)
		case http.MethodPost:
			var req api.CreatePresetRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			f.nextID++
			p := &api.Preset{
				ID:          fmt.Sprintf("srv-%d", f.nextID),
				Name:        req.Name,
				Description: req.Description,
				UserID:      req.UserID,
				SpellIDs:    append([]string{}, req.SpellIDs...),
				CreatedAt:   time.Now().UTC().Add(time.Duration(f.nextID) * time.Second),
				UpdatedAt:   time.Now().UTC(),
			}
			f.presets[p.ID] = p
			_ = json.NewEncoder(w).Encode(p)
		}
	})

	mux.HandleFunc("/api/v1/presets/", func(w http.ResponseWriter, r *http.Request) {
		if f.isDown() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()

		id := strings.TrimPrefix(r.URL.Path, "/api/v1/presets/")
		p, ok := f.presets[id]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(api.ErrorResponse{Error: "not_found", Message: "preset not found"})
			return
		}

		switch r.Method {
		case http.MethodPatch:
			var req api.UpdatePresetRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			if req.Name != nil {
				p.Name = *req.Name
			}
			if req.Description != nil {
				p.Description = *req.Description
			}
			if req.SpellIDs != nil {
				p.SpellIDs = append([]string{}, (*req.SpellIDs)...)
			}
			p.UpdatedAt = time.Now().UTC()
			_ = json.NewEncoder(w).Encode(p)
		case http.MethodDelete:
			delete(f.presets, id)
			w.WriteHeader(http.StatusNoContent)
		}
	})

	mux.HandleFunc("/api/v1/spells", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]api.Spell{
			{ID: "s1", Name: "Bola de Fogo", Circle: 3},
		})
	})

	mux.HandleFunc("/api/v1/spell-classes", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([]api.SpellClassLink{
			{Magia: "Bola de Fogo", Classe: "Arcanista"},
		})
	})

	return mux
}

func (f *fakeRemote) isDown() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.down
}

func (f *fakeRemote) setDown(down bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.down = down
}

func createTestApp(t *testing.T) (*App, *fakeRemote, *bytes.Buffer) {
	t.Helper()

	remote := &fakeRemote{presets: make(map[string]*api.Preset)}
	srv := httptest.NewServer(remote.handler())
	t.Cleanup(srv.Close)

	store, err := boltdb.Open(context.Background(), filepath.Join(t.TempDir(), "cli_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	apiClient := clientapi.NewClient(srv.URL)
	q := queue.NewService(store, logger)
	syncer := syncsvc.NewService(apiClient, store, store, q, notify.Nop{}, logger)
	manager := favorites.NewManager(apiClient, store, q, syncer, logger)
	sb := spellbook.NewService(apiClient, store, logger)
	monitor := connectivity.NewMonitor(apiClient, q, notify.Nop{}, logger, "alice", time.Hour)
	monitor.SetDrainFunc(func(ctx context.Context, user string) {
		result, err := syncer.Drain(ctx, user)
		if err != nil {
			return
		}
		if result.Synced > 0 {
			monitor.NoteSync(time.Now())
		}
	})

	var out bytes.Buffer
	app := New(&out, "alice", manager, sb, syncer, monitor, store, logger)

	return app, remote, &out
}

func TestRun_UnknownCommand(t *testing.T) {
	app, _, _ := createTestApp(t)

	err := app.Run(context.Background(), "conjure", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestListCreatesDefaultForFirstTimeUser(t *testing.T) {
	app, _, out := createTestApp(t)

	require.NoError(t, app.Run(context.Background(), "list", nil))
	assert.Contains(t, out.String(), syncsvc.DefaultPresetName)
}

func TestCreateAndAddSpellRoundTrip(t *testing.T) {
	ctx := context.Background()
	app, _, out := createTestApp(t)

	require.NoError(t, app.Run(ctx, "create", []string{"Necromancia", "só as sombrias"}))
	assert.Contains(t, out.String(), "Necromancia")

	out.Reset()
	require.NoError(t, app.Run(ctx, "add", []string{"s1"}))
	assert.Contains(t, out.String(), "Spell s1 added.")

	out.Reset()
	require.NoError(t, app.Run(ctx, "list", nil))
	assert.Contains(t, out.String(), "[1 spells]")
}

// The reconnect drain hook is wired here exactly as the binary wires it: an
// explicit sync must own the drain pass itself, not lose it to the hook
// firing off the probe's offline-to-connected transition.
func TestOfflineCreateThenSyncViaCommands(t *testing.T) {
	ctx := context.Background()
	app, remote, out := createTestApp(t)

	remote.setDown(true)

	require.NoError(t, app.Run(ctx, "create", []string{"Offline Grimoire"}))
	assert.Contains(t, out.String(), "offline")

	out.Reset()
	require.NoError(t, app.Run(ctx, "status", nil))
	assert.Contains(t, out.String(), "Pending sync: 1 change(s)")

	remote.setDown(false)

	out.Reset()
	require.NoError(t, app.Run(ctx, "sync", nil))
	assert.Contains(t, out.String(), "Replayed 1 pending change(s).")

	out.Reset()
	require.NoError(t, app.Run(ctx, "status", nil))
	assert.Contains(t, out.String(), "All changes synchronized")

	out.Reset()
	require.NoError(t, app.Run(ctx, "list", nil))
	assert.Contains(t, out.String(), "Offline Grimoire")
	assert.NotContains(t, out.String(), "not synced")
}

func TestWatchDrainsAutomaticallyAndStopsOnCancel(t *testing.T) {
	ctx := context.Background()
	app, remote, _ := createTestApp(t)

	remote.setDown(true)
	require.NoError(t, app.Run(ctx, "create", []string{"Offline Grimoire"}))
	remote.setDown(false)

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- app.Run(watchCtx, "watch", nil)
	}()

	require.Eventually(t, func() bool {
		remote.mu.Lock()
		defer remote.mu.Unlock()
		return len(remote.presets) == 1
	}, 5*time.Second, 10*time.Millisecond, "queued create was not replayed")

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop on context cancellation")
	}
}

func TestSyncFailsOffline(t *testing.T) {
	app, remote, _ := createTestApp(t)
	remote.setDown(true)

	err := app.Run(context.Background(), "sync", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not reachable")
}

func TestSpellsCommandShowsClasses(t *testing.T) {
	app, _, out := createTestApp(t)

	require.NoError(t, app.Run(context.Background(), "spells", nil))
	assert.Contains(t, out.String(), "Bola de Fogo")
	assert.Contains(t, out.String(), "Arcanista")
}

func TestResetCacheCommand(t *testing.T) {
	ctx := context.Background()
	app, _, out := createTestApp(t)

	require.NoError(t, app.Run(ctx, "list", nil))

	out.Reset()
	require.NoError(t, app.Run(ctx, "reset-cache", nil))
	assert.Contains(t, out.String(), "wiped")
}
