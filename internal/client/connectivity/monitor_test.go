package connectivity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsoares/grimorio/internal/notify"
)

type fakeProber struct {
	mu  sync.Mutex
	err error
}

func (f *fakeProber) Ping(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}

func (f *fakeProber) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

type fakeCounter struct {
	mu    sync.Mutex
	count int
}

func (f *fakeCounter) PendingCount(ctx context.Context, userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.count, nil
}

func newTestMonitor(prober Prober, counter PendingCounter) *Monitor {
	return NewMonitor(prober, counter, notify.Nop{}, slog.New(slog.NewTextHandler(io.Discard, nil)), "alice", time.Hour)
}

func TestProbe_SuccessConnects(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(&fakeProber{}, &fakeCounter{})

	m.Probe(ctx)

	assert.Equal(t, StateConnected, m.Snapshot(ctx).State)
}

func TestProbe_FailureFromOfflineStaysOffline(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(&fakeProber{err: errors.New("no route")}, &fakeCounter{})

	m.Probe(ctx)

	assert.Equal(t, StateOffline, m.Snapshot(ctx).State)
}

func TestProbe_FailureWhileConnectedTurnsUnreachable(t *testing.T) {
	ctx := context.Background()
	prober := &fakeProber{}
	m := newTestMonitor(prober, &fakeCounter{})

	m.Probe(ctx)
	require.Equal(t, StateConnected, m.Snapshot(ctx).State)

	prober.setErr(errors.New("gateway timeout"))
	m.Probe(ctx)

	assert.Equal(t, StateUnreachable, m.Snapshot(ctx).State)
}

func TestSetNetworkAvailable_ForcesOffline(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(&fakeProber{}, &fakeCounter{})

	m.Probe(ctx)
	require.Equal(t, StateConnected, m.Snapshot(ctx).State)

	m.SetNetworkAvailable(ctx, false)
	assert.Equal(t, StateOffline, m.Snapshot(ctx).State)

	// Regaining the network alone is not proof the store is reachable.
	m.SetNetworkAvailable(ctx, true)
	assert.Equal(t, StateUnreachable, m.Snapshot(ctx).State)
}

func TestTransitionToConnected_DrainsOncePerTransition(t *testing.T) {
	ctx := context.Background()
	prober := &fakeProber{}
	m := newTestMonitor(prober, &fakeCounter{count: 3})

	drained := make(chan string, 8)
	m.SetDrainFunc(func(ctx context.Context, userID string) {
		drained <- userID
	})

	m.Probe(ctx)

	select {
	case user := <-drained:
		assert.Equal(t, "alice", user)
	case <-time.After(time.Second):
		t.Fatal("drain was not triggered on connect")
	}

	// Staying connected must not re-trigger the drain.
	m.Probe(ctx)
	m.Probe(ctx)

	select {
	case <-drained:
		t.Fatal("drain triggered without a transition")
	case <-time.After(50 * time.Millisecond):
	}

	// A fresh offline->connected transition drains again.
	m.SetNetworkAvailable(ctx, false)
	m.Probe(ctx)

	select {
	case <-drained:
	case <-time.After(time.Second):
		t.Fatal("drain was not triggered on reconnect")
	}
}

func TestTransitionToConnected_NoDrainWithoutPendingWork(t *testing.T) {
	ctx := context.Background()
	m := newTestMonitor(&fakeProber{}, &fakeCounter{count: 0})

	drained := make(chan struct{}, 1)
	m.SetDrainFunc(func(ctx context.Context, userID string) {
		drained <- struct{}{}
	})

	m.Probe(ctx)

	select {
	case <-drained:
		t.Fatal("drain triggered with an empty queue")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSyncingGate_BlocksOverlappingDrains(t *testing.T) {
	m := newTestMonitor(&fakeProber{}, &fakeCounter{})

	require.True(t, m.BeginSync())
	assert.False(t, m.BeginSync())

	m.EndSync()
	assert.True(t, m.BeginSync())
	m.EndSync()
}

func TestAcquireSync_WaitsForInFlightDrain(t *testing.T) {
	m := newTestMonitor(&fakeProber{}, &fakeCounter{})

	require.True(t, m.BeginSync())

	acquired := make(chan struct{})
	go func() {
		if err := m.AcquireSync(context.Background()); err == nil {
			close(acquired)
		}
	}()

	select {
	case <-acquired:
		t.Fatal("gate acquired while a drain held it")
	case <-time.After(50 * time.Millisecond):
	}

	m.EndSync()

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("gate was not handed over after the drain finished")
	}
	m.EndSync()
}

func TestAcquireSync_HonorsContextCancellation(t *testing.T) {
	m := newTestMonitor(&fakeProber{}, &fakeCounter{})

	require.True(t, m.BeginSync())
	defer m.EndSync()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, m.AcquireSync(ctx), context.Canceled)
}

func TestSnapshot_ReportsPendingAndSyncTime(t *testing.T) {
	ctx := context.Background()
	counter := &fakeCounter{count: 2}
	m := newTestMonitor(&fakeProber{}, counter)

	snap := m.Snapshot(ctx)
	assert.Equal(t, 2, snap.PendingCount)
	assert.True(t, snap.LastSyncAt.IsZero())

	ts := time.Now()
	m.NoteSync(ts)
	assert.Equal(t, ts, m.Snapshot(ctx).LastSyncAt)
}
