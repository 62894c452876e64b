// Package connectivity tracks network and remote-store reachability as an
// explicit finite-state machine and triggers queue drains on reconnect.
package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rsoares/grimorio/internal/notify"
)

// DefaultProbeInterval is how often the monitor actively probes the remote
// store while the network is up.
const DefaultProbeInterval = 30 * time.Second

// Prober answers whether the remote store is reachable right now.
type Prober interface {
	Ping(ctx context.Context) error
}

// PendingCounter reports how many queued operations await replay.
type PendingCounter interface {
	PendingCount(ctx context.Context, userID string) (int, error)
}

// DrainFunc replays the pending queue. Invoked at most once per transition
// into the connected state.
type DrainFunc func(ctx context.Context, userID string)

// Snapshot is a point-in-time view of connectivity, passed explicitly into
// operations instead of being consumed as ambient state.
type Snapshot struct {
	LastSyncAt   time.Time
	State        State
	PendingCount int
	Syncing      bool
}

// Connected reports whether the remote store was reachable at snapshot time.
func (s Snapshot) Connected() bool {
	return s.State.Connected()
}

// Monitor owns the connectivity state machine. All transitions flow through
// a single transition function under the mutex.
type Monitor struct {
	prober   Prober
	pending  PendingCounter
	notifier notify.Notifier
	logger   *slog.Logger
	drain    DrainFunc

	userID   string
	interval time.Duration

	// syncSem holds one token while a drain is running. Non-blocking
	// acquisition gates the reconnect hook; blocking acquisition lets an
	// explicit sync wait its turn instead of being refused.
	syncSem chan struct{}

	mu         sync.Mutex
	state      State
	lastSyncAt time.Time

	stopCh  chan struct{}
	stopped bool
}

// NewMonitor creates a monitor for the given user. It starts in the offline
// state until told otherwise or until a probe succeeds.
func NewMonitor(prober Prober, pending PendingCounter, notifier notify.Notifier, logger *slog.Logger, userID string, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = DefaultProbeInterval
	}
	return &Monitor{
		prober:   prober,
		pending:  pending,
		notifier: notifier,
		logger:   logger,
		userID:   userID,
		interval: interval,
		state:    StateOffline,
		syncSem:  make(chan struct{}, 1),
		stopCh:   make(chan struct{}),
	}
}

// SetDrainFunc registers the queue drain to run on reconnect. Must be called
// before Start.
func (m *Monitor) SetDrainFunc(drain DrainFunc) {
	m.drain = drain
}

// Start launches the periodic probe loop. It probes once immediately so a
// fresh process learns its state without waiting a full interval.
func (m *Monitor) Start(ctx context.Context) {
	go m.probeLoop(ctx)
}

// Stop terminates the probe loop. Safe to call more than once.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.stopped {
		m.stopped = true
		close(m.stopCh)
	}
}

func (m *Monitor) probeLoop(ctx context.Context) {
	m.Probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.Probe(ctx)
		}
	}
}

// Probe actively checks remote reachability and feeds the result into the
// state machine.
func (m *Monitor) Probe(ctx context.Context) {
	if err := m.prober.Ping(ctx); err != nil {
		m.logger.Debug("probe failed", "error", err)
		m.reportUnreachable(ctx)
		return
	}
	m.transition(ctx, StateConnected)
}

// SetNetworkAvailable feeds an OS-level network event into the state
// machine. It is authoritative for the offline edge: losing the network
// forces offline immediately; regaining it moves to unreachable until a
// probe confirms the remote store.
func (m *Monitor) SetNetworkAvailable(ctx context.Context, available bool) {
	if !available {
		m.transition(ctx, StateOffline)
		return
	}

	m.mu.Lock()
	current := m.state
	m.mu.Unlock()

	if current == StateOffline {
		m.transition(ctx, StateUnreachable)
	}
}

// reportUnreachable handles a failed probe: with no way to distinguish a
// down network from a down server, a failed probe from offline stays
// offline, and from any online state lands on unreachable.
func (m *Monitor) reportUnreachable(ctx context.Context) {
	m.mu.Lock()
	current := m.state
	m.mu.Unlock()

	if current == StateOffline {
		return
	}
	m.transition(ctx, StateUnreachable)
}

// transition is the single place the current state changes. On the edge
// into connected with pending work it kicks off one drain, gated by the
// syncing flag so overlapping drains are impossible.
func (m *Monitor) transition(ctx context.Context, to State) {
	m.mu.Lock()
	from := m.state
	if from == to {
		m.mu.Unlock()
		return
	}
	m.state = to
	m.mu.Unlock()

	m.logger.Info("connectivity changed", "from", from.String(), "to", to.String())

	// Offline edge notifications are best-effort and non-blocking.
	switch {
	case to == StateOffline:
		go m.notifier.Notify("Grimorio", "You are offline. Changes will sync when connection returns.")
	case from == StateOffline:
		go m.notifier.Notify("Grimorio", "Back online.")
	}

	if to == StateConnected {
		m.maybeDrain(ctx)
	}
}

// maybeDrain starts a drain if there is pending work and no drain running.
func (m *Monitor) maybeDrain(ctx context.Context) {
	if m.drain == nil {
		return
	}

	count, err := m.pending.PendingCount(ctx, m.userID)
	if err != nil {
		m.logger.Warn("failed to count pending operations", "error", err)
		return
	}
	if count == 0 {
		return
	}

	if !m.BeginSync() {
		return
	}

	go func() {
		defer m.EndSync()
		m.drain(ctx, m.userID)
	}()
}

// BeginSync acquires the syncing gate. Returns false if a drain is already
// in progress.
func (m *Monitor) BeginSync() bool {
	select {
	case m.syncSem <- struct{}{}:
		return true
	default:
		return false
	}
}

// AcquireSync acquires the syncing gate, waiting for an in-flight drain to
// finish first. Used by explicit sync passes that must run rather than be
// refused.
func (m *Monitor) AcquireSync(ctx context.Context) error {
	select {
	case m.syncSem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// EndSync releases the syncing gate. Always runs, success or not.
func (m *Monitor) EndSync() {
	select {
	case <-m.syncSem:
	default:
	}
}

// NoteSync records the time of a successful sync pass.
func (m *Monitor) NoteSync(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastSyncAt = t
}

// Snapshot returns the current connectivity view, pending count included.
func (m *Monitor) Snapshot(ctx context.Context) Snapshot {
	count, err := m.pending.PendingCount(ctx, m.userID)
	if err != nil {
		m.logger.Warn("failed to count pending operations", "error", err)
		count = 0
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return Snapshot{
		State:        m.state,
		Syncing:      len(m.syncSem) > 0,
		PendingCount: count,
		LastSyncAt:   m.lastSyncAt,
	}
}
