package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) runSync(ctx context.Context) error {
	a.println("=== Synchronization ===")
	a.println()

	// The gate is taken before the probe: a probe can transition into
	// connected and fire the reconnect drain hook, and this explicit pass
	// must own the drain, not lose it to a background goroutine.
	if err := a.monitor.AcquireSync(ctx); err != nil {
		return err
	}
	defer a.monitor.EndSync()

	conn := a.snapshot(ctx)
	if !conn.Connected() {
		return fmt.Errorf("remote store is not reachable (%s)", conn.State)
	}

	result, err := a.syncer.Drain(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("synchronization failed: %w", err)
	}

	if result.Synced > 0 {
		a.monitor.NoteSync(time.Now())
		a.printf("Replayed %d pending change(s).\n", result.Synced)
	}
	if result.Failed > 0 {
		a.printf("%d change(s) failed and remain queued for retry.\n", result.Failed)
	}
	if result.Unconfirmed > 0 {
		a.printf("%d change(s) reached the server but are still queued and may replay again.\n", result.Unconfirmed)
	}
	if result.Synced == 0 && result.Failed == 0 && result.Unconfirmed == 0 {
		a.println("Nothing to replay.")
	}

	presets, err := a.syncer.RefreshPresets(ctx, a.userID)
	if err != nil {
		return fmt.Errorf("failed to refresh grimoires: %w", err)
	}

	a.printf("Cache refreshed: %d grimoire(s).\n", len(presets))
	return nil
}

func (a *App) runResetCache(ctx context.Context) error {
	if err := a.store.ClearAll(ctx); err != nil {
		return fmt.Errorf("failed to reset cache: %w", err)
	}
	a.println("Local cache wiped.")
	return nil
}
