package cli

import (
	"context"
	"time"
)

func (a *App) runStatus(ctx context.Context) error {
	a.println("=== Grimorio Status ===")
	a.println()

	conn := a.snapshot(ctx)

	a.printf("Connectivity: %s\n", conn.State)

	lastSync, err := a.store.GetLastSyncTime(ctx, a.userID)
	if err != nil {
		a.printf("Warning: failed to read last sync time: %v\n", err)
	} else if lastSync.IsZero() {
		a.println("Last sync:    never")
	} else {
		a.printf("Last sync:    %s\n", lastSync.Format(time.RFC3339))
	}

	a.println()
	if conn.PendingCount > 0 {
		a.printf("Pending sync: %d change(s) waiting to be synchronized\n", conn.PendingCount)
		a.println("Run 'grimorio sync' to synchronize with the server.")
	} else {
		a.println("All changes synchronized with the server.")
	}

	counts, err := a.store.Counts(ctx)
	if err != nil {
		a.printf("\nWarning: failed to read cache stats: %v\n", err)
		return nil
	}

	a.println()
	a.println("Cache contents:")
	for _, name := range []string{"spells", "favorite_presets", "magia_links", "pending_operations"} {
		a.printf("  %-20s %d\n", name, counts[name])
	}

	return nil
}
