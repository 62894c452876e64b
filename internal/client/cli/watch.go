package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// runWatch keeps the process alive with the periodic probe loop running, so
// pending changes replay automatically the moment connectivity returns.
func (a *App) runWatch(ctx context.Context) error {
	conn := a.snapshot(ctx)
	a.printf("Connectivity: %s\n", conn.State)
	if conn.PendingCount > 0 {
		a.printf("Pending sync: %d change(s)\n", conn.PendingCount)
	}
	a.println("Watching; pending changes replay automatically on reconnect. Ctrl+C stops.")

	a.monitor.Start(ctx)
	defer a.monitor.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case <-sig:
	case <-ctx.Done():
	}

	a.println("Stopped watching.")
	return nil
}
