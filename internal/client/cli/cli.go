// Package cli implements the grimorio commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/rsoares/grimorio/internal/client/connectivity"
	"github.com/rsoares/grimorio/internal/client/favorites"
	"github.com/rsoares/grimorio/internal/client/spellbook"
	"github.com/rsoares/grimorio/internal/client/storage"
	syncer "github.com/rsoares/grimorio/internal/client/sync"
)

// App wires the client services behind the command surface.
type App struct {
	out       io.Writer
	userID    string
	manager   *favorites.Manager
	spellbook *spellbook.Service
	syncer    syncer.Service
	monitor   *connectivity.Monitor
	store     storage.Store
	logger    *slog.Logger
}

// New creates the command app.
func New(out io.Writer, userID string, manager *favorites.Manager, sb *spellbook.Service, s syncer.Service, monitor *connectivity.Monitor, store storage.Store, logger *slog.Logger) *App {
	return &App{
		out:       out,
		userID:    userID,
		manager:   manager,
		spellbook: sb,
		syncer:    s,
		monitor:   monitor,
		store:     store,
		logger:    logger,
	}
}

// Run dispatches a command by name.
func (a *App) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "list":
		return a.runList(ctx)
	case "create":
		return a.runCreate(ctx, args)
	case "rename":
		return a.runRename(ctx, args)
	case "delete":
		return a.runDelete(ctx, args)
	case "use":
		return a.runUse(ctx, args)
	case "add":
		return a.runAddSpell(ctx, args)
	case "remove":
		return a.runRemoveSpell(ctx, args)
	case "spells":
		return a.runSpells(ctx)
	case "status":
		return a.runStatus(ctx)
	case "sync":
		return a.runSync(ctx)
	case "watch":
		return a.runWatch(ctx)
	case "reset-cache":
		return a.runResetCache(ctx)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// snapshot probes reachability once and returns the fresh connectivity view.
func (a *App) snapshot(ctx context.Context) connectivity.Snapshot {
	a.monitor.Probe(ctx)
	return a.monitor.Snapshot(ctx)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

// PrintUsage writes the command summary.
func PrintUsage(out io.Writer) {
	fmt.Fprint(out, `Usage: grimorio [flags] <command> [arguments]

Commands:
  list                      List your grimoires
  create <name> [desc]      Create a grimoire
  rename <id> <name>        Rename a grimoire
  delete <id>               Delete a grimoire
  use <id>                  Select the active grimoire
  add <spell-id> [id]       Add a spell to a grimoire (active by default)
  remove <spell-id> [id]    Remove a spell from a grimoire
  spells                    List the spell compendium
  status                    Show connectivity and sync status
  sync                      Replay pending changes and refresh the cache
  watch                     Stay running and sync automatically on reconnect
  reset-cache               Wipe the local cache
  version                   Show version information

Flags:
  -server          Remote store URL
  -db              Path to the local database
  -user            User id
  -probe-interval  Reachability probe interval in watch mode
`)
}
