package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/rsoares/grimorio/internal/client/api"
	"github.com/rsoares/grimorio/internal/client/cli"
	"github.com/rsoares/grimorio/internal/client/connectivity"
	"github.com/rsoares/grimorio/internal/client/favorites"
	"github.com/rsoares/grimorio/internal/client/queue"
	"github.com/rsoares/grimorio/internal/client/spellbook"
	"github.com/rsoares/grimorio/internal/client/storage"
	"github.com/rsoares/grimorio/internal/client/storage/boltdb"
	syncsvc "github.com/rsoares/grimorio/internal/client/sync"
	"github.com/rsoares/grimorio/internal/notify"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", envOr("GRIMORIO_SERVER", "http://localhost:8080"), "Remote store URL")
	dbPath := flag.String("db", envOr("GRIMORIO_DB", "grimorio.db"), "Path to local database")
	userID := flag.String("user", envOr("GRIMORIO_USER", ""), "User id")
	logFile := flag.String("log-file", envOr("GRIMORIO_LOG_FILE", ""), "Debug log file (rotated); empty for stderr")
	probeInterval := flag.Duration("probe-interval", connectivity.DefaultProbeInterval, "Reachability probe interval")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage(os.Stderr)
		os.Exit(1)
	}
	command := args[0]

	if command == "version" {
		printVersion()
		os.Exit(0)
	}

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "Error: -user (or GRIMORIO_USER) is required")
		os.Exit(1)
	}

	logger := newLogger(*logFile)
	ctx := context.Background()

	// The durable store is optional: when it cannot be opened the client
	// keeps working uncached against the remote store.
	var store storage.Store
	boltStore, err := boltdb.Open(ctx, *dbPath)
	if err != nil {
		logger.Warn("local cache unavailable, running uncached", "error", err)
		store = storage.Unavailable{}
	} else {
		store = boltStore
		defer func() {
			if err := boltStore.Close(); err != nil {
				logger.Error("failed to close database", "error", err)
			}
		}()
	}

	apiClient := api.NewClient(*serverURL)
	notifier := notify.NewDesktop(logger)

	q := queue.NewService(store, logger)
	syncer := syncsvc.NewService(apiClient, store, store, q, notifier, logger)
	manager := favorites.NewManager(apiClient, store, q, syncer, logger)
	sb := spellbook.NewService(apiClient, store, logger)

	monitor := connectivity.NewMonitor(apiClient, q, notifier, logger, *userID, *probeInterval)
	monitor.SetDrainFunc(func(ctx context.Context, user string) {
		result, err := syncer.Drain(ctx, user)
		if err != nil {
			logger.Error("automatic drain failed", "error", err)
			return
		}
		if result.Synced > 0 {
			monitor.NoteSync(time.Now())
		}
	})
	defer monitor.Stop()

	app := cli.New(os.Stdout, *userID, manager, sb, syncer, monitor, store, logger)

	if err := app.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(logFile string) *slog.Logger {
	if logFile == "" {
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		}))
	}

	return slog.New(slog.NewTextHandler(&lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // megabytes
		MaxBackups: 3,
		MaxAge:     28, // days
	}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printVersion() {
	fmt.Printf("Grimorio Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
