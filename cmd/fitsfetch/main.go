package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/skyarchive/fitsfetch/internal/adapter/httpget"
	"github.com/skyarchive/fitsfetch/internal/adapter/sqlite"
	"github.com/skyarchive/fitsfetch/internal/config"
	"github.com/skyarchive/fitsfetch/internal/fetcher"
	"github.com/skyarchive/fitsfetch/internal/fs"
	"github.com/skyarchive/fitsfetch/internal/logger"
	"github.com/skyarchive/fitsfetch/internal/port"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (defaults apply if empty)")
	cacheDir := flag.String("cache-dir", "", "Override the cache directory from the configuration")
	list := flag.Bool("list", false, "Print the resource list and derived local paths without fetching")
	history := flag.Int("history", 0, "Print the N most recent journal entries and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	if *cacheDir != "" {
		cfg.Cache.Dir = *cacheDir
	}

	fsManager := fs.NewManager(cfg.Cache.Dir)

	if *list {
		for _, url := range cfg.Sources.URLs {
			fmt.Printf("%s -> %s\n", url, fsManager.LocalPath(url))
		}
		return
	}

	if *history > 0 {
		if err := printHistory(cfg, *history); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read journal: %v\n", err)
			os.Exit(1)
		}
		return
	}

	zapLogger, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer zapLogger.Sync()

	zapLogger.Info("starting fitsfetch",
		zap.String("version", version),
		zap.String("cache_dir", cfg.Cache.Dir),
		zap.Int("resources", len(cfg.Sources.URLs)))

	var journal port.Journal
	if cfg.Journal.Path != "" {
		j, err := sqlite.Open(cfg.Journal.Path)
		if err != nil {
			zapLogger.Fatal("failed to open journal", zap.Error(err), zap.String("path", cfg.Journal.Path))
		}
		defer j.Close()
		journal = j
	}

	retriever := httpget.New(cfg.HTTP.GetTimeout(), cfg.HTTP.UserAgent+"/"+version)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	svc := fetcher.New(retriever, fsManager, journal, zapLogger)

	summary, err := svc.Run(ctx, cfg.Sources.URLs)
	if err != nil {
		zapLogger.Fatal("run aborted", zap.Error(err))
	}

	if summary.HasFailures() {
		os.Exit(1)
	}
}

func printHistory(cfg *config.Config, limit int) error {
	if cfg.Journal.Path == "" {
		return fmt.Errorf("journal.path is not configured")
	}

	j, err := sqlite.Open(cfg.Journal.Path)
	if err != nil {
		return err
	}
	defer j.Close()

	entries, err := j.Recent(limit)
	if err != nil {
		return err
	}

	for _, e := range entries {
		line := fmt.Sprintf("%s run=%d %-7s %s", e.RecordedAt.Format("2006-01-02 15:04:05"), e.RunID, e.Outcome, e.URL)
		if e.Error != "" {
			line += " (" + e.Error + ")"
		}
		fmt.Println(line)
	}
	return nil
}
