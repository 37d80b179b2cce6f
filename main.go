package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/arjunmathur/auto-auction-scraper/config"
	"github.com/arjunmathur/auto-auction-scraper/observability"
	"github.com/arjunmathur/auto-auction-scraper/pipeline"
	"github.com/arjunmathur/auto-auction-scraper/scraper"
	"github.com/arjunmathur/auto-auction-scraper/scraper/bat"
	"github.com/arjunmathur/auto-auction-scraper/services"
	"github.com/arjunmathur/auto-auction-scraper/storage"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

func main() {
	logger := utils.NewLogger()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *utils.Logger) error {
	logger.Info("=== 993 Auction Scraper starting ===")
	logger.Info("Config: source=%s | workers=%d | fetch=%s | snapshots=%s | on detail failure: %s",
		cfg.ResultsURL, cfg.MaxConcurrency, cfg.FetchMode, cfg.SnapshotBackend, cfg.DetailFailurePolicy)

	if cfg.MetricsAddr != "" {
		if err := observability.Start(cfg.MetricsAddr); err != nil {
			return fmt.Errorf("start metrics: %w", err)
		}
		logger.Info("Serving metrics on %s/metrics", cfg.MetricsAddr)
	}

	fetcher, closeFetcher, err := newFetcher(cfg, logger)
	if err != nil {
		return err
	}
	defer closeFetcher()

	snapshots, closeSnapshots, err := newSnapshotStore(cfg)
	if err != nil {
		return err
	}
	defer closeSnapshots()

	runner := &pipeline.Runner{
		Snapshots:  snapshots,
		Collector:  bat.NewCollector(cfg.ResultsURL, fetcher, logger),
		Details:    bat.NewDetailFetcher(fetcher, cfg.MaxConcurrency, cfg.SkipFailedDetails(), logger),
		Enricher:   services.NewEnricher(logger),
		Exporter:   storage.NewCSVWriter(logger),
		OutputPath: cfg.CSVOutputPath,
		Reporter:   services.NewSummaryService(logger),
		Progress:   os.Stdout,
		Logger:     logger,
	}

	if cfg.PostgresEnabled {
		pgWriter, err := storage.NewPostgresWriter(cfg.DSN())
		if err != nil {
			logger.Error("Make sure PostgreSQL is reachable or unset POSTGRES_ENABLED")
			return fmt.Errorf("connect to PostgreSQL: %w", err)
		}
		defer pgWriter.Close()
		runner.Sink = pgWriter
	}

	res, err := runner.Run(ctx)
	if err != nil {
		return err
	}

	logger.Info("=== Done: %d auctions written to %s (run %s) ===", len(res.Listings), cfg.CSVOutputPath, res.RunID)
	return nil
}

func newFetcher(cfg *config.Config, logger *utils.Logger) (scraper.Fetcher, func(), error) {
	timeout := time.Duration(cfg.FetchTimeoutSec) * time.Second

	switch cfg.FetchMode {
	case config.FetchModeHTTP:
		return scraper.NewHTTPFetcher(timeout, cfg.UserAgent), func() {}, nil
	case config.FetchModeBrowser:
		bf, err := scraper.NewBrowserFetcher(cfg.ChromeBin, cfg.UserAgent, timeout, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("start browser: %w", err)
		}
		return bf, func() { _ = bf.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown FETCH_MODE %q", cfg.FetchMode)
}

func newSnapshotStore(cfg *config.Config) (storage.SnapshotStore, func(), error) {
	switch cfg.SnapshotBackend {
	case config.SnapshotBackendFile:
		return storage.NewFileSnapshotStore(map[string]string{
			storage.SnapshotRawAuctions:      cfg.RawSnapshotPath,
			storage.SnapshotDetailedAuctions: cfg.DetailedSnapshotPath,
		}), func() {}, nil
	case config.SnapshotBackendRedis:
		rs, err := storage.NewRedisSnapshotStore(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return rs, func() { _ = rs.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unknown SNAPSHOT_BACKEND %q", cfg.SnapshotBackend)
}
