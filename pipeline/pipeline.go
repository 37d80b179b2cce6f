package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"

	"github.com/arjunmathur/auto-auction-scraper/models"
	"github.com/arjunmathur/auto-auction-scraper/observability"
	"github.com/arjunmathur/auto-auction-scraper/storage"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

// Stage labels printed before each step.
const (
	LabelCollect = "1. Pulling Raw Auctions"
	LabelDetails = "2. Pulling Details for Raw Auctions"
	LabelEnrich  = "3. Enriching Auctions"
	LabelExport  = "4. Dumping to CSV"
)

type Collector interface {
	Collect(ctx context.Context) ([]models.RawListing, error)
}

type DetailFetcher interface {
	FetchAll(ctx context.Context, listings []models.RawListing) ([]models.DetailedListing, error)
}

type Enricher interface {
	Enrich(listings []models.DetailedListing) []models.EnrichedListing
}

// Reporter receives the final dataset after a successful export.
type Reporter interface {
	Report(listings []models.EnrichedListing)
}

// Runner wires the stages together. Snapshots, Collector, Details, Enricher,
// Exporter and OutputPath are required; Sink, Reporter and Progress are
// optional.
type Runner struct {
	Snapshots  storage.SnapshotStore
	Collector  Collector
	Details    DetailFetcher
	Enricher   Enricher
	Exporter   storage.Exporter
	OutputPath string

	Sink     storage.ListingWriter
	Reporter Reporter
	Progress io.Writer
	Logger   *utils.Logger
}

// Result describes a completed run.
type Result struct {
	RunID    string
	Listings []models.EnrichedListing
}

// Run executes collect, details, enrich and export in that order. A stage
// whose snapshot exists is not re-run. Nothing is written to OutputPath
// unless every stage succeeds.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	runID := uuid.NewString()
	logger.Info("[pipeline] Run %s starting", runID)

	r.label(LabelCollect)
	var raw []models.RawListing
	if !r.loadSnapshot(logger, storage.SnapshotRawAuctions, &raw) {
		collected, err := r.Collector.Collect(ctx)
		if err != nil {
			return nil, fmt.Errorf("collect: %w", err)
		}
		raw = collected
		r.saveSnapshot(logger, storage.SnapshotRawAuctions, raw)
	}
	logger.Info("[pipeline] %d raw listings", len(raw))

	r.label(LabelDetails)
	var detailed []models.DetailedListing
	if !r.loadSnapshot(logger, storage.SnapshotDetailedAuctions, &detailed) {
		fetched, err := r.Details.FetchAll(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("fetch details: %w", err)
		}
		detailed = fetched
		r.saveSnapshot(logger, storage.SnapshotDetailedAuctions, detailed)
	}

	r.label(LabelEnrich)
	enriched := r.Enricher.Enrich(detailed)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.label(LabelExport)
	if err := r.Exporter.Export(enriched, r.OutputPath); err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}

	if r.Sink != nil {
		if err := r.Sink.Write(runID, enriched); err != nil {
			logger.Error("[postgres] Write failed: %v", err)
		} else {
			logger.Info("[postgres] Stored %d listings (run %s)", len(enriched), runID)
		}
	}
	if r.Reporter != nil {
		r.Reporter.Report(enriched)
	}

	return &Result{RunID: runID, Listings: enriched}, nil
}

func (r *Runner) label(s string) {
	out := r.Progress
	if out == nil {
		out = os.Stdout
	}
	fmt.Fprintln(out, s)
}

// loadSnapshot reports whether name was found and decoded into v. Read and
// decode failures count as a miss.
func (r *Runner) loadSnapshot(logger *utils.Logger, name string, v any) bool {
	ok, err := r.Snapshots.Load(name, v)
	switch {
	case err != nil:
		observability.SnapshotLookups.WithLabelValues(name, "error").Inc()
		logger.Warn("[snapshot] Ignoring %s: %v", name, err)
		return false
	case !ok:
		observability.SnapshotLookups.WithLabelValues(name, "miss").Inc()
		logger.Debug("[snapshot] No %s snapshot", name)
		return false
	}
	observability.SnapshotLookups.WithLabelValues(name, "hit").Inc()
	logger.Info("[snapshot] Using saved %s", name)
	return true
}

func (r *Runner) saveSnapshot(logger *utils.Logger, name string, v any) {
	if err := r.Snapshots.Save(name, v); err != nil {
		logger.Warn("[snapshot] Could not save %s: %v", name, err)
	}
}

// OrderByURL returns detailed re-keyed into the order of raw. Listings of raw
// with no detailed counterpart are omitted.
func OrderByURL(raw []models.RawListing, detailed []models.DetailedListing) []models.DetailedListing {
	byURL := make(map[string]models.DetailedListing, len(detailed))
	for _, d := range detailed {
		byURL[d.URL] = d
	}

	ordered := make([]models.DetailedListing, 0, len(detailed))
	for _, l := range raw {
		if d, ok := byURL[l.URL]; ok {
			ordered = append(ordered, d)
			delete(byURL, l.URL)
		}
	}
	return ordered
}
