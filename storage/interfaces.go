package storage

import "github.com/arjunmathur/auto-auction-scraper/models"

// Checkpoint names used by the pipeline.
const (
	SnapshotRawAuctions      = "raw_auctions"
	SnapshotDetailedAuctions = "raw_auctions_detailed"
)

// SnapshotStore persists named checkpoints of pipeline-stage output.
type SnapshotStore interface {
	// Load decodes the snapshot stored under name into v. It returns false
	// with a nil error when no snapshot exists.
	Load(name string, v any) (bool, error)
	// Save serializes v under name, replacing any earlier snapshot.
	Save(name string, v any) error
}

// Exporter writes the enriched dataset to its final destination.
type Exporter interface {
	Export(listings []models.EnrichedListing, path string) error
}

// ListingWriter is the interface any database sink must satisfy.
type ListingWriter interface {
	Write(runID string, listings []models.EnrichedListing) error
	Close() error
}
