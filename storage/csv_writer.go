package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/arjunmathur/auto-auction-scraper/models"
	"github.com/arjunmathur/auto-auction-scraper/observability"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

// Header is the fixed column order of the export file.
var Header = []string{
	"title", "url", "sold", "details", "model", "transmission", "mileage", "date", "year", "amount",
}

// CSVWriter writes enriched listings to a CSV file.
type CSVWriter struct {
	logger *utils.Logger
}

// NewCSVWriter creates a CSVWriter.
func NewCSVWriter(logger *utils.Logger) *CSVWriter {
	return &CSVWriter{logger: logger}
}

// Export writes the header and one row per listing, in the given order.
// Rows go to a temporary file in the same directory which is renamed over
// path only once everything has been written.
func (c *CSVWriter) Export(listings []models.EnrichedListing, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("csv: create temp file: %w", err)
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if err := f.Chmod(0644); err != nil {
		_ = f.Close()
		return fmt.Errorf("csv: chmod %q: %w", tmp, err)
	}

	if err := writeRows(f, listings); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("csv: close %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("csv: rename into %q: %w", path, err)
	}

	observability.ListingsExported.Add(float64(len(listings)))
	c.logger.Info("[csv] Wrote %d rows to %s", len(listings), path)
	return nil
}

func writeRows(f *os.File, listings []models.EnrichedListing) error {
	w := csv.NewWriter(f)

	if err := w.Write(Header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row, err := toRow(l)
		if err != nil {
			return err
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func toRow(l models.EnrichedListing) ([]string, error) {
	details := l.Details
	if details == nil {
		details = []string{}
	}
	encoded, err := json.Marshal(details)
	if err != nil {
		return nil, fmt.Errorf("csv: encode details for %s: %w", l.URL, err)
	}

	return []string{
		l.Title,
		l.URL,
		strconv.FormatBool(l.Sold),
		string(encoded),
		string(l.Model),
		string(l.Transmission),
		l.Mileage,
		l.Date,
		strconv.Itoa(l.Year),
		l.Amount,
	}, nil
}
