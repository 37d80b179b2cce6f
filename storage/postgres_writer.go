package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

const columnsPerRow = 11

// PostgresWriter persists enriched listings to PostgreSQL, one row per
// listing URL.
type PostgresWriter struct {
	db *sql.DB
}

// NewPostgresWriter opens a connection to PostgreSQL, runs schema migrations,
// and returns a ready-to-use PostgresWriter.
func NewPostgresWriter(dsn string) (*PostgresWriter, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	for i := 0; i < 10; i++ {
		if err = db.Ping(); err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: ping failed after retries: %w", err)
	}

	pw := &PostgresWriter{db: db}
	if err := pw.migrate(); err != nil {
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pw, nil
}

func (pw *PostgresWriter) migrate() error {
	_, err := pw.db.Exec(`
		CREATE TABLE IF NOT EXISTS auctions (
			id           SERIAL PRIMARY KEY,
			run_id       UUID         NOT NULL,
			title        TEXT         NOT NULL,
			url          TEXT         UNIQUE NOT NULL,
			sold         BOOLEAN      NOT NULL,
			details      JSONB        NOT NULL DEFAULT '[]',
			model        VARCHAR(16)  NOT NULL,
			transmission VARCHAR(16)  NOT NULL,
			mileage      INTEGER,
			sale_date    DATE         NOT NULL,
			amount       NUMERIC(12,2),
			updated_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_auctions_model     ON auctions(model);
		CREATE INDEX IF NOT EXISTS idx_auctions_sale_date ON auctions(sale_date);
	`)
	return err
}

// Write upserts all listings in batches, tagging them with runID.
func (pw *PostgresWriter) Write(runID string, listings []models.EnrichedListing) error {
	if len(listings) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(listings); i += batchSize {
		end := i + batchSize
		if end > len(listings) {
			end = len(listings)
		}
		if err := pw.insertBatch(runID, listings[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pw *PostgresWriter) insertBatch(runID string, batch []models.EnrichedListing) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*columnsPerRow)

	seen := make(map[string]struct{}, len(batch))
	for _, l := range batch {
		// ON CONFLICT cannot touch the same row twice in one statement
		if _, dup := seen[l.URL]; dup {
			continue
		}
		seen[l.URL] = struct{}{}

		details, err := json.Marshal(l.Details)
		if err != nil {
			return fmt.Errorf("postgres: encode details for %s: %w", l.URL, err)
		}

		placeholders := make([]string, columnsPerRow)
		base := len(valueArgs)
		for j := range placeholders {
			placeholders[j] = fmt.Sprintf("$%d", base+j+1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(placeholders, ",")+")")
		valueArgs = append(valueArgs,
			runID, l.Title, l.URL, l.Sold, string(details), string(l.Model), string(l.Transmission),
			nullableInt(l.Mileage), l.Date, nullableString(l.Amount), time.Now())
	}

	query := fmt.Sprintf(`
		INSERT INTO auctions (run_id, title, url, sold, details, model, transmission, mileage, sale_date, amount, updated_at)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET
			run_id       = EXCLUDED.run_id,
			title        = EXCLUDED.title,
			sold         = EXCLUDED.sold,
			details      = EXCLUDED.details,
			model        = EXCLUDED.model,
			transmission = EXCLUDED.transmission,
			mileage      = EXCLUDED.mileage,
			sale_date    = EXCLUDED.sale_date,
			amount       = EXCLUDED.amount,
			updated_at   = EXCLUDED.updated_at
	`, strings.Join(valueStrings, ","))

	_, err := pw.db.Exec(query, valueArgs...)
	if err != nil {
		return fmt.Errorf("postgres: insert batch: %w", err)
	}
	return nil
}

func (pw *PostgresWriter) Close() error {
	return pw.db.Close()
}

// nullableInt maps an unknown ("") or non-numeric mileage to SQL NULL.
func nullableInt(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return sql.NullString{}
		}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullableString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
