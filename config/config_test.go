package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"RESULTS_URL", "MAX_CONCURRENCY", "FETCH_TIMEOUT_SEC", "FETCH_MODE",
		"DETAIL_FAILURE_POLICY", "SNAPSHOT_BACKEND", "POSTGRES_ENABLED", "CSV_OUTPUT_PATH",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.ResultsURL != "https://bringatrailer.com/porsche/993/" {
		t.Errorf("ResultsURL: got %q", cfg.ResultsURL)
	}
	if cfg.MaxConcurrency != 5 {
		t.Errorf("MaxConcurrency: got %d, want 5", cfg.MaxConcurrency)
	}
	if cfg.FetchMode != FetchModeHTTP {
		t.Errorf("FetchMode: got %q, want %q", cfg.FetchMode, FetchModeHTTP)
	}
	if cfg.SkipFailedDetails() {
		t.Error("default failure policy should abort")
	}
	if cfg.SnapshotBackend != SnapshotBackendFile {
		t.Errorf("SnapshotBackend: got %q, want %q", cfg.SnapshotBackend, SnapshotBackendFile)
	}
	if cfg.PostgresEnabled {
		t.Error("postgres sink should be disabled by default")
	}
	if cfg.CSVOutputPath != "auctions.csv" {
		t.Errorf("CSVOutputPath: got %q", cfg.CSVOutputPath)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("MAX_CONCURRENCY", "2")
	t.Setenv("DETAIL_FAILURE_POLICY", "SKIP")
	t.Setenv("POSTGRES_ENABLED", "true")
	t.Setenv("FETCH_TIMEOUT_SEC", "not-a-number")

	cfg := Load()

	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency: got %d, want 2", cfg.MaxConcurrency)
	}
	if !cfg.SkipFailedDetails() {
		t.Error("SKIP should select the skip policy")
	}
	if !cfg.PostgresEnabled {
		t.Error("POSTGRES_ENABLED=true should enable the sink")
	}
	if cfg.FetchTimeoutSec != 60 {
		t.Errorf("invalid FETCH_TIMEOUT_SEC should fall back to 60, got %d", cfg.FetchTimeoutSec)
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{
		PostgresHost: "db", PostgresPort: "5433", PostgresUser: "u",
		PostgresPassword: "p", PostgresDB: "d", PostgresSSLMode: "disable",
	}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q; want %q", got, want)
	}
}
