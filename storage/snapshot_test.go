package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

func newTestStore(t *testing.T) (*FileSnapshotStore, string) {
	dir := t.TempDir()
	return NewFileSnapshotStore(map[string]string{
		SnapshotRawAuctions:      filepath.Join(dir, "raw_auctions.json"),
		SnapshotDetailedAuctions: filepath.Join(dir, "nested", "raw_auctions_detailed.json"),
	}), dir
}

func TestFileSnapshotLoadAbsent(t *testing.T) {
	store, _ := newTestStore(t)

	var got []models.RawListing
	ok, err := store.Load(SnapshotRawAuctions, &got)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if ok {
		t.Error("Load should report a missing snapshot as absent")
	}
}

func TestFileSnapshotRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)

	in := []models.DetailedListing{
		{
			RawListing: models.RawListing{
				Title: "1996 Porsche 911 Turbo", URL: "https://bat/l/1", Sold: true,
				Timestamp: 1600000000, TitleSub: "Sold for $120,000", Amount: "120000",
			},
			Details: []string{"6-Speed Manual", "62k Miles"},
		},
		{
			RawListing: models.RawListing{Title: "1995 Porsche 911 Carrera", URL: "https://bat/l/2"},
			Details:    []string{},
		},
	}

	if err := store.Save(SnapshotDetailedAuctions, in); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	var out []models.DetailedListing
	ok, err := store.Load(SnapshotDetailedAuctions, &out)
	if err != nil || !ok {
		t.Fatalf("Load: ok=%v err=%v", ok, err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d listings, want %d", len(out), len(in))
	}
	if out[0].Title != in[0].Title || !out[0].Sold || out[0].Amount != "120000" || out[0].Timestamp != 1600000000 {
		t.Errorf("listing 0 changed: %+v", out[0])
	}
	if len(out[0].Details) != 2 || out[0].Details[1] != "62k Miles" {
		t.Errorf("details changed: %q", out[0].Details)
	}
	if out[1].Details == nil {
		t.Error("empty details should decode as an empty slice")
	}
}

func TestFileSnapshotSaveOverwrites(t *testing.T) {
	store, _ := newTestStore(t)

	if err := store.Save(SnapshotRawAuctions, []models.RawListing{{URL: "a"}, {URL: "b"}}); err != nil {
		t.Fatal(err)
	}
	if err := store.Save(SnapshotRawAuctions, []models.RawListing{{URL: "c"}}); err != nil {
		t.Fatal(err)
	}

	var out []models.RawListing
	if _, err := store.Load(SnapshotRawAuctions, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].URL != "c" {
		t.Errorf("expected the second snapshot only, got %+v", out)
	}
}

func TestFileSnapshotCorrupt(t *testing.T) {
	store, dir := newTestStore(t)

	if err := os.WriteFile(filepath.Join(dir, "raw_auctions.json"), []byte(`[{"title": "trunc`), 0644); err != nil {
		t.Fatal(err)
	}

	var out []models.RawListing
	ok, err := store.Load(SnapshotRawAuctions, &out)
	var serr *models.SnapshotError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *models.SnapshotError, got %v", err)
	}
	if serr.Name != SnapshotRawAuctions {
		t.Errorf("SnapshotError.Name: got %q", serr.Name)
	}
	if ok {
		t.Error("a corrupt snapshot must not be reported as present")
	}
}

func TestFileSnapshotUnknownName(t *testing.T) {
	store, _ := newTestStore(t)

	if _, err := store.Load("unknown", &[]models.RawListing{}); err == nil {
		t.Error("Load of an unconfigured name should fail")
	}
	if err := store.Save("unknown", []models.RawListing{}); err == nil {
		t.Error("Save of an unconfigured name should fail")
	}
}

func TestRedisSnapshotKey(t *testing.T) {
	if got := snapshotKey(SnapshotDetailedAuctions); got != "auction-scraper:snapshot:raw_auctions_detailed" {
		t.Errorf("snapshotKey: got %q", got)
	}
}

func TestNewRedisSnapshotStoreBadURL(t *testing.T) {
	if _, err := NewRedisSnapshotStore("not-a-redis-url"); err == nil {
		t.Error("expected an error for an invalid url")
	}
}
