package scraper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

func TestHTTPFetcherFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewHTTPFetcher(5*time.Second, "test-agent/1.0")
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if string(body) != "<html><body>ok</body></html>" {
		t.Errorf("unexpected body: %q", body)
	}
	if gotUA != "test-agent/1.0" {
		t.Errorf("User-Agent: got %q, want %q", gotUA, "test-agent/1.0")
	}
}

func TestHTTPFetcherStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(5*time.Second, "").Fetch(context.Background(), srv.URL)
	var rerr *models.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *models.RetrievalError, got %v", err)
	}
	if rerr.URL != srv.URL {
		t.Errorf("RetrievalError.URL: got %q, want %q", rerr.URL, srv.URL)
	}
}

func TestHTTPFetcherTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	_, err := NewHTTPFetcher(50*time.Millisecond, "").Fetch(context.Background(), srv.URL)
	var rerr *models.RetrievalError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected *models.RetrievalError on timeout, got %v", err)
	}
}

func TestSelectText(t *testing.T) {
	html := `<html><body>
		<ul>
			<li class="listing-essentials-item">Chassis: WP0CA2996TS340000</li>
			<li class="listing-essentials-item">  32,500
				Miles </li>
			<li class="other">ignored</li>
			<li class="listing-essentials-item">6-Speed Manual Transaxle</li>
		</ul>
	</body></html>`

	doc, err := ParseDocument("test", []byte(html))
	if err != nil {
		t.Fatal(err)
	}

	got := SelectText(doc, ".listing-essentials-item")
	want := []string{"Chassis: WP0CA2996TS340000", "32,500 Miles", "6-Speed Manual Transaxle"}
	if len(got) != len(want) {
		t.Fatalf("got %d texts, want %d: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("text[%d] = %q; want %q", i, got[i], want[i])
		}
	}
}

func TestSelectTextNoMatch(t *testing.T) {
	doc, err := ParseDocument("test", []byte("<html></html>"))
	if err != nil {
		t.Fatal(err)
	}
	got := SelectText(doc, ".listing-essentials-item")
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", got)
	}
}
