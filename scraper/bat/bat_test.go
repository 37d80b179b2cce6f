package bat

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"sync/atomic"
	"time"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

// fakeFetcher serves canned pages and records concurrency.
type fakeFetcher struct {
	pages map[string]string
	delay time.Duration

	calls    int64
	inFlight int64
	peak     int64

	mu     sync.Mutex
	called []string
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	atomic.AddInt64(&f.calls, 1)
	n := atomic.AddInt64(&f.inFlight, 1)
	defer atomic.AddInt64(&f.inFlight, -1)
	for {
		p := atomic.LoadInt64(&f.peak)
		if n <= p || atomic.CompareAndSwapInt64(&f.peak, p, n) {
			break
		}
	}

	f.mu.Lock()
	f.called = append(f.called, url)
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &models.RetrievalError{URL: url, Err: ctx.Err()}
		}
	}

	page, ok := f.pages[url]
	if !ok {
		return nil, &models.RetrievalError{URL: url, Err: errors.New("unexpected status code: 404")}
	}
	return []byte(page), nil
}

func resultsPage(payload string) string {
	return fmt.Sprintf(`<html><body>
		<div class="header">Porsche 993</div>
		<div class="chart" data-stats="%s"></div>
	</body></html>`, html.EscapeString(payload))
}

func detailPage(items ...string) string {
	page := `<html><body><div class="listing-essentials"><ul>`
	for _, it := range items {
		page += `<li class="listing-essentials-item">` + html.EscapeString(it) + `</li>`
	}
	return page + `</ul></div></body></html>`
}
