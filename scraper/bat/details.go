package bat

import (
	"context"
	"sync"
	"time"

	"github.com/arjunmathur/auto-auction-scraper/models"
	"github.com/arjunmathur/auto-auction-scraper/observability"
	"github.com/arjunmathur/auto-auction-scraper/scraper"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

const essentialsSelector = ".listing-essentials-item"

// DetailFetcher fetches every listing's own page and attaches its
// "listing essentials" texts.
type DetailFetcher struct {
	fetcher     scraper.Fetcher
	pool        *utils.WorkerPool
	logger      *utils.Logger
	skipFailed  bool
	reportEvery time.Duration
}

// NewDetailFetcher creates a DetailFetcher running at most maxConcurrency
// fetches at once. With skipFailed a listing whose page cannot be fetched is
// logged and left out; otherwise the first failure aborts FetchAll.
func NewDetailFetcher(fetcher scraper.Fetcher, maxConcurrency int, skipFailed bool, logger *utils.Logger) *DetailFetcher {
	return &DetailFetcher{
		fetcher:     fetcher,
		pool:        utils.NewWorkerPool(maxConcurrency),
		logger:      logger,
		skipFailed:  skipFailed,
		reportEvery: 5 * time.Second,
	}
}

// FetchAll returns one DetailedListing per input listing, in completion
// order rather than input order.
func (d *DetailFetcher) FetchAll(ctx context.Context, listings []models.RawListing) ([]models.DetailedListing, error) {
	parent := ctx
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var (
		mu       sync.Mutex
		result   = make([]models.DetailedListing, 0, len(listings))
		firstErr error
		failed   int
	)

	d.logger.Info("[details] Fetching %d detail pages with %d workers", len(listings), d.pool.Size())
	stopProgress := d.reportProgress(ctx, len(listings), func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(result) + failed
	})
	defer stopProgress()

	for _, listing := range listings {
		l := listing
		submitted := d.pool.Submit(ctx, func() {
			detailed, err := d.fetchOne(ctx, l)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failed++
				observability.DetailFetches.WithLabelValues("error").Inc()
				if d.skipFailed {
					d.logger.Warn("[details] Skipping %s: %v", l.URL, err)
					return
				}
				if firstErr == nil {
					firstErr = err
					cancel()
				}
				return
			}
			observability.DetailFetches.WithLabelValues("ok").Inc()
			result = append(result, detailed)
		})
		if !submitted {
			break
		}
	}
	d.pool.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := parent.Err(); err != nil {
		return nil, err
	}

	d.logger.Info("[details] Fetched %d/%d detail pages (%d skipped)", len(result), len(listings), failed)
	return result, nil
}

func (d *DetailFetcher) fetchOne(ctx context.Context, listing models.RawListing) (models.DetailedListing, error) {
	body, err := d.fetcher.Fetch(ctx, listing.URL)
	if err != nil {
		return models.DetailedListing{}, err
	}

	doc, err := scraper.ParseDocument(listing.URL, body)
	if err != nil {
		return models.DetailedListing{}, err
	}

	details := scraper.SelectText(doc, essentialsSelector)
	d.logger.Debug("[details] %s: %d details", listing.URL, len(details))

	return models.DetailedListing{RawListing: listing, Details: details}, nil
}

// reportProgress logs "done/total" periodically until the returned stop
// function is called.
func (d *DetailFetcher) reportProgress(ctx context.Context, total int, done func() int) func() {
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(d.reportEvery)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.logger.Info("[details] %d/%d", done(), total)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	return func() {
		close(stop)
		wg.Wait()
	}
}
