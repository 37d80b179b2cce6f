// Package bat scrapes Bring a Trailer auction results for a single model.
package bat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/arjunmathur/auto-auction-scraper/models"
	"github.com/arjunmathur/auto-auction-scraper/observability"
	"github.com/arjunmathur/auto-auction-scraper/scraper"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

const (
	chartSelector  = ".chart"
	statsAttribute = "data-stats"
)

// Collector pulls the flat listing set embedded in the model results page.
type Collector struct {
	resultsURL string
	fetcher    scraper.Fetcher
	logger     *utils.Logger
}

// NewCollector creates a Collector for the given results page.
func NewCollector(resultsURL string, fetcher scraper.Fetcher, logger *utils.Logger) *Collector {
	return &Collector{resultsURL: resultsURL, fetcher: fetcher, logger: logger}
}

// Collect fetches the results page and returns sold listings followed by
// unsold ones, each group in page order.
func (c *Collector) Collect(ctx context.Context) ([]models.RawListing, error) {
	c.logger.Info("[collector] Fetching results page %s", c.resultsURL)

	body, err := c.fetcher.Fetch(ctx, c.resultsURL)
	if err != nil {
		return nil, err
	}

	doc, err := scraper.ParseDocument(c.resultsURL, body)
	if err != nil {
		return nil, err
	}

	payload, ok := doc.Find(chartSelector).First().Attr(statsAttribute)
	if !ok {
		return nil, &models.RetrievalError{
			URL: c.resultsURL,
			Err: fmt.Errorf("no %s element with a %s attribute", chartSelector, statsAttribute),
		}
	}

	listings, err := decodeStats(payload)
	if err != nil {
		return nil, &models.ParseError{Source: c.resultsURL, Err: err}
	}

	seen := utils.NewURLSet()
	sold := 0
	for _, l := range listings {
		if !seen.Add(l.URL) {
			c.logger.Warn("[collector] Listing URL appears more than once: %s", l.URL)
		}
		if l.Sold {
			sold++
		}
	}

	observability.ListingsCollected.Add(float64(len(listings)))
	c.logger.Info("[collector] Collected %d listings (%d sold, %d unsold)",
		len(listings), sold, len(listings)-sold)
	return listings, nil
}

// decodeStats splits the chart payload into its "s" (sold) and "u" (unsold)
// groups and flattens them, stamping each record with its group.
func decodeStats(payload string) ([]models.RawListing, error) {
	var groups map[string]json.RawMessage
	if err := json.Unmarshal([]byte(payload), &groups); err != nil {
		return nil, fmt.Errorf("decode stats payload: %w", err)
	}

	sold, err := decodeGroup(groups, "s")
	if err != nil {
		return nil, err
	}
	unsold, err := decodeGroup(groups, "u")
	if err != nil {
		return nil, err
	}

	listings := make([]models.RawListing, 0, len(sold)+len(unsold))
	for _, l := range sold {
		l.Sold = true
		listings = append(listings, l)
	}
	for _, l := range unsold {
		l.Sold = false
		listings = append(listings, l)
	}
	return listings, nil
}

func decodeGroup(groups map[string]json.RawMessage, key string) ([]models.RawListing, error) {
	raw, ok := groups[key]
	if !ok || string(raw) == "null" {
		return nil, errors.New("stats payload missing group " + key)
	}
	var group []models.RawListing
	if err := json.Unmarshal(raw, &group); err != nil {
		return nil, fmt.Errorf("decode group %s: %w", key, err)
	}
	return group, nil
}
