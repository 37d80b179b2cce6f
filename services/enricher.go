package services

import (
	"regexp"
	"strings"
	"time"

	"github.com/arjunmathur/auto-auction-scraper/models"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

var (
	// mileageRegexp captures odometer figures such as "32,500 miles",
	// "62k Miles", "4x,xxx Indicated Miles" or "12k-miles".
	mileageRegexp = regexp.MustCompile(`(?i)([\dxk,]+)(?: \w+)?[ -]miles`)

	mileageReplacer = strings.NewReplacer("k", "000", ",", "", "x", "0")
)

// modelRules is evaluated in order; the first rule with a matching keyword wins.
var modelRules = []struct {
	keywords []string
	model    models.Model
}{
	{[]string{"cabriolet"}, models.ModelCabriolet},
	{[]string{"targa"}, models.ModelTarga},
	{[]string{"2s", "carrera s"}, models.ModelC2S},
	{[]string{"4s"}, models.ModelC4S},
	{[]string{"turbo"}, models.ModelTurbo},
	{[]string{"carrera 4"}, models.ModelC4},
}

var (
	manualKeywords    = []string{"6-speed", "6 speed", "six-speed"}
	tiptronicKeywords = []string{"tiptronic", "automatic"}
)

// Enricher derives model, transmission, mileage and sale date from the
// free text of detailed listings. It performs no I/O.
type Enricher struct {
	logger *utils.Logger
}

// NewEnricher creates an Enricher with the given logger.
func NewEnricher(logger *utils.Logger) *Enricher {
	return &Enricher{logger: logger}
}

// Enrich maps every detailed listing to its enriched form, preserving order.
func (e *Enricher) Enrich(listings []models.DetailedListing) []models.EnrichedListing {
	result := make([]models.EnrichedListing, 0, len(listings))
	unknownMileage := 0

	for _, l := range listings {
		enriched := enrichListing(l)
		if enriched.Mileage == "" {
			unknownMileage++
			e.logger.Debug("[enricher] No mileage found: %s", l.URL)
		}
		result = append(result, enriched)
	}

	e.logger.Info("[enricher] Enriched %d listings (%d without mileage)", len(result), unknownMileage)
	return result
}

func enrichListing(l models.DetailedListing) models.EnrichedListing {
	model := classifyModel(l.Title)
	date := saleDate(l.Timestamp)

	details := make([]string, len(l.Details))
	copy(details, l.Details)

	return models.EnrichedListing{
		Title:        l.Title,
		URL:          l.URL,
		Sold:         l.Sold,
		Details:      details,
		Model:        model,
		Transmission: classifyTransmission(l.Title, l.Details, model),
		Mileage:      extractMileage(l.Title, l.Details),
		Date:         date.Format("2006-01-02"),
		Year:         date.Year(),
		Amount:       l.Amount.String(),
	}
}

// classifyModel maps a listing title to a 993 variant.
func classifyModel(title string) models.Model {
	title = strings.ToLower(title)
	for _, rule := range modelRules {
		if containsAny(title, rule.keywords) {
			return rule.model
		}
	}
	return models.ModelC2
}

// classifyTransmission looks for explicit gearbox keywords in the title and
// details, falling back to the gearbox most variants were sold with.
func classifyTransmission(title string, details []string, model models.Model) models.Transmission {
	info := make([]string, 0, len(details)+1)
	info = append(info, strings.ToLower(title))
	for _, d := range details {
		info = append(info, strings.ToLower(d))
	}

	for _, text := range info {
		if containsAny(text, manualKeywords) {
			return models.TransmissionManual
		}
	}
	for _, text := range info {
		if containsAny(text, tiptronicKeywords) {
			return models.TransmissionTiptronic
		}
	}

	switch model {
	case models.ModelC2S, models.ModelC4S, models.ModelTurbo:
		return models.TransmissionManual
	default:
		return models.TransmissionTiptronic
	}
}

// extractMileage returns the first odometer figure found in the title or
// details, normalised to plain digits. Empty means unknown.
func extractMileage(title string, details []string) string {
	for _, text := range append([]string{title}, details...) {
		match := mileageRegexp.FindStringSubmatch(text)
		if len(match) >= 2 {
			return parseMileageNumber(match[1])
		}
	}
	return ""
}

// parseMileageNumber normalises "62k" to "62000", "1,234" to "1234" and
// placeholder digits like "4x,xxx" to "40000".
func parseMileageNumber(num string) string {
	return mileageReplacer.Replace(strings.ToLower(num))
}

// saleDate converts epoch seconds to a calendar date in UTC.
func saleDate(timestamp int64) time.Time {
	return time.Unix(timestamp, 0).UTC()
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
