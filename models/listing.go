package models

import "encoding/json"

// Model is the 993 variant derived from a listing title.
type Model string

const (
	ModelCabriolet Model = "cabriolet"
	ModelTarga     Model = "targa"
	ModelC2S       Model = "c2s"
	ModelC4S       Model = "c4s"
	ModelTurbo     Model = "turbo"
	ModelC4        Model = "c4"
	ModelC2        Model = "c2"
)

// Transmission is the gearbox type derived from the title and details.
type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionTiptronic Transmission = "tiptronic"
)

// RawListing is one auction record as embedded in the results page.
// The JSON tags match the marketplace payload so snapshots stay readable
// by hand.
type RawListing struct {
	Title       string      `json:"title"`
	URL         string      `json:"url"`
	Sold        bool        `json:"sold"`
	Timestamp   int64       `json:"timestamp"`
	TitleSub    string      `json:"titlesub,omitempty"`
	TimestampMs int64       `json:"timestampms,omitempty"`
	Image       string      `json:"image,omitempty"`
	Amount      json.Number `json:"amount,omitempty"`
}

// DetailedListing is a RawListing plus the "listing essentials" texts
// scraped from its own page, in document order.
type DetailedListing struct {
	RawListing
	Details []string `json:"details"`
}

// EnrichedListing is the terminal record written to the export file.
type EnrichedListing struct {
	Title        string
	URL          string
	Sold         bool
	Details      []string
	Model        Model
	Transmission Transmission
	// Mileage is a numeric string; empty means unknown, not zero.
	Mileage      string
	Date         string
	Year         int
	Amount       string
}

// SummaryReport holds aggregate figures over the enriched dataset.
type SummaryReport struct {
	TotalListings  int
	SoldListings   int
	WithMileage    int
	AverageMileage float64
	ByModel        map[Model]int
	ByTransmission map[Transmission]int
	ByYear         map[int]int
	LowestMileage  *EnrichedListing
	HighestMileage *EnrichedListing
}
