package services

import (
	"testing"

	"github.com/arjunmathur/auto-auction-scraper/models"
)

func sampleListings() []models.EnrichedListing {
	return []models.EnrichedListing{
		{Title: "1996 Porsche 911 Turbo", Sold: true, Model: models.ModelTurbo, Transmission: models.TransmissionManual, Mileage: "62000", Year: 2019},
		{Title: "1995 Porsche 911 Carrera", Sold: true, Model: models.ModelC2, Transmission: models.TransmissionTiptronic, Mileage: "98000", Year: 2019},
		{Title: "1998 Porsche 911 Carrera S", Sold: false, Model: models.ModelC2S, Transmission: models.TransmissionManual, Mileage: "", Year: 2020},
		{Title: "1997 Porsche 911 Carrera 4S", Sold: true, Model: models.ModelC4S, Transmission: models.TransmissionManual, Mileage: "21000", Year: 2021},
		{Title: "1995 Porsche 911 Cabriolet", Sold: false, Model: models.ModelC2, Transmission: models.TransmissionManual, Mileage: "abc", Year: 2021},
	}
}

func TestSummaryCounts(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleListings())
	if r.TotalListings != 5 {
		t.Errorf("TotalListings: got %d, want 5", r.TotalListings)
	}
	if r.SoldListings != 3 {
		t.Errorf("SoldListings: got %d, want 3", r.SoldListings)
	}
	if r.ByModel[models.ModelC2] != 2 {
		t.Errorf("c2 count: got %d, want 2", r.ByModel[models.ModelC2])
	}
	if r.ByTransmission[models.TransmissionManual] != 4 {
		t.Errorf("manual count: got %d, want 4", r.ByTransmission[models.TransmissionManual])
	}
	if r.ByYear[2019] != 2 || r.ByYear[2021] != 2 {
		t.Errorf("year counts: got %v", r.ByYear)
	}
}

func TestSummaryMileage(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(sampleListings())

	if r.WithMileage != 3 {
		t.Errorf("WithMileage: got %d, want 3", r.WithMileage)
	}
	if r.AverageMileage != 60333.33 {
		t.Errorf("AverageMileage: got %.2f, want 60333.33", r.AverageMileage)
	}
	if r.LowestMileage == nil || r.LowestMileage.Title != "1997 Porsche 911 Carrera 4S" {
		t.Errorf("LowestMileage: got %+v", r.LowestMileage)
	}
	if r.HighestMileage == nil || r.HighestMileage.Title != "1995 Porsche 911 Carrera" {
		t.Errorf("HighestMileage: got %+v", r.HighestMileage)
	}
}

func TestSummaryEmptyInput(t *testing.T) {
	svc := NewSummaryService(newTestLogger())
	r := svc.Generate(nil)
	if r.TotalListings != 0 {
		t.Errorf("expected 0 total listings for empty input")
	}
	if r.LowestMileage != nil || r.HighestMileage != nil {
		t.Errorf("expected no mileage extremes for empty input")
	}
}

func TestStringCountsOrdering(t *testing.T) {
	got := stringCounts(map[models.Model]int{
		models.ModelTurbo: 1,
		models.ModelC2:    3,
		models.ModelC2S:   1,
	})
	want := []string{"c2", "c2s", "turbo"}
	for i, lc := range got {
		if lc.label != want[i] {
			t.Errorf("counts[%d] = %q; want %q", i, lc.label, want[i])
		}
	}
}
