package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arjunmathur/auto-auction-scraper/models"
	"github.com/arjunmathur/auto-auction-scraper/utils"
)

type SummaryService struct {
	logger *utils.Logger
}

func NewSummaryService(logger *utils.Logger) *SummaryService {
	return &SummaryService{logger: logger}
}

func (s *SummaryService) Generate(listings []models.EnrichedListing) *models.SummaryReport {
	report := &models.SummaryReport{
		ByModel:        make(map[models.Model]int),
		ByTransmission: make(map[models.Transmission]int),
		ByYear:         make(map[int]int),
	}

	if len(listings) == 0 {
		return report
	}

	report.TotalListings = len(listings)

	var total, lowest, highest int
	for i := range listings {
		l := &listings[i]
		if l.Sold {
			report.SoldListings++
		}
		report.ByModel[l.Model]++
		report.ByTransmission[l.Transmission]++
		report.ByYear[l.Year]++

		miles, err := strconv.Atoi(l.Mileage)
		if l.Mileage == "" || err != nil {
			continue
		}
		report.WithMileage++
		total += miles
		if report.LowestMileage == nil || miles < lowest {
			report.LowestMileage = l
			lowest = miles
		}
		if report.HighestMileage == nil || miles > highest {
			report.HighestMileage = l
			highest = miles
		}
	}

	if report.WithMileage > 0 {
		report.AverageMileage = round2(float64(total) / float64(report.WithMileage))
	}

	s.logger.Debug("[summary] %d listings, %d with known mileage", report.TotalListings, report.WithMileage)

	return report
}

// Report generates and prints the summary for listings.
func (s *SummaryService) Report(listings []models.EnrichedListing) {
	s.Print(s.Generate(listings))
}

func (s *SummaryService) Print(r *models.SummaryReport) {
	sep := strings.Repeat("═", 54)
	thin := strings.Repeat("─", 54)

	fmt.Printf("\n\033[1;35m%s\033[0m\n", sep)
	fmt.Printf("\033[1;35m  📊 PORSCHE 993 AUCTION SUMMARY\033[0m\n")
	fmt.Printf("\033[1;35m%s\033[0m\n\n", sep)

	// Overview
	fmt.Printf("\033[1;33m  Overview\033[0m\n")
	fmt.Printf("  %s\n", thin)
	fmt.Printf("  Total listings : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Printf("  Sold           : \033[1m%d\033[0m\n", r.SoldListings)
	fmt.Printf("  Not sold       : \033[1m%d\033[0m\n", r.TotalListings-r.SoldListings)
	fmt.Println()

	// Mileage
	fmt.Printf("\033[1;33m  Mileage\033[0m\n")
	fmt.Printf("  %s\n", thin)
	if r.WithMileage > 0 {
		fmt.Printf("  Known mileage : \033[1m%d\033[0m of %d\n", r.WithMileage, r.TotalListings)
		fmt.Printf("  Average       : \033[1;32m%.0f mi\033[0m\n", r.AverageMileage)
		fmt.Printf("  Lowest        : %s mi  %s\n", r.LowestMileage.Mileage, truncate(r.LowestMileage.Title, 36))
		fmt.Printf("  Highest       : %s mi  %s\n", r.HighestMileage.Mileage, truncate(r.HighestMileage.Title, 36))
	} else {
		fmt.Printf("  No mileage data available\n")
	}
	fmt.Println()

	fmt.Printf("\033[1;33m  Listings by Model\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(stringCounts(r.ByModel))
	fmt.Println()

	fmt.Printf("\033[1;33m  Listings by Transmission\033[0m\n")
	fmt.Printf("  %s\n", thin)
	printCounts(stringCounts(r.ByTransmission))
	fmt.Println()

	// Years are listed chronologically rather than by count
	fmt.Printf("\033[1;33m  Listings by Year\033[0m\n")
	fmt.Printf("  %s\n", thin)
	years := make([]int, 0, len(r.ByYear))
	for y := range r.ByYear {
		years = append(years, y)
	}
	sort.Ints(years)
	for _, y := range years {
		fmt.Printf("  %-10d %s (%d)\n", y, strings.Repeat("█", r.ByYear[y]), r.ByYear[y])
	}

	fmt.Printf("\n\033[1;35m%s\033[0m\n\n", sep)
}

type labelCount struct {
	label string
	count int
}

func stringCounts[K ~string](m map[K]int) []labelCount {
	counts := make([]labelCount, 0, len(m))
	for k, c := range m {
		counts = append(counts, labelCount{string(k), c})
	}
	sort.Slice(counts, func(i, j int) bool {
		if counts[i].count != counts[j].count {
			return counts[i].count > counts[j].count
		}
		return counts[i].label < counts[j].label
	})
	return counts
}

func printCounts(counts []labelCount) {
	if len(counts) == 0 {
		fmt.Printf("  No data\n")
		return
	}
	for _, lc := range counts {
		fmt.Printf("  %-12s %s (%d)\n", lc.label, strings.Repeat("█", lc.count), lc.count)
	}
}

func round2(f float64) float64 {
	return float64(int(f*100+0.5)) / 100
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
