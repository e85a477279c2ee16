// Package stats computes descriptive statistics over stay sequences.
// A low venue entropy means a routine-bound user whose next location is
// easy to guess; high entropy means an explorer.
package stats

import (
	"math"
	"sort"

	"github.com/nextloc/nextloc-go/internal/models"
)

// ShannonEntropy calculates the Shannon entropy of a frequency distribution
// in bits (log base 2). Values are normalized to probabilities first.
func ShannonEntropy(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	if sum == 0 {
		return 0
	}

	var entropy float64
	for _, v := range values {
		if v > 0 {
			p := v / sum
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// NormalizedEntropy divides the Shannon entropy by log2(n) so that 0 means
// a single venue and 1 means a uniform spread over all venues.
func NormalizedEntropy(values []float64) float64 {
	if len(values) <= 1 {
		return 0
	}
	maxEntropy := math.Log2(float64(len(values)))
	if maxEntropy == 0 {
		return 0
	}
	return ShannonEntropy(values) / maxEntropy
}

// MobilitySummary describes one stay sequence.
type MobilitySummary struct {
	StayCount        int     `json:"stay_count"`
	UniqueVenues     int     `json:"unique_venues"`
	UniqueCategories int     `json:"unique_categories"`
	VenueEntropy     float64 `json:"venue_entropy"`
	NormalizedVenue  float64 `json:"venue_entropy_normalized"`
	TopVenueShare    float64 `json:"top_venue_share"`
	PeakHour         int     `json:"peak_hour"`
}

// Summarize computes the mobility summary of a stay sequence. The zero
// summary is returned for an empty sequence.
func Summarize(stays []models.Stay) MobilitySummary {
	if len(stays) == 0 {
		return MobilitySummary{}
	}

	venueCounts := make(map[string]int)
	categories := make(map[string]struct{})
	var hourCounts [24]int
	for _, s := range stays {
		venueCounts[s.VenueID]++
		categories[s.Category] = struct{}{}
		if s.Hour >= 0 && s.Hour < 24 {
			hourCounts[s.Hour]++
		}
	}

	counts := make([]float64, 0, len(venueCounts))
	topCount := 0
	for _, c := range venueCounts {
		counts = append(counts, float64(c))
		if c > topCount {
			topCount = c
		}
	}
	// Map iteration order does not affect entropy, but sort anyway so the
	// distribution is reproducible in debug dumps.
	sort.Sort(sort.Reverse(sort.Float64Slice(counts)))

	peakHour := 0
	for h, c := range hourCounts {
		if c > hourCounts[peakHour] {
			peakHour = h
		}
	}

	return MobilitySummary{
		StayCount:        len(stays),
		UniqueVenues:     len(venueCounts),
		UniqueCategories: len(categories),
		VenueEntropy:     round4(ShannonEntropy(counts)),
		NormalizedVenue:  round4(NormalizedEntropy(counts)),
		TopVenueShare:    round4(float64(topCount) / float64(len(stays))),
		PeakHour:         peakHour,
	}
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
