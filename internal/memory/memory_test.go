package memory

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nextloc/nextloc-go/internal/models"
)

func stay(hour int, weekday, category, venueID string) models.Stay {
	return models.Stay{Hour: hour, Weekday: weekday, Category: category, VenueID: venueID}
}

func TestTopHoursCitedWithCounts(t *testing.T) {
	known := []models.Stay{
		stay(9, "Monday", "Cafe", "v1"),
		stay(9, "Tuesday", "Office", "v2"),
		stay(18, "Wednesday", "Gym / Fitness Center", "v3"),
		stay(12, "Thursday", "Cafe", "v1"),
		stay(14, "Friday", "Park", "v4"),
		stay(20, "Saturday", "Bar", "v5"),
	}
	u := New(known, nil, DefaultLens)
	out := u.Read("u1", models.TargetStay{Hour: 10, Weekday: "Sunday"})

	assert.Contains(t, out.HistoricalInfo, "9 (2 times)")
	assert.Contains(t, out.HistoricalInfo, "Cafe (2 times)")
}

func TestLongTermTopFiveBounded(t *testing.T) {
	var known []models.Stay
	for h := 0; h < 8; h++ {
		known = append(known, stay(h, "Monday", "Cafe", "v1"))
	}
	u := New(known, nil, DefaultLens)

	assert.Len(t, u.LongTerm.TopHours, 5)
}

func TestTransitionsExcludeLastStay(t *testing.T) {
	known := []models.Stay{
		stay(9, "Monday", "Home", "v1"),
		stay(10, "Monday", "Office", "v2"),
		stay(18, "Monday", "Home", "v1"),
	}
	u := New(known, nil, DefaultLens)

	require.Len(t, u.LongTerm.Transitions, 2)
	total := 0
	for _, tr := range u.LongTerm.Transitions {
		total += tr.Count
	}
	assert.Equal(t, 2, total)
}

func TestMemoryLensTrimsHistory(t *testing.T) {
	var known []models.Stay
	for i := 0; i < 10; i++ {
		category := "Old"
		if i >= 8 {
			category = "Recent"
		}
		known = append(known, stay(9, "Monday", category, "v1"))
	}
	u := New(known, nil, 2)

	categories := make([]string, 0, len(u.LongTerm.TopCategories))
	for _, c := range u.LongTerm.TopCategories {
		categories = append(categories, c.Category)
	}
	assert.Equal(t, []string{"Recent"}, categories)
}

func TestZeroLensKeepsFullHistory(t *testing.T) {
	var known []models.Stay
	for i := 0; i < 40; i++ {
		known = append(known, stay(i%24, "Monday", "Cafe", "v1"))
	}
	u := New(known, nil, 0)

	total := 0
	for _, h := range u.LongTerm.TopHours {
		total += h.Count
	}
	// All 40 stays counted, not just a trailing window.
	assert.Greater(t, total, 5)
}

func TestLastVisitIsFinalContextStay(t *testing.T) {
	context := []models.Stay{
		stay(9, "Monday", "Cafe", "v1"),
		stay(18, "Tuesday", "Gym / Fitness Center", "v9"),
	}
	u := New(nil, context, DefaultLens)

	require.True(t, u.ShortTerm.HasLastVisit)
	assert.Equal(t, "v9", u.ShortTerm.LastVisit.VenueID)
	assert.Equal(t, "Tuesday", u.ShortTerm.LastVisit.Weekday)

	out := u.Read("u1", models.TargetStay{})
	assert.Contains(t, out.ContextInfo, "last visit was on Tuesday at 18 to Gym / Fitness Center (ID: v9)")
}

func TestWeekdayVisitsPreserveInputOrder(t *testing.T) {
	context := []models.Stay{
		stay(9, "Monday", "Cafe", "v1"),
		stay(12, "Monday", "Park", "v2"),
		stay(18, "Monday", "Bar", "v3"),
	}
	u := New(nil, context, DefaultLens)

	visits := u.ShortTerm.WeekdayVisits["Monday"]
	require.Len(t, visits, 3)
	assert.Equal(t, []string{"v1", "v2", "v3"}, []string{visits[0].VenueID, visits[1].VenueID, visits[2].VenueID})
}

func TestCompress(t *testing.T) {
	u := New(nil, nil, 0)

	short := strings.Repeat("x", 100)
	got, compressed := u.Compress(short)
	assert.False(t, compressed)
	assert.Equal(t, short, got)

	long := strings.Repeat("a", 1500) + strings.Repeat("b", 1500)
	got, compressed = u.Compress(long)
	require.True(t, compressed)
	assert.Equal(t, 2000+len("\n......\n"), len(got))
	assert.True(t, strings.HasPrefix(got, "a"))
	assert.True(t, strings.HasSuffix(got, "b"))
	assert.Contains(t, got, "\n......\n")
}

func TestCompressionOnlyInUnboundedMode(t *testing.T) {
	var known []models.Stay
	for i := 0; i < 500; i++ {
		known = append(known, stay(i%24, "Monday", "Cafe", fmt.Sprintf("venue-%03d-%s", i, strings.Repeat("v", 16))))
	}

	bounded := New(known, nil, DefaultLens)
	out := bounded.Read("u1", models.TargetStay{})
	assert.NotContains(t, out.HistoricalInfo, "\n......\n")

	unbounded := New(known, nil, 0)
	out = unbounded.Read("u1", models.TargetStay{})
	assert.Contains(t, out.HistoricalInfo, "\n......\n")
}

func TestProfilePhrases(t *testing.T) {
	known := []models.Stay{
		stay(22, "Friday", "Bar", "v1"),
		stay(23, "Friday", "Bar", "v1"),
		stay(9, "Monday", "Gym / Fitness Center", "v2"),
		stay(9, "Wednesday", "Gym / Fitness Center", "v2"),
		stay(9, "Friday", "Gym / Fitness Center", "v2"),
	}
	u := New(known, nil, DefaultLens)
	out := u.Read("u1", models.TargetStay{})

	assert.Contains(t, out.UserProfile, "enjoys nightlife")
	assert.Contains(t, out.UserProfile, "maintains a regular lifestyle")
	assert.Contains(t, out.UserProfile, "is health conscious and regularly visits the gym")
	assert.Contains(t, out.UserProfile, "most active at 9 with 3 visits")
	assert.Contains(t, out.UserProfile, "frequently visit Gym / Fitness Center with 3 visits")
}

func TestProfileFallbackPhrase(t *testing.T) {
	known := []models.Stay{
		stay(3, "Monday", "Library", "v1"),
		stay(4, "Tuesday", "Museum", "v2"),
	}
	u := New(known, nil, DefaultLens)
	out := u.Read("u1", models.TargetStay{})

	assert.Contains(t, out.UserProfile, "has diverse interests")
}

func TestStoreReturnsIdenticalInstance(t *testing.T) {
	s := NewStore()
	builds := 0
	build := func() *Unit {
		builds++
		return New(nil, nil, DefaultLens)
	}

	first := s.GetOrCreate("u1", build)
	second := s.GetOrCreate("u1", build)

	assert.Same(t, first, second)
	assert.Equal(t, 1, builds)
	assert.Equal(t, 1, s.Len())
}
