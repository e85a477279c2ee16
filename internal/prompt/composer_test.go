package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nextloc/nextloc-go/internal/memory"
	"github.com/nextloc/nextloc-go/internal/models"
)

func sampleInputs() Inputs {
	return Inputs{
		Trajectory: &models.Trajectory{
			ContextStays: []models.Stay{
				{Hour: 9, Weekday: "Monday", Category: "Cafe", VenueID: "v1"},
				{Hour: 18, Weekday: "Monday", Category: "Gym / Fitness Center", VenueID: "v2"},
			},
			HistoricalStays: []models.Stay{
				{Hour: 8, Weekday: "Sunday", Category: "Park", VenueID: "h1"},
			},
			TargetStay: models.TargetStay{Hour: 20, Weekday: "Monday"},
		},
		SpatialInfo: "### Names of subdistricts",
		Memory: memory.Readout{
			HistoricalInfo: "In historical stays, the user favours cafes.",
			ContextInfo:    "In recent context Stays, last visit was the gym.",
			UserProfile:    "The user is most active at 9 with 3 visits.",
		},
		SocialInfo: "1-hop neighbor places in the social world:\n v3",
	}
}

func TestComposeFused(t *testing.T) {
	got := Compose(sampleInputs(), TypeAgentMoveV6)

	assert.Contains(t, got, "[9, Monday, Cafe, v1]")
	assert.Contains(t, got, "[18, Monday, Gym / Fitness Center, v2]")
	assert.Contains(t, got, "<personal memory>")
	assert.Contains(t, got, "the user favours cafes")
	assert.Contains(t, got, "last visit was the gym")
	assert.Contains(t, got, "most active at 9")
	assert.Contains(t, got, "<spatial knowledge>")
	assert.Contains(t, got, "### Names of subdistricts")
	assert.Contains(t, got, "<collective knowledge>")
	assert.Contains(t, got, "1-hop neighbor places")
	assert.Contains(t, got, "The target stay happens at hour 20 on Monday.")
	assert.Contains(t, got, `"prediction"`)
	assert.Contains(t, got, `"reason"`)
	assert.True(t, strings.HasSuffix(got, "Do not output other content."))
}

func TestComposeFusedOmitsEmptySocial(t *testing.T) {
	in := sampleInputs()
	in.SocialInfo = ""
	got := Compose(in, TypeAgentMoveV6)
	assert.NotContains(t, got, "<collective knowledge>")
}

func TestComposeFusedExtraSectionsSorted(t *testing.T) {
	in := sampleInputs()
	in.Extra = map[string]string{"zeta": "last", "alpha": "first"}
	got := Compose(in, TypeAgentMoveV6)

	assert.Contains(t, got, "<alpha>\nfirst")
	assert.Contains(t, got, "<zeta>\nlast")
	assert.Less(t, strings.Index(got, "<alpha>"), strings.Index(got, "<zeta>"))
}

func TestComposeZeroShot(t *testing.T) {
	got := Compose(sampleInputs(), TypeZeroShot)

	assert.Contains(t, got, "<history>")
	assert.Contains(t, got, "[8, Sunday, Park, h1]")
	assert.Contains(t, got, "[9, Monday, Cafe, v1]")
	assert.NotContains(t, got, "<personal memory>")
	assert.NotContains(t, got, "<spatial knowledge>")
	assert.NotContains(t, got, "<collective knowledge>")
	assert.Contains(t, got, "The target stay happens at hour 20 on Monday.")
}

func TestComposeUnknownTypeFallsBackToFused(t *testing.T) {
	assert.Equal(t, Compose(sampleInputs(), TypeAgentMoveV6), Compose(sampleInputs(), "mystery"))
}
