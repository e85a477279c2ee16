// Package prompt composes the final reasoning prompt from the trajectory and
// the three knowledge-module outputs. Compose is a pure function; everything
// it needs arrives in Inputs.
package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nextloc/nextloc-go/internal/memory"
	"github.com/nextloc/nextloc-go/internal/models"
)

// Known prompt types. The fused type combines all three knowledge modules;
// the baseline type uses trajectory data alone.
const (
	TypeAgentMoveV6 = "agent_move_v6"
	TypeZeroShot    = "llm_zero_shot"
)

// Inputs carries everything Compose may use.
type Inputs struct {
	Trajectory  *models.Trajectory
	SpatialInfo string
	Memory      memory.Readout
	SocialInfo  string
	Extra       map[string]string
}

// Compose renders the prompt for the given type. Unknown types fall back to
// the fused prompt.
func Compose(in Inputs, promptType string) string {
	switch promptType {
	case TypeZeroShot:
		return composeZeroShot(in)
	default:
		return composeFused(in)
	}
}

func composeFused(in Inputs) string {
	t := in.Trajectory

	var b strings.Builder
	b.WriteString("Your task is to predict a user's next location based on their activity pattern.\n")
	b.WriteString("Each stay takes the form [hour, weekday, venue category, venue id]. ")
	b.WriteString("Stays are listed in chronological order.\n\n")

	fmt.Fprintf(&b, "<context> The user's recent stays:\n%s\n\n", renderStays(t.ContextStays))

	b.WriteString("<personal memory> Summaries derived from the user's own history:\n")
	fmt.Fprintf(&b, "%s\n%s\n%s\n\n", in.Memory.HistoricalInfo, in.Memory.ContextInfo, in.Memory.UserProfile)

	fmt.Fprintf(&b, "<spatial knowledge> Likely next areas inferred from the trajectory's geography:\n%s\n\n", in.SpatialInfo)

	if in.SocialInfo != "" {
		fmt.Fprintf(&b, "<collective knowledge> Places other users moved to from the same venues:\n%s\n\n", in.SocialInfo)
	}

	extraKeys := make([]string, 0, len(in.Extra))
	for k := range in.Extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		fmt.Fprintf(&b, "<%s>\n%s\n\n", k, in.Extra[k])
	}

	fmt.Fprintf(&b,
		"The target stay happens at hour %d on %s. "+
			"Combine the knowledge above and predict the venue id of the user's next location.\n",
		t.TargetStay.Hour, t.TargetStay.Weekday)
	b.WriteString("Answer with a JSON object containing two keys: " +
		"\"prediction\" (the venue id of the predicted place) and " +
		"\"reason\" (a concise explanation that supports your prediction). " +
		"Do not output other content.")
	return b.String()
}

func composeZeroShot(in Inputs) string {
	t := in.Trajectory

	var b strings.Builder
	b.WriteString("Your task is to predict a user's next location based on their activity pattern.\n")
	b.WriteString("Each stay takes the form [hour, weekday, venue category, venue id]. ")
	b.WriteString("Stays are listed in chronological order.\n\n")

	fmt.Fprintf(&b, "<history> The user's historical stays:\n%s\n\n", renderStays(t.HistoricalStays))
	fmt.Fprintf(&b, "<context> The user's recent stays:\n%s\n\n", renderStays(t.ContextStays))

	fmt.Fprintf(&b,
		"The target stay happens at hour %d on %s. "+
			"Predict the venue id of the user's next location.\n",
		t.TargetStay.Hour, t.TargetStay.Weekday)
	b.WriteString("Answer with a JSON object containing two keys: " +
		"\"prediction\" (the venue id of the predicted place) and " +
		"\"reason\" (a concise explanation that supports your prediction). " +
		"Do not output other content.")
	return b.String()
}

func renderStays(stays []models.Stay) string {
	lines := make([]string, 0, len(stays))
	for _, s := range stays {
		lines = append(lines, fmt.Sprintf("[%d, %s, %s, %s]", s.Hour, s.Weekday, s.Category, s.VenueID))
	}
	return strings.Join(lines, "\n")
}
