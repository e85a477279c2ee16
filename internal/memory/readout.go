package memory

import (
	"fmt"
	"strings"
)

func (lt LongTerm) narrative() string {
	mapping := make([]string, 0, len(lt.venueOrder))
	for _, id := range lt.venueOrder {
		mapping = append(mapping, fmt.Sprintf("%s: %s", id, lt.VenueNames[id]))
	}

	hours := make([]string, 0, len(lt.TopHours))
	for _, h := range lt.TopHours {
		hours = append(hours, fmt.Sprintf("%d (%d times)", h.Hour, h.Count))
	}

	categories := make([]string, 0, len(lt.TopCategories))
	for _, c := range lt.TopCategories {
		categories = append(categories, fmt.Sprintf("%s (%d times)", c.Category, c.Count))
	}

	hourly := make([]string, 0, len(lt.HourlyDominant))
	for _, hc := range lt.HourlyDominant {
		hourly = append(hourly, fmt.Sprintf("%d: %s (%d times)", hc.Hour, hc.Category, hc.Count))
	}

	transitions := make([]string, 0, len(lt.Transitions))
	for _, t := range lt.Transitions {
		transitions = append(transitions, fmt.Sprintf("%s -> %s (%d times)", t.From, t.To, t.Count))
	}

	return fmt.Sprintf(
		"place id to name mapping: {%s}. "+
			"In historical stays, The user frequently engages in activities at %s. "+
			"The most frequently visited venues are %s. "+
			"Hourly venue activities include %s. "+
			"The user's activity transitions often include sequences such as %s.",
		strings.Join(mapping, ", "),
		strings.Join(hours, ", "),
		strings.Join(categories, ", "),
		strings.Join(hourly, ", "),
		strings.Join(transitions, ", "),
	)
}

func (st ShortTerm) narrative() string {
	var b strings.Builder

	lv := st.LastVisit
	fmt.Fprintf(&b, "In recent context Stays, User's last visit was on %s at %d to %s (ID: %s). ",
		lv.Weekday, lv.Hour, lv.Location, lv.VenueID)

	locations := make([]string, 0, len(st.locationOrder))
	for _, loc := range st.locationOrder {
		locations = append(locations, fmt.Sprintf("%s (%d times)", loc, st.FrequentLocations[loc]))
	}
	fmt.Fprintf(&b, "Frequently visited locations include: %s. ", strings.Join(locations, ", "))

	days := make([]string, 0, len(st.weekdayOrder))
	for _, day := range st.weekdayOrder {
		visits := make([]string, 0, len(st.WeekdayVisits[day]))
		for _, v := range st.WeekdayVisits[day] {
			visits = append(visits, fmt.Sprintf("%d at %s (ID: %s)", v.Hour, v.Location, v.VenueID))
		}
		days = append(days, fmt.Sprintf("%s: %s", day, strings.Join(visits, ", ")))
	}
	fmt.Fprintf(&b, "Visit times: %s.", strings.Join(days, "; "))

	return b.String()
}
