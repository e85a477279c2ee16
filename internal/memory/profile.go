package memory

import (
	"fmt"
	"strings"
)

// Insight rules pair a cluster predicate with a fixed phrase. They evaluate
// in table order against the top-5 hour and category sets; every matching
// rule contributes its phrase.
type insightRule struct {
	matches func(hours map[int]bool, categories map[string]bool) bool
	phrase  string
}

func hourCluster(hours ...int) func(map[int]bool, map[string]bool) bool {
	return func(topHours map[int]bool, _ map[string]bool) bool {
		for _, h := range hours {
			if topHours[h] {
				return true
			}
		}
		return false
	}
}

func categoryCluster(categories ...string) func(map[int]bool, map[string]bool) bool {
	return func(_ map[int]bool, topCategories map[string]bool) bool {
		for _, c := range categories {
			if topCategories[c] {
				return true
			}
		}
		return false
	}
}

var insightRules = []insightRule{
	{hourCluster(17, 18, 20), "enjoys evening activities"},
	{hourCluster(8, 9, 17, 18), "maintains a regular lifestyle"},
	{hourCluster(22, 23, 0, 1, 2), "enjoys nightlife"},
	{categoryCluster("Bus Station", "Train Station"), "has a fixed commute"},
	{categoryCluster("Beach", "Park", "Cafe", "Food & Drink Shop", "Restaurant"), "enjoys leisure activities"},
	{categoryCluster("Department Store", "Clothing Store", "Cosmetics Shop"), "frequently shops for clothes and cosmetics"},
	{categoryCluster("Gym / Fitness Center"), "is health conscious and regularly visits the gym"},
	{categoryCluster("Burger Joint", "Thai Restaurant", "Coffee Shop", "Food & Drink Shop"), "enjoys trying different types of food and drinks"},
}

// profile renders a behavioral sketch from the long-term top-5 lists: the
// single busiest hour, the single most visited category, and every cluster
// insight the top-5 sets trigger.
func (u *Unit) profile() string {
	lt := u.LongTerm
	if len(lt.TopHours) == 0 || len(lt.TopCategories) == 0 {
		return ""
	}

	topHour := lt.TopHours[0]
	for _, h := range lt.TopHours[1:] {
		if h.Count > topHour.Count {
			topHour = h
		}
	}
	topCategory := lt.TopCategories[0]
	for _, c := range lt.TopCategories[1:] {
		if c.Count > topCategory.Count {
			topCategory = c
		}
	}

	hourSet := make(map[int]bool, len(lt.TopHours))
	for _, h := range lt.TopHours {
		hourSet[h.Hour] = true
	}
	categorySet := make(map[string]bool, len(lt.TopCategories))
	for _, c := range lt.TopCategories {
		categorySet[c.Category] = true
	}

	var insights []string
	for _, rule := range insightRules {
		if rule.matches(hourSet, categorySet) {
			insights = append(insights, rule.phrase)
		}
	}
	summary := "has diverse interests"
	if len(insights) > 0 {
		summary = strings.Join(insights, ", ")
	}

	return fmt.Sprintf(
		"The user is most active at %d with %d visits. "+
			"They frequently visit %s with %d visits."+
			"Based on the data, the user %s.",
		topHour.Hour, topHour.Count,
		topCategory.Category, topCategory.Count,
		summary,
	)
}
