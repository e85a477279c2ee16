package memory

import (
	"sort"

	"github.com/nextloc/nextloc-go/internal/models"
)

const (
	// DefaultLens is how many trailing historical stays feed long-term
	// statistics. A lens of zero means the full history is used.
	DefaultLens = 15

	// defaultStrCap bounds the rendered long-term narrative when the lens
	// is unbounded.
	defaultStrCap = 1000

	topK = 5
)

// Unit summarizes one user's mobility into long-term statistics over
// historical stays and short-term state over context stays. The two sides
// never mix: historical stays feed LongTerm only, context stays feed
// ShortTerm only.
type Unit struct {
	LongTerm  LongTerm
	ShortTerm ShortTerm

	lens   int
	strCap int
}

type HourCount struct {
	Hour  int
	Count int
}

type CategoryCount struct {
	Category string
	Count    int
}

// HourCategory is the single most visited category within one hour slot.
type HourCategory struct {
	Hour     int
	Category string
	Count    int
}

// TransitionCount counts one observed category-to-category move.
type TransitionCount struct {
	From  string
	To    string
	Count int
}

type LongTerm struct {
	// VenueNames maps venue id to category name; venueOrder preserves
	// first-seen order for deterministic rendering. Duplicate ids keep
	// their original position but the name is overwritten.
	VenueNames map[string]string
	venueOrder []string

	TopHours       []HourCount
	TopCategories  []CategoryCount
	HourlyDominant []HourCategory
	Transitions    []TransitionCount
}

type Visit struct {
	Hour     int
	Location string
	VenueID  string
}

type LastVisit struct {
	Hour     int
	Weekday  string
	Location string
	VenueID  string
}

type ShortTerm struct {
	// LastVisit is literally the final context stay; each stay overwrites
	// the previous one as the loop advances.
	LastVisit    LastVisit
	HasLastVisit bool

	FrequentLocations map[string]int
	locationOrder     []string

	// WeekdayVisits keeps, per weekday, every context visit in input order.
	WeekdayVisits map[string][]Visit
	weekdayOrder  []string
}

// New builds a memory unit from a user's historical and context stays.
// Only the trailing lens historical stays are summarized; lens 0 keeps the
// whole history and enables narrative compression on read.
func New(knownStays, contextStays []models.Stay, lens int) *Unit {
	u := &Unit{lens: lens, strCap: defaultStrCap}

	trimmed := knownStays
	if lens > 0 && len(knownStays) > lens {
		trimmed = knownStays[len(knownStays)-lens:]
	}
	u.write(trimmed, contextStays)
	return u
}

func (u *Unit) write(knownStays, contextStays []models.Stay) {
	lt := LongTerm{VenueNames: make(map[string]string)}

	for _, s := range knownStays {
		if _, seen := lt.VenueNames[s.VenueID]; !seen {
			lt.venueOrder = append(lt.venueOrder, s.VenueID)
		}
		lt.VenueNames[s.VenueID] = s.Category
	}

	hourCounts := newCounter()
	categoryCounts := newCounter()
	transitionCounts := newCounter()
	hourCategory := make(map[int]map[string]int)

	for i, s := range knownStays {
		hourCounts.add(hourKey(s.Hour))
		categoryCounts.add(s.Category)

		if hourCategory[s.Hour] == nil {
			hourCategory[s.Hour] = make(map[string]int)
		}
		hourCategory[s.Hour][s.Category]++

		if i+1 < len(knownStays) {
			transitionCounts.add(s.Category + " -> " + knownStays[i+1].Category)
		}
	}

	for _, e := range hourCounts.top(topK) {
		lt.TopHours = append(lt.TopHours, HourCount{Hour: hourKeyValue(e.key), Count: e.count})
	}
	for _, e := range categoryCounts.top(topK) {
		lt.TopCategories = append(lt.TopCategories, CategoryCount{Category: e.key, Count: e.count})
	}
	for _, e := range transitionCounts.top(0) {
		from, to := splitTransition(e.key)
		lt.Transitions = append(lt.Transitions, TransitionCount{From: from, To: to, Count: e.count})
	}

	hours := make([]int, 0, len(hourCategory))
	for h := range hourCategory {
		hours = append(hours, h)
	}
	sort.Ints(hours)
	for _, h := range hours {
		lt.HourlyDominant = append(lt.HourlyDominant, dominantCategory(h, hourCategory[h]))
	}

	st := ShortTerm{
		FrequentLocations: make(map[string]int),
		WeekdayVisits:     make(map[string][]Visit),
	}
	for _, s := range contextStays {
		st.LastVisit = LastVisit{Hour: s.Hour, Weekday: s.Weekday, Location: s.Category, VenueID: s.VenueID}
		st.HasLastVisit = true

		if _, seen := st.FrequentLocations[s.Category]; !seen {
			st.locationOrder = append(st.locationOrder, s.Category)
		}
		st.FrequentLocations[s.Category]++

		if _, seen := st.WeekdayVisits[s.Weekday]; !seen {
			st.weekdayOrder = append(st.weekdayOrder, s.Weekday)
		}
		st.WeekdayVisits[s.Weekday] = append(st.WeekdayVisits[s.Weekday], Visit{
			Hour: s.Hour, Location: s.Category, VenueID: s.VenueID,
		})
	}

	u.LongTerm = lt
	u.ShortTerm = st
}

// Readout is the prompt-ready view of a memory unit.
type Readout struct {
	HistoricalInfo string
	ContextInfo    string
	UserProfile    string
	TargetStay     models.TargetStay
}

// Read renders the unit for prompt composition. With an unbounded lens the
// long-term narrative may be compressed to keep prompts within budget.
func (u *Unit) Read(userID string, target models.TargetStay) Readout {
	historical := u.LongTerm.narrative()
	if u.lens == 0 {
		if compressed, ok := u.Compress(historical); ok {
			historical = compressed
		}
	}
	return Readout{
		HistoricalInfo: historical,
		ContextInfo:    u.ShortTerm.narrative(),
		UserProfile:    u.profile(),
		TargetStay:     target,
	}
}

// Compress shortens a narrative that has grown to at least twice the string
// cap by keeping its head and tail around a separator. The second return is
// false when no compression was needed.
func (u *Unit) Compress(narrative string) (string, bool) {
	if len(narrative) < u.strCap*2 {
		return narrative, false
	}
	return narrative[:u.strCap] + "\n......\n" + narrative[len(narrative)-u.strCap:], true
}

// dominantCategory picks the most visited category for one hour slot, ties
// broken by category name so repeated builds agree.
func dominantCategory(hour int, counts map[string]int) HourCategory {
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	best := HourCategory{Hour: hour}
	for _, name := range names {
		if counts[name] > best.Count {
			best.Category = name
			best.Count = counts[name]
		}
	}
	return best
}
