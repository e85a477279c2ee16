package memory

import (
	"sort"
	"strconv"
	"strings"
)

// counter tallies string keys while remembering first-appearance order, so
// equal counts rank in the order the keys were first observed.
type counter struct {
	counts map[string]int
	order  []string
}

type countEntry struct {
	key   string
	count int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if _, seen := c.counts[key]; !seen {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

// top returns up to k entries sorted by descending count; k <= 0 returns
// all entries.
func (c *counter) top(k int) []countEntry {
	entries := make([]countEntry, 0, len(c.order))
	for _, key := range c.order {
		entries = append(entries, countEntry{key: key, count: c.counts[key]})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].count > entries[j].count
	})
	if k > 0 && len(entries) > k {
		entries = entries[:k]
	}
	return entries
}

func hourKey(hour int) string { return strconv.Itoa(hour) }

func hourKeyValue(key string) int {
	n, _ := strconv.Atoi(key)
	return n
}

func splitTransition(key string) (from, to string) {
	from, to, _ = strings.Cut(key, " -> ")
	return from, to
}
