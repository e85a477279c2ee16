package social

import (
	"fmt"
	"strings"
)

// World answers k-hop neighbor queries against a city transition graph and
// renders the results as prompt-ready text.
type World struct {
	graph        *Graph
	khop         int
	maxNeighbors int
}

func NewWorld(g *Graph, khop, maxNeighbors int) *World {
	return &World{graph: g, khop: khop, maxNeighbors: maxNeighbors}
}

func (w *World) Graph() *Graph { return w.graph }

// NeighborInfo renders neighbors of venueID reachable within the configured
// hop limit, skipping venues already present in contextIDs. Mode selects how
// much detail each neighbor carries: "all", "category", "address" or "id".
// Collection stops with the entry that reaches the neighbor cap, so a cap of
// n admits n+1 entries.
func (w *World) NeighborInfo(venueID string, contextIDs []string, mode string) string {
	neighbors := w.graph.RetrieveNeighbors(venueID, contextIDs, w.khop)

	hops := make([]int, 0, w.khop)
	byHop := make(map[int][]string)
	count := 0
	for _, n := range neighbors {
		attrs, _ := w.graph.Node(n.VenueID)

		var info string
		switch mode {
		case "category":
			info = attrs.Category
		case "address":
			info = strings.Join([]string{attrs.Street, attrs.POI}, ",")
		case "id":
			info = n.VenueID
		default:
			info = strings.Join([]string{n.VenueID, attrs.Category, attrs.Street, attrs.POI}, ",")
		}

		if _, ok := byHop[n.Distance]; !ok {
			hops = append(hops, n.Distance)
		}
		byHop[n.Distance] = append(byHop[n.Distance], info)

		if count >= w.maxNeighbors {
			break
		}
		count++
	}

	lines := make([]string, 0, len(hops))
	for _, h := range hops {
		lines = append(lines, fmt.Sprintf("%d-hop neighbor places in the social world:\n %s", h, strings.Join(byHop[h], "\n")))
	}
	return strings.Join(lines, "\n")
}
