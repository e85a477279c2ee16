// Package social builds and queries the collective mobility graph: a
// directed, weighted venue-transition graph aggregated over all users'
// histories, used as the "other people who were here went there" knowledge
// source.
package social

import (
	"github.com/nextloc/nextloc-go/internal/dataset"
	"github.com/nextloc/nextloc-go/internal/models"
)

// NodeAttrs are the venue attributes recorded on graph nodes.
type NodeAttrs struct {
	Category    string
	Admin       string
	Subdistrict string
	POI         string
	Street      string
}

type edge struct {
	dst    string
	weight int
}

// Graph is a directed weighted venue-transition graph. Adjacency lists keep
// insertion order: neighbor retrieval order is part of the contract, and a
// map-backed adjacency would randomize it.
type Graph struct {
	nodes     map[string]*NodeAttrs
	nodeOrder []string
	adj       map[string][]edge
	edgeIndex map[string]map[string]int // src -> dst -> index into adj[src]
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:     make(map[string]*NodeAttrs),
		adj:       make(map[string][]edge),
		edgeIndex: make(map[string]map[string]int),
	}
}

// SetNode records venue attributes, overwriting any previous attributes for
// the same venue. Datasets occasionally disagree about a venue's address
// between users; the last writer wins and no consistency check is made.
func (g *Graph) SetNode(venueID string, attrs NodeAttrs) {
	if _, ok := g.nodes[venueID]; !ok {
		g.nodeOrder = append(g.nodeOrder, venueID)
	}
	g.nodes[venueID] = &attrs
}

// ensureNode registers a venue with empty attributes if it is unknown.
func (g *Graph) ensureNode(venueID string) {
	if _, ok := g.nodes[venueID]; !ok {
		g.nodeOrder = append(g.nodeOrder, venueID)
		g.nodes[venueID] = &NodeAttrs{}
	}
}

// AddTransition adds one observed src→dst transition. Repeated transitions
// aggregate into a single edge whose weight is the observation count.
func (g *Graph) AddTransition(src, dst string) {
	g.addWeighted(src, dst, 1)
}

func (g *Graph) addWeighted(src, dst string, w int) {
	g.ensureNode(src)
	g.ensureNode(dst)
	if g.edgeIndex[src] == nil {
		g.edgeIndex[src] = make(map[string]int)
	}
	if i, ok := g.edgeIndex[src][dst]; ok {
		g.adj[src][i].weight += w
		return
	}
	g.edgeIndex[src][dst] = len(g.adj[src])
	g.adj[src] = append(g.adj[src], edge{dst: dst, weight: w})
}

// HasNode reports whether a venue is present in the graph.
func (g *Graph) HasNode(venueID string) bool {
	_, ok := g.nodes[venueID]
	return ok
}

// Node returns a venue's recorded attributes.
func (g *Graph) Node(venueID string) (NodeAttrs, bool) {
	n, ok := g.nodes[venueID]
	if !ok {
		return NodeAttrs{}, false
	}
	return *n, true
}

// NodeCount returns the number of venues in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of distinct (src,dst) edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, es := range g.adj {
		n += len(es)
	}
	return n
}

// Edge returns the weight of the (src,dst) edge, if present.
func (g *Graph) Edge(src, dst string) (int, bool) {
	i, ok := g.edgeIndex[src][dst]
	if !ok {
		return 0, false
	}
	return g.adj[src][i].weight, true
}

// Neighbor is one retrieved venue with its hop distance from the source.
type Neighbor struct {
	VenueID  string
	Distance int
}

// RetrieveNeighbors returns venues reachable from venueID within k hops,
// excluding the given venue ids. Results carry hop distances in [1,k],
// ordered by ascending distance with ties in discovery order. An unknown
// source yields an empty result; this call never fails.
func (g *Graph) RetrieveNeighbors(venueID string, exclude []string, k int) []Neighbor {
	if k < 1 {
		return nil
	}
	if _, ok := g.nodes[venueID]; !ok {
		return nil
	}

	skip := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		skip[id] = true
	}

	if k == 1 {
		var out []Neighbor
		for _, e := range g.adj[venueID] {
			if skip[e.dst] {
				continue
			}
			out = append(out, Neighbor{VenueID: e.dst, Distance: 1})
		}
		return out
	}

	// Bounded BFS with cutoff k. Dequeue order is already non-decreasing
	// in distance, so appending as nodes are discovered keeps the result
	// sorted with ties in discovery order. Excluded venues are filtered
	// from the result but still traversed through.
	type item struct {
		id   string
		dist int
	}
	visited := map[string]bool{venueID: true}
	queue := []item{{id: venueID, dist: 0}}
	var out []Neighbor
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.dist >= k {
			continue
		}
		for _, e := range g.adj[cur.id] {
			if visited[e.dst] {
				continue
			}
			visited[e.dst] = true
			d := cur.dist + 1
			if !skip[e.dst] {
				out = append(out, Neighbor{VenueID: e.dst, Distance: d})
			}
			queue = append(queue, item{id: e.dst, dist: d})
		}
	}
	return out
}

// Build constructs the transition graph from a city's generated dataset.
// Only each user's first trajectory contributes, and only its long-form
// historical stays: context segments are prediction inputs, not collective
// knowledge.
func Build(ds *dataset.Dataset) *Graph {
	g := NewGraph()
	for _, user := range ds.Users() {
		_, traj, ok := ds.FirstTrajectory(user)
		if !ok {
			continue
		}
		stays := traj.HistoricalStaysLong
		for _, s := range stays {
			g.SetNode(s.VenueID, attrsFromStay(s))
		}
		for i := 0; i+1 < len(stays); i++ {
			g.AddTransition(stays[i].VenueID, stays[i+1].VenueID)
		}
	}
	return g
}

func attrsFromStay(s models.Stay) NodeAttrs {
	return NodeAttrs{
		Category:    s.Category,
		Admin:       s.Admin,
		Subdistrict: s.Subdistrict,
		POI:         s.POI,
		Street:      s.Street,
	}
}
