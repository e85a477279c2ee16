package social

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainGraph(t *testing.T, transitions ...[2]string) *Graph {
	t.Helper()
	g := NewGraph()
	for _, tr := range transitions {
		g.SetNode(tr[0], NodeAttrs{Category: "Cafe"})
		g.SetNode(tr[1], NodeAttrs{Category: "Park"})
		g.AddTransition(tr[0], tr[1])
	}
	return g
}

func TestAddTransitionAggregatesWeight(t *testing.T) {
	g := NewGraph()
	g.AddTransition("a", "b")
	g.AddTransition("a", "b")
	g.AddTransition("a", "c")

	w, ok := g.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 2, w)

	w, ok = g.Edge("a", "c")
	require.True(t, ok)
	assert.Equal(t, 1, w)

	assert.Equal(t, 2, g.EdgeCount())
}

func TestSetNodeLastWriterWins(t *testing.T) {
	g := NewGraph()
	g.SetNode("v", NodeAttrs{Category: "Cafe"})
	g.SetNode("v", NodeAttrs{Category: "Bar"})

	attrs, ok := g.Node("v")
	require.True(t, ok)
	assert.Equal(t, "Bar", attrs.Category)
	assert.Equal(t, 1, g.NodeCount())
}

func TestRetrieveNeighborsUnknownSourceIsEmpty(t *testing.T) {
	g := NewGraph()
	assert.Empty(t, g.RetrieveNeighbors("missing", nil, 1))
}

func TestRetrieveNeighborsOneHopAdjacencyOrder(t *testing.T) {
	g := chainGraph(t, [2]string{"a", "b"}, [2]string{"a", "c"}, [2]string{"a", "d"})

	got := g.RetrieveNeighbors("a", nil, 1)
	require.Len(t, got, 3)
	assert.Equal(t, "b", got[0].VenueID)
	assert.Equal(t, "c", got[1].VenueID)
	assert.Equal(t, "d", got[2].VenueID)
	for _, n := range got {
		assert.Equal(t, 1, n.Distance)
	}
}

func TestRetrieveNeighborsExcludesContext(t *testing.T) {
	g := chainGraph(t, [2]string{"a", "b"}, [2]string{"a", "c"})

	got := g.RetrieveNeighbors("a", []string{"b"}, 1)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].VenueID)
}

func TestRetrieveNeighborsMultiHopDistances(t *testing.T) {
	// a -> b -> c -> d, plus a -> e
	g := chainGraph(t,
		[2]string{"a", "b"}, [2]string{"b", "c"},
		[2]string{"c", "d"}, [2]string{"a", "e"},
	)

	got := g.RetrieveNeighbors("a", nil, 2)
	byID := make(map[string]int)
	for _, n := range got {
		byID[n.VenueID] = n.Distance
	}
	assert.Equal(t, map[string]int{"b": 1, "e": 1, "c": 2}, byID)

	// Ascending distance order.
	for i := 1; i < len(got); i++ {
		assert.LessOrEqual(t, got[i-1].Distance, got[i].Distance)
	}
}

func TestRetrieveNeighborsOneHopSubsetOfTwoHop(t *testing.T) {
	g := chainGraph(t,
		[2]string{"a", "b"}, [2]string{"b", "c"}, [2]string{"a", "d"},
	)

	oneHop := g.RetrieveNeighbors("a", nil, 1)
	twoHop := g.RetrieveNeighbors("a", nil, 2)

	reachable := make(map[string]bool)
	for _, n := range twoHop {
		reachable[n.VenueID] = true
	}
	for _, n := range oneHop {
		assert.True(t, reachable[n.VenueID], "one-hop neighbor %s missing at k=2", n.VenueID)
	}
}

func TestRetrieveNeighborsExcludedNodesStillTraversed(t *testing.T) {
	// b is excluded from results but the path a->b->c must still reach c.
	g := chainGraph(t, [2]string{"a", "b"}, [2]string{"b", "c"})

	got := g.RetrieveNeighbors("a", []string{"b"}, 2)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].VenueID)
	assert.Equal(t, 2, got[0].Distance)
}

func TestEdgeWeightsOrderIndependent(t *testing.T) {
	g1 := NewGraph()
	g1.AddTransition("a", "b")
	g1.AddTransition("c", "d")
	g1.AddTransition("a", "b")

	g2 := NewGraph()
	g2.AddTransition("a", "b")
	g2.AddTransition("a", "b")
	g2.AddTransition("c", "d")

	for _, pair := range [][2]string{{"a", "b"}, {"c", "d"}} {
		w1, _ := g1.Edge(pair[0], pair[1])
		w2, _ := g2.Edge(pair[0], pair[1])
		assert.Equal(t, w1, w2)
	}
}

func TestGMLRoundTrip(t *testing.T) {
	g := NewGraph()
	g.SetNode("v1", NodeAttrs{Category: "Cafe", Admin: "Central", Subdistrict: "Old Town", POI: "Corner Cafe", Street: "Main \"St\""})
	g.SetNode("v2", NodeAttrs{Category: "Park"})
	g.SetNode("v3", NodeAttrs{Category: "Gym / Fitness Center"})
	g.AddTransition("v1", "v2")
	g.AddTransition("v1", "v2")
	g.AddTransition("v2", "v3")

	path := filepath.Join(t.TempDir(), "city_graph.gml")
	require.NoError(t, g.WriteGML(path))

	loaded, err := ReadGML(path)
	require.NoError(t, err)

	assert.Equal(t, g.NodeCount(), loaded.NodeCount())
	assert.Equal(t, g.EdgeCount(), loaded.EdgeCount())

	attrs, ok := loaded.Node("v1")
	require.True(t, ok)
	assert.Equal(t, "Cafe", attrs.Category)
	assert.Equal(t, "Main \"St\"", attrs.Street)

	w, ok := loaded.Edge("v1", "v2")
	require.True(t, ok)
	assert.Equal(t, 2, w)

	// Adjacency order survives the round trip.
	orig := g.RetrieveNeighbors("v1", nil, 1)
	got := loaded.RetrieveNeighbors("v1", nil, 1)
	assert.Equal(t, orig, got)
}

func TestReadGMLMissingFile(t *testing.T) {
	_, err := ReadGML(filepath.Join(t.TempDir(), "nope.gml"))
	assert.Error(t, err)
}
