package world

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGraph is a small diamond with a long bypass:
//
//	0 --1-- 1 --1-- 3
//	 \             /
//	  2---- 2 ----2
func testGraph() *Graph {
	return &Graph{
		Nodes: []Node{
			{ID: 0, Name: "A", Type: NodeDistrictCenter},
			{ID: 1, Name: "B", Type: NodeResidential},
			{ID: 2, Name: "C", Type: NodeCommercial},
			{ID: 3, Name: "D", Type: NodeResidential},
		},
		Edges: []Edge{
			{From: 0, To: 1, Distance: 1, Type: "road"},
			{From: 1, To: 3, Distance: 1, Type: "road"},
			{From: 0, To: 2, Distance: 2, Type: "highway"},
			{From: 2, To: 3, Distance: 2, Type: "highway"},
		},
	}
}

func TestShortestPathPicksCheapestRoute(t *testing.T) {
	g := testGraph()
	adj := BuildAdjacency(g.Nodes, g.Edges)

	path := ShortestPath(adj, 0, 3, true)
	require.Equal(t, []int{0, 1, 3}, path)
	assert.Equal(t, 2.0, PathCost(adj, path))
}

func TestShortestPathAvoidsBlockedEdges(t *testing.T) {
	g := testGraph()
	g.Edges[0].Blocked = true // 0-1 out
	adj := BuildAdjacency(g.Nodes, g.Edges)

	path := ShortestPath(adj, 0, 3, true)
	require.Equal(t, []int{0, 2, 3}, path)
	assert.Equal(t, 4.0, PathCost(adj, path))
}

func TestShortestPathFallsBackThroughBlockedEdges(t *testing.T) {
	g := testGraph()
	for i := range g.Edges {
		g.Edges[i].Blocked = true
	}
	adj := BuildAdjacency(g.Nodes, g.Edges)

	assert.Nil(t, ShortestPath(adj, 0, 3, true))

	// Ignoring blocking still finds the geometric optimum.
	path := ShortestPath(adj, 0, 3, false)
	require.Equal(t, []int{0, 1, 3}, path)
}

func TestShortestPathEdgeCases(t *testing.T) {
	g := testGraph()
	adj := BuildAdjacency(g.Nodes, g.Edges)

	assert.Equal(t, []int{2}, ShortestPath(adj, 2, 2, true))
	assert.Nil(t, ShortestPath(adj, 99, 3, true))
	assert.Nil(t, ShortestPath(adj, 0, 99, true))
}

func TestPathCostRejectsMissingHop(t *testing.T) {
	g := testGraph()
	adj := BuildAdjacency(g.Nodes, g.Edges)

	assert.Equal(t, -1.0, PathCost(adj, []int{0, 3}))
	assert.Equal(t, 0.0, PathCost(adj, []int{0}))
	assert.Equal(t, 0.0, PathCost(adj, nil))
}

func TestBuildAdjacencyIsBidirectional(t *testing.T) {
	g := testGraph()
	adj := BuildAdjacency(g.Nodes, g.Edges)

	forward, backward := false, false
	for _, arc := range adj[0] {
		if arc.To == 1 {
			forward = true
		}
	}
	for _, arc := range adj[1] {
		if arc.To == 0 {
			backward = true
		}
	}
	assert.True(t, forward)
	assert.True(t, backward)
}

func TestKarachiGraphShape(t *testing.T) {
	g := Karachi()

	require.Len(t, g.Nodes, 27)
	require.Len(t, g.Edges, 32)

	// IDs are dense and positional.
	for i, n := range g.Nodes {
		assert.Equal(t, i, n.ID)
		require.NotEmpty(t, n.Vulnerability, "node %d", n.ID)
	}

	center := g.Nodes[CommandCenter]
	assert.Equal(t, NodePublicService, center.Type)
	assert.Contains(t, center.Name, "PDMA")

	// Every node is reachable from the command center on the unblocked graph.
	adj := BuildAdjacency(g.Nodes, g.Edges)
	for _, n := range g.Nodes {
		assert.NotNil(t, ShortestPath(adj, CommandCenter, n.ID, true), "node %d unreachable", n.ID)
	}
}

func TestKarachiReturnsIndependentCopies(t *testing.T) {
	a := Karachi()
	b := Karachi()

	a.Edges[0].Blocked = true
	a.Nodes[0].Vulnerability["earthquake"] = 99

	assert.False(t, b.Edges[0].Blocked)
	assert.NotEqual(t, 99.0, b.Nodes[0].Vulnerability["earthquake"])
}

func TestCloneIsDeep(t *testing.T) {
	g := Karachi()
	c := g.Clone()

	c.Edges[0].Blocked = true
	c.Nodes[0].Vulnerability["flood"] = 42

	assert.False(t, g.Edges[0].Blocked)
	assert.NotEqual(t, 42.0, g.Nodes[0].Vulnerability["flood"])
}

func TestGridTextMarksAffectedAndBlocked(t *testing.T) {
	g := testGraph()
	g.Edges[2].Blocked = true

	text := GridText(g.Nodes, g.Edges, []int{1})

	assert.Contains(t, text, "1: B (residential) - Pop: 0, Status: Affected")
	assert.Contains(t, text, "0: A (district_center) - Pop: 0, Status: Normal")
	assert.Contains(t, text, "A -> C (highway, 2.0km) - Blocked")
	assert.True(t, strings.Contains(text, "A -> B (road, 1.0km) - Open"))
}
