// Package world holds the static city graph the simulation runs on:
// nodes (districts, hospitals, landmarks), weighted edges (roads), and the
// routing primitives agents use to plan across them.
package world

import (
	"container/heap"
	"fmt"
	"strings"
)

// NodeType classifies a city node.
type NodeType string

const (
	NodeDistrictCenter NodeType = "district_center"
	NodeResidential    NodeType = "residential"
	NodeCommercial     NodeType = "commercial"
	NodeIndustrial     NodeType = "industrial"
	NodeLandmark       NodeType = "landmark"
	NodePublicService  NodeType = "public_service"
)

// CommandCenter is the node all rescue routing originates from (the PDMA).
const CommandCenter = 26

// Node is one city location. Immutable after construction.
type Node struct {
	ID             int                `json:"id"`
	Name           string             `json:"name"`
	Lat            float64            `json:"lat"`
	Lng            float64            `json:"lng"`
	Population     int                `json:"population"`
	Type           NodeType           `json:"type"`
	Infrastructure float64            `json:"infrastructure"`
	Vulnerability  map[string]float64 `json:"vulnerability"` // scenario → factor
}

// Edge is a road between two nodes. Blocked is the only mutable field.
type Edge struct {
	From     int     `json:"from"`
	To       int     `json:"to"`
	Distance float64 `json:"distance"`
	Type     string  `json:"type"`
	Blocked  bool    `json:"blocked"`
}

// Graph bundles a node and edge set.
type Graph struct {
	Nodes []Node
	Edges []Edge
}

// Clone returns a deep copy of the graph, including vulnerability maps.
func (g *Graph) Clone() *Graph {
	return &Graph{Nodes: CloneNodes(g.Nodes), Edges: CloneEdges(g.Edges)}
}

// CloneNodes deep-copies a node slice.
func CloneNodes(nodes []Node) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		vuln := make(map[string]float64, len(n.Vulnerability))
		for k, v := range n.Vulnerability {
			vuln[k] = v
		}
		n.Vulnerability = vuln
		out[i] = n
	}
	return out
}

// CloneEdges copies an edge slice.
func CloneEdges(edges []Edge) []Edge {
	out := make([]Edge, len(edges))
	copy(out, edges)
	return out
}

// Arc is one directed hop in the adjacency structure.
type Arc struct {
	To       int
	Distance float64
	Blocked  bool
}

// BuildAdjacency expands the undirected edge list into a bidirectional
// adjacency map keyed by node ID.
func BuildAdjacency(nodes []Node, edges []Edge) map[int][]Arc {
	adj := make(map[int][]Arc, len(nodes))
	for _, n := range nodes {
		adj[n.ID] = nil
	}
	for _, e := range edges {
		adj[e.From] = append(adj[e.From], Arc{To: e.To, Distance: e.Distance, Blocked: e.Blocked})
		adj[e.To] = append(adj[e.To], Arc{To: e.From, Distance: e.Distance, Blocked: e.Blocked})
	}
	return adj
}

// pqItem is a priority-queue entry for Dijkstra.
type pqItem struct {
	node int
	dist float64
}

type pathQueue []pqItem

func (q pathQueue) Len() int            { return len(q) }
func (q pathQueue) Less(i, j int) bool  { return q[i].dist < q[j].dist }
func (q pathQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *pathQueue) Push(x any)         { *q = append(*q, x.(pqItem)) }
func (q *pathQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// ShortestPath runs Dijkstra over the adjacency map from start to end and
// returns the node sequence of a minimum-distance path, or nil if end is
// unreachable. With avoidBlocked set, blocked arcs are skipped entirely.
func ShortestPath(adj map[int][]Arc, start, end int, avoidBlocked bool) []int {
	if start == end {
		return []int{start}
	}
	if _, ok := adj[start]; !ok {
		return nil
	}

	dist := map[int]float64{start: 0}
	prev := map[int]int{}
	done := map[int]bool{}

	q := &pathQueue{{node: start, dist: 0}}
	for q.Len() > 0 {
		cur := heap.Pop(q).(pqItem)
		if done[cur.node] {
			continue
		}
		done[cur.node] = true

		if cur.node == end {
			return rebuildPath(prev, start, end)
		}

		for _, arc := range adj[cur.node] {
			if done[arc.To] {
				continue
			}
			if avoidBlocked && arc.Blocked {
				continue
			}
			next := cur.dist + arc.Distance
			if old, seen := dist[arc.To]; !seen || next < old {
				dist[arc.To] = next
				prev[arc.To] = cur.node
				heap.Push(q, pqItem{node: arc.To, dist: next})
			}
		}
	}
	return nil
}

// PathCost sums the arc distances along a node sequence. Returns -1 when the
// sequence uses a hop that does not exist in the adjacency map.
func PathCost(adj map[int][]Arc, path []int) float64 {
	total := 0.0
	for i := 0; i+1 < len(path); i++ {
		found := false
		for _, arc := range adj[path[i]] {
			if arc.To == path[i+1] {
				total += arc.Distance
				found = true
				break
			}
		}
		if !found {
			return -1
		}
	}
	return total
}

func rebuildPath(prev map[int]int, start, end int) []int {
	path := []int{end}
	for cur := end; cur != start; {
		cur = prev[cur]
		path = append(path, cur)
	}
	// Reverse in place.
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

// GridText renders a plain-text dump of the graph with per-node affected
// status and per-edge blocked status, for debugging and the /visualize
// endpoint.
func GridText(nodes []Node, edges []Edge, affectedNodes []int) string {
	affected := make(map[int]bool, len(affectedNodes))
	for _, id := range affectedNodes {
		affected[id] = true
	}
	byID := make(map[int]Node, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = n
	}

	var b strings.Builder
	b.WriteString("Nodes:\n")
	for _, n := range nodes {
		status := "Normal"
		if affected[n.ID] {
			status = "Affected"
		}
		fmt.Fprintf(&b, "%d: %s (%s) - Pop: %d, Status: %s\n", n.ID, n.Name, n.Type, n.Population, status)
	}
	b.WriteString("\nEdges:\n")
	for _, e := range edges {
		status := "Open"
		if e.Blocked {
			status = "Blocked"
		}
		fmt.Fprintf(&b, "%s -> %s (%s, %.1fkm) - %s\n", byID[e.From].Name, byID[e.To].Name, e.Type, e.Distance, status)
	}
	return b.String()
}
