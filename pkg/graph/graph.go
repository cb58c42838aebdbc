package graph

import (
	"fmt"
	"slices"
	"sort"
)

// bsearchThreshold is the out-degree at which HasEdge switches from a linear
// scan of the successor list to lazy sort + binary search. Small lists are
// cheaper to scan than to keep sorted; for large lists the O(log d) lookup
// wins because HasEdge sits in the innermost loop of every ordering scan.
const bsearchThreshold = 15

// Edge is a directed edge between two vertices.
type Edge struct {
	From int
	To   int
}

// String renders the edge in the src-dst form used on the command line.
func (e Edge) String() string {
	return fmt.Sprintf("%d-%d", e.From, e.To)
}

// successors is the adjacency record of a single vertex. The list is
// append-only; sorted is invalidated on every append and restored lazily
// the first time a binary-search lookup needs it.
type successors struct {
	list   []int
	sorted bool
}

// Graph is a directed graph over dense integer vertex ids in [0, VertexCount).
// Duplicate edges are permitted and never deduplicated. The graph is built
// once at startup and only queried afterwards; it is not safe for concurrent
// use because HasEdge may lazily sort a successor list in place.
type Graph struct {
	adj   []successors
	edges int
}

// New creates an empty directed graph with n vertices and no edges.
// It panics if n is negative.
func New(n int) *Graph {
	if n < 0 {
		panic(fmt.Sprintf("graph: negative vertex count %d", n))
	}
	g := &Graph{adj: make([]successors, n)}
	for i := range g.adj {
		g.adj[i].sorted = true
	}
	return g
}

// VertexCount returns the number of vertices.
func (g *Graph) VertexCount() int { return len(g.adj) }

// EdgeCount returns the number of edges added so far, counting duplicates.
func (g *Graph) EdgeCount() int { return g.edges }

// OutDegree returns the number of successors of src, counting duplicates.
// It panics if src is out of range.
func (g *Graph) OutDegree(src int) int {
	g.check(src)
	return len(g.adj[src].list)
}

// AddEdge appends a directed edge from src to dst. Vertex ids outside
// [0, VertexCount) are a programming error and panic immediately.
func (g *Graph) AddEdge(src, dst int) {
	g.check(src)
	g.check(dst)
	g.adj[src].list = append(g.adj[src].list, dst)
	g.adj[src].sorted = false
	g.edges++
}

// HasEdge reports whether a directed edge from src to dst exists.
//
// Below an out-degree of 15 it scans the successor list linearly. At or
// above it, the list is sorted once (cached per vertex) and searched with
// binary search. Both paths agree for every graph state; the split is purely
// a constant-factor tradeoff.
func (g *Graph) HasEdge(src, dst int) bool {
	g.check(src)
	g.check(dst)

	s := &g.adj[src]
	if len(s.list) < bsearchThreshold {
		return slices.Contains(s.list, dst)
	}
	if !s.sorted {
		sort.Ints(s.list)
		s.sorted = true
	}
	_, found := slices.BinarySearch(s.list, dst)
	return found
}

// Edges returns all edges of the graph grouped by source vertex, in insertion
// order within each group. The slice is freshly allocated on each call.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, 0, g.edges)
	for src := range g.adj {
		for _, dst := range g.adj[src].list {
			out = append(out, Edge{From: src, To: dst})
		}
	}
	return out
}

func (g *Graph) check(v int) {
	if v < 0 || v >= len(g.adj) {
		panic(fmt.Sprintf("graph: vertex %d out of range [0, %d)", v, len(g.adj)))
	}
}
