// Package search implements the randomized feedback arc set heuristic run
// by each generator process.
//
// The idea: pick a uniformly random total order of the vertices. Every edge
// whose source comes after its target in that order is a back-edge, and
// removing all back-edges of any fixed order leaves an acyclic graph. So the
// back-edge set of a random order is always a valid feedback arc set, and
// trying many random orders and keeping the smallest set is a cheap
// anytime approximation. A zero back-edge order proves the graph acyclic.
package search
