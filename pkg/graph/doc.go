// Package graph provides the directed multigraph queried by the randomized
// feedback arc set search.
//
// Vertex ids are dense integers in [0, VertexCount). The only lookup the
// search needs is edge existence, so the adjacency lists optimize for exactly
// that: short lists are scanned linearly, long lists are sorted once (lazily,
// cached per vertex) and binary searched. Everything else is bookkeeping.
package graph
