//go:build linux

package ring

import (
	"fmt"
	"math"
	"strings"
	"unsafe"
)

// Capacity constants are part of the wire format: every process attaching to
// a session must agree on them, so they are fixed rather than configurable.
const (
	// Capacity is the number of candidate slots in the ring.
	Capacity = 8

	// MaxSolutionEdges caps the size of a publishable candidate. Larger
	// candidates are never published even when they are a local improvement;
	// the cap bounds publication overhead and the slot size.
	MaxSolutionEdges = 8
)

// UnsetBest is the best-size sentinel before any candidate has been drained.
const UnsetBest = math.MaxInt32

// layoutMagic identifies an initialized ring block. Written last during
// Create so attachers never see a half-built layout.
const layoutMagic = 0x46424131 // "FBA1"

// wireEdge is a directed edge in wire form. Fixed-width fields only: this
// struct crosses process boundaries through mapped memory.
type wireEdge struct {
	from int32
	to   int32
}

// slot is one ring position. taken is the occupancy marker, flipped to 1 by
// a producer holding the exclusivity and free-slot semaphores, and back to 0
// only by the single consumer. count and edges are valid while taken is 1.
type slot struct {
	taken uint32
	count int32
	edges [MaxSolutionEdges]wireEdge
}

// state is the full shared block. All fields are fixed-width and
// pointer-free so the block means the same thing in every address space it
// is mapped into. The flag words are only ever accessed atomically.
type state struct {
	magic   uint32
	acyclic uint32
	stop    uint32
	best    int32
	slots   [Capacity]slot
}

// stateSize is the byte size of the shared block.
var stateSize = int(unsafe.Sizeof(state{}))

// Edge is a directed edge of a candidate solution, in original vertex labels.
type Edge struct {
	From int32
	To   int32
}

// Solution is a candidate feedback arc set drained from or published to the
// ring. The zero-edge solution is the distinguished acyclic witness.
type Solution struct {
	Edges []Edge
}

// Size returns the number of edges in the candidate.
func (s Solution) Size() int { return len(s.Edges) }

// Acyclic reports whether this is the zero-edge witness, i.e. the ordering
// that produced it has no back-edges at all.
func (s Solution) Acyclic() bool { return len(s.Edges) == 0 }

// String renders the solution as space-separated src-dst pairs.
func (s Solution) String() string {
	parts := make([]string, len(s.Edges))
	for i, e := range s.Edges {
		parts[i] = fmt.Sprintf("%d-%d", e.From, e.To)
	}
	return strings.Join(parts, " ")
}
