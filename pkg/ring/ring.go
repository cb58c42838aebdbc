//go:build linux

package ring

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrTooLarge is returned by Publish for candidates with more than
// MaxSolutionEdges edges. Callers filter before publishing; hitting this is
// a programming error on the producer side.
var ErrTooLarge = errors.New("ring: candidate exceeds slot capacity")

// Publish writes one candidate into the ring, blocking while the buffer is
// full. Any generator may call it; the exclusivity semaphore serializes the
// whole write path, so waiting producers queue up one behind the other.
//
// The acquisition order is exclusivity first, free slot second. That means a
// full buffer stalls the single producer holding exclusivity and, behind it,
// every other producer, until the supervisor drains a slot. The ordering is
// kept deliberately: it serializes waiting producers through one lock and
// avoids a thundering herd when a slot frees.
//
// On cancellation Publish unwinds whatever it had acquired and returns
// ctx.Err() without having written anything.
func (s *Session) Publish(ctx context.Context, sol Solution) error {
	if len(sol.Edges) > MaxSolutionEdges {
		return fmt.Errorf("%w: %d edges", ErrTooLarge, len(sol.Edges))
	}

	if err := s.excl.Acquire(ctx); err != nil {
		return err
	}
	if err := s.free.Acquire(ctx); err != nil {
		s.excl.Release()
		return err
	}

	// The consumer frees slots in its own scan order, which under multiple
	// interleaved producers need not match ours. Walk until the occupancy
	// marker says a slot is empty.
	for atomic.LoadUint32(&s.st.slots[s.cursor].taken) == 1 {
		s.cursor = (s.cursor + 1) % Capacity
	}

	sl := &s.st.slots[s.cursor]
	sl.count = int32(len(sol.Edges))
	for i, e := range sol.Edges {
		sl.edges[i] = wireEdge{from: e.From, to: e.To}
	}
	atomic.StoreUint32(&sl.taken, 1)

	if err := s.used.Release(); err != nil {
		s.excl.Release()
		return err
	}
	s.cursor = (s.cursor + 1) % Capacity
	return s.excl.Release()
}

// Drain removes and returns the next occupied candidate, blocking while the
// buffer is empty. Only the supervisor calls Drain; with a single consumer
// the read side needs no mutual exclusion.
func (s *Session) Drain(ctx context.Context) (Solution, error) {
	if err := s.used.Acquire(ctx); err != nil {
		return Solution{}, err
	}
	return s.take(), nil
}

// TryDrain removes the next occupied candidate if one is pending. The
// supervisor uses it after its loop exits to flush the ring, which releases
// free slots to any producer still blocked in Publish.
func (s *Session) TryDrain() (Solution, bool) {
	if !s.used.TryAcquire() {
		return Solution{}, false
	}
	return s.take(), true
}

func (s *Session) take() Solution {
	for atomic.LoadUint32(&s.st.slots[s.cursor].taken) == 0 {
		s.cursor = (s.cursor + 1) % Capacity
	}

	sl := &s.st.slots[s.cursor]
	sol := Solution{Edges: make([]Edge, sl.count)}
	for i := range sol.Edges {
		sol.Edges[i] = Edge{From: sl.edges[i].from, To: sl.edges[i].to}
	}
	atomic.StoreUint32(&sl.taken, 0)

	s.free.Release()
	s.cursor = (s.cursor + 1) % Capacity
	return sol
}

// RequestStop raises the shared stop flag. Every loop in every attached
// process polls it at iteration boundaries.
func (s *Session) RequestStop() {
	atomic.StoreUint32(&s.st.stop, 1)
}

// StopRequested reports whether any process has raised the stop flag.
func (s *Session) StopRequested() bool {
	return atomic.LoadUint32(&s.st.stop) == 1
}

// MarkAcyclic raises the shared acyclic-found flag. Set by the supervisor
// when it drains the zero-edge witness.
func (s *Session) MarkAcyclic() {
	atomic.StoreUint32(&s.st.acyclic, 1)
}

// AcyclicFound reports whether the zero-edge witness has been seen.
func (s *Session) AcyclicFound() bool {
	return atomic.LoadUint32(&s.st.acyclic) == 1
}

// BestSize returns the size of the best candidate the supervisor has
// accepted so far, or UnsetBest before the first one. Generators read it to
// skip publishing candidates another process has already beaten; the value
// may be stale by the time they act on it, which is safe because it only
// ever decreases.
func (s *Session) BestSize() int {
	return int(atomic.LoadInt32(&s.st.best))
}

// RecordBest publishes a new best size. Only the supervisor calls this, and
// only with strictly decreasing values.
func (s *Session) RecordBest(n int) {
	atomic.StoreInt32(&s.st.best, int32(n))
}
