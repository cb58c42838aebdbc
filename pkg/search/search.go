package search

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/aleksandar-had/feedback-arc-set/pkg/graph"
	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
)

// Options configures a Searcher.
type Options struct {
	// Seed for the permutation RNG. Zero derives a seed from the clock and
	// pid, so parallel generators explore different orderings.
	Seed uint64

	// Labels maps a dense vertex id back to its original command-line
	// label for published solutions. Nil means ids are the labels.
	Labels func(int) int

	// Logger for per-candidate debug output. Nil disables it.
	Logger *log.Logger
}

// Searcher runs the randomized ordering search of one generator process.
// Each iteration shuffles the vertex order, counts the back-edges the order
// implies, and publishes the candidate when it beats everything seen so far.
// All state is process-local except what goes through the ring session.
type Searcher struct {
	g      *graph.Graph
	sess   *ring.Session
	rng    *rand.Rand
	logger *log.Logger
	label  func(int) int

	order []int        // current vertex permutation
	found []graph.Edge // back-edges of the current ordering, scan order
	best  int          // local best candidate size
}

// New creates a Searcher over g publishing into sess.
func New(g *graph.Graph, sess *ring.Session, opts Options) *Searcher {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano()) ^ uint64(os.Getpid())<<32
	}
	label := opts.Labels
	if label == nil {
		label = func(v int) int { return v }
	}

	s := &Searcher{
		g:      g,
		sess:   sess,
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		logger: opts.Logger,
		label:  label,
		order:  make([]int, g.VertexCount()),
		found:  make([]graph.Edge, 0, g.EdgeCount()),
		best:   initialBest(g.EdgeCount()),
	}
	for i := range s.order {
		s.order[i] = i
	}
	return s
}

// initialBest is the starting upper bound on the candidate size: one less
// than the edge count (removing all edges but one leaves an acyclic graph,
// self-loops aside), clamped so the zero-edge witness stays publishable on
// single-edge graphs.
func initialBest(edges int) int {
	if edges <= 2 {
		return 1
	}
	return edges - 1
}

// Run executes the search loop until the context is cancelled or a shared
// stop condition is raised. A cancelled context is a normal exit, not an
// error; anything else that goes wrong with the shared resources is fatal
// to the caller.
func (s *Searcher) Run(ctx context.Context) error {
	iterations := 0
	for {
		if ctx.Err() != nil || s.sess.StopRequested() || s.sess.AcyclicFound() {
			if s.logger != nil {
				s.logger.Debug("search stopped", "iterations", iterations, "localBest", s.best)
			}
			return nil
		}
		iterations++

		s.shuffle()
		count, aborted := s.scan()
		if aborted {
			continue
		}
		if count >= s.best || count > ring.MaxSolutionEdges {
			continue
		}

		// Another generator may have published something at least as good
		// since we last looked. Adopt its bound instead of re-publishing.
		if shared := s.sess.BestSize(); shared <= count {
			s.best = shared
			continue
		}

		s.best = count
		if s.logger != nil {
			s.logger.Debug("publishing candidate", "size", count, "sharedBest", s.sess.BestSize())
		}
		if err := s.sess.Publish(ctx, s.solution(count)); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}

		// A published witness plus a shared best of zero means the search
		// has succeeded globally; tell everyone to stop.
		if count == 0 && s.sess.BestSize() == 0 {
			s.sess.RequestStop()
		}
	}
}

// shuffle permutes the vertex order in place. For each position i it draws j
// uniformly from [i, n-1] inclusive and swaps, so every permutation is
// reachable with equal probability.
func (s *Searcher) shuffle() {
	n := len(s.order)
	for i := 0; i < n; i++ {
		j := i + s.rng.IntN(n-i)
		s.order[i], s.order[j] = s.order[j], s.order[i]
	}
}

// scan collects the back-edges of the current ordering: every edge whose
// source appears after its target. Removing exactly these edges leaves a
// graph consistent with the order, hence acyclic.
//
// The scan gives up as soon as the running count reaches the local best,
// since the ordering can no longer improve on it. The abort threshold equals
// the acceptance threshold, so pruning never changes an accept/reject
// decision relative to a full scan.
func (s *Searcher) scan() (count int, aborted bool) {
	s.found = s.found[:0]
	for i := 1; i < len(s.order); i++ {
		for j := 0; j < i; j++ {
			if s.g.HasEdge(s.order[i], s.order[j]) {
				s.found = append(s.found, graph.Edge{From: s.order[i], To: s.order[j]})
				count++
			}
		}
		if count >= s.best {
			return count, true
		}
	}
	return count, false
}

// solution converts the first count collected back-edges to wire form,
// translating dense ids back to original labels.
func (s *Searcher) solution(count int) ring.Solution {
	edges := make([]ring.Edge, count)
	for i := 0; i < count; i++ {
		edges[i] = ring.Edge{
			From: int32(s.label(s.found[i].From)),
			To:   int32(s.label(s.found[i].To)),
		}
	}
	return ring.Solution{Edges: edges}
}
