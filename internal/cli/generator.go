package cli

import (
	"context"
	stderrors "errors"

	"github.com/spf13/cobra"

	"github.com/aleksandar-had/feedback-arc-set/pkg/errors"
	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
	"github.com/aleksandar-had/feedback-arc-set/pkg/search"
)

// newGeneratorCmd creates the generator command, the producer side of a
// session. Any number of generators may attach to the same supervisor, each
// running its own randomized search over the same graph.
func newGeneratorCmd() *cobra.Command {
	var (
		session string
		seed    uint64
	)

	cmd := &cobra.Command{
		Use:   "generator EDGE...",
		Short: "Search for feedback arc sets and report them",
		Long: `Search for small feedback arc sets of the directed graph given as a list of
FROM-TO edges, publishing every candidate that beats this generator's best so
far to the session's supervisor. Runs until the supervisor calls the search
off or the process is interrupted.

Edges are read from the arguments; an argument of the form @FILE is replaced
by the whitespace-separated edges in FILE (lines starting with # are
skipped):

  fbarc generator 0-1 1-2 2-0
  fbarc generator @graph.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return runGenerator(c.Context(), session, seed, args)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", defaultSession, "session name of the supervisor to attach to")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed (0 derives one from the clock and pid)")

	return cmd
}

func runGenerator(ctx context.Context, session string, seed uint64, args []string) error {
	logger := loggerFromContext(ctx)

	list, err := parseEdges(args)
	if err != nil {
		return err
	}
	g := list.graph()
	logger.Info("graph loaded", "vertices", g.VertexCount(), "edges", g.EdgeCount())

	sess, err := ring.Open(session)
	if err != nil {
		if stderrors.Is(err, ring.ErrNotExist) {
			return errors.Wrap(errors.ErrCodeSessionNotFound, err,
				"session %q not found; start the supervisor first", session)
		}
		return errors.Wrap(errors.ErrCodeResource, err, "attach to session %q", session)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Error("detaching from session", "err", cerr)
		}
	}()

	p := newProgress(logger)
	s := search.New(g, sess, search.Options{
		Seed:   seed,
		Labels: list.label,
		Logger: logger,
	})
	if err := s.Run(ctx); err != nil {
		return errors.Wrap(errors.ErrCodeResource, err, "search on session %q", session)
	}
	p.done("Search stopped")
	return nil
}
