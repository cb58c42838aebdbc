package cli

import (
	"context"
	stderrors "errors"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/aleksandar-had/feedback-arc-set/pkg/errors"
	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
)

// newSupervisorCmd creates the supervisor command, the single consumer side
// of a session. The supervisor must be started before any generator: it
// creates the shared ring and the semaphore triple, and it alone removes
// them on exit.
func newSupervisorCmd() *cobra.Command {
	var (
		session string
		force   bool
		tui     bool
	)

	cmd := &cobra.Command{
		Use:   "supervisor",
		Short: "Collect and report generator results",
		Long: `Collect candidate solutions from the session's generators and report every
improvement. When a generator finds an ordering with no back-edges at all,
the supervisor declares the graph acyclic and shuts the whole session down.

The supervisor creates the session's shared resources and removes them on
exit, so it has to be started before the first generator attaches.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, args []string) error {
			return runSupervisor(c.Context(), session, force, tui)
		},
	}

	cmd.Flags().StringVarP(&session, "session", "s", defaultSession, "session name shared with the generators")
	cmd.Flags().BoolVar(&force, "force", false, "remove leftover shared objects of a crashed run first")
	cmd.Flags().BoolVar(&tui, "tui", false, "show a live status view instead of printed lines")

	return cmd
}

func runSupervisor(ctx context.Context, session string, force, tui bool) error {
	logger := loggerFromContext(ctx)

	if force {
		printWarning("Removing leftover shared objects of session %q", session)
		if err := ring.Destroy(session); err != nil {
			return errors.Wrap(errors.ErrCodeResource, err, "clear session %q", session)
		}
	}

	sess, err := ring.Create(session)
	if err != nil {
		if stderrors.Is(err, ring.ErrExists) {
			return errors.Wrap(errors.ErrCodeSessionExists, err,
				"session %q is already in use; pick another name or rerun with --force", session)
		}
		return errors.Wrap(errors.ErrCodeResource, err, "create session %q", session)
	}
	defer func() {
		if cerr := sess.Close(); cerr != nil {
			logger.Error("releasing shared resources", "err", cerr)
		}
	}()

	logger.Info("session ready", "session", session, "slots", ring.Capacity)

	if tui {
		return runSupervisorTUI(ctx, sess, logger)
	}

	p := newProgress(logger)
	if err := consume(ctx, sess, consoleReporter{}, logger); err != nil {
		return err
	}
	p.done("Search stopped")
	return nil
}

// consume is the consumer loop: drain candidates, track the best size seen,
// report improvements, and detect the acyclic witness. It returns nil on
// every cooperative stop; only a shared-resource failure is an error.
//
// On the way out it raises the shared stop flag (covering the operator-
// interrupt case, where only this process's context is cancelled) and
// flushes the ring, so a generator blocked on a full buffer gets its free
// slot and can observe the flag.
func consume(ctx context.Context, sess *ring.Session, rep reporter, logger *log.Logger) error {
	defer func() {
		sess.RequestStop()
		for {
			if _, ok := sess.TryDrain(); !ok {
				return
			}
		}
	}()

	best := ring.UnsetBest
	for {
		if ctx.Err() != nil || sess.StopRequested() {
			return nil
		}

		sol, err := sess.Drain(ctx)
		if err != nil {
			if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return errors.Wrap(errors.ErrCodeResource, err, "drain session %q", sess.Name())
		}

		if sol.Acyclic() {
			sess.RecordBest(0)
			sess.MarkAcyclic()
			rep.Acyclic()
			return nil
		}
		if sol.Size() < best {
			best = sol.Size()
			sess.RecordBest(best)
			rep.Improved(sol)
			logger.Debug("new best", "size", best)
		}
	}
}
