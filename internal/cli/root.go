package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

// defaultSession is the session name used when none is given, which makes
// the two-terminal workflow (supervisor here, generators there) work
// without passing names around. Concurrent runs on one machine should pick
// distinct names; `fbarc run` generates a unique one automatically.
const defaultSession = "fbarc"

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version.
// This is typically called by the main package during initialization with
// values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the fbarc CLI and returns an error if any command fails.
//
// The context carries the process-local stop condition: main cancels it on
// SIGINT/SIGTERM, and every loop under these commands checks it at
// iteration boundaries. Signal handling itself never touches shared memory.
//
// Logging:
//   - Default: info level (logs to stderr)
//   - With --verbose (-v): debug level
//
// The logger is attached to the context and accessible to all commands via
// loggerFromContext.
func Execute(ctx context.Context) error {
	var verbose bool

	root := &cobra.Command{
		Use:   "fbarc",
		Short: "fbarc approximates minimum feedback arc sets with parallel random search",
		Long: `fbarc approximates a minimum feedback arc set: the smallest set of edges
whose removal makes a directed graph acyclic.

One supervisor process collects results; any number of generator processes
race to improve on them by testing random vertex orderings. The processes
communicate through a shared-memory ring buffer identified by a session name.

Try 'fbarc run 0-1 1-2 2-0' to launch a complete search in one command.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("fbarc %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newSupervisorCmd())
	root.AddCommand(newGeneratorCmd())
	root.AddCommand(newRunCmd())
	root.AddCommand(newGraphCmd())

	return root.ExecuteContext(ctx)
}
