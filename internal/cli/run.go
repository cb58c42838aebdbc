package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/aleksandar-had/feedback-arc-set/pkg/errors"
	"github.com/aleksandar-had/feedback-arc-set/pkg/ring"
)

// attachTimeout bounds how long run waits for the supervisor child to bring
// the session up before the generators are started.
const attachTimeout = 2 * time.Second

// runConfig is the optional TOML configuration for the run command.
type runConfig struct {
	Generators    int    `toml:"generators"`
	SessionPrefix string `toml:"session_prefix"`
	Seed          uint64 `toml:"seed"`
}

func defaultRunConfig() runConfig {
	return runConfig{
		Generators:    4,
		SessionPrefix: defaultSession,
	}
}

// loadRunConfig reads cfg from path, on top of the defaults. An empty path
// keeps the defaults.
func loadRunConfig(path string) (runConfig, error) {
	cfg := defaultRunConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config %s", path)
	}
	if cfg.Generators < 1 {
		return cfg, errors.New(errors.ErrCodeInvalidConfig,
			"generators must be at least 1, got %d", cfg.Generators)
	}
	if cfg.SessionPrefix == "" {
		return cfg, errors.New(errors.ErrCodeInvalidConfig, "session_prefix must not be empty")
	}
	return cfg, nil
}

// newRunCmd creates the run command, a convenience wrapper that spawns one
// supervisor and a handful of generators as child processes on a fresh
// session and waits for them.
func newRunCmd() *cobra.Command {
	var (
		configPath string
		generators int
	)

	cmd := &cobra.Command{
		Use:   "run EDGE...",
		Short: "Run a whole session locally",
		Long: `Run a complete local session on the given graph: a supervisor and several
generator processes on a session name that no other run can collide with.
The children are this same binary; the supervisor's output passes through.

  fbarc run 0-1 1-2 2-0
  fbarc run --generators 8 @graph.txt`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			cfg, err := loadRunConfig(configPath)
			if err != nil {
				return err
			}
			if c.Flags().Changed("generators") {
				cfg.Generators = generators
			}
			if cfg.Generators < 1 {
				return errors.New(errors.ErrCodeInvalidConfig,
					"generators must be at least 1, got %d", cfg.Generators)
			}
			return runSession(c.Context(), cfg, args)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML config file")
	cmd.Flags().IntVarP(&generators, "generators", "n", 4, "number of generator processes")

	return cmd
}

func runSession(ctx context.Context, cfg runConfig, args []string) error {
	logger := loggerFromContext(ctx)

	// Validate the graph up front so a typo fails here, not in every child.
	if _, err := parseEdges(args); err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "locate own binary")
	}

	session := cfg.SessionPrefix + "-" + uuid.NewString()[:8]
	printInfo("Starting session %s", session)
	printDetail("1 supervisor, %d generators", cfg.Generators)

	child := func(sub string, extra ...string) *exec.Cmd {
		c := exec.CommandContext(ctx, self, append([]string{sub, "--session", session}, extra...)...)
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr
		c.Cancel = func() error { return c.Process.Signal(os.Interrupt) }
		c.WaitDelay = 5 * time.Second
		return c
	}

	sup := child("supervisor")
	if err := sup.Start(); err != nil {
		return errors.Wrap(errors.ErrCodeResource, err, "start supervisor")
	}

	if err := waitForSession(ctx, session); err != nil {
		_ = sup.Cancel()
		_ = sup.Wait()
		return err
	}

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		fails []string
	)
	for i := 0; i < cfg.Generators; i++ {
		extra := args
		if cfg.Seed != 0 {
			// Distinct deterministic seeds per child.
			extra = append([]string{"--seed", fmt.Sprintf("%d", cfg.Seed+uint64(i))}, args...)
		}
		gen := child("generator", extra...)
		if err := gen.Start(); err != nil {
			mu.Lock()
			fails = append(fails, fmt.Sprintf("generator %d: %v", i, err))
			mu.Unlock()
			continue
		}
		wg.Add(1)
		go func(i int, gen *exec.Cmd) {
			defer wg.Done()
			if err := gen.Wait(); err != nil && ctx.Err() == nil {
				mu.Lock()
				printError("generator %d failed: %v", i, err)
				fails = append(fails, fmt.Sprintf("generator %d: %v", i, err))
				mu.Unlock()
			}
		}(i, gen)
	}

	wg.Wait()
	supErr := sup.Wait()

	if ctx.Err() != nil {
		logger.Info("session interrupted", "session", session)
		return nil
	}
	if supErr != nil {
		return errors.Wrap(errors.ErrCodeResource, supErr, "supervisor exited")
	}
	if len(fails) > 0 {
		return errors.New(errors.ErrCodeResource, "%s", strings.Join(fails, "; "))
	}
	return nil
}

// waitForSession polls until the supervisor child has created the session's
// shared objects, so the generators do not race it on startup.
func waitForSession(ctx context.Context, session string) error {
	deadline := time.Now().Add(attachTimeout)
	for {
		sess, err := ring.Open(session)
		if err == nil {
			return sess.Close()
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if time.Now().After(deadline) {
			return errors.Wrap(errors.ErrCodeResource, err,
				"session %q did not come up within %s", session, attachTimeout)
		}
		time.Sleep(25 * time.Millisecond)
	}
}
