package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/ftality/internal/config"
	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/metrics"
	"github.com/roach88/ftality/internal/tui"
	"github.com/roach88/ftality/internal/watch"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	Metrics bool

	// SessionIDs allows overriding the session ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	SessionIDs engine.SessionIDGenerator

	// Clock allows overriding the time source (for testing).
	// If nil, defaults to SystemClock.
	Clock engine.Clock

	// NewReloader allows overriding how the rule watcher is built (for
	// testing). If nil, defaults to newReloader.
	NewReloader func(path string, settings *config.Config, logger *slog.Logger, onReload func(*engine.Config)) (*watch.Reloader, error)
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	return newPlayCommand(&PlayOptions{RootOptions: rootOpts})
}

func newPlayCommand(opts *PlayOptions) *cobra.Command {
	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "play <rules>",
		Short: "Match combos from live key presses",
		Long: `Start an interactive session against a rule source.

When stdin is a terminal a full-screen view shows the bindings, the combos
(highlighting the ones in progress), the automaton state and recently fired
moves. Otherwise one key token is read per line from stdin and every fired
move is printed as "<label> !!".

Press Esc or ctrl-c to quit; in line mode a "esc" or "ctrl-c" line, or end
of input, does the same.

Examples:
  ftality play rules.gmr
  ftality play rules.cue --watch --timeout-ms 300
  printf 'down\nright\nk\n' | ftality play rules.gmr --debug`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, args[0], cmd)
		},
	}

	cmd.Flags().Int("timeout-ms", defaults.Engine.TimeoutMS, "inactivity timeout in milliseconds")
	cmd.Flags().Bool("debug", false, "print automaton state after every key (line mode)")
	cmd.Flags().String("bindings", "", "YAML key-to-symbol bindings file")
	cmd.Flags().Bool("watch", false, "reload the rules when the file changes")
	cmd.Flags().BoolVar(&opts.Metrics, "metrics", false, "print engine counters to stderr on exit")

	return cmd
}

func runPlay(opts *PlayOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	settings, err := opts.settings(cmd)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	cfg, err := LoadEngine(path, settings)
	if err != nil {
		return outputLoadError(formatter, err)
	}
	logger := opts.logger()

	sessionOpts := []engine.SessionOption{engine.WithLogger(logger)}
	var registry *prometheus.Registry
	if opts.Metrics {
		registry = prometheus.NewRegistry()
		sessionOpts = append(sessionOpts, engine.WithObserver(metrics.NewCollector(registry)))
	}

	ids := opts.SessionIDs
	if ids == nil {
		ids = engine.UUIDv7Generator{}
	}
	clock := opts.Clock
	if clock == nil {
		clock = engine.SystemClock{}
	}
	session := engine.NewSession(cfg, ids, sessionOpts...)
	logger.Info("session started", "session", session.ID(), "rules", path,
		"combos", len(cfg.Combos()), "timeout", cfg.Timeout())

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	// Both front ends and the reloader are built before any goroutine
	// starts, so a failed watch leaves nothing running.
	var (
		onReload func(*engine.Config)
		front    func() error
	)
	if useTUI(cmd.InOrStdin()) {
		model := tui.NewModel(session, clock, tui.WithRecentLimit(settings.UI.RecentLimit))
		program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(gctx))
		onReload = func(c *engine.Config) { program.Send(tui.ReloadMsg{Config: c}) }
		front = func() error {
			if _, err := program.Run(); err != nil && ctx.Err() == nil {
				return fmt.Errorf("terminal UI: %w", err)
			}
			return nil
		}
	} else {
		reloads := make(chan *engine.Config)
		onReload = func(c *engine.Config) {
			select {
			case reloads <- c:
			case <-gctx.Done():
			}
		}
		loop := &tui.LineLoop{
			Session:  session,
			Clock:    clock,
			Renderer: tui.NewLineRenderer(cmd.OutOrStdout(), settings.UI.Debug),
			Reloads:  reloads,
		}
		front = func() error {
			if err := loop.Run(gctx, cmd.InOrStdin()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exiting...")
			return nil
		}
	}

	var reloader *watch.Reloader
	if settings.Watch.Enabled {
		build := opts.NewReloader
		if build == nil {
			build = newReloader
		}
		reloader, err = build(path, settings, logger, onReload)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to watch rules", err)
		}
	}

	g.Go(func() error {
		defer cancel()
		return front()
	})
	if reloader != nil {
		g.Go(func() error { return reloader.Run(gctx) })
	}

	runErr := g.Wait()

	if registry != nil {
		if err := metrics.WriteText(cmd.ErrOrStderr(), registry); err != nil {
			logger.Error("writing metrics", "error", err)
		}
	}

	if runErr != nil {
		return WrapExitError(ExitFailure, "session error", runErr)
	}
	logger.Info("session ended", "session", session.ID(), "keys", session.Seq())
	return nil
}

// newReloader watches the rule source and rebuilds the engine config with
// the same settings on every change.
func newReloader(path string, settings *config.Config, logger *slog.Logger, onReload func(*engine.Config)) (*watch.Reloader, error) {
	load := func(p string) (*engine.Config, error) {
		return LoadEngine(p, settings)
	}
	return watch.New(path, load, onReload,
		watch.WithDebounce(settings.Debounce()),
		watch.WithLogger(logger),
	)
}

// useTUI reports whether in is an interactive terminal.
func useTUI(in io.Reader) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
