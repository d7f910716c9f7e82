package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/roach88/ftality/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigFile string

	// Config and Logger are filled in by the root command before any
	// subcommand runs. Subcommands built on their own (tests) load them
	// lazily through settings and logger.
	Config *config.Config
	Logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// flagKeys maps command-line flags onto configuration keys. Only flags the
// executing command actually defines are bound.
var flagKeys = map[string]string{
	"timeout-ms": "engine.timeout_ms",
	"bindings":   "bindings_file",
	"debug":      "ui.debug",
	"watch":      "watch.enabled",
}

// NewRootCommand creates the root command for the ftality CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ftality",
		Short: "ftality - fighting-game combo matcher",
		Long: `Streaming combo recognition over key presses.

Rules map comma-separated symbol sequences to move labels. Key presses are
translated to symbols through a binding table and fed to an Aho-Corasick
automaton; a move fires the moment its last symbol arrives, provided no gap
between presses exceeded the inactivity timeout.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}

			cfg, err := loadSettings(opts, cmd)
			if err != nil {
				formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
				_ = formatter.Error(ErrCodeInvalidConfig, err.Error(), nil)
				return reportedExitError(ExitCommandError, ErrCodeInvalidConfig+": invalid configuration", err)
			}
			opts.Config = cfg

			opts.Logger = newLogger(cmd.ErrOrStderr(), cfg, opts.Verbose)
			slog.SetDefault(opts.Logger)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./ftality.yaml or $XDG_CONFIG_HOME/ftality/ftality.yaml)")

	// Add subcommands
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewPlayCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// settings returns the loaded configuration, loading it on first use.
func (o *RootOptions) settings(cmd *cobra.Command) (*config.Config, error) {
	if o.Config != nil {
		return o.Config, nil
	}
	cfg, err := loadSettings(o, cmd)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidConfig, Message: err.Error()}
	}
	o.Config = cfg
	return cfg, nil
}

// logger returns the installed logger, or slog.Default.
func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.Default()
}

// loadSettings layers defaults, the config file, FTALITY_* environment
// variables and the flags cmd defines.
func loadSettings(opts *RootOptions, cmd *cobra.Command) (*config.Config, error) {
	v, err := config.New(opts.ConfigFile)
	if err != nil {
		return nil, err
	}

	var bindErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || bindErr != nil {
			return
		}
		if err := v.BindPFlag(key, f); err != nil {
			bindErr = fmt.Errorf("binding --%s: %w", f.Name, err)
		}
	})
	if bindErr != nil {
		return nil, bindErr
	}
	return config.Load(v)
}

// newLogger builds the process logger. --verbose forces debug level.
func newLogger(w io.Writer, cfg *config.Config, verbose bool) *slog.Logger {
	level := cfg.SlogLevel()
	if verbose {
		level = slog.LevelDebug
	}
	hopts := &slog.HandlerOptions{Level: level}
	if cfg.Logging.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
