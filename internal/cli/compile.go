package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/ftality/internal/automaton"
	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult is the compiled view of a rule source: what the
// engine will match against.
type CompilationResult struct {
	Alphabet  []string          `json:"alphabet"`
	Bindings  []grammar.Binding `json:"bindings"`
	Combos    []engine.Combo    `json:"combos"`
	States    []StateDump       `json:"states"`
	TimeoutMS int64             `json:"timeout_ms"`
	RulesHash string            `json:"rules_hash"`
}

// StateDump describes one automaton state.
type StateDump struct {
	ID      int            `json:"id"`
	Depth   int            `json:"depth"`
	Failure int            `json:"failure"`
	Edges   map[string]int `json:"edges"`
	Order   []string       `json:"-"` // edge tokens in creation order, for text output
	Outputs []string       `json:"outputs"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <rules>",
		Short: "Build the combo automaton and print it",
		Long: `Compile a rule source into the combo automaton.

Prints the symbol alphabet, the effective key bindings (inferred plus
configured), the combos as they will be displayed, and every automaton state
with its depth, failure link, goto edges and output labels. The rules hash
identifies the rule set together with its bindings.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "write the JSON dump to a file")
	cmd.Flags().Int("timeout-ms", 0, "inactivity timeout in milliseconds (default from config)")
	cmd.Flags().String("bindings", "", "YAML key-to-symbol bindings file")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
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
	formatter.VerboseLog("Built %d state(s) from %s", cfg.Automaton().Len(), path)

	result, err := buildCompilation(cfg)
	if err != nil {
		return outputCompileError(formatter, ErrCodeGeneric, err.Error(), nil)
	}

	// Write to file if --output specified
	if opts.Output != "" {
		if err := writeCompilation(result, opts.Output); err != nil {
			return outputCompileError(formatter, ErrCodeWriteFailed, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, cfg, result, opts.Output)
}

// buildCompilation walks the automaton in state order.
func buildCompilation(cfg *engine.Config) (*CompilationResult, error) {
	hash, err := cfg.RulesHash()
	if err != nil {
		return nil, err
	}

	a := cfg.Automaton()
	result := &CompilationResult{
		Alphabet:  a.Tokens(),
		Bindings:  cfg.Bindings(),
		Combos:    cfg.Combos(),
		States:    make([]StateDump, 0, a.Len()),
		TimeoutMS: cfg.Timeout().Milliseconds(),
		RulesHash: hash,
	}
	for id := 0; id < a.Len(); id++ {
		info, _ := a.Info(automaton.StateID(id))
		dump := StateDump{
			ID:      id,
			Depth:   info.Depth,
			Failure: int(info.Failure),
			Edges:   make(map[string]int, len(info.Edges)),
			Outputs: info.Outputs,
		}
		if dump.Outputs == nil {
			dump.Outputs = []string{}
		}
		for _, e := range info.Edges {
			dump.Edges[e.Token] = int(e.To)
			dump.Order = append(dump.Order, e.Token)
		}
		result.States = append(result.States, dump)
	}
	return result, nil
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, cfg *engine.Config, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d combo(s) into %d state(s)\n\n", len(result.Combos), len(result.States))

	fmt.Fprintf(w, "Alphabet: %s\n\n", strings.Join(result.Alphabet, " "))

	fmt.Fprintln(w, "Bindings:")
	for _, b := range result.Bindings {
		fmt.Fprintf(w, "  %12s  →  %s\n", b.Key, b.Symbol)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Combos:")
	for _, line := range cfg.PrettyCombos() {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "States:")
	for _, s := range result.States {
		fmt.Fprintf(w, "  %d: depth=%d fail=%d", s.ID, s.Depth, s.Failure)
		if len(s.Order) > 0 {
			edges := make([]string, len(s.Order))
			for i, tok := range s.Order {
				edges[i] = fmt.Sprintf("%s→%d", tok, s.Edges[tok])
			}
			fmt.Fprintf(w, " edges=[%s]", strings.Join(edges, ", "))
		}
		if len(s.Outputs) > 0 {
			fmt.Fprintf(w, " outputs=[%s]", strings.Join(s.Outputs, ", "))
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Timeout: %dms\n", result.TimeoutMS)
	fmt.Fprintf(w, "Rules hash: %s\n", result.RulesHash)

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote automaton to %s\n", outputFile)
	}
	return nil
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return reportedExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// writeCompilation writes the compilation result as indented JSON.
func writeCompilation(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling automaton: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}
