package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
	"github.com/roach88/ftality/internal/trace"
)

// replayOrigin is the instant script timestamps are offsets from.
var replayOrigin = time.Unix(0, 0).UTC()

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
}

// FiredMove is one label completed during a replay.
type FiredMove struct {
	Seq   int    `json:"seq"`
	AtMS  int64  `json:"at_ms"`
	Key   string `json:"key"`
	Label string `json:"label"`
}

// ReplayResult holds the replay result.
type ReplayResult struct {
	Script        string        `json:"script"`
	Steps         int           `json:"steps"`
	Fired         []FiredMove   `json:"fired"`
	Events        []trace.Event `json:"events"`
	TraceHash     string        `json:"trace_hash"`
	RulesHash     string        `json:"rules_hash"`
	Deterministic bool          `json:"deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay <rules> <script>",
		Short: "Replay a key script and verify determinism",
		Long: `Feed a timestamped key script through the engine and print the moves it fires.

The script has one "<at_ms> <key>" pair per line; '#' starts a comment and
timestamps must not decrease. The script is replayed twice on fresh sessions
and the two traces are compared by hash.

Exit codes:
  0 - Both runs produced identical traces
  1 - Determinism verification failed (differences detected)
  2 - Command error (rules or script unreadable, etc.)

Examples:
  ftality replay rules.gmr fireball.keys
  ftality replay rules.gmr fireball.keys --timeout-ms 300
  ftality replay rules.gmr fireball.keys --format json`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, args[0], args[1], cmd)
		},
	}

	cmd.Flags().Int("timeout-ms", 0, "inactivity timeout in milliseconds (default from config)")
	cmd.Flags().String("bindings", "", "YAML key-to-symbol bindings file")

	return cmd
}

func runReplay(opts *ReplayOptions, rulesPath, scriptPath string, cmd *cobra.Command) error {
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
	cfg, err := LoadEngine(rulesPath, settings)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	steps, err := trace.ParseScriptFile(scriptPath)
	if err != nil {
		_ = formatter.Error(ErrCodeInvalidScript, err.Error(), nil)
		return reportedExitError(ExitCommandError, "failed to read key script", err)
	}
	formatter.VerboseLog("Replaying %d step(s) from %s", len(steps), scriptPath)

	logger := opts.logger()
	first := replayScript(cfg, steps, logger)
	second := replayScript(cfg, steps, logger)

	firstHash, err := trace.Hash(first)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash trace", err)
	}
	secondHash, err := trace.Hash(second)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash trace", err)
	}
	rulesHash, err := cfg.RulesHash()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to hash rules", err)
	}

	result := ReplayResult{
		Script:        scriptPath,
		Steps:         len(steps),
		Fired:         firedMoves(first),
		Events:        first,
		TraceHash:     firstHash,
		RulesHash:     rulesHash,
		Deterministic: firstHash == secondHash,
	}
	if !result.Deterministic {
		logger.Warn("replay diverged", "first", firstHash, "second", secondHash)
	}

	if opts.Format == "json" {
		return outputReplayJSON(cmd.OutOrStdout(), result)
	}
	return outputReplayText(cmd.OutOrStdout(), result, opts.Verbose)
}

// replayScript runs steps on a fresh session and records every transition.
func replayScript(cfg *engine.Config, steps []trace.ScriptStep, logger *slog.Logger) []trace.Event {
	session := engine.NewSession(cfg, engine.NewFixedGenerator("replay"), engine.WithLogger(logger))

	events := make([]trace.Event, 0, len(steps))
	for _, step := range steps {
		now := replayOrigin.Add(time.Duration(step.AtMS) * time.Millisecond)
		tr := session.FeedDetail(grammar.NormalizeKey(step.Key), now)
		events = append(events, engine.Record(session.Seq(), replayOrigin, tr, session.Diagnostics()))
	}
	return events
}

func firedMoves(events []trace.Event) []FiredMove {
	out := []FiredMove{}
	for _, ev := range events {
		for _, label := range ev.Outputs {
			out = append(out, FiredMove{Seq: ev.Seq, AtMS: ev.AtMS, Key: ev.Key, Label: label})
		}
	}
	return out
}

// outputReplayJSON outputs the replay result as JSON.
func outputReplayJSON(w io.Writer, result ReplayResult) error {
	response := CLIResponse{
		Status: "ok",
		Data:   result,
	}

	if !result.Deterministic {
		response.Status = "error"
		response.Error = &CLIError{
			Code:    "E_DETERMINISM",
			Message: "determinism verification failed",
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(response); err != nil {
		return err
	}

	if !result.Deterministic {
		// Determinism failure = exit code 1
		return reportedExitError(ExitFailure, "determinism verification failed", nil)
	}
	return nil
}

// outputReplayText outputs the replay result as text.
func outputReplayText(w io.Writer, result ReplayResult, verbose bool) error {
	fmt.Fprintf(w, "Replay Summary: %d step(s), %d move(s) fired\n", result.Steps, len(result.Fired))
	fmt.Fprintln(w)

	for _, ev := range result.Events {
		if !verbose && len(ev.Outputs) == 0 {
			continue
		}
		outs := "(no outputs)"
		if len(ev.Outputs) > 0 {
			outs = strings.Join(ev.Outputs, ", ")
		}
		line := fmt.Sprintf("%6dms  %s  ⇒  %s", ev.AtMS, ev.Key, outs)
		if verbose {
			line += fmt.Sprintf("   [state=%d, fail=%d]", ev.State, ev.Failure)
			switch {
			case ev.Unbound:
				line += " (unbound)"
			case ev.TimedOut:
				line += " (timed out)"
			}
		}
		fmt.Fprintln(w, line)
	}
	if len(result.Fired) > 0 || verbose {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Trace hash: %s\n", result.TraceHash)

	if result.Deterministic {
		fmt.Fprintln(w, "✓ Replay verified deterministic")
		return nil
	}

	fmt.Fprintln(w, "✗ Determinism verification failed")
	// Determinism failure = exit code 1
	return reportedExitError(ExitFailure, "determinism verification failed", nil)
}
