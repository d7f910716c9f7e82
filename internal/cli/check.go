package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
}

// CheckResult is the JSON payload of a successful check.
type CheckResult struct {
	Valid    bool     `json:"valid"`
	Path     string   `json:"path"`
	Rules    int      `json:"rules"`
	Alphabet []string `json:"alphabet"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check <rules>",
		Short: "Validate a rule source",
		Long: `Parse a rule source and report the first error with its code and line.

Text rules (.gmr or any other extension) and CUE rules (.cue) are accepted.

Error codes:
  E005 - rules file not found
  E201 - missing "->" or missing comma between tokens
  E202 - empty sequence
  E203 - empty label
  E204 - rules file unreadable
  E205 - invalid CUE source

Examples:
  ftality check rules.gmr
  ftality check rules.cue --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *CheckOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
	formatter.VerboseLog("Checking %s", path)

	g, err := LoadGrammar(path)
	if err != nil {
		return outputLoadError(formatter, err)
	}

	result := CheckResult{
		Valid:    true,
		Path:     path,
		Rules:    len(g.Rules),
		Alphabet: g.Alphabet,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "✓ %s: %d rule(s), %d symbol(s)\n",
		filepath.Base(path), result.Rules, len(result.Alphabet))
	return nil
}
