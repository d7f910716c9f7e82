package cli

import (
	"bytes"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

var (
	mkRules     = filepath.Join("testdata", "rules", "mk.gmr")
	keysFile    = filepath.Join("testdata", "rules", "keys.yaml")
	fireballKey = filepath.Join("testdata", "scripts", "fireball.keys")
)

// isolate keeps the user's config directory and FTALITY_* variables out of
// command tests.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("FTALITY_ENGINE_TIMEOUT_MS", "")
	t.Setenv("FTALITY_BINDINGS_FILE", "")
}

// execute runs cmd with args and returns what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := &bytes.Buffer{}
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
