package tui

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
	ftest "github.com/roach88/ftality/internal/testutil"
)

const mkRules = `
[BP] -> Claw Slam
[BP], [FP] -> Saibot Blast
Down, Right, [FP] -> Fireball
`

func testConfig(t *testing.T) *engine.Config {
	t.Helper()
	g, err := grammar.ParseString(mkRules)
	require.NoError(t, err)
	return engine.FromGrammar(g, []grammar.Binding{
		{Key: "j", Symbol: "[BP]"},
		{Key: "k", Symbol: "[FP]"},
		{Key: "down", Symbol: "Down"},
		{Key: "right", Symbol: "Right"},
	})
}

func testSession(t *testing.T) *engine.Session {
	t.Helper()
	return engine.NewSession(testConfig(t), ftest.NewFixedSessionGenerator("p1"),
		engine.WithLogger(discardLogger()))
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
