package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ftality/internal/engine"
	ftest "github.com/roach88/ftality/internal/testutil"
)

func TestLineRenderer_PrintsOutputs(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineRenderer(&buf, false)

	s := testSession(t)
	outs := s.Feed("j", ftest.AtMS(0))
	require.NoError(t, r.Render(s.Diagnostics(), "j", outs))

	assert.Equal(t, "Claw Slam !!\n", buf.String())
}

func TestLineRenderer_Debug(t *testing.T) {
	var buf bytes.Buffer
	r := NewLineRenderer(&buf, true)

	s := testSession(t)
	outs := s.Feed("j", ftest.AtMS(0))
	require.NoError(t, r.Render(s.Diagnostics(), "j", outs))
	outs = s.Feed("x", ftest.AtMS(10))
	require.NoError(t, r.Render(s.Diagnostics(), "x", outs))

	assert.Equal(t,
		"Claw Slam !!\n"+
			"j  ⇒  Claw Slam   [state=1, fail=0]\n"+
			"x  ⇒  (no outputs)   [state=1, fail=0]\n",
		buf.String())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("closed")
}

func TestLineRenderer_WriteError(t *testing.T) {
	r := NewLineRenderer(failingWriter{}, true)
	err := r.Render(engine.Diagnostics{}, "j", []string{"Claw Slam"})
	assert.EqualError(t, err, "closed")
}

func TestRendererFunc(t *testing.T) {
	var got string
	r := RendererFunc(func(_ engine.Diagnostics, key string, _ []string) error {
		got = key
		return nil
	})
	require.NoError(t, r.Render(engine.Diagnostics{}, "k", nil))
	assert.Equal(t, "k", got)
}
