package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/roach88/ftality/internal/engine"
)

// Renderer presents the result of one consumed key.
type Renderer interface {
	Render(d engine.Diagnostics, key string, outputs []string) error
}

// LineRenderer writes one "<label> !!" line per completed combo and, in
// debug mode, a trace line for every key.
type LineRenderer struct {
	w     io.Writer
	debug bool
}

// NewLineRenderer creates a renderer writing to w.
func NewLineRenderer(w io.Writer, debug bool) *LineRenderer {
	return &LineRenderer{w: w, debug: debug}
}

// Render implements Renderer.
func (r *LineRenderer) Render(d engine.Diagnostics, key string, outputs []string) error {
	for _, label := range outputs {
		if _, err := fmt.Fprintf(r.w, "%s !!\n", label); err != nil {
			return err
		}
	}
	if !r.debug {
		return nil
	}

	outs := "(no outputs)"
	if len(outputs) > 0 {
		outs = strings.Join(outputs, ", ")
	}
	_, err := fmt.Fprintf(r.w, "%s  ⇒  %s   [state=%d, fail=%d]\n", key, outs, d.State, d.Failure)
	return err
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(d engine.Diagnostics, key string, outputs []string) error

// Render calls f.
func (f RendererFunc) Render(d engine.Diagnostics, key string, outputs []string) error {
	return f(d, key, outputs)
}
