package tui

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
)

// LineLoop drives a session from text input, one key token per line. It is
// the non-interactive front end used when stdin is not a terminal.
type LineLoop struct {
	Session  *engine.Session
	Clock    engine.Clock
	Renderer Renderer

	// Reloads, when set, delivers rebuilt Configs. They are applied between
	// keys on the loop's goroutine.
	Reloads <-chan *engine.Config
}

// quitTokens end the loop as the interactive screen's exit keys do.
var quitTokens = map[string]bool{"ctrl-c": true, "esc": true}

type lineResult struct {
	token string
	err   error
	eof   bool
}

// Run reads r until EOF, a quit token or cancellation. Blank lines and
// lines starting with '#' are skipped.
func (l *LineLoop) Run(ctx context.Context, r io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan lineResult)
	go scanTokens(ctx, r, lines)

	for {
		select {
		case <-ctx.Done():
			return nil

		case cfg := <-l.Reloads:
			if cfg != nil {
				l.Session.Swap(cfg)
			}

		case res := <-lines:
			if res.err != nil {
				return res.err
			}
			if res.eof || quitTokens[res.token] {
				return nil
			}
			outputs := l.Session.Feed(res.token, l.Clock.Now())
			if err := l.Renderer.Render(l.Session.Diagnostics(), res.token, outputs); err != nil {
				return err
			}
		}
	}
}

func scanTokens(ctx context.Context, r io.Reader, out chan<- lineResult) {
	send := func(res lineResult) bool {
		select {
		case out <- res:
			return true
		case <-ctx.Done():
			return false
		}
	}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !send(lineResult{token: grammar.NormalizeKey(line)}) {
			return
		}
	}
	if err := sc.Err(); err != nil {
		send(lineResult{err: err})
		return
	}
	send(lineResult{eof: true})
}
