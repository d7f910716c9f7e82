package tui

import (
	"fmt"

	"github.com/roach88/ftality/internal/automaton"
	"github.com/roach88/ftality/internal/engine"
)

// DefaultRecentLimit is how many completed moves the recent list keeps.
const DefaultRecentLimit = 8

// Footer is the exit hint shown under the panels.
const Footer = "Exit: Esc o ctrl-c"

// ComboLine is one combo as displayed, with Hit set while the live state
// sits somewhere along it.
type ComboLine struct {
	Text string
	Hit  bool
}

// View is everything the interactive screen shows, computed without any
// terminal dependency so it can be tested directly.
type View struct {
	Bindings []string
	Combos   []ComboLine
	State    automaton.StateID
	Failure  automaton.StateID
	Outputs  []string
	Recent   []string
	Footer   string
}

// BuildView derives the screen contents from a config, a session state and
// the recent-moves list.
func BuildView(cfg *engine.Config, st engine.State, recent []string) View {
	v := View{Footer: Footer}

	for _, b := range cfg.Bindings() {
		v.Bindings = append(v.Bindings, fmt.Sprintf("%12s  →  %s", b.Key, b.Symbol))
	}

	pretty := cfg.PrettyCombos()
	for i, combo := range cfg.Combos() {
		v.Combos = append(v.Combos, ComboLine{
			Text: pretty[i],
			Hit:  cfg.PrefixProbe(st, combo.Sequence) > 0,
		})
	}

	d := cfg.Diagnostics(st)
	v.State = d.State
	v.Failure = d.Failure
	v.Outputs = d.Outputs
	v.Recent = append([]string(nil), recent...)
	return v
}

// pushRecent appends labels to recent, dropping the oldest entries beyond
// limit. The input slice is not modified.
func pushRecent(recent []string, limit int, labels ...string) []string {
	if limit <= 0 {
		limit = DefaultRecentLimit
	}
	out := make([]string, 0, len(recent)+len(labels))
	out = append(out, recent...)
	out = append(out, labels...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
