package engine

import (
	"time"

	"github.com/roach88/ftality/internal/automaton"
)

// State is the per-session half of the engine: where matching currently
// stands and when the last bound key arrived. It is a small value; callers
// thread it through Advance explicitly.
type State struct {
	Current      automaton.StateID
	LastEvent    time.Time
	HasLastEvent bool
}

// Transition describes one Advance in full.
type Transition struct {
	Key      string
	Symbol   string
	At       time.Time
	From     automaton.StateID
	To       automaton.StateID
	Outputs  []string
	Unbound  bool // key had no binding; nothing changed
	TimedOut bool // progress was discarded before stepping
}

// Diagnostics is the read-only view of a state for front ends.
type Diagnostics struct {
	State   automaton.StateID
	Failure automaton.StateID
	Outputs []string

	// Missed is true when the session is back at root after at least one
	// bound key, a proxy for "the last key broke the combo".
	Missed bool
}

// Reset returns a fresh session state: root, no last event.
func (c *Config) Reset() State {
	return State{Current: automaton.Root}
}

// Advance consumes one key token at time now and returns the new state
// and any labels completed by it.
//
// An unbound key returns st unchanged. When the gap since the last bound
// key is strictly greater than the timeout, matching restarts from root
// before stepping. Advance never fails and never reads a clock.
func (c *Config) Advance(st State, key string, now time.Time) (State, []string) {
	next, tr := c.AdvanceDetail(st, key, now)
	return next, tr.Outputs
}

// AdvanceDetail is Advance with the full Transition.
func (c *Config) AdvanceDetail(st State, key string, now time.Time) (State, Transition) {
	tr := Transition{Key: key, At: now, From: st.Current, To: st.Current}

	sym, ok := c.bindings[key]
	if !ok {
		tr.Unbound = true
		return st, tr
	}
	tr.Symbol = sym

	base := st.Current
	if st.HasLastEvent && now.Sub(st.LastEvent) > c.timeout {
		base = automaton.Root
		tr.TimedOut = true
	}

	next, outs := c.automaton.Step(base, sym)
	tr.To = next
	tr.Outputs = outs

	return State{Current: next, LastEvent: now, HasLastEvent: true}, tr
}

// PrefixProbe reports how much of seq the live state has already matched:
// it steps a throwaway state from root through seq and returns the 1-based
// position where that state first equals st.Current, or 0.
func (c *Config) PrefixProbe(st State, seq []string) int {
	probe := automaton.Root
	for i, sym := range seq {
		probe, _ = c.automaton.Step(probe, sym)
		if probe == st.Current {
			return i + 1
		}
	}
	return 0
}

// Diagnostics reports the outputs and failure link of st's current state.
func (c *Config) Diagnostics(st State) Diagnostics {
	d := Diagnostics{
		State:  st.Current,
		Missed: st.Current == automaton.Root && st.HasLastEvent,
	}
	if info, ok := c.automaton.Info(st.Current); ok {
		d.Failure = info.Failure
		d.Outputs = info.Outputs
	}
	return d
}
