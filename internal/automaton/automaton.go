package automaton

// Symbol is the interned identifier of a canonical token string.
type Symbol int

// StateID addresses a state in the automaton's arena.
type StateID int

// Root is the start state. Its failure link points to itself.
const Root StateID = 0

// Pattern is one token sequence bound to an output label.
// Patterns with no tokens are ignored by Build.
type Pattern struct {
	Tokens []string
	Label  string
}

// Edge is a goto transition, exposed for diagnostics.
type Edge struct {
	Symbol Symbol
	Token  string
	To     StateID
}

// StateInfo describes one state for debug and display consumers.
type StateInfo struct {
	ID      StateID
	Failure StateID
	Depth   int
	Outputs []string
	Edges   []Edge
}

type edge struct {
	sym Symbol
	to  StateID
}

type state struct {
	next    map[Symbol]StateID
	edges   []edge // creation order, drives breadth-first traversal
	fail    StateID
	depth   int
	outputs []string
}

// Automaton is an immutable Aho-Corasick matcher over token symbols.
type Automaton struct {
	states  []state
	symbols map[string]Symbol
	tokens  []string
}

// Build constructs an automaton from patterns in the given order.
//
// Build cannot fail. An empty pattern list yields a single-state automaton
// that never produces output. Callers are responsible for canonicalising
// tokens; Build interns them byte-for-byte.
func Build(patterns []Pattern) *Automaton {
	a := &Automaton{
		states:  []state{newState(0)},
		symbols: make(map[string]Symbol),
	}

	for _, p := range patterns {
		if len(p.Tokens) == 0 {
			continue
		}
		cur := Root
		for _, tok := range p.Tokens {
			cur = a.ensureEdge(cur, a.intern(tok))
		}
		a.states[cur].outputs = appendUnique(a.states[cur].outputs, p.Label)
	}

	a.linkFailures()
	return a
}

func newState(depth int) state {
	return state{next: make(map[Symbol]StateID), depth: depth}
}

// intern returns the symbol for tok, assigning the next id on first sight.
func (a *Automaton) intern(tok string) Symbol {
	if sym, ok := a.symbols[tok]; ok {
		return sym
	}
	sym := Symbol(len(a.tokens))
	a.symbols[tok] = sym
	a.tokens = append(a.tokens, tok)
	return sym
}

// ensureEdge follows the goto edge (from, sym), creating the target state
// when it does not exist yet.
func (a *Automaton) ensureEdge(from StateID, sym Symbol) StateID {
	if to, ok := a.states[from].next[sym]; ok {
		return to
	}
	to := StateID(len(a.states))
	a.states = append(a.states, newState(a.states[from].depth+1))
	a.states[from].next[sym] = to
	a.states[from].edges = append(a.states[from].edges, edge{sym: sym, to: to})
	return to
}

// linkFailures computes failure links and merged output sets breadth-first.
// A state's failure target is always shallower, so it has been finalised
// before the state itself is visited and the output merge is complete.
func (a *Automaton) linkFailures() {
	queue := make([]StateID, 0, len(a.states))
	for _, e := range a.states[Root].edges {
		a.states[e.to].fail = Root
		queue = append(queue, e.to)
	}

	for head := 0; head < len(queue); head++ {
		r := queue[head]
		for _, e := range a.states[r].edges {
			probe := a.states[r].fail
			for probe != Root && !a.hasEdge(probe, e.sym) {
				probe = a.states[probe].fail
			}
			target, ok := a.states[probe].next[e.sym]
			if !ok {
				target = Root
			}

			child := &a.states[e.to]
			child.fail = target
			for _, label := range a.states[target].outputs {
				child.outputs = appendUnique(child.outputs, label)
			}
			queue = append(queue, e.to)
		}
	}
}

func (a *Automaton) hasEdge(id StateID, sym Symbol) bool {
	_, ok := a.states[id].next[sym]
	return ok
}

// Step is the delta function: it consumes token from state cur and returns
// the next state with that state's precomputed outputs.
//
// An unknown token returns (Root, nil) without further lookup. An
// out-of-range cur is treated as Root. The returned slice is shared with the
// automaton and must not be modified.
func (a *Automaton) Step(cur StateID, token string) (StateID, []string) {
	sym, ok := a.symbols[token]
	if !ok {
		return Root, nil
	}
	return a.StepSymbol(cur, sym)
}

// StepSymbol is Step for an already interned symbol.
func (a *Automaton) StepSymbol(cur StateID, sym Symbol) (StateID, []string) {
	if !a.valid(cur) {
		cur = Root
	}

	probe := cur
	for probe != Root && !a.hasEdge(probe, sym) {
		probe = a.states[probe].fail
	}
	next, ok := a.states[probe].next[sym]
	if !ok {
		next = Root
	}
	return next, a.outputs(next)
}

func (a *Automaton) outputs(id StateID) []string {
	out := a.states[id].outputs
	if len(out) == 0 {
		return nil
	}
	return out[:len(out):len(out)]
}

func (a *Automaton) valid(id StateID) bool {
	return id >= 0 && int(id) < len(a.states)
}

// Info returns the outputs, failure link, depth and edges of a state.
func (a *Automaton) Info(id StateID) (StateInfo, bool) {
	if !a.valid(id) {
		return StateInfo{}, false
	}
	s := a.states[id]
	edges := make([]Edge, len(s.edges))
	for i, e := range s.edges {
		edges[i] = Edge{Symbol: e.sym, Token: a.tokens[e.sym], To: e.to}
	}
	return StateInfo{
		ID:      id,
		Failure: s.fail,
		Depth:   s.depth,
		Outputs: a.outputs(id),
		Edges:   edges,
	}, true
}

// Len returns the number of states, root included.
func (a *Automaton) Len() int {
	return len(a.states)
}

// Symbol looks up the interned symbol of token.
func (a *Automaton) Symbol(token string) (Symbol, bool) {
	sym, ok := a.symbols[token]
	return sym, ok
}

// Token returns the canonical string of sym.
func (a *Automaton) Token(sym Symbol) (string, bool) {
	if sym < 0 || int(sym) >= len(a.tokens) {
		return "", false
	}
	return a.tokens[sym], true
}

// Tokens returns the symbol table in symbol order.
func (a *Automaton) Tokens() []string {
	out := make([]string, len(a.tokens))
	copy(out, a.tokens)
	return out
}

func appendUnique(list []string, label string) []string {
	for _, l := range list {
		if l == label {
			return list
		}
	}
	return append(list, label)
}
