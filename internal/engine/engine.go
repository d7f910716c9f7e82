package engine

import (
	"sort"
	"strings"
	"time"

	"github.com/roach88/ftality/internal/automaton"
	"github.com/roach88/ftality/internal/grammar"
	"github.com/roach88/ftality/internal/trace"
)

// DefaultTimeout is the inactivity gap after which matching progress is
// discarded.
const DefaultTimeout = 500 * time.Millisecond

// DefaultMaxAltsPerStep is how many alternative keys are shown for one
// symbol before the list is elided.
const DefaultMaxAltsPerStep = 2

// Combo is one rule as the engine exposes it to front ends.
type Combo struct {
	Sequence []string `json:"sequence"`
	Label    string   `json:"label"`
}

// Config is the immutable, shareable half of the engine: the automaton,
// the binding tables, the combo list and the timeout policy.
//
// INVARIANTS:
//   - Nothing in Config changes after New returns
//   - bindings and inverse describe the same relation
//   - combos are in rule order
//
// Any number of sessions may read one Config concurrently.
type Config struct {
	automaton *automaton.Automaton
	bindings  map[string]string   // key token -> symbol
	inverse   map[string][]string // symbol -> sorted key tokens
	keys      []string            // bound key tokens, sorted
	combos    []Combo
	timeout   time.Duration
	maxAlts   int
}

// Option configures a Config at build time.
type Option func(*Config)

// WithTimeout sets the inactivity timeout. Non-positive values keep the
// default.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxAltsPerStep sets how many keys DisplayFor lists per symbol.
func WithMaxAltsPerStep(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.maxAlts = n
		}
	}
}

// New builds a Config from an ordered rule list and a binding table and
// returns it with the initial session state.
//
// Rule tokens and labels pass through grammar.Canonical, as do binding
// symbols; binding keys go through grammar.NormalizeKey. A later binding for
// the same key replaces an earlier one. New cannot fail: rules are assumed valid, which the grammar
// package guarantees for anything it returns.
func New(rules []grammar.Rule, bindings []grammar.Binding, opts ...Option) (*Config, State) {
	c := &Config{
		bindings: make(map[string]string, len(bindings)),
		inverse:  make(map[string][]string),
		timeout:  DefaultTimeout,
		maxAlts:  DefaultMaxAltsPerStep,
	}
	for _, opt := range opts {
		opt(c)
	}

	patterns := make([]automaton.Pattern, 0, len(rules))
	for _, r := range rules {
		seq := make([]string, len(r.Sequence))
		for i, tok := range r.Sequence {
			seq[i] = grammar.Canonical(tok)
		}
		label := grammar.Canonical(r.Label)
		c.combos = append(c.combos, Combo{Sequence: seq, Label: label})
		patterns = append(patterns, automaton.Pattern{Tokens: seq, Label: label})
	}
	c.automaton = automaton.Build(patterns)

	for _, b := range bindings {
		key := grammar.NormalizeKey(b.Key)
		sym := grammar.Canonical(b.Symbol)
		if key == "" || sym == "" {
			continue
		}
		c.bindings[key] = sym
	}
	for key, sym := range c.bindings {
		c.keys = append(c.keys, key)
		c.inverse[sym] = append(c.inverse[sym], key)
	}
	sort.Strings(c.keys)
	for _, ks := range c.inverse {
		sort.Strings(ks)
	}

	return c, c.Reset()
}

// FromGrammar builds a Config from a parsed grammar. Keys for symbols not
// covered by the grammar's own bindings or by explicit are assigned with
// grammar.Classify; explicit entries override the grammar's.
func FromGrammar(g *grammar.Grammar, explicit []grammar.Binding, opts ...Option) *Config {
	merged := make([]grammar.Binding, 0, len(g.Bindings)+len(explicit))
	merged = append(merged, g.Bindings...)
	merged = append(merged, explicit...)

	cfg, _ := New(g.Rules, grammar.Classify(g.Alphabet, merged), opts...)
	return cfg
}

// FromFile loads a rule source and builds a Config. Every construction
// problem (I/O, a malformed line, invalid CUE) surfaces as the single
// returned error, which unwraps to a *grammar.ParseError.
func FromFile(path string, explicit []grammar.Binding, opts ...Option) (*Config, error) {
	g, err := grammar.Load(path)
	if err != nil {
		return nil, err
	}
	return FromGrammar(g, explicit, opts...), nil
}

// Automaton returns the shared matcher.
func (c *Config) Automaton() *automaton.Automaton {
	return c.automaton
}

// Timeout returns the inactivity timeout.
func (c *Config) Timeout() time.Duration {
	return c.timeout
}

// Symbol translates a key token through the binding table.
func (c *Config) Symbol(key string) (string, bool) {
	sym, ok := c.bindings[key]
	return sym, ok
}

// Bindings returns the binding table sorted by key token.
func (c *Config) Bindings() []grammar.Binding {
	out := make([]grammar.Binding, len(c.keys))
	for i, k := range c.keys {
		out[i] = grammar.Binding{Key: k, Symbol: c.bindings[k]}
	}
	return out
}

// KeysFor returns the sorted key tokens bound to symbol.
func (c *Config) KeysFor(symbol string) []string {
	ks := c.inverse[symbol]
	out := make([]string, len(ks))
	copy(out, ks)
	return out
}

// Combos returns the rules in source order.
func (c *Config) Combos() []Combo {
	out := make([]Combo, len(c.combos))
	copy(out, c.combos)
	return out
}

// DisplayFor renders the keys that produce symbol, e.g. "j / k / …". A
// symbol with no bound key is shown as itself.
func (c *Config) DisplayFor(symbol string) string {
	keys := c.inverse[symbol]
	if len(keys) == 0 {
		return symbol
	}
	if len(keys) <= c.maxAlts {
		return strings.Join(keys, " / ")
	}
	return strings.Join(keys[:c.maxAlts], " / ") + " / …"
}

// PrettyCombos renders every combo in terms of the keys that play it:
//
//	down , right , k  =>  Fireball
func (c *Config) PrettyCombos() []string {
	out := make([]string, len(c.combos))
	for i, combo := range c.combos {
		parts := make([]string, len(combo.Sequence))
		for j, sym := range combo.Sequence {
			parts[j] = c.DisplayFor(sym)
		}
		out[i] = strings.Join(parts, " , ") + "  =>  " + combo.Label
	}
	return out
}

// RulesHash identifies the rule set and binding table. Two Configs built
// from the same inputs hash identically.
func (c *Config) RulesHash() (string, error) {
	combos := make([]trace.Combo, len(c.combos))
	for i, combo := range c.combos {
		combos[i] = trace.Combo{Sequence: combo.Sequence, Label: combo.Label}
	}
	return trace.RulesHash(combos, c.bindings)
}
