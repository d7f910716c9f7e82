package grammar

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/ftality/internal/automaton"
)

// maxLineBytes bounds a single rule line.
const maxLineBytes = 1 << 20

// Rule is one combo: a token sequence bound to a move label.
type Rule struct {
	Sequence []string `json:"sequence"`
	Label    string   `json:"label"`
	Line     int      `json:"line"`
}

// Grammar is a parsed rule source.
type Grammar struct {
	// Rules in source order.
	Rules []Rule `json:"rules"`

	// Alphabet lists every distinct token in order of first appearance.
	Alphabet []string `json:"alphabet"`

	// Bindings declared inside the source itself (CUE only).
	Bindings []Binding `json:"bindings,omitempty"`
}

// Patterns converts the rules into automaton patterns, preserving order.
func (g *Grammar) Patterns() []automaton.Pattern {
	out := make([]automaton.Pattern, len(g.Rules))
	for i, r := range g.Rules {
		out[i] = automaton.Pattern{Tokens: r.Sequence, Label: r.Label}
	}
	return out
}

// Canonical trims surrounding whitespace and applies NFC normalisation so
// visually identical tokens intern to the same symbol.
func Canonical(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}

// Parse reads the text rule format.
func Parse(r io.Reader) (*Grammar, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLineBytes)

	g := &Grammar{}
	lineNo := 0
	for sc.Scan() {
		lineNo++
		rule, ok, err := parseLine(sc.Text(), lineNo)
		if err != nil {
			return nil, err
		}
		if ok {
			g.Rules = append(g.Rules, rule)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, &ParseError{
			Kind:    KindIO,
			Line:    lineNo + 1,
			Message: "reading rules",
			Err:     err,
		}
	}

	g.Alphabet = alphabet(g.Rules)
	return g, nil
}

// ParseString parses rules held in memory.
func ParseString(s string) (*Grammar, error) {
	return Parse(strings.NewReader(s))
}

// ParseFile parses a text rule file.
func ParseFile(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Kind: KindIO, Path: path, Message: "reading rules", Err: err}
	}
	g, err := Parse(bytes.NewReader(data))
	if err != nil {
		return nil, withPath(err, path)
	}
	return g, nil
}

// Load dispatches on extension: .cue sources go through the CUE SDK,
// everything else is the text format.
func Load(path string) (*Grammar, error) {
	if strings.EqualFold(filepath.Ext(path), ".cue") {
		return LoadCUEFile(path)
	}
	return ParseFile(path)
}

// parseLine returns ok=false for blank and comment lines.
func parseLine(raw string, lineNo int) (Rule, bool, error) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false, nil
	}

	lhs, rhs, found := strings.Cut(line, "->")
	if !found {
		return Rule{}, false, &ParseError{
			Kind:    KindMissingSeparator,
			Line:    lineNo,
			Message: "expected '->' in rule",
		}
	}

	label := Canonical(rhs)
	if label == "" {
		return Rule{}, false, &ParseError{
			Kind:    KindEmptyLabel,
			Line:    lineNo,
			Message: "empty move name after '->'",
		}
	}

	seq, err := splitSequence(lhs, lineNo)
	if err != nil {
		return Rule{}, false, err
	}
	if len(seq) == 0 {
		return Rule{}, false, &ParseError{
			Kind:    KindEmptySequence,
			Line:    lineNo,
			Message: "empty sequence before '->'",
		}
	}

	return Rule{Sequence: seq, Label: label, Line: lineNo}, true, nil
}

// splitSequence splits on commas and drops empty tokens. A token that still
// contains whitespace is two keys with the comma missing.
func splitSequence(lhs string, lineNo int) ([]string, error) {
	var seq []string
	for _, part := range strings.Split(lhs, ",") {
		tok := Canonical(part)
		if tok == "" {
			continue
		}
		if strings.IndexFunc(tok, unicode.IsSpace) >= 0 {
			return nil, &ParseError{
				Kind:    KindMissingSeparator,
				Line:    lineNo,
				Message: "expected ',' between tokens in " + quote(tok),
			}
		}
		seq = append(seq, tok)
	}
	return seq, nil
}

func alphabet(rules []Rule) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rules {
		for _, tok := range r.Sequence {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	return out
}

func quote(s string) string {
	return "\"" + s + "\""
}
