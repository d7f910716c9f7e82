package grammar

import (
	"fmt"
	"os"
	"sort"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
)

// LoadCUEFile evaluates a CUE rule file.
func LoadCUEFile(path string) (*Grammar, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Kind: KindIO, Path: path, Message: "reading rules", Err: err}
	}
	g, err := ParseCUE(data, path)
	if err != nil {
		return nil, withPath(err, path)
	}
	return g, nil
}

// ParseCUE evaluates CUE source and extracts its combos and bindings.
// filename only labels positions in errors.
func ParseCUE(data []byte, filename string) (*Grammar, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	combosVal := v.LookupPath(cue.ParsePath("combos"))
	if !combosVal.Exists() {
		return nil, &ParseError{
			Kind:    KindInvalidSource,
			Message: "combos list is required",
		}
	}

	iter, err := combosVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	g := &Grammar{}
	for iter.Next() {
		rule, err := parseCUECombo(iter.Value())
		if err != nil {
			return nil, err
		}
		g.Rules = append(g.Rules, rule)
	}

	bindingsVal := v.LookupPath(cue.ParsePath("bindings"))
	if bindingsVal.Exists() {
		g.Bindings, err = parseCUEBindings(bindingsVal)
		if err != nil {
			return nil, err
		}
	}

	g.Alphabet = alphabet(g.Rules)
	return g, nil
}

func parseCUECombo(v cue.Value) (Rule, error) {
	line := v.Pos().Line()

	moveVal := v.LookupPath(cue.ParsePath("move"))
	if !moveVal.Exists() {
		return Rule{}, &ParseError{Kind: KindEmptyLabel, Line: line, Message: "combo is missing move"}
	}
	move, err := moveVal.String()
	if err != nil {
		return Rule{}, formatCUEError(err)
	}
	label := Canonical(move)
	if label == "" {
		return Rule{}, &ParseError{Kind: KindEmptyLabel, Line: line, Message: "empty move name"}
	}

	keysVal := v.LookupPath(cue.ParsePath("keys"))
	if !keysVal.Exists() {
		return Rule{}, &ParseError{Kind: KindEmptySequence, Line: line, Message: "combo is missing keys"}
	}
	var raw []string
	if err := keysVal.Decode(&raw); err != nil {
		return Rule{}, formatCUEError(err)
	}

	var seq []string
	for _, k := range raw {
		tok := Canonical(k)
		if tok == "" {
			continue
		}
		seq = append(seq, tok)
	}
	if len(seq) == 0 {
		return Rule{}, &ParseError{Kind: KindEmptySequence, Line: line, Message: "empty key sequence"}
	}

	return Rule{Sequence: seq, Label: label, Line: line}, nil
}

func parseCUEBindings(v cue.Value) ([]Binding, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []Binding
	for iter.Next() {
		sym, err := iter.Value().String()
		if err != nil {
			return nil, &ParseError{
				Kind:    KindInvalidSource,
				Line:    iter.Value().Pos().Line(),
				Message: fmt.Sprintf("binding %s must be a string", iter.Label()),
			}
		}
		out = append(out, Binding{Key: NormalizeKey(iter.Label()), Symbol: Canonical(sym)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// formatCUEError keeps the first CUE error and its line.
func formatCUEError(err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &ParseError{Kind: KindInvalidSource, Message: "invalid CUE", Err: err}
	}

	first := errs[0]
	pe := &ParseError{Kind: KindInvalidSource, Message: first.Error()}
	if positions := errors.Positions(first); len(positions) > 0 {
		pe.Line = positions[0].Line()
	}
	return pe
}
