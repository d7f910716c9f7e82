package grammar

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Binding maps a physical key token to a grammar symbol.
type Binding struct {
	Key    string `json:"key" yaml:"key"`
	Symbol string `json:"symbol" yaml:"symbol"`
}

// NamedKeys are key tokens that bind directly to a symbol of the same name
// (case-insensitively), so "Down" in a rule is played with the down arrow.
var NamedKeys = []string{
	"up", "down", "left", "right",
	"space", "enter", "tab", "backspace", "delete",
}

// KeyPool is the order in which free keys are handed to symbols that have
// no explicit or named binding.
var KeyPool = []string{
	"q", "w", "e", "r", "t", "y", "u", "i", "o", "p",
	"a", "s", "d", "f", "g", "h", "j", "k", "l",
	"z", "x", "c", "v", "b", "n", "m",
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "0",
}

// NormalizeKey canonicalises a key token. Multi-character tokens are
// lowercased and "+" modifier joins become "-" ("Ctrl+X" -> "ctrl-x");
// single characters keep their case.
func NormalizeKey(k string) string {
	k = Canonical(k)
	if utf8.RuneCountInString(k) <= 1 {
		return k
	}
	if k != "+" {
		k = strings.ReplaceAll(k, "+", "-")
	}
	return strings.ToLower(k)
}

// Classify produces the full binding table for an alphabet.
//
// Explicit bindings win; a later explicit entry for the same key replaces an
// earlier one. Symbols still unbound get a named key when one matches, then
// the next unused key from KeyPool. Symbols left over once the pool runs dry
// stay unbound. The result is sorted by key.
func Classify(alphabet []string, explicit []Binding) []Binding {
	byKey := make(map[string]string)
	covered := make(map[string]bool)

	for _, b := range explicit {
		key := NormalizeKey(b.Key)
		sym := Canonical(b.Symbol)
		if key == "" || sym == "" {
			continue
		}
		byKey[key] = sym
	}
	for _, sym := range byKey {
		covered[sym] = true
	}

	named := make(map[string]string, len(NamedKeys))
	for _, k := range NamedKeys {
		named[k] = k
	}

	var pending []string
	for _, sym := range alphabet {
		if covered[sym] {
			continue
		}
		if key, ok := named[strings.ToLower(sym)]; ok {
			if _, taken := byKey[key]; !taken {
				byKey[key] = sym
				covered[sym] = true
				continue
			}
		}
		pending = append(pending, sym)
	}

	pool := 0
	for _, sym := range pending {
		if covered[sym] {
			continue
		}
		for pool < len(KeyPool) {
			if _, taken := byKey[KeyPool[pool]]; !taken {
				break
			}
			pool++
		}
		if pool >= len(KeyPool) {
			break
		}
		byKey[KeyPool[pool]] = sym
		covered[sym] = true
		pool++
	}

	return sortedBindings(byKey)
}

// LoadBindingsFile reads a YAML mapping of key to symbol:
//
//	q: "[BP]"
//	down: Down
func LoadBindingsFile(path string) ([]Binding, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{Kind: KindIO, Path: path, Message: "reading bindings", Err: err}
	}
	out, err := ParseBindings(data)
	if err != nil {
		return nil, withPath(err, path)
	}
	return out, nil
}

// ParseBindings decodes a YAML key-to-symbol mapping.
func ParseBindings(data []byte) ([]Binding, error) {
	var raw map[string]string
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, &ParseError{Kind: KindInvalidSource, Message: "decoding bindings", Err: err}
	}

	m := make(map[string]string, len(raw))
	for k, v := range raw {
		key := NormalizeKey(k)
		if key == "" {
			return nil, &ParseError{Kind: KindInvalidSource, Message: "binding with empty key"}
		}
		sym := Canonical(v)
		if sym == "" {
			return nil, &ParseError{Kind: KindInvalidSource, Message: fmt.Sprintf("binding %q has empty symbol", key)}
		}
		m[key] = sym
	}
	return sortedBindings(m), nil
}

// BindingsFromMap converts a key-to-symbol map, as found in configuration,
// into a sorted binding list.
func BindingsFromMap(m map[string]string) []Binding {
	norm := make(map[string]string, len(m))
	for k, v := range m {
		key, sym := NormalizeKey(k), Canonical(v)
		if key == "" || sym == "" {
			continue
		}
		norm[key] = sym
	}
	return sortedBindings(norm)
}

func sortedBindings(m map[string]string) []Binding {
	out := make([]Binding, 0, len(m))
	for k, v := range m {
		out = append(out, Binding{Key: k, Symbol: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}
