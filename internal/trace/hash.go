package trace

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix leaves room for a
// future change of encoding.
const (
	DomainRules = "ftality/rules/v1"
	DomainTrace = "ftality/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Combo is the hashed view of one rule.
type Combo struct {
	Sequence []string
	Label    string
}

// RulesHash identifies a rule set together with its key bindings. Rule
// order is significant; binding map order is not.
func RulesHash(combos []Combo, bindings map[string]string) (string, error) {
	rules := make([]any, len(combos))
	for i, c := range combos {
		seq := c.Sequence
		if seq == nil {
			seq = []string{}
		}
		rules[i] = map[string]any{"sequence": seq, "label": c.Label}
	}
	keys := make(map[string]any, len(bindings))
	for k, v := range bindings {
		keys[k] = v
	}

	canonical, err := MarshalCanonical(map[string]any{
		"rules":    rules,
		"bindings": keys,
	})
	if err != nil {
		return "", fmt.Errorf("RulesHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRules, canonical), nil
}

// Hash identifies a sequence of events.
func Hash(events []Event) (string, error) {
	canonical, err := MarshalCanonical(events)
	if err != nil {
		return "", fmt.Errorf("trace Hash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}
