package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/ftality/internal/trace"
)

// Scenario defines a conformance test scenario: a rule set, a stream of
// timestamped keys and what is expected to fire.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Rules is the path to a rule file (.gmr text or .cue). Relative paths
	// are resolved against the scenario file's directory.
	Rules string `yaml:"rules,omitempty"`

	// Grammar holds rules inline in the text format. Exactly one of Rules
	// and Grammar must be set.
	Grammar string `yaml:"grammar,omitempty"`

	// Bindings maps key tokens to symbols and overrides inferred bindings.
	Bindings map[string]string `yaml:"bindings,omitempty"`

	// TimeoutMS is the inactivity timeout. Zero uses the engine default.
	TimeoutMS int64 `yaml:"timeout_ms,omitempty"`

	// SessionID fixes the session identifier recorded in golden files.
	// Defaults to "test-session-default".
	SessionID string `yaml:"session_id,omitempty"`

	// Steps are the key presses, in time order.
	Steps []Step `yaml:"steps"`

	// Assertions validate the whole run.
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// Step is one key press.
type Step struct {
	Key  string `yaml:"key"`
	AtMS int64  `yaml:"at_ms"`

	// Expect lists the labels this key must complete, in output order.
	// nil skips the check; an empty list asserts no output.
	Expect *[]string `yaml:"expect,omitempty"`
}

// Assertion validates the outputs or final state of a run.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Label is the combo label (fired, not_fired, fired_count).
	Label string `yaml:"label,omitempty"`

	// Labels is the expected firing order (fired_order).
	Labels []string `yaml:"labels,omitempty"`

	// Count is the expected number of firings (fired_count).
	Count int `yaml:"count,omitempty"`

	// Root and State describe the expected final state (final_state).
	Root  *bool `yaml:"root,omitempty"`
	State *int  `yaml:"state,omitempty"`
}

// Assertion type constants.
const (
	AssertFired      = "fired"
	AssertNotFired   = "not_fired"
	AssertFiredCount = "fired_count"
	AssertFiredOrder = "fired_order"
	AssertFinalState = "final_state"
)

// LoadScenario reads and parses a scenario YAML file. A relative rules
// path is resolved against the scenario's directory.
//
// Returns an error if the file doesn't exist, is malformed, contains
// unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data, filepath.Dir(path))
}

// ParseScenario parses scenario YAML, resolving a relative rules path
// against baseDir.
func ParseScenario(data []byte, baseDir string) (*Scenario, error) {
	// Strict decoding catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Rules != "" && !filepath.IsAbs(scenario.Rules) && baseDir != "" {
		scenario.Rules = filepath.Join(baseDir, scenario.Rules)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	switch {
	case s.Rules == "" && s.Grammar == "":
		return fmt.Errorf("one of rules or grammar is required")
	case s.Rules != "" && s.Grammar != "":
		return fmt.Errorf("rules and grammar are mutually exclusive")
	}
	if s.Rules != "" {
		if _, err := os.Stat(s.Rules); os.IsNotExist(err) {
			return fmt.Errorf("rules file not found: %s", s.Rules)
		}
	}

	if s.TimeoutMS < 0 {
		return fmt.Errorf("timeout_ms must be non-negative")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	var last int64
	for i, step := range s.Steps {
		if step.Key == "" {
			return fmt.Errorf("steps[%d]: key is required", i)
		}
		if step.AtMS < 0 {
			return fmt.Errorf("steps[%d]: at_ms must be non-negative", i)
		}
		if step.AtMS > trace.MaxAtMS {
			return fmt.Errorf("steps[%d]: at_ms %d exceeds %d", i, step.AtMS, trace.MaxAtMS)
		}
		if step.AtMS < last {
			return fmt.Errorf("steps[%d]: at_ms %d goes backwards (previous %d)", i, step.AtMS, last)
		}
		last = step.AtMS
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertFired, AssertNotFired:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for %s", index, a.Type)
		}
	case AssertFiredCount:
		if a.Label == "" {
			return fmt.Errorf("assertions[%d]: label is required for fired_count", index)
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for fired_count", index)
		}
	case AssertFiredOrder:
		if len(a.Labels) == 0 {
			return fmt.Errorf("assertions[%d]: labels list is required for fired_order", index)
		}
	case AssertFinalState:
		if a.Root == nil && a.State == nil {
			return fmt.Errorf("assertions[%d]: root or state is required for final_state", index)
		}
		if a.State != nil && *a.State < 0 {
			return fmt.Errorf("assertions[%d]: state must be non-negative", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}
	return nil
}
