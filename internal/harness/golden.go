package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/ftality/internal/trace"
)

// TraceSnapshot captures the complete trace for a scenario execution.
// It is serialised as canonical JSON for deterministic comparison.
type TraceSnapshot struct {
	ScenarioName string        `json:"scenario_name"`
	SessionID    string        `json:"session_id,omitempty"`
	RulesHash    string        `json:"rules_hash,omitempty"`
	Trace        []trace.Event `json:"trace"`
}

// toCanonicalMap converts the snapshot to the shapes MarshalCanonical
// accepts.
func (s *TraceSnapshot) toCanonicalMap() map[string]any {
	events := make([]any, len(s.Trace))
	for i, ev := range s.Trace {
		events[i] = ev.Object()
	}

	result := map[string]any{
		"scenario_name": s.ScenarioName,
		"trace":         events,
	}
	if s.SessionID != "" {
		result["session_id"] = s.SessionID
	}
	if s.RulesHash != "" {
		result["rules_hash"] = s.RulesHash
	}
	return result
}

// Snapshot renders a scenario's result as golden-file bytes.
func Snapshot(scenario *Scenario, result *Result) ([]byte, error) {
	snap := TraceSnapshot{
		ScenarioName: scenario.Name,
		SessionID:    scenario.SessionID,
		RulesHash:    result.RulesHash,
		Trace:        result.Trace,
	}
	return trace.MarshalCanonical(snap.toCanonicalMap())
}

// RunWithGolden executes a scenario and compares the trace against a golden
// file stored at testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails. Test failure (via goldie)
// occurs if the trace doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := Snapshot(scenario, result)
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
	return result, nil
}

// AssertGolden compares an existing result's trace against a golden file
// without re-running the scenario.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	snap := TraceSnapshot{
		ScenarioName: scenarioName,
		RulesHash:    result.RulesHash,
		Trace:        result.Trace,
	}
	data, err := trace.MarshalCanonical(snap.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)
	return nil
}
