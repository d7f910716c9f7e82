package harness

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"time"

	"github.com/roach88/ftality/internal/engine"
	"github.com/roach88/ftality/internal/grammar"
	"github.com/roach88/ftality/internal/testutil"
)

// Harness is the test execution engine. It drives one session with a
// deterministic clock and session ID.
type Harness struct {
	session *engine.Session
	clock   *testutil.FakeClock
	logger  *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs on a freshly built Config and Session.
//
// Execution flow:
//  1. Load the rule source and build the engine config
//  2. Feed every step at its at_ms on a fake clock
//  3. Check each step's expect clause against the key's outputs
//  4. Evaluate assertions over the whole trace
//
// A returned error means the scenario could not run at all; failed
// expectations are reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := BuildConfig(scenario)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	h := &Harness{
		session: engine.NewSession(cfg, testutil.NewFixedSessionGenerator(scenario.SessionID),
			engine.WithLogger(logger)),
		clock:  testutil.NewFakeClock(),
		logger: logger,
	}

	result := NewResult()
	result.RulesHash, err = cfg.RulesHash()
	if err != nil {
		return nil, fmt.Errorf("failed to hash rules: %w", err)
	}

	h.executeSteps(scenario.Steps, result)

	d := h.session.Diagnostics()
	result.Final = FinalState{State: int(d.State), Failure: int(d.Failure)}

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}
	return result, nil
}

// BuildConfig loads the scenario's rule source and applies its bindings
// and timeout.
func BuildConfig(scenario *Scenario) (*engine.Config, error) {
	var (
		g   *grammar.Grammar
		err error
	)
	if scenario.Rules != "" {
		g, err = grammar.Load(scenario.Rules)
	} else {
		g, err = grammar.ParseString(scenario.Grammar)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	var opts []engine.Option
	if scenario.TimeoutMS > 0 {
		opts = append(opts, engine.WithTimeout(time.Duration(scenario.TimeoutMS)*time.Millisecond))
	}
	return engine.FromGrammar(g, grammar.BindingsFromMap(scenario.Bindings), opts...), nil
}

// executeSteps feeds every step and validates expect clauses.
func (h *Harness) executeSteps(steps []Step, result *Result) {
	for i, step := range steps {
		key := grammar.NormalizeKey(step.Key)
		now := h.clock.SetMS(step.AtMS)

		tr := h.session.FeedDetail(key, now)
		ev := engine.Record(h.session.Seq(), testutil.Epoch, tr, h.session.Diagnostics())
		result.AddEvent(ev)

		if step.Expect != nil {
			want := *step.Expect
			if !slices.Equal(want, tr.Outputs) {
				result.AddError(fmt.Sprintf("steps[%d] %s @%dms: expected outputs %v, got %v",
					i, key, step.AtMS, want, tr.Outputs))
			}
		}

		h.logger.Debug("step completed",
			"step", i,
			"key", key,
			"state", ev.State,
			"outputs", tr.Outputs,
		)
	}
}
