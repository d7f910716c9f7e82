package harness

import (
	"github.com/roach88/ftality/internal/trace"
)

// FinalState is where the session stood after the last step.
type FinalState struct {
	State   int `json:"state"`
	Failure int `json:"failure"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass is true when every step expectation and assertion held.
	Pass bool `json:"pass"`

	// Trace has one event per step, in order.
	Trace []trace.Event `json:"trace"`

	// Errors contains validation error messages. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the session's state after the last step.
	Final FinalState `json:"final"`

	// RulesHash identifies the rule set and bindings the run used.
	RulesHash string `json:"rules_hash"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []trace.Event{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a trace event.
func (r *Result) AddEvent(ev trace.Event) {
	r.Trace = append(r.Trace, ev)
}

// Fired returns every label that fired during the run, in order.
func (r *Result) Fired() []string {
	return trace.Fired(r.Trace)
}
