package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/ftality/internal/trace"
)

func sampleTrace() []trace.Event {
	return []trace.Event{
		{Seq: 1, Key: "down", AtMS: 0, Symbol: "Down", State: 3},
		{Seq: 2, Key: "right", AtMS: 100, Symbol: "Right", State: 4},
		{Seq: 3, Key: "k", AtMS: 200, Symbol: "[FP]", State: 5, Outputs: []string{"Fireball"}},
		{Seq: 4, Key: "j", AtMS: 300, Symbol: "[BP]", State: 1, Outputs: []string{"Claw Slam"}},
		{Seq: 5, Key: "x", AtMS: 350, State: 1, Unbound: true},
		{Seq: 6, Key: "j", AtMS: 900, Symbol: "[BP]", State: 1, Outputs: []string{"Claw Slam"}, TimedOut: true},
	}
}

func TestAssertFired(t *testing.T) {
	assert.NoError(t, assertFired(sampleTrace(), Assertion{Type: AssertFired, Label: "Fireball"}))

	err := assertFired(sampleTrace(), Assertion{Type: AssertFired, Label: "Teleport"})
	require.Error(t, err)
	var ae *AssertionError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, AssertFired, ae.Type)
	assert.Contains(t, ae.Actual, "[Fireball Claw Slam Claw Slam]")
}

func TestAssertNotFired(t *testing.T) {
	assert.NoError(t, assertNotFired(sampleTrace(), Assertion{Label: "Teleport"}))

	err := assertNotFired(sampleTrace(), Assertion{Label: "Claw Slam"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fired 2 time(s)")
}

func TestAssertFiredCount(t *testing.T) {
	tests := []struct {
		label string
		count int
		ok    bool
	}{
		{"Claw Slam", 2, true},
		{"Claw Slam", 1, false},
		{"Claw Slam", 3, false},
		{"Fireball", 1, true},
		{"Teleport", 0, true},
	}
	for _, tt := range tests {
		err := assertFiredCount(sampleTrace(), Assertion{Label: tt.label, Count: tt.count})
		if tt.ok {
			assert.NoError(t, err, "%s x%d", tt.label, tt.count)
		} else {
			assert.Error(t, err, "%s x%d", tt.label, tt.count)
		}
	}
}

func TestAssertFiredOrder_Correct(t *testing.T) {
	err := assertFiredOrder(sampleTrace(), Assertion{Labels: []string{"Fireball", "Claw Slam"}})
	assert.NoError(t, err)
}

func TestAssertFiredOrder_WrongOrder(t *testing.T) {
	err := assertFiredOrder(sampleTrace(), Assertion{Labels: []string{"Claw Slam", "Fireball"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Claw Slam (pos 2) should be before Fireball (pos 1)")
}

func TestAssertFiredOrder_Missing(t *testing.T) {
	err := assertFiredOrder(sampleTrace(), Assertion{Labels: []string{"Fireball", "Teleport"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing label: Teleport")
}

func TestAssertFinalState(t *testing.T) {
	yes, no := true, false
	two, three := 2, 3

	assert.NoError(t, assertFinalState(FinalState{State: 0}, Assertion{Root: &yes}))
	assert.Error(t, assertFinalState(FinalState{State: 2}, Assertion{Root: &yes}))
	assert.NoError(t, assertFinalState(FinalState{State: 2}, Assertion{Root: &no}))
	assert.Error(t, assertFinalState(FinalState{State: 0}, Assertion{Root: &no}))
	assert.NoError(t, assertFinalState(FinalState{State: 2}, Assertion{State: &two}))

	err := assertFinalState(FinalState{State: 2}, Assertion{Root: &no, State: &three})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Expected: state 3")
}

func TestEvaluateAssertions(t *testing.T) {
	result := NewResult()
	for _, ev := range sampleTrace() {
		result.AddEvent(ev)
	}
	result.Final = FinalState{State: 1}

	errs := EvaluateAssertions(result, []Assertion{
		{Type: AssertFired, Label: "Fireball"},
		{Type: AssertNotFired, Label: "Fireball"},
		{Type: "bogus"},
		{Type: AssertFiredCount, Label: "Claw Slam", Count: 2},
	})
	require.Len(t, errs, 2)
	assert.Contains(t, errs[0], "assertions[1]")
	assert.Contains(t, errs[1], `assertions[2]: unknown assertion type "bogus"`)
}

func TestAssertionError_ErrorFormat(t *testing.T) {
	err := &AssertionError{
		Type:     AssertFired,
		Expected: `"Teleport" to fire`,
		Actual:   "fired: []",
		Trace:    sampleTrace(),
	}

	msg := err.Error()
	assert.Contains(t, msg, "Assertion failed: fired\n")
	assert.Contains(t, msg, `  Expected: "Teleport" to fire`)
	assert.Contains(t, msg, "  [3] k @200ms -> state 5 [Fireball]\n")
	assert.Contains(t, msg, "  [5] x @350ms -> state 1 (unbound)\n")
	assert.Contains(t, msg, "  [6] j @900ms -> state 1 [Claw Slam] (timed out)\n")
}

func TestResult_AddError(t *testing.T) {
	r := NewResult()
	assert.True(t, r.Pass)
	r.AddError("boom")
	assert.False(t, r.Pass)
	assert.Equal(t, []string{"boom"}, r.Errors)
}
