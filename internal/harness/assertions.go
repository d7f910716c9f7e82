package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/ftality/internal/trace"
)

// AssertionError is returned when an assertion fails. It carries the full
// trace to help debug the failure.
type AssertionError struct {
	Type     string        // Assertion type for categorization
	Expected string        // Human-readable expected outcome
	Actual   string        // Human-readable actual outcome
	Trace    []trace.Event // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, ev := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s @%dms -> state %d", ev.Seq, ev.Key, ev.AtMS, ev.State)
			if len(ev.Outputs) > 0 {
				fmt.Fprintf(&buf, " %v", ev.Outputs)
			}
			if ev.TimedOut {
				buf.WriteString(" (timed out)")
			}
			if ev.Unbound {
				buf.WriteString(" (unbound)")
			}
			buf.WriteString("\n")
		}
	}
	return buf.String()
}

func countFired(events []trace.Event, label string) int {
	n := 0
	for _, out := range trace.Fired(events) {
		if out == label {
			n++
		}
	}
	return n
}

// assertFired checks that label fired at least once.
func assertFired(events []trace.Event, a Assertion) error {
	if countFired(events, a.Label) > 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFired,
		Expected: fmt.Sprintf("%q to fire", a.Label),
		Actual:   fmt.Sprintf("fired: %v", trace.Fired(events)),
		Trace:    events,
	}
}

// assertNotFired checks that label never fired.
func assertNotFired(events []trace.Event, a Assertion) error {
	n := countFired(events, a.Label)
	if n == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertNotFired,
		Expected: fmt.Sprintf("%q never to fire", a.Label),
		Actual:   fmt.Sprintf("fired %d time(s)", n),
		Trace:    events,
	}
}

// assertFiredCount checks that label fired exactly Count times.
func assertFiredCount(events []trace.Event, a Assertion) error {
	n := countFired(events, a.Label)
	if n == a.Count {
		return nil
	}
	return &AssertionError{
		Type:     AssertFiredCount,
		Expected: fmt.Sprintf("%d firings of %q", a.Count, a.Label),
		Actual:   fmt.Sprintf("%d firings", n),
		Trace:    events,
	}
}

// assertFiredOrder checks that the labels first fire in the listed order.
// Other firings may come in between.
func assertFiredOrder(events []trace.Event, a Assertion) error {
	// First position of each expected label, 1-indexed so zero means absent.
	positions := make(map[string]int)
	for i, out := range trace.Fired(events) {
		for _, label := range a.Labels {
			if out == label && positions[label] == 0 {
				positions[label] = i + 1
			}
		}
	}

	for _, label := range a.Labels {
		if positions[label] == 0 {
			return &AssertionError{
				Type:     AssertFiredOrder,
				Expected: fmt.Sprintf("all labels fired: %v", a.Labels),
				Actual:   fmt.Sprintf("missing label: %s", label),
				Trace:    events,
			}
		}
	}

	for i := 1; i < len(a.Labels); i++ {
		prev, curr := a.Labels[i-1], a.Labels[i]
		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertFiredOrder,
				Expected: fmt.Sprintf("labels in order: %v", a.Labels),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: events,
			}
		}
	}
	return nil
}

// assertFinalState checks where the session ended.
func assertFinalState(final FinalState, a Assertion) error {
	if a.Root != nil {
		atRoot := final.State == 0
		if atRoot != *a.Root {
			want := "session at root"
			if !*a.Root {
				want = "session away from root"
			}
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: want,
				Actual:   fmt.Sprintf("state %d", final.State),
			}
		}
	}
	if a.State != nil && final.State != *a.State {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state %d", *a.State),
			Actual:   fmt.Sprintf("state %d", final.State),
		}
	}
	return nil
}

// EvaluateAssertions runs every assertion against result and returns the
// failure messages, in assertion order.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		var err error
		switch a.Type {
		case AssertFired:
			err = assertFired(result.Trace, a)
		case AssertNotFired:
			err = assertNotFired(result.Trace, a)
		case AssertFiredCount:
			err = assertFiredCount(result.Trace, a)
		case AssertFiredOrder:
			err = assertFiredOrder(result.Trace, a)
		case AssertFinalState:
			err = assertFinalState(result.Final, a)
		default:
			err = fmt.Errorf("unknown assertion type %q", a.Type)
		}
		if err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}
