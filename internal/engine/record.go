package engine

import (
	"time"

	"github.com/roach88/ftality/internal/trace"
)

// Record converts a transition into a trace event. origin is the instant
// AtMS is measured from; d describes the state after the transition.
func Record(seq int64, origin time.Time, tr Transition, d Diagnostics) trace.Event {
	return trace.Event{
		Seq:      int(seq),
		Key:      tr.Key,
		AtMS:     tr.At.Sub(origin).Milliseconds(),
		Symbol:   tr.Symbol,
		State:    int(d.State),
		Failure:  int(d.Failure),
		Outputs:  tr.Outputs,
		TimedOut: tr.TimedOut,
		Unbound:  tr.Unbound,
	}
}
