package engine

import (
	"sync/atomic"
	"time"
)

// Clock supplies "now" to front ends. The engine itself never reads it;
// Advance takes the timestamp as an argument.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time {
	return time.Now()
}

// Sequence is a monotonic counter numbering the transitions of a session.
//
// Thread-safety: Sequence is safe for concurrent use (atomic operations).
type Sequence struct {
	seq atomic.Int64
}

// Next returns the next sequence number, starting at 1.
func (s *Sequence) Next() int64 {
	return s.seq.Add(1)
}

// Current returns the last number handed out without incrementing.
func (s *Sequence) Current() int64 {
	return s.seq.Load()
}

// Reset starts numbering again from 1.
func (s *Sequence) Reset() {
	s.seq.Store(0)
}
