package testutil

import (
	"sync"
	"time"
)

// Epoch is the instant a FakeClock starts at. Scenario and replay
// timestamps are offsets in milliseconds from it.
var Epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// FakeClock is a manually driven clock for tests.
//
// Unlike engine.SystemClock, FakeClock only moves when told to, so timeout
// behaviour can be exercised to the millisecond.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type FakeClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewFakeClock creates a clock standing at Epoch.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: Epoch}
}

// Now returns the current fake time.
//
// Implements engine.Clock.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d and returns the new time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
	return c.now
}

// SetMS places the clock at Epoch + ms milliseconds.
func (c *FakeClock) SetMS(ms int64) time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = AtMS(ms)
	return c.now
}

// Reset returns the clock to Epoch.
func (c *FakeClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = Epoch
}

// AtMS converts a millisecond offset into an instant relative to Epoch.
func AtMS(ms int64) time.Time {
	return Epoch.Add(time.Duration(ms) * time.Millisecond)
}
