// Package clock provides an abstraction for time operations to improve testability.
// Instead of calling time.Now() directly, code can use the Clock interface which
// can be mocked in tests to control time-dependent behavior. Every context
// timestamp in the system flows through a Clock.
package clock

import (
	"sync"
	"time"
)

// Clock is an interface for time operations.
// This allows code to be tested with mock clocks.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time from the system clock.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Ensure RealClock implements Clock.
var _ Clock = RealClock{}

// FixedClock implements Clock with a predetermined time that advances by a
// fixed step on every call. With a zero step it always returns the same
// instant. Tests use it to verify that successive context timestamps are
// well-formed and non-decreasing.
type FixedClock struct {
	mu      sync.Mutex
	current time.Time
	step    time.Duration
}

// NewFixedClock creates a FixedClock starting at the given time, advancing
// by step after each Now call.
func NewFixedClock(at time.Time, step time.Duration) *FixedClock {
	return &FixedClock{current: at, step: step}
}

// Now returns the clock's current time and advances it by the configured step.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.current
	c.current = c.current.Add(c.step)
	return now
}

// Ensure FixedClock implements Clock.
var _ Clock = (*FixedClock)(nil)
