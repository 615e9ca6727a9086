package domain

import "sync/atomic"

// Tick is a frame counter value.
type Tick uint64

// After reports whether t is later than u. The comparison tolerates wraparound
// as long as the two ticks are less than half the counter range apart.
func (t Tick) After(u Tick) bool {
	return int64(t-u) > 0 //nolint:gosec // wraparound is the point
}

// Clock is a monotonically increasing frame counter. It is advanced exactly once per
// frame by the host and read by every output cell during evaluation.
type Clock struct {
	tick atomic.Uint64
}

// NewClock creates a clock at tick zero.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at the given tick.
func NewClockAt(start Tick) *Clock {
	c := &Clock{}
	c.tick.Store(uint64(start))
	return c
}

// Advance moves the clock to the next tick and returns it.
func (c *Clock) Advance() Tick {
	return Tick(c.tick.Add(1))
}

// Current returns the current tick.
func (c *Clock) Current() Tick {
	return Tick(c.tick.Load())
}
