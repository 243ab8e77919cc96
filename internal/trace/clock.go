package trace

import "sync"

// Clock is a monotonic logical clock stamping recorded events.
//
// All ordering in the event log is by seq from this clock; wall-clock
// timestamps never participate. Replaying a run therefore reproduces the
// identical order.
//
// Thread-safety: all methods are safe for concurrent use, although the
// synthesizer dispatches from a single goroutine.
type Clock struct {
	mu  sync.Mutex
	seq int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments and returns the next sequence number.
func (c *Clock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *Clock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset resets the clock to 0 for reuse across test runs.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
