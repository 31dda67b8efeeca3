package metrics

import "sync/atomic"

// CounterSnapshot is a read-only copy of a Counter.
type CounterSnapshot int64

// Count returns the count at the time the snapshot was taken.
func (c CounterSnapshot) Count() int64 { return int64(c) }

// Counter holds an int64 value that can be incremented and decremented.
type Counter struct {
	count atomic.Int64
}

// NewCounter constructs a new Counter.
func NewCounter() *Counter {
	return new(Counter)
}

// GetOrRegisterCounter returns an existing Counter or constructs and registers
// a new Counter.
func GetOrRegisterCounter(name string, r Registry) *Counter {
	return getOrRegister(name, NewCounter, r)
}

// NewRegisteredCounter constructs and registers a new Counter. A name that is
// already taken returns the counter registered under it.
func NewRegisteredCounter(name string, r Registry) *Counter {
	return GetOrRegisterCounter(name, r)
}

// Clear sets the counter to zero.
func (c *Counter) Clear() {
	c.count.Store(0)
}

// Dec decrements the counter by the given amount.
func (c *Counter) Dec(i int64) {
	c.count.Add(-i)
}

// Inc increments the counter by the given amount.
func (c *Counter) Inc(i int64) {
	c.count.Add(i)
}

// Snapshot returns a read-only copy of the counter.
func (c *Counter) Snapshot() CounterSnapshot {
	return CounterSnapshot(c.count.Load())
}
