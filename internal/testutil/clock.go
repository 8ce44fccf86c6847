package testutil

import "sync"

// DeterministicClock is a resettable monotonic sequence for trace events.
//
// The first call to Next returns 1; after Reset the next call returns 1
// again, so the same scenario run twice yields identical seq values.
//
// Thread-safety: all methods are safe for concurrent use.
type DeterministicClock struct {
	mu  sync.Mutex
	seq int64
}

// NewDeterministicClock creates a clock starting at 0.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{}
}

// Next increments and returns the next sequence number.
func (c *DeterministicClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Current returns the current sequence number without incrementing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset sets the clock back to 0.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}

// ManualPhysical is a physical time source that only moves when told to.
// It satisfies timesystem.PhysicalSource.
//
// Thread-safety: all methods are safe for concurrent use.
type ManualPhysical struct {
	mu  sync.Mutex
	now uint64
}

// NewManualPhysical creates a source reading start.
func NewManualPhysical(start uint64) *ManualPhysical {
	return &ManualPhysical{now: start}
}

// Now returns the current reading.
func (m *ManualPhysical) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set jumps to an arbitrary reading, backwards included.
func (m *ManualPhysical) Set(now uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Advance moves the reading forward by d.
func (m *ManualPhysical) Advance(d uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += d
}
