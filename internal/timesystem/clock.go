package timesystem

import (
	"errors"
	"math"
	"sync"
	"time"

	"github.com/roach88/auramodel/internal/ir"
)

// PhysicalSource supplies the OrderClock component of new timestamps.
type PhysicalSource interface {
	Now() uint64
}

// PhysicalFunc adapts a function to PhysicalSource.
type PhysicalFunc func() uint64

// Now implements PhysicalSource.
func (f PhysicalFunc) Now() uint64 { return f() }

// WallClock reads Unix milliseconds from the system clock.
var WallClock PhysicalSource = PhysicalFunc(func() uint64 {
	return uint64(time.Now().UnixMilli())
})

// ErrClockExhausted is returned when the logical counter cannot advance
// past math.MaxUint64. The clock is left unchanged.
var ErrClockExhausted = errors.New("logical clock exhausted")

// Clock issues hybrid timestamps for one replica.
//
// Every timestamp from Now or Observe has a Logical strictly greater
// than any previously issued or observed, so issued timestamps are
// strictly increasing under either policy. OrderClock is whatever the
// physical source reads at issue time and only breaks ties between
// replicas.
//
// Thread-safety: Clock is safe for concurrent use.
type Clock struct {
	mu       sync.Mutex
	last     ir.TimeStamp
	physical PhysicalSource
}

// NewClock creates a clock whose logical counter starts at 0.
// A nil source uses WallClock.
func NewClock(physical PhysicalSource) *Clock {
	return NewClockAt(ir.TimeStamp{}, physical)
}

// NewClockAt resumes a clock from a persisted timestamp.
func NewClockAt(last ir.TimeStamp, physical PhysicalSource) *Clock {
	if physical == nil {
		physical = WallClock
	}
	return &Clock{last: last, physical: physical}
}

// Now issues a timestamp for a local event.
func (c *Clock) Now() (ir.TimeStamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.advance(c.last.Logical)
}

// Observe folds in a timestamp received from a peer and issues the
// timestamp of the receive event: Logical = max(local, remote) + 1.
// A remote reading at math.MaxUint64 is refused with ErrClockExhausted.
func (c *Clock) Observe(remote ir.TimeStamp) (ir.TimeStamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.advance(max(c.last.Logical, remote.Logical))
}

// advance issues floor+1. Caller holds mu.
func (c *Clock) advance(floor uint64) (ir.TimeStamp, error) {
	if floor == math.MaxUint64 {
		return c.last, ErrClockExhausted
	}
	c.last = ir.TimeStamp{Logical: floor + 1, OrderClock: c.physical.Now()}
	return c.last, nil
}

// Last returns the most recently issued timestamp without advancing.
func (c *Clock) Last() ir.TimeStamp {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last
}
