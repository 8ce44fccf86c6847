package frost

import (
	"fmt"
	"sync"

	"github.com/roach88/auramodel/internal/ir"
)

// State is a Collector's position in the collection state machine.
type State int

const (
	StateIdle State = iota
	StateCollecting
	StateAggregated
	StateRejected
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCollecting:
		return "collecting"
	case StateAggregated:
		return "aggregated"
	case StateRejected:
		return "rejected"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateAggregated || s == StateRejected
}

// Collector accumulates shares for one signing attempt and aggregates
// them once. The first share fixes the attempt's (sid, round); shares
// from other attempts are kept so Finish can reject the batch as a whole,
// exactly as Aggregate would. There are no retries: a rejected collector
// stays rejected and the caller starts a new one.
//
// Thread-safety: all methods are safe for concurrent use.
type Collector struct {
	mu     sync.Mutex
	agg    Aggregator
	state  State
	shares []ir.Share
	sig    ir.Signature
	err    error
}

// NewCollector creates an idle collector that finishes with agg.
func NewCollector(agg Aggregator) *Collector {
	return &Collector{agg: agg}
}

// Add records a share. Idle moves to Collecting on the first share.
// Returns ErrCollectorClosed once the collector has finished.
func (c *Collector) Add(share ir.Share) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Terminal() {
		return ErrCollectorClosed
	}
	c.shares = append(c.shares, share)
	c.state = StateCollecting
	return nil
}

// Finish aggregates the collected shares and moves to Aggregated or
// Rejected. Finishing an idle collector rejects it as an empty batch.
// Subsequent calls return the same outcome.
func (c *Collector) Finish() (ir.Signature, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Terminal() {
		return c.sig, c.err
	}

	sig, err := c.agg.Sign(c.shares)
	if err != nil {
		c.state = StateRejected
		c.err = err
		return ir.Signature{}, err
	}
	c.state = StateAggregated
	c.sig = sig
	return sig, nil
}

// State returns the current state.
func (c *Collector) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Attempt returns the (sid, round) fixed by the first share.
// ok is false while the collector is idle.
func (c *Collector) Attempt() (sid ir.SessionID, round ir.Round, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.shares) == 0 {
		return 0, 0, false
	}
	return c.shares[0].SID, c.shares[0].Round, true
}

// Pending returns a copy of the shares collected so far.
func (c *Collector) Pending() []ir.Share {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]ir.Share, len(c.shares))
	copy(out, c.shares)
	return out
}
