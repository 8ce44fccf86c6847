package testutil

import (
	"fmt"
	"math/rand/v2"

	"github.com/roach88/auramodel/internal/ir"
)

// Corpus generates small, deliberately collision-heavy kernel inputs from
// a fixed seed. The same seed always yields the same values, so property
// failures are reproducible.
//
// Value ranges are kept tiny (a handful of fact IDs, sessions, rounds and
// counters) so duplicates, mismatches and ties actually occur.
//
// Not safe for concurrent use; give each goroutine its own Corpus.
type Corpus struct {
	rng *rand.Rand
}

// NewCorpus creates a corpus seeded with seed.
func NewCorpus(seed uint64) *Corpus {
	return &Corpus{rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Journal returns a journal of up to maxLen facts drawn from f0..f5.
func (c *Corpus) Journal(maxLen int) ir.Journal {
	n := c.rng.IntN(maxLen + 1)
	j := make(ir.Journal, n)
	for i := range j {
		j[i] = ir.NewFact(ir.FactID(fmt.Sprintf("f%d", c.rng.IntN(6))))
	}
	return j
}

// TimeStamp returns a timestamp with both components in [0, 4).
func (c *Corpus) TimeStamp() ir.TimeStamp {
	return ir.TimeStamp{Logical: c.rng.Uint64N(4), OrderClock: c.rng.Uint64N(4)}
}

// Policy returns either policy with equal probability.
func (c *Corpus) Policy() ir.Policy {
	return ir.Policy{IgnorePhysical: c.rng.IntN(2) == 1}
}

// Snapshot returns up to maxLen steps with costs in [0, 100).
func (c *Corpus) Snapshot(maxLen int) ir.Snapshot {
	n := c.rng.IntN(maxLen + 1)
	steps := make([]ir.Step, n)
	for i := range steps {
		steps[i] = ir.Step{
			FlowCost: c.rng.Uint64N(100),
			CapReq:   ir.CapRequirement(c.rng.IntN(3)),
		}
	}
	return ir.Snapshot{Steps: steps}
}

// ConsistentBatch returns 1..maxLen shares of one (sid, round).
func (c *Corpus) ConsistentBatch(maxLen int) []ir.Share {
	sid := ir.SessionID(c.rng.Uint64N(3))
	round := ir.Round(c.rng.Uint64N(3))
	n := 1 + c.rng.IntN(maxLen)
	shares := make([]ir.Share, n)
	for i := range shares {
		shares[i] = ir.Share{
			SID:     sid,
			Round:   round,
			Witness: ir.WitnessID(i + 1),
			Data:    ir.ShareData(c.rng.Uint64N(1000)),
		}
	}
	return shares
}

// MixedBatch returns a consistent batch with one share (never the first)
// moved to a different session or round.
func (c *Corpus) MixedBatch(maxLen int) []ir.Share {
	if maxLen < 2 {
		maxLen = 2
	}
	shares := c.ConsistentBatch(maxLen)
	for len(shares) < 2 {
		shares = c.ConsistentBatch(maxLen)
	}
	i := 1 + c.rng.IntN(len(shares)-1)
	if c.rng.IntN(2) == 0 {
		shares[i].SID++
	} else {
		shares[i].Round++
	}
	return shares
}
