package frost

import (
	"fmt"

	"github.com/roach88/auramodel/internal/ir"
)

// CanAggregate reports whether a batch may be combined: it must be
// non-empty and every share must carry the first share's (sid, round).
// Witness and data are unconstrained, and the number of witnesses is not
// checked.
func CanAggregate(shares []ir.Share) bool {
	if len(shares) == 0 {
		return false
	}
	first := shares[0]
	for _, s := range shares[1:] {
		if !s.SameAttempt(first) {
			return false
		}
	}
	return true
}

// Aggregate combines a consistent batch with PlaceholderCombiner.
// ok is false when CanAggregate fails; no partial result is produced.
func Aggregate(shares []ir.Share) (sig ir.Signature, ok bool) {
	return Aggregator{}.Aggregate(shares)
}

// Aggregator is CanAggregate/Aggregate with a configurable threshold and
// combination step. The zero value behaves exactly like the package-level
// functions.
type Aggregator struct {
	// Threshold is the minimum number of distinct witnesses.
	// Values <= 1 accept any non-empty consistent batch.
	Threshold int

	// Combiner produces the signature. Nil means PlaceholderCombiner.
	Combiner Combiner
}

// Check returns nil if the batch may be combined, or an *AggregateError
// naming the first reason it may not. Shares are scanned in order and
// the first inconsistent share is reported.
func (a Aggregator) Check(shares []ir.Share) error {
	if len(shares) == 0 {
		return newEmptyBatchError()
	}

	first := shares[0]
	for i := 1; i < len(shares); i++ {
		s := shares[i]
		if s.SID != first.SID {
			return newSessionMismatchError(i, uint64(first.SID), uint64(s.SID))
		}
		if s.Round != first.Round {
			return newRoundMismatchError(i, uint64(first.Round), uint64(s.Round))
		}
	}

	if a.Threshold > 1 {
		if distinct := DistinctWitnesses(shares); distinct < a.Threshold {
			return newBelowThresholdError(distinct, a.Threshold)
		}
	}
	return nil
}

// Sign is Aggregate with the rejection reason.
func (a Aggregator) Sign(shares []ir.Share) (ir.Signature, error) {
	if err := a.Check(shares); err != nil {
		return ir.Signature{}, err
	}
	sig, err := a.combiner().Combine(shares)
	if err != nil {
		return ir.Signature{}, fmt.Errorf("combine: %w", err)
	}
	return sig, nil
}

// Aggregate returns the combined signature, or ok == false if the batch
// was rejected. Callers that need the reason use Sign or Check.
func (a Aggregator) Aggregate(shares []ir.Share) (sig ir.Signature, ok bool) {
	sig, err := a.Sign(shares)
	if err != nil {
		return ir.Signature{}, false
	}
	return sig, true
}

func (a Aggregator) combiner() Combiner {
	if a.Combiner == nil {
		return PlaceholderCombiner{}
	}
	return a.Combiner
}

// DistinctWitnesses counts the distinct witness IDs in a batch.
func DistinctWitnesses(shares []ir.Share) int {
	seen := make(map[ir.WitnessID]struct{}, len(shares))
	for _, s := range shares {
		seen[s.Witness] = struct{}{}
	}
	return len(seen)
}
