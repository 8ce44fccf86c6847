// Package guard charges the cost of an effect chain.
//
// EvaluateGuards is the kernel: a left-to-right fold of each step's
// flow cost, starting from zero. Capability requirements ride along on
// every step but the kernel does not consult them.
//
// Evaluator is the authorization seam on top of the kernel: it compares
// each step's requirement against a granted capability and optionally
// enforces a flow budget, stopping at the first violation.
package guard

import (
	"math"

	"github.com/roach88/auramodel/internal/ir"
)

// EvaluateGuards charges a snapshot: the sum of its steps' flow costs.
// Total over every snapshot; the empty snapshot costs 0. Requirements
// are ignored.
func EvaluateGuards(s ir.Snapshot) ir.EffectCommand {
	return ir.EffectCommand{TotalCost: SumFlowCosts(s.Steps)}
}

// SumFlowCosts folds steps left to right from 0.
// The sum saturates at math.MaxUint64 instead of wrapping.
func SumFlowCosts(steps []ir.Step) uint64 {
	var total uint64
	for _, st := range steps {
		total = addSaturating(total, st.FlowCost)
	}
	return total
}

func addSaturating(a, b uint64) uint64 {
	if a > math.MaxUint64-b {
		return math.MaxUint64
	}
	return a + b
}

// Allows reports whether a grant covers a requirement.
func Allows(grant, required ir.CapRequirement) bool {
	return required.Compare(grant) <= 0
}

// MaxRequirement returns the highest requirement in a snapshot, the
// minimum grant that lets every step run. CapNone for an empty snapshot.
func MaxRequirement(s ir.Snapshot) ir.CapRequirement {
	highest := ir.CapNone
	for _, st := range s.Steps {
		if st.CapReq.Compare(highest) > 0 {
			highest = st.CapReq
		}
	}
	return highest
}
