package guard

import "github.com/roach88/auramodel/internal/ir"

// Evaluator charges a snapshot under a granted capability and an
// optional flow budget.
type Evaluator struct {
	// Grant is the capability held by the actor running the chain.
	Grant ir.CapRequirement

	// Budget caps the total cost. Zero means unlimited, so an Evaluator
	// granted CapWrite with no budget charges what EvaluateGuards does.
	Budget uint64
}

// Evaluate walks the chain left to right. It stops at the first step
// whose requirement exceeds Grant, or whose cost would take the total
// over a non-zero Budget, returning a *GuardError and a zero command.
func (e Evaluator) Evaluate(s ir.Snapshot) (ir.EffectCommand, error) {
	var total uint64
	for i, st := range s.Steps {
		if !Allows(e.Grant, st.CapReq) {
			return ir.EffectCommand{}, newCapabilityDeniedError(i, total, st.CapReq, e.Grant)
		}
		next := addSaturating(total, st.FlowCost)
		if e.Budget > 0 && next > e.Budget {
			return ir.EffectCommand{}, newBudgetExceededError(i, total, e.Budget)
		}
		total = next
	}
	return ir.EffectCommand{TotalCost: total}, nil
}
