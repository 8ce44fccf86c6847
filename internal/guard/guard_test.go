package guard

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/ir"
)

func snapshot(steps ...ir.Step) ir.Snapshot {
	return ir.Snapshot{Steps: steps}
}

func step(cost uint64, req ir.CapRequirement) ir.Step {
	return ir.Step{FlowCost: cost, CapReq: req}
}

func TestEvaluateGuards(t *testing.T) {
	tests := []struct {
		name string
		snap ir.Snapshot
		want uint64
	}{
		{"empty", ir.Snapshot{}, 0},
		{"nil steps", snapshot(), 0},
		{"single", snapshot(step(4, ir.CapNone)), 4},
		{"three plus five", snapshot(step(3, ir.CapNone), step(5, ir.CapWrite)), 8},
		{"zero cost steps", snapshot(step(0, ir.CapRead), step(0, ir.CapWrite)), 0},
		{"saturates", snapshot(step(math.MaxUint64, ir.CapNone), step(1, ir.CapNone)), math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, ir.EffectCommand{TotalCost: tt.want}, EvaluateGuards(tt.snap))
		})
	}
}

func TestEvaluateGuardsIgnoresRequirements(t *testing.T) {
	caps := []ir.CapRequirement{ir.CapNone, ir.CapRead, ir.CapWrite}
	for _, a := range caps {
		for _, b := range caps {
			got := EvaluateGuards(snapshot(step(3, a), step(5, b)))
			assert.Equal(t, uint64(8), got.TotalCost, "caps %s,%s", a, b)
		}
	}
}

func TestSumFlowCostsOrderIndependent(t *testing.T) {
	forward := []ir.Step{step(1, ir.CapNone), step(10, ir.CapRead), step(100, ir.CapWrite)}
	backward := []ir.Step{forward[2], forward[1], forward[0]}

	assert.Equal(t, SumFlowCosts(forward), SumFlowCosts(backward))
	assert.Equal(t, uint64(111), SumFlowCosts(forward))
}

func TestAllows(t *testing.T) {
	assert.True(t, Allows(ir.CapWrite, ir.CapRead))
	assert.True(t, Allows(ir.CapRead, ir.CapRead))
	assert.True(t, Allows(ir.CapNone, ir.CapNone))
	assert.False(t, Allows(ir.CapRead, ir.CapWrite))
	assert.False(t, Allows(ir.CapNone, ir.CapRead))
}

func TestMaxRequirement(t *testing.T) {
	assert.Equal(t, ir.CapNone, MaxRequirement(ir.Snapshot{}))
	assert.Equal(t, ir.CapWrite, MaxRequirement(snapshot(step(1, ir.CapRead), step(1, ir.CapWrite), step(1, ir.CapNone))))
}

func TestEvaluatorMatchesKernelWhenUnrestricted(t *testing.T) {
	s := snapshot(step(3, ir.CapWrite), step(5, ir.CapRead))

	got, err := Evaluator{Grant: ir.CapWrite}.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, EvaluateGuards(s), got)
}

func TestEvaluatorCapabilityDenied(t *testing.T) {
	s := snapshot(step(3, ir.CapRead), step(5, ir.CapWrite), step(7, ir.CapNone))

	cmd, err := Evaluator{Grant: ir.CapRead}.Evaluate(s)
	require.Error(t, err)
	assert.True(t, IsCapabilityDenied(err))
	assert.Equal(t, ir.EffectCommand{}, cmd)

	var ge *GuardError
	require.ErrorAs(t, err, &ge)
	assert.Equal(t, 1, ge.StepIndex)
	assert.Equal(t, uint64(3), ge.Charged)
	assert.Contains(t, ge.Error(), "requires write, grant is read")
}

func TestEvaluatorBudget(t *testing.T) {
	s := snapshot(step(3, ir.CapNone), step(5, ir.CapNone))

	cmd, err := Evaluator{Grant: ir.CapWrite, Budget: 8}.Evaluate(s)
	require.NoError(t, err)
	assert.Equal(t, uint64(8), cmd.TotalCost, "budget is inclusive")

	_, err = Evaluator{Grant: ir.CapWrite, Budget: 7}.Evaluate(s)
	assert.True(t, IsBudgetExceeded(err))
	assert.False(t, IsCapabilityDenied(err))
}

func TestEvaluatorChecksCapabilityBeforeBudget(t *testing.T) {
	s := snapshot(step(100, ir.CapWrite))

	_, err := Evaluator{Grant: ir.CapNone, Budget: 1}.Evaluate(s)
	assert.True(t, IsCapabilityDenied(err))
}
