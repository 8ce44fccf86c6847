package harness

import (
	"errors"
	"fmt"

	"github.com/roach88/auramodel/internal/frost"
	"github.com/roach88/auramodel/internal/guard"
	"github.com/roach88/auramodel/internal/ir"
	"github.com/roach88/auramodel/internal/journal"
	"github.com/roach88/auramodel/internal/timesystem"
)

// evaluation is the traced input and observed output of one check.
type evaluation struct {
	input  map[string]any
	output map[string]any
}

// evaluate runs a validated check against its kernel.
func (r *Runner) evaluate(c *Check) (evaluation, error) {
	switch c.Kernel {
	case KernelCanAggregate:
		shares := sharesToIR(c.Shares)
		return evaluation{
			input:  map[string]any{"shares": sharesToTrace(shares)},
			output: map[string]any{"ok": frost.CanAggregate(shares)},
		}, nil

	case KernelAggregate:
		return r.evaluateAggregate(c)

	case KernelGuards:
		snapshot := snapshotToIR(c.Steps)
		cmd := guard.EvaluateGuards(snapshot)
		return evaluation{
			input:  map[string]any{"steps": stepsToTrace(snapshot)},
			output: map[string]any{"total_cost": cmd.TotalCost},
		}, nil

	case KernelEvaluate:
		return r.evaluateEvaluator(c)

	case KernelReduce:
		in := journalFromIDs(c.Journal)
		return evaluation{
			input:  map[string]any{"journal": journalToTrace(in)},
			output: map[string]any{"journal": journalToTrace(journal.Reduce(in))},
		}, nil

	case KernelMerge:
		a, b := journalFromIDs(c.A), journalFromIDs(c.B)
		return evaluation{
			input: map[string]any{
				"a": journalToTrace(a),
				"b": journalToTrace(b),
			},
			output: map[string]any{"journal": journalToTrace(journal.Merge(a, b))},
		}, nil

	case KernelCompare:
		policy := r.config.Policy()
		if c.Policy != nil {
			policy = ir.Policy{IgnorePhysical: c.Policy.IgnorePhysical}
		}
		left, right := c.Left.toIR(), c.Right.toIR()
		return evaluation{
			input: map[string]any{
				"ignore_physical": policy.IgnorePhysical,
				"left":            timeStampToTrace(left),
				"right":           timeStampToTrace(right),
			},
			output: map[string]any{"ordering": timesystem.Compare(policy, left, right).String()},
		}, nil
	}

	return evaluation{}, fmt.Errorf("unknown kernel %q", c.Kernel)
}

func (r *Runner) evaluateAggregate(c *Check) (evaluation, error) {
	agg, err := r.config.Aggregator()
	if err != nil {
		return evaluation{}, err
	}
	if c.Threshold != nil {
		agg.Threshold = *c.Threshold
	}
	if c.Combiner != "" {
		comb, err := frost.NewCombiner(c.Combiner)
		if err != nil {
			return evaluation{}, err
		}
		agg.Combiner = comb
	}

	shares := sharesToIR(c.Shares)
	input := map[string]any{
		"shares":    sharesToTrace(shares),
		"threshold": uint64(max(agg.Threshold, 1)),
	}

	sig, err := agg.Sign(shares)
	if err != nil {
		var ae *frost.AggregateError
		if !errors.As(err, &ae) {
			return evaluation{}, err
		}
		return evaluation{
			input:  input,
			output: map[string]any{"ok": false, "reason": string(ae.Code)},
		}, nil
	}

	transcript, err := ir.TranscriptHash(shares)
	if err != nil {
		return evaluation{}, err
	}
	return evaluation{
		input: input,
		output: map[string]any{
			"ok":         true,
			"signature":  sig.Value,
			"transcript": transcript,
		},
	}, nil
}

func (r *Runner) evaluateEvaluator(c *Check) (evaluation, error) {
	ev, err := r.config.Evaluator()
	if err != nil {
		return evaluation{}, err
	}
	if c.Grant != "" {
		grant, err := ir.ParseCapRequirement(c.Grant)
		if err != nil {
			return evaluation{}, err
		}
		ev.Grant = grant
	}
	if c.Budget != nil {
		ev.Budget = *c.Budget
	}

	snapshot := snapshotToIR(c.Steps)
	input := map[string]any{
		"steps":  stepsToTrace(snapshot),
		"grant":  ev.Grant.String(),
		"budget": ev.Budget,
	}

	cmd, err := ev.Evaluate(snapshot)
	if err != nil {
		var ge *guard.GuardError
		if !errors.As(err, &ge) {
			return evaluation{}, err
		}
		return evaluation{
			input: input,
			output: map[string]any{
				"error":      string(ge.Code),
				"step":       uint64(ge.StepIndex),
				"total_cost": ge.Charged,
			},
		}, nil
	}
	return evaluation{
		input:  input,
		output: map[string]any{"total_cost": cmd.TotalCost},
	}, nil
}

// expected overlays the fields set in e onto got, so a go-cmp diff of the
// two shows only the fields that were asked for and differ.
func expected(e Expect, got map[string]any) map[string]any {
	want := make(map[string]any, len(got))
	for k, v := range got {
		want[k] = v
	}
	if e.OK != nil {
		want["ok"] = *e.OK
	}
	if e.Signature != nil {
		want["signature"] = *e.Signature
	}
	if e.Reason != "" {
		want["reason"] = e.Reason
	}
	if e.TotalCost != nil {
		want["total_cost"] = *e.TotalCost
	}
	if e.Error != "" {
		want["error"] = e.Error
	}
	if e.Journal != nil {
		want["journal"] = stringsToTrace(e.Journal)
	}
	if e.Ordering != "" {
		want["ordering"] = e.Ordering
		if o, err := ir.ParseOrdering(e.Ordering); err == nil {
			want["ordering"] = o.String()
		}
	}
	return want
}

func sharesToIR(in []ShareInput) []ir.Share {
	shares := make([]ir.Share, len(in))
	for i, s := range in {
		shares[i] = s.toIR()
	}
	return shares
}

// snapshotToIR converts validated steps. An empty cap_req means none.
func snapshotToIR(in []StepInput) ir.Snapshot {
	steps := make([]ir.Step, len(in))
	for i, s := range in {
		req := ir.CapNone
		if s.CapReq != "" {
			req, _ = ir.ParseCapRequirement(s.CapReq)
		}
		steps[i] = ir.Step{FlowCost: s.FlowCost, CapReq: req}
	}
	return ir.Snapshot{Steps: steps}
}

func sharesToTrace(shares []ir.Share) []any {
	out := make([]any, len(shares))
	for i, s := range shares {
		out[i] = map[string]any{
			"sid":     uint64(s.SID),
			"round":   uint64(s.Round),
			"witness": uint64(s.Witness),
			"data":    uint64(s.Data),
		}
	}
	return out
}

func stepsToTrace(s ir.Snapshot) []any {
	out := make([]any, len(s.Steps))
	for i, step := range s.Steps {
		out[i] = map[string]any{
			"flow_cost": step.FlowCost,
			"cap_req":   step.CapReq.String(),
		}
	}
	return out
}

func journalToTrace(j ir.Journal) []any {
	out := make([]any, len(j))
	for i, f := range j {
		out[i] = string(f.ID)
	}
	return out
}

func stringsToTrace(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

func timeStampToTrace(ts ir.TimeStamp) map[string]any {
	return map[string]any{
		"logical":     ts.Logical,
		"order_clock": ts.OrderClock,
	}
}
