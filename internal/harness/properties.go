package harness

import (
	"fmt"
	"slices"

	"github.com/roach88/auramodel/internal/frost"
	"github.com/roach88/auramodel/internal/guard"
	"github.com/roach88/auramodel/internal/ir"
	"github.com/roach88/auramodel/internal/journal"
	"github.com/roach88/auramodel/internal/testutil"
	"github.com/roach88/auramodel/internal/timesystem"
)

// Property is an executable law over the kernels. Check draws its inputs
// from the corpus and returns an error describing the first counterexample.
type Property struct {
	Name        string
	Description string
	Check       func(c *testutil.Corpus) error
}

// KernelProperty is the trace kernel name used for property results.
const KernelProperty = "property"

// Properties returns the kernel laws in a fixed order.
func Properties() []Property {
	return []Property{
		{
			Name:        "aggregate/empty-batch",
			Description: "an empty batch can neither be aggregated nor produce a signature",
			Check: func(*testutil.Corpus) error {
				if frost.CanAggregate(nil) {
					return fmt.Errorf("CanAggregate([]) = true")
				}
				if _, ok := frost.Aggregate(nil); ok {
					return fmt.Errorf("Aggregate([]) produced a signature")
				}
				return nil
			},
		},
		{
			Name:        "aggregate/consistent-batch",
			Description: "a non-empty batch with one (sid, round) always aggregates",
			Check: func(c *testutil.Corpus) error {
				shares := c.ConsistentBatch(6)
				if !frost.CanAggregate(shares) {
					return fmt.Errorf("CanAggregate(%v) = false", shares)
				}
				if _, ok := frost.Aggregate(shares); !ok {
					return fmt.Errorf("Aggregate(%v) produced nothing", shares)
				}
				return nil
			},
		},
		{
			Name:        "aggregate/mixed-batch",
			Description: "a batch with any share off the first (sid, round) is rejected",
			Check: func(c *testutil.Corpus) error {
				shares := c.MixedBatch(6)
				if frost.CanAggregate(shares) {
					return fmt.Errorf("CanAggregate(%v) = true", shares)
				}
				if _, ok := frost.Aggregate(shares); ok {
					return fmt.Errorf("Aggregate(%v) produced a signature", shares)
				}
				return nil
			},
		},
		{
			Name:        "guards/sum",
			Description: "the effect cost is the sum of step costs, whatever each step requires",
			Check: func(c *testutil.Corpus) error {
				if got := guard.EvaluateGuards(ir.Snapshot{}).TotalCost; got != 0 {
					return fmt.Errorf("EvaluateGuards([]) = %d", got)
				}

				s := c.Snapshot(8)
				var want uint64
				for _, step := range s.Steps {
					want += step.FlowCost
				}
				if got := guard.EvaluateGuards(s).TotalCost; got != want {
					return fmt.Errorf("EvaluateGuards(%v) = %d, want %d", s.Steps, got, want)
				}

				relabelled := ir.Snapshot{Steps: slices.Clone(s.Steps)}
				for i := range relabelled.Steps {
					relabelled.Steps[i].CapReq = ir.CapWrite - relabelled.Steps[i].CapReq
				}
				if got := guard.EvaluateGuards(relabelled).TotalCost; got != want {
					return fmt.Errorf("cost changed with capability requirements: %d, want %d", got, want)
				}
				return nil
			},
		},
		{
			Name:        "journal/reduce-idempotent",
			Description: "reduce(reduce(j)) == reduce(j)",
			Check: func(c *testutil.Corpus) error {
				j := c.Journal(8)
				once := journal.Reduce(j)
				if twice := journal.Reduce(once); !journal.Equal(once, twice) {
					return fmt.Errorf("reduce not idempotent on %v: %v then %v",
						journal.IDs(j), journal.IDs(once), journal.IDs(twice))
				}
				return nil
			},
		},
		{
			Name:        "journal/merge-self",
			Description: "merge(j, j) == reduce(j)",
			Check: func(c *testutil.Corpus) error {
				j := c.Journal(8)
				if got, want := journal.Merge(j, j), journal.Reduce(j); !journal.Equal(got, want) {
					return fmt.Errorf("merge(j, j) = %v, reduce(j) = %v", journal.IDs(got), journal.IDs(want))
				}
				return nil
			},
		},
		{
			Name:        "journal/merge-commutes",
			Description: "merge(a, b) and merge(b, a) hold the same fact identities",
			Check: func(c *testutil.Corpus) error {
				a, b := c.Journal(6), c.Journal(6)
				ab, ba := journal.Merge(a, b), journal.Merge(b, a)
				if !journal.SameFacts(ab, ba) {
					return fmt.Errorf("merge(a, b) = %v, merge(b, a) = %v", journal.IDs(ab), journal.IDs(ba))
				}
				return nil
			},
		},
		{
			Name:        "journal/merge-associates",
			Description: "merge(merge(a, b), c) == merge(a, merge(b, c))",
			Check: func(c *testutil.Corpus) error {
				a, b, d := c.Journal(5), c.Journal(5), c.Journal(5)
				left := journal.Merge(journal.Merge(a, b), d)
				right := journal.Merge(a, journal.Merge(b, d))
				if !journal.Equal(left, right) {
					return fmt.Errorf("left fold %v, right fold %v", journal.IDs(left), journal.IDs(right))
				}
				return nil
			},
		},
		{
			Name:        "clock/antisymmetric",
			Description: "compare(p, a, b) is Gt exactly when compare(p, b, a) is Lt",
			Check: func(c *testutil.Corpus) error {
				p, a, b := c.Policy(), c.TimeStamp(), c.TimeStamp()
				ab := timesystem.Compare(p, a, b)
				ba := timesystem.Compare(p, b, a)
				if ab.Reverse() != ba {
					return fmt.Errorf("compare(%+v, %s, %s) = %s but reversed = %s", p, a, b, ab, ba)
				}
				if timesystem.Compare(p, a, a) != ir.Eq {
					return fmt.Errorf("compare(%+v, %s, %s) != eq", p, a, a)
				}
				return nil
			},
		},
		{
			Name:        "clock/policy",
			Description: "order_clock breaks logical ties unless physical time is ignored",
			Check: func(*testutil.Corpus) error {
				a := ir.TimeStamp{Logical: 1, OrderClock: 5}
				b := ir.TimeStamp{Logical: 1, OrderClock: 9}
				if got := timesystem.Compare(ir.Policy{}, a, b); got != ir.Lt {
					return fmt.Errorf("lexicographic compare(%s, %s) = %s, want lt", a, b, got)
				}
				if got := timesystem.Compare(ir.Policy{IgnorePhysical: true}, a, b); got != ir.Eq {
					return fmt.Errorf("logical-only compare(%s, %s) = %s, want eq", a, b, got)
				}
				return nil
			},
		},
		{
			Name:        "clock/monotonic",
			Description: "a live clock issues strictly increasing timestamps even when physical time jumps back",
			Check: func(c *testutil.Corpus) error {
				physical := testutil.NewManualPhysical(100)
				clock := timesystem.NewClock(physical)
				prev, err := clock.Now()
				if err != nil {
					return err
				}
				for i := 0; i < 8; i++ {
					physical.Set(c.TimeStamp().OrderClock)
					var next ir.TimeStamp
					if i%2 == 0 {
						next, err = clock.Now()
					} else {
						next, err = clock.Observe(c.TimeStamp())
					}
					if err != nil {
						return err
					}
					for _, p := range []ir.Policy{{}, {IgnorePhysical: true}} {
						if !timesystem.Less(p, prev, next) {
							return fmt.Errorf("clock went from %s to %s under %+v", prev, next, p)
						}
					}
					prev = next
				}
				return nil
			},
		},
	}
}

// CheckProperties runs every property iterations times against a corpus
// seeded with seed. Each property gets one trace event; its first
// counterexample, if any, becomes an error on the result.
func CheckProperties(seed uint64, iterations int) *Result {
	return checkProperties(Properties(), seed, iterations)
}

func checkProperties(props []Property, seed uint64, iterations int) *Result {
	if iterations < 1 {
		iterations = 1
	}

	clock := testutil.NewDeterministicClock()
	result := NewResult("properties", fmt.Sprintf("seed-%d", seed))

	for _, p := range props {
		corpus := testutil.NewCorpus(seed)
		var failure error
		runs := 0
		for runs < iterations && failure == nil {
			failure = p.Check(corpus)
			runs++
		}

		output := map[string]any{"pass": failure == nil, "runs": uint64(runs)}
		if failure != nil {
			output["counterexample"] = failure.Error()
			result.AddError(fmt.Sprintf("%s: %v", p.Name, failure))
		}
		result.AddTrace(clock.Next(), p.Name, KernelProperty,
			map[string]any{"seed": seed, "iterations": uint64(iterations)},
			output)
	}

	return result
}
