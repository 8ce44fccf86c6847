package timesystem

import (
	"cmp"
	"slices"

	"github.com/roach88/auramodel/internal/ir"
)

// Compare orders a against b under policy.
func Compare(policy ir.Policy, a, b ir.TimeStamp) ir.Ordering {
	if o := compareUint(a.Logical, b.Logical); o != ir.Eq || policy.IgnorePhysical {
		return o
	}
	return compareUint(a.OrderClock, b.OrderClock)
}

func compareUint(a, b uint64) ir.Ordering {
	switch cmp.Compare(a, b) {
	case -1:
		return ir.Lt
	case 1:
		return ir.Gt
	default:
		return ir.Eq
	}
}

// Less reports Compare(policy, a, b) == Lt.
func Less(policy ir.Policy, a, b ir.TimeStamp) bool {
	return Compare(policy, a, b) == ir.Lt
}

// Max returns the later of a and b. On Eq it returns a.
func Max(policy ir.Policy, a, b ir.TimeStamp) ir.TimeStamp {
	if Compare(policy, b, a) == ir.Gt {
		return b
	}
	return a
}

// Sort orders timestamps in place, ascending under policy. The sort is
// stable, so timestamps that compare Eq keep their input order.
func Sort(policy ir.Policy, ts []ir.TimeStamp) {
	slices.SortStableFunc(ts, func(a, b ir.TimeStamp) int {
		return int(Compare(policy, a, b)) - int(ir.Eq)
	})
}
