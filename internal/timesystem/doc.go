// Package timesystem orders hybrid logical clock timestamps.
//
// A TimeStamp has two components: Logical, the primary causal counter,
// and OrderClock, a secondary tie-breaker. Compare orders two timestamps
// under a Policy:
//
//   - IgnorePhysical == false: lexicographic on (Logical, OrderClock)
//   - IgnorePhysical == true: Logical only; equal Logical means Eq even
//     when OrderClock differs
//
// Compare is pure and total. Clock is the live side: a mutex-guarded
// source that issues strictly increasing timestamps and folds in
// timestamps observed from peers.
package timesystem
