// Package frost guards and performs threshold signature share aggregation.
//
// The kernel is two pure functions:
//
//   - CanAggregate: a non-empty batch whose shares all carry the first
//     share's (sid, round) pair
//   - Aggregate: CanAggregate, then combine; absence (ok == false) on any
//     inconsistency, never a partial result
//
// Neither says anything about how many witnesses contributed. Aggregator
// layers an optional distinct-witness threshold and a pluggable Combiner
// on top, and Check explains a rejection with an *AggregateError.
//
// The package-level Aggregate uses PlaceholderCombiner, which returns a
// fixed zero-valued signature. LagrangeCombiner performs real
// interpolation at x=0 over GF(2^64-59) with witness IDs as
// x-coordinates; it is a field-arithmetic stand-in, not curve math.
//
// Collector wraps an Aggregator in the collection state machine
//
//	Idle -> Collecting(sid, round) -> Aggregated(sig) | Rejected(reason)
//
// for callers that receive shares one at a time. It is the only stateful
// type here and is safe for concurrent use.
package frost
