// Package harness checks the kernels against YAML scenarios and against
// their algebraic laws.
//
// A scenario is a list of checks. Each check names one kernel
// (can_aggregate, aggregate, guards, evaluate, reduce, merge, compare),
// supplies its inputs and states the expected outputs:
//
//	name: merge-basic
//	description: merge keeps the left replica's order
//	checks:
//	  - kernel: merge
//	    a: [f1, f2]
//	    b: [f2, f3]
//	    expect:
//	      journal: [f1, f2, f3]
//
// Run evaluates the checks in order against the real kernels and records
// a trace of inputs and observed outputs. Only the fields present in an
// expect block are compared; a mismatch is reported as a go-cmp diff.
// Traces serialize to canonical JSON for golden-file comparison, and
// because every seq comes from a fresh deterministic clock, the same
// scenario always produces byte-identical golden output.
//
// Properties and CheckProperties exercise the laws that hold for every
// input (idempotence of reduce and merge, identity-set commutativity,
// antisymmetry of compare and so on) over a seeded corpus, so a failing
// law can be replayed from its seed.
package harness
