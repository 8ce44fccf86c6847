// Package ir holds the shared data model for the aura reference kernels.
//
// This package contains value types only. The kernel packages (frost,
// guard, journal, timesystem) import ir; ir imports nothing internal.
//
// Key constraints:
//   - Every type is an immutable value; kernels never mutate their inputs
//   - Identifiers compare by value only, no ordering beyond identity
//   - All JSON tags use snake_case
//   - Closed enums (CapRequirement, Ordering) marshal as lower-case text
//   - Canonical JSON (MarshalCanonical) is the only encoding used for hashing
package ir
