// Package store provides SQLite-backed persistence for journal replicas.
//
// Each replica is a named, reduced journal: an ordered list of facts in
// which every fact ID appears once. Appending a fact the replica already
// holds is a no-op (first occurrence wins), so a stored replica always
// equals journal.Reduce of everything ever appended to it.
//
// # Ordering
//
//   - Facts are read back ORDER BY position ASC
//   - Replicas are listed ORDER BY seq ASC, id COLLATE BINARY ASC
//   - Positions are dense from 0 within a replica
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Payloads are stored as canonical JSON (ir.MarshalCanonical) so the same
// fact always produces the same bytes on disk.
package store
