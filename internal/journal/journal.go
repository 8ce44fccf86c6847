// Package journal merges replicated fact journals.
//
// Merge is the join of a join-semilattice over journals: concatenate,
// then Reduce. Reduce keeps the first occurrence of every fact identity
// and preserves the order of first occurrences.
//
// Merge is idempotent, and associative and commutative over the SET of
// fact identities it produces. It is NOT commutative over sequence
// order: Merge(a, b) lists a's facts first. Use SameFacts, not slice
// equality, when checking that two replicas converged.
package journal

import (
	"slices"

	"github.com/roach88/auramodel/internal/ir"
)

// Reduce returns j without duplicates: the first occurrence of each
// fact ID survives, later ones are dropped, order is otherwise kept.
// Payloads of dropped duplicates are discarded unexamined.
func Reduce(j ir.Journal) ir.Journal {
	seen := make(map[ir.FactID]struct{}, len(j))
	out := make(ir.Journal, 0, len(j))
	for _, f := range j {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		out = append(out, f)
	}
	return out
}

// Merge joins two replicas: Reduce(a ++ b).
func Merge(a, b ir.Journal) ir.Journal {
	joined := make(ir.Journal, 0, len(a)+len(b))
	joined = append(joined, a...)
	joined = append(joined, b...)
	return Reduce(joined)
}

// MergeAll folds Merge over replicas left to right.
// With no arguments it returns an empty journal.
func MergeAll(replicas ...ir.Journal) ir.Journal {
	out := ir.Journal{}
	for _, r := range replicas {
		out = Merge(out, r)
	}
	return out
}

// IDs lists the fact IDs of j in order, duplicates included.
func IDs(j ir.Journal) []ir.FactID {
	ids := make([]ir.FactID, len(j))
	for i, f := range j {
		ids[i] = f.ID
	}
	return ids
}

// FromIDs builds a payload-less journal.
func FromIDs(ids ...ir.FactID) ir.Journal {
	j := make(ir.Journal, len(ids))
	for i, id := range ids {
		j[i] = ir.NewFact(id)
	}
	return j
}

// Contains reports whether j holds a fact with the given ID.
func Contains(j ir.Journal, id ir.FactID) bool {
	return slices.ContainsFunc(j, func(f ir.Fact) bool { return f.ID == id })
}

// IdentitySet returns the set of fact IDs in j.
func IdentitySet(j ir.Journal) map[ir.FactID]struct{} {
	set := make(map[ir.FactID]struct{}, len(j))
	for _, f := range j {
		set[f.ID] = struct{}{}
	}
	return set
}

// SameFacts reports whether two journals hold the same set of fact
// identities, regardless of order or duplication.
func SameFacts(a, b ir.Journal) bool {
	sa, sb := IdentitySet(a), IdentitySet(b)
	if len(sa) != len(sb) {
		return false
	}
	for id := range sa {
		if _, ok := sb[id]; !ok {
			return false
		}
	}
	return true
}

// Equal reports sequence equality under fact identity.
func Equal(a, b ir.Journal) bool {
	return slices.EqualFunc(a, b, ir.Fact.Equal)
}

// IsReduced reports whether j has no duplicate identities.
func IsReduced(j ir.Journal) bool {
	return len(IdentitySet(j)) == len(j)
}
