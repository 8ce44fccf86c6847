package frost

import (
	"fmt"
	"math/big"

	"github.com/roach88/auramodel/internal/ir"
)

// Combiner turns a batch that already passed Check into a signature.
// Implementations must be pure: same batch, same signature.
type Combiner interface {
	Combine(shares []ir.Share) (ir.Signature, error)
}

// Combiner names accepted by NewCombiner.
const (
	CombinerPlaceholder = "placeholder"
	CombinerLagrange    = "lagrange"
)

// NewCombiner returns the combiner registered under name.
func NewCombiner(name string) (Combiner, error) {
	switch name {
	case "", CombinerPlaceholder:
		return PlaceholderCombiner{}, nil
	case CombinerLagrange:
		return LagrangeCombiner{}, nil
	default:
		return nil, fmt.Errorf("unknown combiner %q: must be %q or %q", name, CombinerPlaceholder, CombinerLagrange)
	}
}

// PlaceholderCombiner returns a fixed zero-valued signature for any batch.
type PlaceholderCombiner struct{}

// Combine implements Combiner.
func (PlaceholderCombiner) Combine([]ir.Share) (ir.Signature, error) {
	return ir.Signature{Value: 0}, nil
}

// FieldModulus is the prime 2^64 - 59, the largest prime below 2^64.
const FieldModulus uint64 = 18446744073709551557

var fieldModulus = new(big.Int).SetUint64(FieldModulus)

// LagrangeCombiner interpolates the shares' data at x = 0 over
// GF(FieldModulus), using each witness ID as its x-coordinate.
//
// Witness IDs must be non-zero and below FieldModulus. A witness that
// appears twice with identical data counts once; with different data the
// batch is rejected.
type LagrangeCombiner struct{}

type point struct {
	x, y *big.Int
}

// Combine implements Combiner.
func (LagrangeCombiner) Combine(shares []ir.Share) (ir.Signature, error) {
	seen := make(map[ir.WitnessID]ir.ShareData, len(shares))
	points := make([]point, 0, len(shares))

	for i, s := range shares {
		w := uint64(s.Witness)
		if w == 0 {
			return ir.Signature{}, newInvalidWitnessError(i, w, "x-coordinate must be non-zero")
		}
		if w >= FieldModulus {
			return ir.Signature{}, newInvalidWitnessError(i, w, "x-coordinate outside the field")
		}
		if prev, ok := seen[s.Witness]; ok {
			if prev != s.Data {
				return ir.Signature{}, newConflictingShareError(i, w)
			}
			continue
		}
		seen[s.Witness] = s.Data

		y := new(big.Int).SetUint64(uint64(s.Data))
		points = append(points, point{
			x: new(big.Int).SetUint64(w),
			y: y.Mod(y, fieldModulus),
		})
	}

	secret := new(big.Int)
	for i, pi := range points {
		num := big.NewInt(1)
		den := big.NewInt(1)
		for j, pj := range points {
			if i == j {
				continue
			}
			num.Mul(num, pj.x).Mod(num, fieldModulus)

			diff := new(big.Int).Sub(pj.x, pi.x)
			den.Mul(den, diff.Mod(diff, fieldModulus)).Mod(den, fieldModulus)
		}

		// x-coordinates are distinct and non-zero mod p, so den is invertible.
		inv := new(big.Int).ModInverse(den, fieldModulus)
		term := new(big.Int).Mul(pi.y, num)
		term.Mul(term, inv).Mod(term, fieldModulus)
		secret.Add(secret, term).Mod(secret, fieldModulus)
	}

	return ir.Signature{Value: secret.Uint64()}, nil
}
