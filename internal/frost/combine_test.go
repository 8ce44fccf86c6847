package frost

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/ir"
)

func TestNewCombiner(t *testing.T) {
	c, err := NewCombiner("")
	require.NoError(t, err)
	assert.IsType(t, PlaceholderCombiner{}, c)

	c, err = NewCombiner(CombinerLagrange)
	require.NoError(t, err)
	assert.IsType(t, LagrangeCombiner{}, c)

	_, err = NewCombiner("schnorr")
	assert.Error(t, err)
}

func TestLagrangeCombinerRecoversConstantTerm(t *testing.T) {
	tests := []struct {
		name   string
		shares []ir.Share
		want   uint64
	}{
		// f(x) = 42 + 7x
		{"linear", []ir.Share{share(1, 1, 1, 49), share(1, 1, 2, 56)}, 42},
		// f(x) = 5 + 3x + 2x^2
		{"quadratic", []ir.Share{share(1, 1, 1, 10), share(1, 1, 2, 19), share(1, 1, 3, 32)}, 5},
		{"quadratic reordered", []ir.Share{share(1, 1, 3, 32), share(1, 1, 1, 10), share(1, 1, 2, 19)}, 5},
		// A single point interpolates to a constant polynomial.
		{"single share", []ir.Share{share(1, 1, 4, 77)}, 77},
		{"identical duplicate", []ir.Share{share(1, 1, 1, 49), share(1, 1, 2, 56), share(1, 1, 1, 49)}, 42},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sig, err := LagrangeCombiner{}.Combine(tt.shares)
			require.NoError(t, err)
			assert.Equal(t, tt.want, sig.Value)
		})
	}
}

func TestLagrangeCombinerWrapsModulus(t *testing.T) {
	// f(x) = (p - 1) + x, so f(1) = p = 0 mod p and f(2) = 1.
	sig, err := LagrangeCombiner{}.Combine([]ir.Share{share(1, 1, 1, 0), share(1, 1, 2, 1)})
	require.NoError(t, err)
	assert.Equal(t, FieldModulus-1, sig.Value)
}

func TestLagrangeCombinerRejects(t *testing.T) {
	tests := []struct {
		name   string
		shares []ir.Share
		code   AggregateErrorCode
	}{
		{"zero witness", []ir.Share{share(1, 1, 0, 1)}, ErrCodeInvalidWitness},
		{"witness outside field", []ir.Share{share(1, 1, FieldModulus, 1)}, ErrCodeInvalidWitness},
		{"conflicting duplicate", []ir.Share{share(1, 1, 1, 1), share(1, 1, 1, 2)}, ErrCodeConflictingShare},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LagrangeCombiner{}.Combine(tt.shares)
			var ae *AggregateError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}
}
