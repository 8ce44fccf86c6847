package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorpusDeterministic(t *testing.T) {
	a, b := NewCorpus(42), NewCorpus(42)

	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Journal(8), b.Journal(8))
		assert.Equal(t, a.TimeStamp(), b.TimeStamp())
		assert.Equal(t, a.Snapshot(5), b.Snapshot(5))
		assert.Equal(t, a.MixedBatch(4), b.MixedBatch(4))
	}
}

func TestCorpusConsistentBatch(t *testing.T) {
	c := NewCorpus(1)
	for i := 0; i < 50; i++ {
		batch := c.ConsistentBatch(5)
		require.NotEmpty(t, batch)
		assert.LessOrEqual(t, len(batch), 5)
		for _, s := range batch {
			assert.True(t, s.SameAttempt(batch[0]))
		}
	}
}

func TestCorpusMixedBatch(t *testing.T) {
	c := NewCorpus(2)
	for i := 0; i < 50; i++ {
		batch := c.MixedBatch(4)
		require.GreaterOrEqual(t, len(batch), 2)

		mismatches := 0
		for _, s := range batch[1:] {
			if !s.SameAttempt(batch[0]) {
				mismatches++
			}
		}
		assert.Equal(t, 1, mismatches)
	}
}

func TestCorpusSnapshotCaps(t *testing.T) {
	c := NewCorpus(3)
	for i := 0; i < 50; i++ {
		for _, st := range c.Snapshot(6).Steps {
			assert.True(t, st.CapReq.Valid())
			assert.Less(t, st.FlowCost, uint64(100))
		}
	}
}
