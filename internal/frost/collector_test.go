package frost

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/ir"
)

func TestCollectorLifecycle(t *testing.T) {
	c := NewCollector(Aggregator{})
	assert.Equal(t, StateIdle, c.State())

	_, _, ok := c.Attempt()
	assert.False(t, ok)

	require.NoError(t, c.Add(share(7, 2, 1, 10)))
	assert.Equal(t, StateCollecting, c.State())

	sid, round, ok := c.Attempt()
	require.True(t, ok)
	assert.Equal(t, ir.SessionID(7), sid)
	assert.Equal(t, ir.Round(2), round)

	require.NoError(t, c.Add(share(7, 2, 2, 11)))
	assert.Len(t, c.Pending(), 2)

	sig, err := c.Finish()
	require.NoError(t, err)
	assert.Equal(t, ir.Signature{}, sig)
	assert.Equal(t, StateAggregated, c.State())

	assert.ErrorIs(t, c.Add(share(7, 2, 3, 12)), ErrCollectorClosed)
}

func TestCollectorRejectsMixedBatch(t *testing.T) {
	c := NewCollector(Aggregator{})
	require.NoError(t, c.Add(share(1, 1, 1, 0)))
	require.NoError(t, c.Add(share(1, 2, 2, 0)))

	_, err := c.Finish()
	assert.True(t, IsMismatch(err))
	assert.Equal(t, StateRejected, c.State())

	// Terminal: Finish is idempotent.
	_, again := c.Finish()
	assert.Equal(t, err, again)
}

func TestCollectorFinishIdleIsEmptyBatch(t *testing.T) {
	c := NewCollector(Aggregator{})

	_, err := c.Finish()
	assert.True(t, IsEmptyBatch(err))
	assert.Equal(t, StateRejected, c.State())
}

func TestCollectorPendingIsCopy(t *testing.T) {
	c := NewCollector(Aggregator{})
	require.NoError(t, c.Add(share(1, 1, 1, 0)))

	p := c.Pending()
	p[0].Data = 99
	assert.Equal(t, ir.ShareData(0), c.Pending()[0].Data)
}

func TestCollectorConcurrentAdd(t *testing.T) {
	c := NewCollector(Aggregator{Threshold: 50, Combiner: LagrangeCombiner{}})

	var wg sync.WaitGroup
	for i := 1; i <= 50; i++ {
		wg.Add(1)
		go func(w uint64) {
			defer wg.Done()
			assert.NoError(t, c.Add(share(1, 1, w, w)))
		}(uint64(i))
	}
	wg.Wait()

	// f(x) = x interpolates to 0 at the origin.
	sig, err := c.Finish()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), sig.Value)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "collecting", StateCollecting.String())
	assert.Equal(t, "aggregated", StateAggregated.String())
	assert.Equal(t, "rejected", StateRejected.String())
	assert.Equal(t, "State(9)", State(9).String())
	assert.True(t, StateRejected.Terminal())
	assert.False(t, StateCollecting.Terminal())
}
