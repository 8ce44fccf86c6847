package timesystem

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/auramodel/internal/ir"
	"github.com/roach88/auramodel/internal/testutil"
)

func TestClockNow(t *testing.T) {
	phys := testutil.NewManualPhysical(1000)
	c := NewClock(phys)

	assert.Equal(t, ir.TimeStamp{}, c.Last())
	assert.Equal(t, ts(1, 1000), mustNow(t, c))

	phys.Advance(5)
	assert.Equal(t, ts(2, 1005), mustNow(t, c))
	assert.Equal(t, ts(2, 1005), c.Last())
}

func TestClockMonotonicWhenPhysicalGoesBackwards(t *testing.T) {
	phys := testutil.NewManualPhysical(1000)
	c := NewClock(phys)

	first := mustNow(t, c)
	phys.Set(10)
	second := mustNow(t, c)

	assert.Equal(t, ir.Lt, Compare(strict, first, second))
	assert.Equal(t, ir.Lt, Compare(logical, first, second))
}

func TestClockObserve(t *testing.T) {
	phys := testutil.NewManualPhysical(50)
	c := NewClockAt(ts(3, 0), phys)

	got, err := c.Observe(ts(10, 999))
	require.NoError(t, err)
	assert.Equal(t, ts(11, 50), got, "remote ahead")

	got, err = c.Observe(ts(2, 0))
	require.NoError(t, err)
	assert.Equal(t, ts(12, 50), got, "remote behind")
}

func TestClockRefusesToWrap(t *testing.T) {
	c := NewClock(testutil.NewManualPhysical(1))
	prev := mustNow(t, c)

	_, err := c.Observe(ts(math.MaxUint64, 0))
	require.ErrorIs(t, err, ErrClockExhausted)
	assert.Equal(t, prev, c.Last(), "refused reading leaves the clock unchanged")

	next, err := c.Observe(ts(math.MaxUint64-1, 0))
	require.NoError(t, err)
	assert.Equal(t, ir.Lt, Compare(strict, prev, next))
	assert.Equal(t, uint64(math.MaxUint64), next.Logical)

	_, err = c.Now()
	require.ErrorIs(t, err, ErrClockExhausted)
	assert.Equal(t, next, c.Last())
}

func mustNow(t *testing.T, c *Clock) ir.TimeStamp {
	t.Helper()
	got, err := c.Now()
	require.NoError(t, err)
	return got
}

func TestClockNilSourceUsesWallClock(t *testing.T) {
	c := NewClock(nil)
	got := mustNow(t, c)
	assert.Equal(t, uint64(1), got.Logical)
	assert.NotZero(t, got.OrderClock)
}

func TestClockConcurrentUnique(t *testing.T) {
	c := NewClock(testutil.NewManualPhysical(0))
	const goroutines, calls = 20, 50

	var mu sync.Mutex
	seen := make(map[uint64]bool)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < calls; j++ {
				got, err := c.Now()
				assert.NoError(t, err)
				mu.Lock()
				assert.False(t, seen[got.Logical], "logical %d issued twice", got.Logical)
				seen[got.Logical] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, seen, goroutines*calls)
	assert.Equal(t, uint64(goroutines*calls), c.Last().Logical)
}

func TestPhysicalFunc(t *testing.T) {
	var src PhysicalSource = PhysicalFunc(func() uint64 { return 42 })
	assert.Equal(t, uint64(42), src.Now())
}
