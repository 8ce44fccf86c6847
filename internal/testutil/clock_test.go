package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeterministicClock_NextIncrementsMonotonically(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Next()
	clock.Next()
	clock.Reset()

	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				clock.Next()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1000), clock.Current())
}

func TestManualPhysical(t *testing.T) {
	m := NewManualPhysical(100)
	assert.Equal(t, uint64(100), m.Now())

	m.Advance(5)
	assert.Equal(t, uint64(105), m.Now())

	m.Set(3)
	assert.Equal(t, uint64(3), m.Now(), "Set may move backwards")
}

func TestSequentialIDGenerator(t *testing.T) {
	g := NewSequentialIDGenerator("replica")
	assert.Equal(t, "replica-1", g.Generate())
	assert.Equal(t, "replica-2", g.Generate())

	assert.Equal(t, "test-1", NewSequentialIDGenerator("").Generate())
}
