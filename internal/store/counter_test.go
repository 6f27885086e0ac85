package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIncrementCounter_Sequential(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	for want := int64(1); want <= 5; want++ {
		got, err := s.IncrementCounter(ctx, "users")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestIncrementCounter_IndependentCounters(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	a, err := s.IncrementCounter(ctx, "users")
	require.NoError(t, err)
	b, err := s.IncrementCounter(ctx, "uploads")
	require.NoError(t, err)

	assert.Equal(t, int64(1), a)
	assert.Equal(t, int64(1), b)
}

func TestIncrementCounter_ConcurrentValuesDistinct(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()

	const workers = 20

	values := make([]int64, workers)
	var wg sync.WaitGroup
	for i := range values {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := s.IncrementCounter(ctx, "users")
			if err != nil {
				t.Errorf("IncrementCounter: %v", err)
				return
			}
			values[i] = v
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool, workers)
	var max int64
	for _, v := range values {
		assert.False(t, seen[v], "counter handed out duplicate value %d", v)
		seen[v] = true
		if v > max {
			max = v
		}
	}
	assert.Equal(t, int64(workers), max, "no increments may be lost")
}
