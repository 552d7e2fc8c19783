package cache_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/vastra/pkg/cache"
)

func TestWithoutRedisIsANoop(t *testing.T) {
	c := cache.New(nil, "vastra:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", 1, time.Minute))
	var got int
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, c.Forget(ctx, "k"))
	assert.False(t, c.Available())
}

func TestRememberCoalescesConcurrentLoads(t *testing.T) {
	c := cache.New(nil, "")
	var calls atomic.Int32
	release := make(chan struct{})

	load := func(context.Context) ([]string, error) {
		calls.Add(1)
		<-release
		return []string{"a", "b"}, nil
	}

	var wg sync.WaitGroup
	results := make([][]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, err := cache.Remember(context.Background(), c, "catalog", time.Minute, load)
			assert.NoError(t, err)
			results[i] = v
		}(i)
	}

	// Give the goroutines a moment to pile onto the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), calls.Load())
	for _, r := range results {
		assert.Equal(t, []string{"a", "b"}, r)
	}
}

func TestRememberPropagatesLoadError(t *testing.T) {
	c := cache.New(nil, "")
	boom := errors.New("db down")

	_, err := cache.Remember(context.Background(), c, "k", time.Minute, func(context.Context) (int, error) {
		return 0, boom
	})
	assert.ErrorIs(t, err, boom)
}
