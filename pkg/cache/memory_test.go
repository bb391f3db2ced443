package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func TestMemoryCacheSetGet(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", payload{Name: "a", Count: 3}, time.Minute))

	var got payload
	require.NoError(t, mc.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "a", Count: 3}, got)
}

func TestMemoryCacheMiss(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })

	var got payload
	assert.ErrorIs(t, mc.Get(context.Background(), "absent", &got), ErrCacheMiss)
}

func TestMemoryCacheExpiration(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "k", payload{Name: "a"}, 10*time.Millisecond))
	time.Sleep(25 * time.Millisecond)

	var got payload
	assert.ErrorIs(t, mc.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestMemoryCacheDelete(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))
	require.NoError(t, mc.Delete(ctx, "a", "b"))

	ok, err := mc.Exists(ctx, "a", "b")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCacheKeysPattern(t *testing.T) {
	mc := NewMemoryCache()
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "write_ahead:AAPL:daily", "x", time.Minute))
	require.NoError(t, mc.Set(ctx, "write_ahead:MSFT:weekly", "x", time.Minute))
	require.NoError(t, mc.Set(ctx, "read_through:AAPL:daily", "x", time.Minute))

	keys, err := mc.Keys(ctx, "write_ahead:*")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	all, err := mc.Keys(ctx, "*")
	require.NoError(t, err)
	assert.Len(t, all, 3)

	exact, err := mc.Keys(ctx, "read_through:AAPL:daily")
	require.NoError(t, err)
	assert.Len(t, exact, 1)
}

func TestMemoryCacheLRUEviction(t *testing.T) {
	mc := NewMemoryCache(WithMemoryMaxSize(2))
	t.Cleanup(func() { _ = mc.Close() })
	ctx := context.Background()

	require.NoError(t, mc.Set(ctx, "a", "1", time.Minute))
	require.NoError(t, mc.Set(ctx, "b", "2", time.Minute))

	// Touch "a" so "b" becomes the eviction candidate.
	var s string
	require.NoError(t, mc.Get(ctx, "a", &s))
	require.NoError(t, mc.Set(ctx, "c", "3", time.Minute))

	ok, err := mc.Exists(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = mc.Exists(ctx, "a")
	require.NoError(t, err)
	assert.True(t, ok)
}
