package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "overview")
	require.NoError(t, err)
	assert.Equal(t, "v1:analytics:overview", key)

	stored := Overview{TotalUsers: 42, TotalRevenue: 1234.5}
	require.NoError(t, cache.SetJSON(ctx, key, stored))

	var loaded Overview
	found, err := cache.GetJSON(ctx, key, &loaded)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, stored, loaded)
}

func TestCacheMiss(t *testing.T) {
	cache, _ := newTestCache(t)

	var out Overview
	found, err := cache.GetJSON(context.Background(), "v1:analytics:absent", &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestBumpInvalidatesOldKeys(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "overview")
	require.NoError(t, err)
	require.NoError(t, cache.SetJSON(ctx, key, Overview{TotalUsers: 1}))

	require.NoError(t, cache.Bump(ctx))

	// The new version points at a fresh namespace.
	newKey, err := cache.BuildKey(ctx, "analytics", "overview")
	require.NoError(t, err)
	assert.NotEqual(t, key, newKey)

	var out Overview
	found, err := cache.GetJSON(ctx, newKey, &out)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestNilCacheDegradesToMiss(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "overview")
	require.NoError(t, err)
	assert.Empty(t, key)

	found, err := cache.GetJSON(ctx, "any", &Overview{})
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.SetJSON(ctx, "any", Overview{}))
	assert.NoError(t, cache.Bump(ctx))
}

func TestCacheEntriesExpire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	key, err := cache.BuildKey(ctx, "analytics", "users")
	require.NoError(t, err)
	require.NoError(t, cache.SetJSON(ctx, key, UserStats{TotalUsers: 7}))

	mr.FastForward(2 * time.Minute)

	var out UserStats
	found, err := cache.GetJSON(ctx, key, &out)
	require.NoError(t, err)
	assert.False(t, found)
}
