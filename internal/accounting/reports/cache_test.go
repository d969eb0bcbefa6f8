package reports

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/contalibre/contalibre/testing"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl), mr
}

func TestCachePayloadReadsThrough(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	computed := 0
	compute := func(ctx context.Context) (any, error) {
		computed++
		return map[string]int{"value": computed}, nil
	}

	key := Key(7, "trial-balance", "2026-06-30")
	first, err := cache.Payload(context.Background(), key, compute)
	require.NoError(t, err)
	second, err := cache.Payload(context.Background(), key, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, computed)
	assert.JSONEq(t, string(first), string(second))
	assert.True(t, mr.Exists(key))

	var payload map[string]int
	require.NoError(t, json.Unmarshal(first, &payload))
	assert.Equal(t, 1, payload["value"])
}

func TestCachePayloadRecomputesAfterTTL(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	computed := 0
	compute := func(ctx context.Context) (any, error) {
		computed++
		return computed, nil
	}

	key := Key(7, "balance-sheet", "2026-06-30")
	_, err := cache.Payload(context.Background(), key, compute)
	require.NoError(t, err)

	mr.FastForward(2 * time.Minute)

	_, err = cache.Payload(context.Background(), key, compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computed)
}

func TestCacheInvalidateDropsCompanyKeysOnly(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)

	compute := func(ctx context.Context) (any, error) { return "x", nil }
	mine := Key(7, "trial-balance", "2026-06-30")
	other := Key(8, "trial-balance", "2026-06-30")
	_, err := cache.Payload(context.Background(), mine, compute)
	require.NoError(t, err)
	_, err = cache.Payload(context.Background(), other, compute)
	require.NoError(t, err)

	require.NoError(t, cache.Invalidate(context.Background(), 7))
	assert.False(t, mr.Exists(mine))
	assert.True(t, mr.Exists(other))
}

func TestCacheWorksWithoutRedis(t *testing.T) {
	cache := NewCache(nil, time.Minute)

	computed := 0
	compute := func(ctx context.Context) (any, error) {
		computed++
		return computed, nil
	}
	_, err := cache.Payload(context.Background(), "k", compute)
	require.NoError(t, err)
	_, err = cache.Payload(context.Background(), "k", compute)
	require.NoError(t, err)
	assert.Equal(t, 2, computed)
}
