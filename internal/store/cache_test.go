package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, ttl time.Duration) (*PredictionCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewPredictionCache(client, ttl), mr
}

func TestPredictionCache_RoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()
	rec := sampleRecord()

	_, ok := cache.Get(ctx, rec)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, rec, 510787.41))

	v, ok := cache.Get(ctx, rec)
	require.True(t, ok)
	assert.Equal(t, 510787.41, v)
}

func TestPredictionCache_KeyIgnoresExtraFields(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	rec := sampleRecord()
	require.NoError(t, cache.Set(ctx, rec, 100000))

	withExtra := sampleRecord()
	withExtra["listing_id"] = "abc-123"
	v, ok := cache.Get(ctx, withExtra)
	require.True(t, ok)
	assert.Equal(t, 100000.0, v)
}

func TestPredictionCache_DistinctRecordsDistinctKeys(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	a := sampleRecord()
	b := sampleRecord()
	b["median_income"] = 3.8462

	require.NoError(t, cache.Set(ctx, a, 500000))
	_, ok := cache.Get(ctx, b)
	assert.False(t, ok)
}

func TestPredictionCache_TTLExpires(t *testing.T) {
	cache, mr := newTestCache(t, 30*time.Second)
	ctx := context.Background()
	rec := sampleRecord()

	require.NoError(t, cache.Set(ctx, rec, 100000))
	mr.FastForward(time.Minute)

	_, ok := cache.Get(ctx, rec)
	assert.False(t, ok)
}
