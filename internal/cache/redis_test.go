package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Runs against a live Redis when REDIS_TEST_ADDR is set.
func newTestRedis(t *testing.T) *RedisCache {
	t.Helper()
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	c, err := NewRedisCache(addr, os.Getenv("REDIS_TEST_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestRedisCacheSummaryRoundTrip(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	key := "test-" + uuid.NewString()

	_, ok, err := c.GetSummary(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetSummary(ctx, key, "cached summary", time.Minute))
	got, ok, err := c.GetSummary(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "cached summary", got)
}

func TestRedisCacheProgress(t *testing.T) {
	c := newTestRedis(t)
	ctx := context.Background()
	docID := uuid.New()

	_, ok, err := c.GetProgress(ctx, docID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.SetProgress(ctx, docID, 2.0/3, time.Minute))
	got, ok, err := c.GetProgress(ctx, docID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.InDelta(t, 2.0/3, got, 1e-12)
}
