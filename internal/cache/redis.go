package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for cached chunk summaries
	summaryKeyPrefix = "summary:"

	// Key prefix for document progress
	progressKeyPrefix = "progress:"
)

type RedisCache struct {
	client redis.UniversalClient
}

// NewRedisCache creates a new Redis cache client
func NewRedisCache(addr, password string) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return NewRedisCacheFromClient(client), nil
}

// NewRedisCacheFromClient wraps an existing client without pinging it.
func NewRedisCacheFromClient(client redis.UniversalClient) *RedisCache {
	return &RedisCache{client: client}
}

// GetSummary retrieves a cached chunk summary by key
func (c *RedisCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	summary, err := c.client.Get(ctx, summaryKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil // Cache miss
	}
	if err != nil {
		return "", false, err
	}
	return summary, true, nil
}

// SetSummary stores a chunk summary with TTL
func (c *RedisCache) SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error {
	return c.client.Set(ctx, summaryKeyPrefix+key, summary, ttl).Err()
}

// SetProgress records the fraction of processed chunks for a document
func (c *RedisCache) SetProgress(ctx context.Context, docID uuid.UUID, fraction float64, ttl time.Duration) error {
	value := strconv.FormatFloat(fraction, 'f', -1, 64)
	return c.client.Set(ctx, progressKeyPrefix+docID.String(), value, ttl).Err()
}

// GetProgress returns the last recorded fraction for a document
func (c *RedisCache) GetProgress(ctx context.Context, docID uuid.UUID) (float64, bool, error) {
	raw, err := c.client.Get(ctx, progressKeyPrefix+docID.String()).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	fraction, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt progress for %s: %w", docID, err)
	}
	return fraction, true, nil
}

// Close closes the cache connection
func (c *RedisCache) Close() error {
	return c.client.Close()
}
