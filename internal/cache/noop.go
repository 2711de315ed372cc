package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// NoOpCache is a cache implementation that does nothing.
// Used when CACHE_PROVIDER=none or Redis is unavailable: every read is a miss
// and every write succeeds without storing anything.
type NoOpCache struct{}

// NewNoOpCache creates a new no-op cache instance
func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

// GetSummary always misses
func (c *NoOpCache) GetSummary(ctx context.Context, key string) (string, bool, error) {
	return "", false, nil
}

// SetSummary does nothing and always succeeds
func (c *NoOpCache) SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error {
	return nil
}

// SetProgress does nothing and always succeeds
func (c *NoOpCache) SetProgress(ctx context.Context, docID uuid.UUID, fraction float64, ttl time.Duration) error {
	return nil
}

// GetProgress always reports that nothing was recorded
func (c *NoOpCache) GetProgress(ctx context.Context, docID uuid.UUID) (float64, bool, error) {
	return 0, false, nil
}

// Close does nothing and always succeeds
func (c *NoOpCache) Close() error {
	return nil
}
