package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Cache holds chunk summaries and per-document progress.
type Cache interface {
	// GetSummary retrieves a cached chunk summary by key.
	// The bool is false on a cache miss.
	GetSummary(ctx context.Context, key string) (string, bool, error)

	// SetSummary stores a chunk summary with TTL
	SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error

	// SetProgress records the fraction of chunks processed for a document.
	SetProgress(ctx context.Context, docID uuid.UUID, fraction float64, ttl time.Duration) error

	// GetProgress returns the last recorded fraction. The bool is false when nothing was recorded.
	GetProgress(ctx context.Context, docID uuid.UUID) (float64, bool, error)

	// Close closes the cache connection
	Close() error
}
