package summarize

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"
)

// SummaryCache stores chunk summaries by key.
type SummaryCache interface {
	GetSummary(ctx context.Context, key string) (string, bool, error)
	SetSummary(ctx context.Context, key, summary string, ttl time.Duration) error
}

// CachedAdapter serves repeated chunks from cache. Summaries are deterministic
// for a fixed model and bounds, so prefix must identify both.
// Cache errors are logged and never fail the chunk.
type CachedAdapter struct {
	inner  Adapter
	cache  SummaryCache
	prefix string
	ttl    time.Duration
	log    *slog.Logger
}

func NewCachedAdapter(inner Adapter, cache SummaryCache, prefix string, ttl time.Duration, log *slog.Logger) *CachedAdapter {
	if log == nil {
		log = slog.Default()
	}
	return &CachedAdapter{inner: inner, cache: cache, prefix: prefix, ttl: ttl, log: log}
}

func (a *CachedAdapter) SummarizeChunk(ctx context.Context, chunk string) (string, error) {
	key := CacheKey(a.prefix, chunk)
	if summary, ok, err := a.cache.GetSummary(ctx, key); err != nil {
		a.log.Warn("summary cache read failed", "err", err)
	} else if ok && summary != "" {
		return summary, nil
	}

	summary, err := a.inner.SummarizeChunk(ctx, chunk)
	if err != nil {
		return "", err
	}
	if err := a.cache.SetSummary(ctx, key, summary, a.ttl); err != nil {
		a.log.Warn("summary cache write failed", "err", err)
	}
	return summary, nil
}

// CacheKey derives a stable key for chunk under prefix.
func CacheKey(prefix, chunk string) string {
	h := sha256.New()
	h.Write([]byte(prefix))
	h.Write([]byte{0})
	h.Write([]byte(chunk))
	return hex.EncodeToString(h.Sum(nil))
}
