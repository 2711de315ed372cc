package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Loader constructs the underlying model client. It runs at most once.
type Loader func() (Client, error)

// Lazy guards a process-wide model client behind a one-time initialization.
// Load is idempotent and safe for concurrent use; a failed load stays failed.
type Lazy struct {
	load   Loader
	once   sync.Once
	client Client
	err    error
}

// NewLazy wraps load. Nothing is loaded until Load or Summarize is called.
func NewLazy(load Loader) *Lazy {
	return &Lazy{load: load}
}

// Load runs the loader on first use and returns its outcome on every call.
func (l *Lazy) Load() error {
	l.once.Do(func() {
		if l.load == nil {
			l.err = errors.New("llm: no loader configured")
			return
		}
		l.client, l.err = l.load()
		if l.err == nil && l.client == nil {
			l.err = errors.New("llm: loader returned nil client")
		}
	})
	return l.err
}

func (l *Lazy) Summarize(ctx context.Context, req Request) (string, error) {
	if err := l.Load(); err != nil {
		return "", fmt.Errorf("model unavailable: %w", err)
	}
	return l.client.Summarize(ctx, req)
}
