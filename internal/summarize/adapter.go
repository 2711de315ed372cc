package summarize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"doc-summarizer/internal/llm"
)

const (
	DefaultSummaryMaxLength = 150
	DefaultSummaryMinLength = 30
)

// Adapter summarizes a single chunk. Implementations report every failure as
// a *SummarizationError and leave the fallback policy to the caller.
type Adapter interface {
	SummarizeChunk(ctx context.Context, chunk string) (string, error)
}

// AdapterFunc lets a plain function act as an Adapter.
type AdapterFunc func(ctx context.Context, chunk string) (string, error)

func (f AdapterFunc) SummarizeChunk(ctx context.Context, chunk string) (string, error) {
	return f(ctx, chunk)
}

// ModelAdapter calls a model client with fixed length bounds and sampling disabled.
type ModelAdapter struct {
	client    llm.Client
	maxLength int
	minLength int
}

// NewModelAdapter binds client to the given bounds; non-positive bounds take the defaults.
func NewModelAdapter(client llm.Client, maxLength, minLength int) *ModelAdapter {
	if maxLength <= 0 {
		maxLength = DefaultSummaryMaxLength
	}
	if minLength <= 0 {
		minLength = DefaultSummaryMinLength
	}
	if minLength > maxLength {
		minLength = maxLength
	}
	return &ModelAdapter{client: client, maxLength: maxLength, minLength: minLength}
}

func (a *ModelAdapter) SummarizeChunk(ctx context.Context, chunk string) (summary string, err error) {
	defer func() {
		if r := recover(); r != nil {
			summary, err = "", &SummarizationError{Err: fmt.Errorf("model panicked: %v", r)}
		}
	}()

	out, err := a.client.Summarize(ctx, llm.Request{
		Text:          chunk,
		MaxLength:     a.maxLength,
		MinLength:     a.minLength,
		Deterministic: true,
	})
	if err != nil {
		return "", &SummarizationError{Err: err}
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", &SummarizationError{Err: errors.New("model returned an empty summary")}
	}
	return out, nil
}

// Bounds returns the configured max and min summary lengths.
func (a *ModelAdapter) Bounds() (maxLength, minLength int) {
	return a.maxLength, a.minLength
}
