package llm

import (
	"context"
	"fmt"
	"strings"
)

// BasicClient is an extractive summarizer that keeps leading sentences up to
// MaxLength words. It needs no network and is deterministic by construction.
type BasicClient struct{}

// NewBasicClient returns a BasicClient.
func NewBasicClient() *BasicClient {
	return &BasicClient{}
}

func (c *BasicClient) Summarize(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", fmt.Errorf("input is required")
	}
	maxWords := req.MaxLength
	if maxWords <= 0 {
		maxWords = len(strings.Fields(text))
	}

	var (
		kept  []string
		words int
	)
	for _, sentence := range strings.Split(text, ". ") {
		fields := strings.Fields(sentence)
		if len(fields) == 0 {
			continue
		}
		if words+len(fields) > maxWords {
			if words == 0 {
				// The first sentence alone is over budget: cut it at the word bound.
				kept = append(kept, strings.Join(fields[:maxWords], " "))
			}
			break
		}
		kept = append(kept, strings.Join(fields, " "))
		words += len(fields)
	}

	summary := strings.Join(kept, ". ")
	if !strings.HasSuffix(summary, ".") {
		summary += "."
	}
	return summary, nil
}
