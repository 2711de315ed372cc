package llm

import (
	"context"
	"fmt"
)

// Request describes one summarization call.
type Request struct {
	Text string
	// MaxLength and MinLength bound the summary length in words.
	MaxLength int
	MinLength int
	// Deterministic disables sampling so the same text always yields the same summary.
	Deterministic bool
}

// Client is a minimal summarization interface to allow pluggable providers.
type Client interface {
	Summarize(ctx context.Context, req Request) (string, error)
}

const (
	// deterministicSeed pins provider-side sampling when Request.Deterministic is set.
	deterministicSeed = 7

	defaultTemperature = 0.2
)

func systemPrompt(req Request) string {
	return fmt.Sprintf(
		"You write abstractive summaries. Summarize the user's text in %d to %d words. "+
			"Use only information present in the text, keep names and numbers exact, "+
			"and reply with the summary alone as plain prose.",
		req.MinLength, req.MaxLength,
	)
}

// completionTokenCap is a hard ceiling on generated tokens, leaving headroom over the word bound.
func completionTokenCap(maxWords int) int64 {
	if maxWords <= 0 {
		return 256
	}
	n := int64(maxWords) * 2
	if n < 32 {
		n = 32
	}
	return n
}

func temperature(req Request) float64 {
	if req.Deterministic {
		return 0
	}
	return defaultTemperature
}
