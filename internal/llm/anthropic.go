package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultAnthropicModel serves requests that name no Claude model.
const DefaultAnthropicModel = anthropic.ModelClaudeSonnet4_5_20250929

// AnthropicClient calls the Anthropic Messages API.
type AnthropicClient struct {
	model   anthropic.Model
	client  anthropic.Client
	timeout time.Duration
}

// NewAnthropicClient builds a Messages API client.
func NewAnthropicClient(apiKey string, model anthropic.Model, timeout time.Duration, opts ...anthropicoption.RequestOption) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("api key required")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}
	if timeout <= 0 {
		timeout = defaultChatTimeout
	}
	return &AnthropicClient{
		model:   model,
		client:  anthropic.NewClient(append([]anthropicoption.RequestOption{anthropicoption.WithAPIKey(apiKey)}, opts...)...),
		timeout: timeout,
	}, nil
}

func (c *AnthropicClient) Summarize(ctx context.Context, req Request) (string, error) {
	if c == nil {
		return "", fmt.Errorf("nil anthropic client")
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return "", fmt.Errorf("input is required")
	}
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	message, err := c.client.Messages.New(reqCtx, anthropic.MessageNewParams{
		Model:       c.model,
		MaxTokens:   completionTokenCap(req.MaxLength),
		Temperature: anthropic.Float(temperature(req)),
		System:      []anthropic.TextBlockParam{{Text: systemPrompt(req)}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(text)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to do request: %w", err)
	}

	var parts []string
	for _, block := range message.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			parts = append(parts, tb.Text)
		}
	}
	summary := strings.TrimSpace(strings.Join(parts, ""))
	if summary == "" {
		return "", fmt.Errorf("anthropic: empty response")
	}
	return summary, nil
}
