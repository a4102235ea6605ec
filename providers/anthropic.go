package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/gitguard/review"
)

// DefaultAnthropicModel is a capable mid-tier Claude model.
const DefaultAnthropicModel = "claude-3-5-sonnet-20241022"

// AnthropicAnalyst implements review.Analyst on the Anthropic messages
// API. Claude has no JSON response mode, so the prompt demands bare
// JSON and parseComments tolerates fenced output.
type AnthropicAnalyst struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicAnalyst creates an analyst with the given API key and
// model. An empty model selects DefaultAnthropicModel.
func NewAnthropicAnalyst(apiKey, model string) (*AnthropicAnalyst, error) {
	if apiKey == "" {
		return nil, errors.New("anthropic API key cannot be empty")
	}
	if model == "" {
		model = DefaultAnthropicModel
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicAnalyst{client: &client, model: model}, nil
}

// Review sends the diff for analysis and returns validated comments.
func (a *AnthropicAnalyst) Review(ctx context.Context, req review.Request) ([]review.Comment, error) {
	if req.Diff == "" {
		return []review.Comment{}, nil
	}

	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 4096,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(req))),
		},
	})
	if err != nil {
		return nil, mapAPIError("anthropic", err)
	}

	var text string
	for _, block := range message.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	if text == "" {
		return nil, &AnalystError{
			Code:      "empty_response",
			Message:   "anthropic returned no text content",
			Retryable: true,
		}
	}

	comments, err := parseComments(text)
	if err != nil {
		return nil, fmt.Errorf("parsing anthropic response: %w", err)
	}
	return comments, nil
}
