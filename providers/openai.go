package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/gitguard/review"
)

// DefaultOpenAIModel balances cost against review quality.
const DefaultOpenAIModel = "gpt-4o-mini"

// OpenAIAnalyst implements review.Analyst on OpenAI chat completions.
// It requests JSON-object output and runs at temperature 0 so repeat
// reviews of the same diff stay stable.
//
// Safe for concurrent use; the SDK client handles its own pooling.
type OpenAIAnalyst struct {
	client *openai.Client
	model  string
}

// NewOpenAIAnalyst creates an analyst with the given API key and
// model. An empty model selects DefaultOpenAIModel.
func NewOpenAIAnalyst(apiKey, model string) (*OpenAIAnalyst, error) {
	if apiKey == "" {
		return nil, errors.New("openai API key cannot be empty")
	}
	if model == "" {
		model = DefaultOpenAIModel
	}

	client := openai.NewClient(option.WithAPIKey(apiKey))
	return &OpenAIAnalyst{client: &client, model: model}, nil
}

// Review sends the diff for analysis and returns validated comments.
// An empty diff short-circuits to an empty result without an API call.
func (a *OpenAIAnalyst) Review(ctx context.Context, req review.Request) ([]review.Comment, error) {
	if req.Diff == "" {
		return []review.Comment{}, nil
	}

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(buildPrompt(req)),
		},
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: openai.Ptr(shared.NewResponseFormatJSONObjectParam()),
		},
		Temperature: openai.Float(0),
	})
	if err != nil {
		return nil, mapAPIError("openai", err)
	}

	if len(completion.Choices) == 0 {
		return nil, &AnalystError{
			Code:      "empty_response",
			Message:   "openai returned no choices",
			Retryable: true,
		}
	}

	comments, err := parseComments(completion.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing openai response: %w", err)
	}
	return comments, nil
}
