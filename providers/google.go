package providers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/gitguard/review"
)

// DefaultGoogleModel is the current stable Gemini flash model.
const DefaultGoogleModel = "gemini-2.5-flash"

// GoogleAnalyst implements review.Analyst on the Gemini API. The genai
// client holds a gRPC connection; call Close when done.
type GoogleAnalyst struct {
	client *genai.Client
	model  string
}

// NewGoogleAnalyst creates an analyst with the given API key and
// model. An empty model selects DefaultGoogleModel. The context is
// used for client construction only.
func NewGoogleAnalyst(ctx context.Context, apiKey, model string) (*GoogleAnalyst, error) {
	if apiKey == "" {
		return nil, errors.New("google API key cannot be empty")
	}
	if model == "" {
		model = DefaultGoogleModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating google client: %w", err)
	}
	return &GoogleAnalyst{client: client, model: model}, nil
}

// Close releases the underlying connection.
func (a *GoogleAnalyst) Close() error { return a.client.Close() }

// Review sends the diff for analysis and returns validated comments.
func (a *GoogleAnalyst) Review(ctx context.Context, req review.Request) ([]review.Comment, error) {
	if req.Diff == "" {
		return []review.Comment{}, nil
	}

	model := a.client.GenerativeModel(a.model)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, mapAPIError("google", err)
	}

	var text string
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				text += string(t)
			}
		}
	}
	if text == "" {
		return nil, &AnalystError{
			Code:      "empty_response",
			Message:   "google returned no text content",
			Retryable: true,
		}
	}

	comments, err := parseComments(text)
	if err != nil {
		return nil, fmt.Errorf("parsing google response: %w", err)
	}
	return comments, nil
}
