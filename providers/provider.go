// Package providers implements review.Analyst on the OpenAI,
// Anthropic, and Google Gemini APIs. All three share the same review
// prompt and the same tolerant JSON response parsing.
package providers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dshills/gitguard/review"
)

// AnalystError classifies a provider failure. Retryable marks
// transient conditions (rate limits, server errors, timeouts) apart
// from permanent ones (bad key, quota, malformed response).
type AnalystError struct {
	Code      string
	Message   string
	Retryable bool
}

// Error implements the error interface.
func (e *AnalystError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsRetryable reports whether err is an AnalystError marked retryable.
func IsRetryable(err error) bool {
	var ae *AnalystError
	if errors.As(err, &ae) {
		return ae.Retryable
	}
	return false
}

// buildPrompt constructs the shared review instruction for a diff.
// The categories and their severities are fixed; the model's only
// degrees of freedom are which changed lines to flag and the comment
// text.
func buildPrompt(req review.Request) string {
	var sb strings.Builder

	sb.WriteString("You are an expert code reviewer. Review the following pull request diff")
	if req.RepoName != "" {
		sb.WriteString(" from repository ")
		sb.WriteString(req.RepoName)
	}
	sb.WriteString(".\n\n")

	sb.WriteString("Identify issues in these categories:\n")
	sb.WriteString("- Security vulnerabilities (SQL injection, XSS, secrets in code): severity \"critical\"\n")
	sb.WriteString("- Logic errors, bugs, and race conditions: severity \"major\"\n")
	sb.WriteString("- Performance problems: severity \"major\"\n")
	sb.WriteString("- Style and readability issues: severity \"minor\" or \"nitpick\"\n\n")

	sb.WriteString("Only comment on lines that are added or changed in the diff.\n")
	sb.WriteString("Use the new-file line number for each comment.\n\n")

	sb.WriteString("Diff to review:\n\n")
	sb.WriteString(req.Diff)
	sb.WriteString("\n\n")

	sb.WriteString("Respond with a JSON object of this exact shape:\n")
	sb.WriteString(`{"comments": [{"file_path": "src/db.py", "line_number": 42, ` +
		`"body": "Brief description and suggested fix", "severity": "critical"}]}`)
	sb.WriteString("\n\nSeverity must be one of: critical, major, minor, nitpick.\n")
	sb.WriteString("If the diff has no issues, respond with {\"comments\": []}.\n")
	sb.WriteString("Respond ONLY with the JSON object. No markdown, no explanation.")

	return sb.String()
}

// parseComments extracts review comments from a model response. It
// strips markdown fences, accepts either the {"comments": [...]}
// envelope or a bare array, and drops entries that fail validation
// rather than failing the whole review.
func parseComments(content string) ([]review.Comment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	if content == "" {
		return []review.Comment{}, nil
	}

	var envelope struct {
		Comments []review.Comment `json:"comments"`
	}
	if err := json.Unmarshal([]byte(content), &envelope); err != nil {
		// Some models return a bare array despite the instructions.
		var bare []review.Comment
		if arrErr := json.Unmarshal([]byte(content), &bare); arrErr != nil {
			return nil, &AnalystError{
				Code:      "parse_error",
				Message:   fmt.Sprintf("response is not valid comment JSON: %v", err),
				Retryable: false,
			}
		}
		envelope.Comments = bare
	}

	valid := make([]review.Comment, 0, len(envelope.Comments))
	for _, c := range envelope.Comments {
		if err := c.Validate(); err != nil {
			continue
		}
		valid = append(valid, c)
	}
	return valid, nil
}

// mapAPIError converts raw SDK errors to AnalystError by message
// inspection. The SDKs do not share typed errors, so string matching
// is the common denominator.
func mapAPIError(provider string, err error) error {
	lower := strings.ToLower(err.Error())

	switch {
	case strings.Contains(lower, "401") ||
		strings.Contains(lower, "403") ||
		strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "authentication") ||
		strings.Contains(lower, "api key") ||
		strings.Contains(lower, "api_key"):
		return &AnalystError{
			Code:      "invalid_api_key",
			Message:   fmt.Sprintf("%s API key is invalid or expired", provider),
			Retryable: false,
		}
	case strings.Contains(lower, "429") ||
		strings.Contains(lower, "rate limit") ||
		strings.Contains(lower, "rate_limit") ||
		strings.Contains(lower, "too many requests"):
		return &AnalystError{
			Code:      "rate_limited",
			Message:   fmt.Sprintf("%s API rate limit exceeded", provider),
			Retryable: true,
		}
	case strings.Contains(lower, "quota") ||
		strings.Contains(lower, "billing"):
		return &AnalystError{
			Code:      "quota_exceeded",
			Message:   fmt.Sprintf("%s API quota exceeded", provider),
			Retryable: false,
		}
	case strings.Contains(lower, "timeout") ||
		strings.Contains(lower, "deadline"):
		return &AnalystError{
			Code:      "timeout",
			Message:   fmt.Sprintf("%s API request timed out", provider),
			Retryable: true,
		}
	case strings.Contains(lower, "500") ||
		strings.Contains(lower, "502") ||
		strings.Contains(lower, "503") ||
		strings.Contains(lower, "overloaded") ||
		strings.Contains(lower, "internal server error") ||
		strings.Contains(lower, "service unavailable"):
		return &AnalystError{
			Code:      "server_error",
			Message:   fmt.Sprintf("%s API server error: %v", provider, err),
			Retryable: true,
		}
	}

	return &AnalystError{
		Code:      "api_error",
		Message:   fmt.Sprintf("%s API error: %v", provider, err),
		Retryable: false,
	}
}
