package providers

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dshills/gitguard/review"
)

func TestParseComments(t *testing.T) {
	valid := `{"comments": [{"file_path": "src/db.py", "line_number": 42, ` +
		`"body": "SQL injection risk", "severity": "critical"}]}`

	t.Run("envelope", func(t *testing.T) {
		comments, err := parseComments(valid)
		if err != nil {
			t.Fatalf("parseComments() error: %v", err)
		}
		if len(comments) != 1 {
			t.Fatalf("len = %d, want 1", len(comments))
		}
		c := comments[0]
		if c.FilePath != "src/db.py" || c.LineNumber != 42 || c.Severity != review.SeverityCritical {
			t.Errorf("comment = %+v", c)
		}
	})

	t.Run("markdown fences stripped", func(t *testing.T) {
		fenced := "```json\n" + valid + "\n```"
		comments, err := parseComments(fenced)
		if err != nil {
			t.Fatalf("parseComments() error: %v", err)
		}
		if len(comments) != 1 {
			t.Errorf("len = %d, want 1", len(comments))
		}
	})

	t.Run("bare array accepted", func(t *testing.T) {
		bare := `[{"file_path": "a.go", "line_number": 3, "body": "x", "severity": "minor"}]`
		comments, err := parseComments(bare)
		if err != nil {
			t.Fatalf("parseComments() error: %v", err)
		}
		if len(comments) != 1 {
			t.Errorf("len = %d, want 1", len(comments))
		}
	})

	t.Run("empty comments", func(t *testing.T) {
		comments, err := parseComments(`{"comments": []}`)
		if err != nil {
			t.Fatalf("parseComments() error: %v", err)
		}
		if len(comments) != 0 {
			t.Errorf("len = %d, want 0", len(comments))
		}
	})

	t.Run("invalid entries dropped", func(t *testing.T) {
		mixed := `{"comments": [
			{"file_path": "a.go", "line_number": 3, "body": "ok", "severity": "major"},
			{"file_path": "", "line_number": 3, "body": "no path", "severity": "major"},
			{"file_path": "b.go", "line_number": 0, "body": "bad line", "severity": "major"},
			{"file_path": "c.go", "line_number": 9, "body": "bad severity", "severity": "high"}
		]}`
		comments, err := parseComments(mixed)
		if err != nil {
			t.Fatalf("parseComments() error: %v", err)
		}
		if len(comments) != 1 {
			t.Errorf("len = %d, want 1 (invalid entries dropped)", len(comments))
		}
	})

	t.Run("non-JSON fails", func(t *testing.T) {
		_, err := parseComments("I found several issues in this code.")
		var ae *AnalystError
		if !errors.As(err, &ae) || ae.Code != "parse_error" {
			t.Errorf("error = %v, want parse_error AnalystError", err)
		}
		if IsRetryable(err) {
			t.Error("parse errors should not be retryable")
		}
	})

	t.Run("empty content yields no comments", func(t *testing.T) {
		comments, err := parseComments("")
		if err != nil {
			t.Fatalf("parseComments() error: %v", err)
		}
		if len(comments) != 0 {
			t.Errorf("len = %d, want 0", len(comments))
		}
	})
}

func TestBuildPrompt(t *testing.T) {
	prompt := buildPrompt(review.Request{RepoName: "acme/widgets", Diff: "diff --git a/x b/x"})

	for _, want := range []string{
		"acme/widgets",
		"diff --git a/x b/x",
		`"critical"`,
		`"major"`,
		`"minor"`,
		"nitpick",
		`{"comments":`,
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestMapAPIError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		retryable bool
	}{
		{"auth 401", errors.New("401 unauthorized"), "invalid_api_key", false},
		{"bad key", errors.New("invalid api_key provided"), "invalid_api_key", false},
		{"rate limit", errors.New("429 too many requests"), "rate_limited", true},
		{"quota", errors.New("insufficient quota for this billing period"), "quota_exceeded", false},
		{"timeout", errors.New("context deadline exceeded"), "timeout", true},
		{"server", errors.New("503 service unavailable"), "server_error", true},
		{"unknown", errors.New("something odd happened"), "api_error", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := mapAPIError("openai", tt.err)
			var ae *AnalystError
			if !errors.As(err, &ae) {
				t.Fatalf("mapAPIError() = %v, want AnalystError", err)
			}
			if ae.Code != tt.code {
				t.Errorf("Code = %q, want %q", ae.Code, tt.code)
			}
			if ae.Retryable != tt.retryable {
				t.Errorf("Retryable = %v, want %v", ae.Retryable, tt.retryable)
			}
		})
	}
}

func TestAnalystsEmptyDiff(t *testing.T) {
	// An empty diff short-circuits before any API call, so a dummy key
	// is safe here.
	t.Run("openai", func(t *testing.T) {
		a, err := NewOpenAIAnalyst("test-key", "")
		if err != nil {
			t.Fatalf("NewOpenAIAnalyst() error: %v", err)
		}
		comments, err := a.Review(context.Background(), review.Request{})
		if err != nil {
			t.Fatalf("Review() error: %v", err)
		}
		if len(comments) != 0 {
			t.Errorf("len = %d, want 0", len(comments))
		}
	})

	t.Run("anthropic", func(t *testing.T) {
		a, err := NewAnthropicAnalyst("test-key", "")
		if err != nil {
			t.Fatalf("NewAnthropicAnalyst() error: %v", err)
		}
		comments, err := a.Review(context.Background(), review.Request{})
		if err != nil {
			t.Fatalf("Review() error: %v", err)
		}
		if len(comments) != 0 {
			t.Errorf("len = %d, want 0", len(comments))
		}
	})
}

func TestAnalystConstructorsRejectEmptyKey(t *testing.T) {
	if _, err := NewOpenAIAnalyst("", "gpt-4o-mini"); err == nil {
		t.Error("NewOpenAIAnalyst accepted empty key")
	}
	if _, err := NewAnthropicAnalyst("", ""); err == nil {
		t.Error("NewAnthropicAnalyst accepted empty key")
	}
	if _, err := NewGoogleAnalyst(context.Background(), "", ""); err == nil {
		t.Error("NewGoogleAnalyst accepted empty key")
	}
}
