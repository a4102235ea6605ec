// Package review implements the pull-request review workflow: fetch a
// diff, propose structured comments, suspend for human approval, then
// post or skip.
package review

import (
	"context"
	"fmt"
)

// Severity classifies how serious a review comment is.
type Severity string

// Valid severities, ordered from most to least serious.
const (
	SeverityCritical Severity = "critical"
	SeverityMajor    Severity = "major"
	SeverityMinor    Severity = "minor"
	SeverityNitpick  Severity = "nitpick"
)

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityMajor, SeverityMinor, SeverityNitpick:
		return true
	}
	return false
}

// Comment is one proposed review comment anchored to a changed line.
type Comment struct {
	FilePath   string   `json:"file_path"`
	LineNumber int      `json:"line_number"`
	Body       string   `json:"body"`
	Severity   Severity `json:"severity"`
}

// Validate checks the comment is postable: a file path, a positive line
// number, a non-empty body, and a known severity.
func (c Comment) Validate() error {
	if c.FilePath == "" {
		return fmt.Errorf("comment missing file path")
	}
	if c.LineNumber <= 0 {
		return fmt.Errorf("comment on %s has invalid line number %d", c.FilePath, c.LineNumber)
	}
	if c.Body == "" {
		return fmt.Errorf("comment on %s:%d has empty body", c.FilePath, c.LineNumber)
	}
	if !c.Severity.Valid() {
		return fmt.Errorf("comment on %s:%d has unknown severity %q", c.FilePath, c.LineNumber, c.Severity)
	}
	return nil
}

// RoleAI marks messages produced by the workflow itself.
const RoleAI = "ai"

// Message is one entry in the run's append-only transcript.
type Message struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// State is the accumulated workflow state for one review run. It is
// JSON-serialized into the store at every step and at the suspension
// point, so every field must marshal cleanly.
type State struct {
	RepoName         string    `json:"repo_name"`
	PRNumber         int       `json:"pr_number"`
	PRDiff           string    `json:"pr_diff,omitempty"`
	ProposedComments []Comment `json:"proposed_comments"`
	ReviewApproved   bool      `json:"review_approved"`
	Messages         []Message `json:"messages"`
}

// Reduce merges a node's delta into the previous state.
//
// Scalar identity fields and the diff replace when the delta carries a
// value. Proposed comments replace when the delta carries any. The
// approval flag latches true and is never un-set by a later delta.
// Messages are append-only.
func Reduce(prev, delta State) State {
	out := prev

	if delta.RepoName != "" {
		out.RepoName = delta.RepoName
	}
	if delta.PRNumber != 0 {
		out.PRNumber = delta.PRNumber
	}
	if delta.PRDiff != "" {
		out.PRDiff = delta.PRDiff
	}
	if delta.ProposedComments != nil {
		out.ProposedComments = delta.ProposedComments
	}
	if delta.ReviewApproved {
		out.ReviewApproved = true
	}
	if len(delta.Messages) > 0 {
		out.Messages = append(append([]Message{}, prev.Messages...), delta.Messages...)
	}

	return out
}

// Request is the input handed to an Analyst.
type Request struct {
	RepoName string
	Diff     string
}

// DiffFetcher retrieves the unified diff of a pull request.
type DiffFetcher interface {
	FetchPRDiff(ctx context.Context, repoName string, prNumber int) (string, error)
}

// Analyst turns a diff into proposed review comments. An empty diff or
// a clean review yields an empty slice, not an error.
type Analyst interface {
	Review(ctx context.Context, req Request) ([]Comment, error)
}

// Poster publishes approved comments to the pull request and returns a
// human-readable result.
type Poster interface {
	PostReview(ctx context.Context, repoName string, prNumber int, comments []Comment) (string, error)
}
