// Package github implements the review collaborators (diff fetching
// and comment posting) on the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"

	"github.com/dshills/gitguard/review"
)

// Compile-time collaborator checks.
var (
	_ review.DiffFetcher = (*Client)(nil)
	_ review.Poster      = (*Client)(nil)
)

// Client talks to the GitHub API on behalf of the review workflow.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client
// and base URL. Intended for testing against an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL string) (*Client, error) {
	client := gh.NewClient(httpClient)

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	return &Client{gh: client}, nil
}

// FetchPRDiff retrieves the unified diff of a pull request.
func (c *Client) FetchPRDiff(ctx context.Context, repoName string, prNumber int) (string, error) {
	owner, repo, err := splitRepo(repoName)
	if err != nil {
		return "", err
	}

	diff, resp, err := c.gh.PullRequests.GetRaw(ctx, owner, repo, prNumber, gh.RawOptions{Type: gh.Diff})
	if err != nil {
		return "", fmt.Errorf("fetching diff for %s#%d: %w", repoName, prNumber, err)
	}
	logRateLimit(resp, repoName)

	return diff, nil
}

// PostReview publishes the comments as a single pull request review
// with event COMMENT. Each comment lands on the new side of its line
// with a severity tag prefixed to the body.
func (c *Client) PostReview(ctx context.Context, repoName string, prNumber int, comments []review.Comment) (string, error) {
	owner, repo, err := splitRepo(repoName)
	if err != nil {
		return "", err
	}

	draftComments := make([]*gh.DraftReviewComment, 0, len(comments))
	for _, cm := range comments {
		draftComments = append(draftComments, &gh.DraftReviewComment{
			Path: gh.Ptr(cm.FilePath),
			Line: gh.Ptr(cm.LineNumber),
			Side: gh.Ptr("RIGHT"),
			Body: gh.Ptr(formatBody(cm)),
		})
	}

	reviewReq := &gh.PullRequestReviewRequest{
		Event:    gh.Ptr("COMMENT"),
		Body:     gh.Ptr("Automated review by gitguard."),
		Comments: draftComments,
	}

	_, resp, err := c.gh.PullRequests.CreateReview(ctx, owner, repo, prNumber, reviewReq)
	if err != nil {
		return "", fmt.Errorf("submitting review for %s#%d: %w", repoName, prNumber, err)
	}
	logRateLimit(resp, repoName)

	return fmt.Sprintf("Posted %d review comments to %s#%d", len(comments), repoName, prNumber), nil
}

// formatBody prefixes the comment body with its severity tag.
func formatBody(c review.Comment) string {
	return fmt.Sprintf("**[%s]** %s", strings.ToUpper(string(c.Severity)), c.Body)
}

func splitRepo(fullName string) (string, string, error) {
	parts := strings.SplitN(fullName, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repo name %q: expected owner/repo", fullName)
	}
	return parts[0], parts[1], nil
}

func logRateLimit(resp *gh.Response, endpoint string) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		"endpoint", endpoint,
		"rate_remaining", resp.Rate.Remaining,
		"rate_limit", resp.Rate.Limit,
	)

	if resp.Rate.Remaining < 100 {
		slog.Warn("github rate limit low",
			"remaining", resp.Rate.Remaining,
			"reset", resp.Rate.Reset.Time,
		)
	}
}
