package review

import (
	"context"
	"fmt"

	"github.com/dshills/gitguard/graph"
)

// ReviewerNode fetches the PR diff (when the state does not already
// carry one) and asks the Analyst for proposed comments.
//
// Failures from either collaborator abort the run; there is no retry
// at this layer.
type ReviewerNode struct {
	Fetcher DiffFetcher
	Analyst Analyst
}

// ID returns the node identifier.
func (n *ReviewerNode) ID() string { return NodeReviewer }

// Run produces the diff and proposed comments delta.
func (n *ReviewerNode) Run(ctx context.Context, state State) graph.NodeResult[State] {
	diff := state.PRDiff
	if diff == "" {
		fetched, err := n.Fetcher.FetchPRDiff(ctx, state.RepoName, state.PRNumber)
		if err != nil {
			return graph.NodeResult[State]{
				Err: fmt.Errorf("fetching diff for %s#%d: %w", state.RepoName, state.PRNumber, err),
			}
		}
		diff = fetched
	}

	comments, err := n.Analyst.Review(ctx, Request{RepoName: state.RepoName, Diff: diff})
	if err != nil {
		return graph.NodeResult[State]{
			Err: fmt.Errorf("reviewing %s#%d: %w", state.RepoName, state.PRNumber, err),
		}
	}
	if comments == nil {
		comments = []Comment{}
	}

	return graph.NodeResult[State]{
		Delta: State{
			PRDiff:           diff,
			ProposedComments: comments,
		},
	}
}

// PosterNode acts on the human decision recorded in the state. It runs
// only after the suspension gate, so ReviewApproved reflects an
// explicit operator choice.
type PosterNode struct {
	Poster Poster
}

// ID returns the node identifier.
func (n *PosterNode) ID() string { return NodePoster }

// Run posts approved comments, or records why nothing was posted.
func (n *PosterNode) Run(ctx context.Context, state State) graph.NodeResult[State] {
	if !state.ReviewApproved {
		return graph.NodeResult[State]{
			Delta: State{Messages: []Message{{
				Role: RoleAI,
				Text: "❌ Review NOT approved by human. No comments posted.",
			}}},
			Route: graph.Stop(),
		}
	}

	if len(state.ProposedComments) == 0 {
		return graph.NodeResult[State]{
			Delta: State{Messages: []Message{{
				Role: RoleAI,
				Text: "✅ No issues found. Skipping comment posting.",
			}}},
			Route: graph.Stop(),
		}
	}

	result, err := n.Poster.PostReview(ctx, state.RepoName, state.PRNumber, state.ProposedComments)
	if err != nil {
		return graph.NodeResult[State]{
			Err: fmt.Errorf("posting review to %s#%d: %w", state.RepoName, state.PRNumber, err),
		}
	}

	return graph.NodeResult[State]{
		Delta: State{Messages: []Message{{
			Role: RoleAI,
			Text: "🚀 " + result,
		}}},
		Route: graph.Stop(),
	}
}
