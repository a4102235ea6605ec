package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/dshills/gitguard/graph"
	"github.com/dshills/gitguard/graph/emit"
	"github.com/dshills/gitguard/graph/store"
)

// Node identifiers within the review graph.
const (
	NodeReviewer = "reviewer"
	NodePoster   = "poster"
)

// Deps holds the collaborators a Workflow needs. Everything is passed
// explicitly; there are no package-level defaults.
type Deps struct {
	Fetcher DiffFetcher
	Analyst Analyst
	Poster  Poster
	Store   store.Store[State]
	Emitter emit.Emitter

	// Metrics is optional.
	Metrics *graph.Metrics
}

// Workflow is the assembled review graph: reviewer → [suspend] →
// poster. A single Workflow serves any number of runs.
type Workflow struct {
	engine *graph.Engine[State]
	store  store.Store[State]
}

// New assembles the review workflow from its dependencies.
func New(deps Deps) (*Workflow, error) {
	if deps.Fetcher == nil || deps.Analyst == nil || deps.Poster == nil {
		return nil, fmt.Errorf("fetcher, analyst, and poster are required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	emitter := deps.Emitter
	if emitter == nil {
		emitter = emit.NewNullEmitter()
	}

	engine, err := graph.New(Reduce, deps.Store, emitter,
		graph.WithMaxSteps(10),
		graph.WithInterruptBefore(NodePoster),
		graph.WithMetrics(deps.Metrics),
	)
	if err != nil {
		return nil, fmt.Errorf("building engine: %w", err)
	}

	if err := engine.Add(&ReviewerNode{Fetcher: deps.Fetcher, Analyst: deps.Analyst}); err != nil {
		return nil, err
	}
	if err := engine.Add(&PosterNode{Poster: deps.Poster}); err != nil {
		return nil, err
	}
	if err := engine.Connect(NodeReviewer, NodePoster, nil); err != nil {
		return nil, err
	}
	if err := engine.StartAt(NodeReviewer); err != nil {
		return nil, err
	}

	return &Workflow{engine: engine, store: deps.Store}, nil
}

// Start begins a review run. On the normal path the run suspends
// before posting and Start returns the state holding the proposed
// comments together with graph.ErrInterrupted.
func (w *Workflow) Start(ctx context.Context, runID, repoName string, prNumber int) (State, error) {
	initial := State{
		RepoName:         repoName,
		PRNumber:         prNumber,
		ProposedComments: []Comment{},
		Messages:         []Message{},
	}
	return w.engine.Run(ctx, runID, initial)
}

// Pending returns the suspended state of a run without consuming the
// interrupt, so an operator can inspect the proposed comments before
// deciding. Returns store.ErrNotFound when the run is not suspended.
func (w *Workflow) Pending(ctx context.Context, runID string) (State, error) {
	ip, err := w.store.LoadInterrupt(ctx, runID)
	if err != nil {
		return State{}, err
	}
	return ip.State, nil
}

// Resume applies the human decision and drives the run to completion.
// The terminal state's last message describes the outcome.
//
// Returns graph.ErrNotInterrupted for runs that are not suspended and
// graph.ErrAlreadyResumed when another resume won the race.
func (w *Workflow) Resume(ctx context.Context, runID string, approved bool) (State, error) {
	return w.engine.Resume(ctx, runID, func(s State) State {
		s.ReviewApproved = approved
		return s
	})
}

// IsInterrupted reports whether err is the expected suspension signal
// from Start.
func IsInterrupted(err error) bool {
	return errors.Is(err, graph.ErrInterrupted)
}
