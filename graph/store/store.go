// Package store provides durable persistence for workflow runs: the
// per-step state history and the interrupt snapshots that let a run
// suspend for human input and resume later, possibly in a different
// process.
package store

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by all Store implementations.
var (
	// ErrNotFound reports that no record exists for the requested run.
	ErrNotFound = errors.New("store: not found")

	// ErrInterruptClaimed reports that the run's interrupt record was
	// already claimed by a concurrent resume.
	ErrInterruptClaimed = errors.New("store: interrupt already claimed")
)

// StepRecord is one persisted step of a run: the node that executed and
// the accumulated state after its delta was merged.
type StepRecord[S any] struct {
	Step   int    `json:"step"`
	NodeID string `json:"node_id"`
	State  S      `json:"state"`
}

// Interrupt is a durable suspension point. It snapshots everything the
// engine needs to re-enter the run at NextNode without re-executing
// prior nodes.
type Interrupt[S any] struct {
	RunID     string    `json:"run_id"`
	NextNode  string    `json:"next_node"`
	Step      int       `json:"step"`
	State     S         `json:"state"`
	CreatedAt time.Time `json:"created_at"`
}

// Store persists workflow state and interrupt snapshots.
//
// Implementations must be safe for concurrent use. State values are
// JSON-serialized by the SQL-backed stores, so S must marshal cleanly.
type Store[S any] interface {
	// SaveStep records the accumulated state after a node execution.
	// Saving the same (runID, step) twice overwrites the record.
	SaveStep(ctx context.Context, runID string, rec StepRecord[S]) error

	// LoadLatest returns the most recent step record for the run.
	// Returns ErrNotFound when the run has no steps.
	LoadLatest(ctx context.Context, runID string) (StepRecord[S], error)

	// SaveInterrupt persists a suspension snapshot for the run,
	// replacing any prior snapshot.
	SaveInterrupt(ctx context.Context, ip Interrupt[S]) error

	// LoadInterrupt returns the run's pending (unclaimed) interrupt
	// without consuming it. Returns ErrNotFound when none is pending.
	LoadInterrupt(ctx context.Context, runID string) (Interrupt[S], error)

	// ClaimInterrupt atomically consumes the run's interrupt and
	// returns its snapshot. Exactly one caller wins: later calls get
	// ErrInterruptClaimed, and runs that never interrupted get
	// ErrNotFound.
	ClaimInterrupt(ctx context.Context, runID string) (Interrupt[S], error)
}
