package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dshills/gitguard/graph/emit"
	"github.com/dshills/gitguard/graph/store"
)

// Engine executes a workflow graph over state type S.
//
// Build an engine with New, register nodes with Add, declare control
// flow with StartAt and Connect, then execute with Run. A run walks
// the graph one node at a time: execute, merge the delta through the
// reducer, persist the state, route to the next node.
//
// Runs suspend durably at nodes named in WithInterruptBefore: the
// engine persists an interrupt snapshot and returns ErrInterrupted.
// Resume claims the snapshot, applies an external mutation (a human
// decision), and re-enters at the recorded node without re-executing
// anything that already ran. The claim is single-use, so concurrent
// resumes of the same run produce exactly one winner.
//
// Engines are safe for concurrent Run/Resume calls on distinct run IDs
// once construction is complete. Add, StartAt, and Connect are not
// safe to call after execution begins.
type Engine[S any] struct {
	nodes   map[string]Node[S]
	edges   []Edge[S]
	startID string

	reducer Reducer[S]
	store   store.Store[S]
	emitter emit.Emitter
	cfg     engineConfig
}

// New creates an engine with the given reducer, store, emitter, and
// options. All three collaborators are required; pass
// emit.NewNullEmitter() to discard events.
func New[S any](reducer Reducer[S], st store.Store[S], emitter emit.Emitter, opts ...Option) (*Engine[S], error) {
	if reducer == nil {
		return nil, &EngineError{Code: "INVALID_OPTION", Message: "reducer is required"}
	}
	if st == nil {
		return nil, &EngineError{Code: "INVALID_OPTION", Message: "store is required"}
	}
	if emitter == nil {
		return nil, &EngineError{Code: "INVALID_OPTION", Message: "emitter is required"}
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, &EngineError{Code: "INVALID_OPTION", Message: err.Error()}
		}
	}

	return &Engine[S]{
		nodes:   map[string]Node[S]{},
		reducer: reducer,
		store:   st,
		emitter: emitter,
		cfg:     cfg,
	}, nil
}

// Add registers a node. Node IDs must be unique within the graph.
func (e *Engine[S]) Add(n Node[S]) error {
	id := n.ID()
	if id == "" {
		return &EngineError{Code: "INVALID_OPTION", Message: "node ID cannot be empty"}
	}
	if _, exists := e.nodes[id]; exists {
		return &EngineError{Code: "DUPLICATE_NODE", Message: fmt.Sprintf("node %q already registered", id)}
	}
	e.nodes[id] = n
	return nil
}

// StartAt sets the entry node for Run.
func (e *Engine[S]) StartAt(nodeID string) error {
	if _, ok := e.nodes[nodeID]; !ok {
		return &EngineError{Code: "UNKNOWN_NODE", Message: fmt.Sprintf("start node %q not registered", nodeID)}
	}
	e.startID = nodeID
	return nil
}

// Connect declares an edge from one node to another, optionally guarded
// by a predicate. Pass nil for an unconditional edge. Edges are
// evaluated in declaration order when a node returns no explicit route.
func (e *Engine[S]) Connect(from, to string, when Predicate[S]) error {
	if _, ok := e.nodes[from]; !ok {
		return &EngineError{Code: "UNKNOWN_NODE", Message: fmt.Sprintf("edge source %q not registered", from)}
	}
	if _, ok := e.nodes[to]; !ok {
		return &EngineError{Code: "UNKNOWN_NODE", Message: fmt.Sprintf("edge target %q not registered", to)}
	}
	e.edges = append(e.edges, Edge[S]{From: from, To: to, When: when})
	return nil
}

// Run executes the workflow from the start node with the given initial
// state.
//
// Returns the final state on normal termination. If the run reaches a
// node in the interrupt set, Run persists the snapshot and returns the
// state so far together with ErrInterrupted; continue the run later
// with Resume.
func (e *Engine[S]) Run(ctx context.Context, runID string, initial S) (S, error) {
	if e.startID == "" {
		return initial, &EngineError{Code: "NO_START_NODE", Message: "no start node configured"}
	}

	e.emitter.Emit(emit.Event{RunID: runID, Msg: "run started", Meta: map[string]any{"start_node": e.startID}})
	return e.loop(ctx, runID, initial, e.startID, 0, true)
}

// Resume continues a suspended run.
//
// It atomically claims the run's interrupt snapshot, applies mutate to
// the snapshot state (pass nil to resume unchanged), and re-enters the
// graph at the node the run suspended before. Prior nodes are not
// re-executed.
//
// Returns ErrNotInterrupted when the run has no pending interrupt and
// ErrAlreadyResumed when a concurrent resume claimed it first.
func (e *Engine[S]) Resume(ctx context.Context, runID string, mutate func(S) S) (S, error) {
	var zero S

	ip, err := e.store.ClaimInterrupt(ctx, runID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.cfg.metrics.RecordResume("not_interrupted")
		return zero, fmt.Errorf("resuming run %s: %w", runID, ErrNotInterrupted)
	case errors.Is(err, store.ErrInterruptClaimed):
		e.cfg.metrics.RecordResume("already_resumed")
		return zero, fmt.Errorf("resuming run %s: %w", runID, ErrAlreadyResumed)
	case err != nil:
		return zero, fmt.Errorf("claiming interrupt for run %s: %w", runID, err)
	}

	state := ip.State
	if mutate != nil {
		state = mutate(state)
	}

	e.cfg.metrics.RecordResume("resumed")
	e.emitter.Emit(emit.Event{
		RunID:  runID,
		Step:   ip.Step,
		NodeID: ip.NextNode,
		Msg:    "run resumed",
	})

	return e.loop(ctx, runID, state, ip.NextNode, ip.Step, false)
}

// loop is the shared execution core for Run and Resume. checkFirst
// controls whether the first node is subject to the interrupt gate;
// Resume re-enters at a gated node and must not re-suspend on it.
func (e *Engine[S]) loop(ctx context.Context, runID string, state S, nodeID string, step int, checkFirst bool) (S, error) {
	current := nodeID
	gate := checkFirst

	for {
		if step >= e.cfg.maxSteps {
			e.cfg.metrics.RecordRun("error")
			return state, fmt.Errorf("run %s at step %d: %w", runID, step, ErrMaxStepsExceeded)
		}

		select {
		case <-ctx.Done():
			e.cfg.metrics.RecordRun("error")
			return state, fmt.Errorf("run %s cancelled: %w", runID, ctx.Err())
		default:
		}

		node, ok := e.nodes[current]
		if !ok {
			e.cfg.metrics.RecordRun("error")
			return state, &EngineError{Code: "UNKNOWN_NODE", Message: fmt.Sprintf("routed to unregistered node %q", current)}
		}

		if gate && e.cfg.interruptBefore[current] {
			ip := store.Interrupt[S]{
				RunID:     runID,
				NextNode:  current,
				Step:      step,
				State:     state,
				CreatedAt: time.Now().UTC(),
			}
			if err := e.store.SaveInterrupt(ctx, ip); err != nil {
				e.cfg.metrics.RecordRun("error")
				return state, fmt.Errorf("saving interrupt for run %s: %w", runID, err)
			}
			e.cfg.metrics.RecordInterrupt(current)
			e.cfg.metrics.RecordRun("interrupted")
			e.emitter.Emit(emit.Event{
				RunID:  runID,
				Step:   step,
				NodeID: current,
				Msg:    "run interrupted",
			})
			return state, ErrInterrupted
		}
		gate = true

		result := e.execute(ctx, node, state)
		if result.Err != nil {
			e.cfg.metrics.RecordRun("error")
			e.emitter.Emit(emit.Event{
				RunID:  runID,
				Step:   step,
				NodeID: current,
				Msg:    "node failed",
				Meta:   map[string]any{"error": result.Err.Error()},
			})
			return state, &NodeError{NodeID: current, Step: step, Err: result.Err}
		}

		state = e.reducer(state, result.Delta)
		step++

		rec := store.StepRecord[S]{Step: step, NodeID: current, State: state}
		if err := e.store.SaveStep(ctx, runID, rec); err != nil {
			e.cfg.metrics.RecordRun("error")
			return state, fmt.Errorf("saving step %d for run %s: %w", step, runID, err)
		}

		e.emitter.Emit(emit.Event{
			RunID:  runID,
			Step:   step,
			NodeID: current,
			Msg:    "node completed",
		})

		switch {
		case result.Route.Terminal:
			e.cfg.metrics.RecordRun("completed")
			e.emitter.Emit(emit.Event{RunID: runID, Step: step, Msg: "run completed"})
			return state, nil
		case result.Route.To != "":
			current = result.Route.To
		default:
			next, ok := e.nextEdge(current, state)
			if !ok {
				e.cfg.metrics.RecordRun("error")
				return state, &EngineError{Code: "NO_ROUTE", Message: fmt.Sprintf("no route from node %q", current)}
			}
			current = next
		}
	}
}

// execute runs one node, applying the per-node timeout when configured
// and recording latency.
func (e *Engine[S]) execute(ctx context.Context, node Node[S], state S) NodeResult[S] {
	runCtx := ctx
	if e.cfg.nodeTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.cfg.nodeTimeout)
		defer cancel()
	}

	start := time.Now()
	result := node.Run(runCtx, state)

	status := "success"
	if result.Err != nil {
		status = "error"
	}
	e.cfg.metrics.RecordNodeDuration(node.ID(), time.Since(start), status)

	return result
}

// nextEdge returns the first matching edge from the given node.
func (e *Engine[S]) nextEdge(from string, state S) (string, bool) {
	for _, edge := range e.edges {
		if edge.From != from {
			continue
		}
		if edge.When == nil || edge.When(state) {
			return edge.To, true
		}
	}
	return "", false
}
