// Package graph provides the workflow execution engine for GitGuard.
package graph

import (
	"context"
	"fmt"
)

// Node represents a single unit of work in the workflow graph.
//
// Nodes read the current state, perform work (API calls, LLM inference,
// side effects), and return a partial state delta together with optional
// routing. The engine merges the delta into the accumulated state via the
// graph's Reducer and persists the result before moving on.
//
// Type parameter S is the state type shared across the workflow.
type Node[S any] interface {
	// ID returns the unique identifier for this node within the graph.
	ID() string

	// Run executes the node's work with the given context and state.
	// The returned NodeResult carries the delta, routing, and any error.
	Run(ctx context.Context, state S) NodeResult[S]
}

// NodeResult is the outcome of a single node execution.
type NodeResult[S any] struct {
	// Delta is the partial state produced by this node. It is merged
	// into the accumulated state by the graph's Reducer.
	Delta S

	// Route determines where execution goes next. A zero Route defers
	// to the graph's declared edges.
	Route Next

	// Err, if non-nil, aborts the run. Nodes do not retry; failures
	// surface to the caller wrapped in a NodeError.
	Err error
}

// Next describes routing after a node completes.
//
// Exactly one of the following applies:
//   - Terminal true: the run ends successfully.
//   - To non-empty: jump to the named node.
//   - zero value: the engine evaluates the graph's edges.
type Next struct {
	// To is an explicit destination node ID.
	To string

	// Terminal marks the workflow as complete.
	Terminal bool
}

// Stop returns a terminal route ending the run.
func Stop() Next { return Next{Terminal: true} }

// Goto returns an explicit route to the named node.
func Goto(nodeID string) Next { return Next{To: nodeID} }

// NodeFunc adapts a plain function into a Node.
//
//	engine.Add(graph.NodeFunc[State]{
//	    NodeID: "classify",
//	    Fn: func(ctx context.Context, s State) graph.NodeResult[State] {
//	        return graph.NodeResult[State]{Delta: State{Label: "ok"}}
//	    },
//	})
type NodeFunc[S any] struct {
	NodeID string
	Fn     func(ctx context.Context, state S) NodeResult[S]
}

// ID returns the node identifier.
func (n NodeFunc[S]) ID() string { return n.NodeID }

// Run invokes the wrapped function.
func (n NodeFunc[S]) Run(ctx context.Context, state S) NodeResult[S] {
	return n.Fn(ctx, state)
}

// NodeError wraps a failure from a specific node so callers can tell
// which node aborted the run.
type NodeError struct {
	NodeID string
	Step   int
	Err    error
}

// Error implements the error interface.
func (e *NodeError) Error() string {
	return fmt.Sprintf("node %q failed at step %d: %v", e.NodeID, e.Step, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *NodeError) Unwrap() error { return e.Err }
