package graph

// Edge connects two nodes in the workflow graph.
//
// Edges define control flow between nodes. An edge is either
// unconditional (When is nil) or guarded by a predicate evaluated
// against the accumulated state. Explicit routing via NodeResult.Route
// takes precedence; the engine only consults edges when a node returns
// a zero route.
type Edge[S any] struct {
	// From is the source node ID.
	From string

	// To is the destination node ID.
	To string

	// When guards the edge. Nil means always traverse.
	When Predicate[S]
}

// Predicate evaluates state to decide whether an edge is taken.
//
// Predicates should be pure: deterministic and free of side effects.
// Typical predicates check a flag (s.Approved) or presence
// (s.Diff != "").
type Predicate[S any] func(state S) bool
