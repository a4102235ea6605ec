package graph

// Reducer merges a node's partial delta into the accumulated state.
//
// The engine calls the reducer after every node execution:
//
//	state = reducer(state, result.Delta)
//
// Reducers must be pure and total: no side effects, no panics on zero
// values. A field-wise merge is typical, where zero-valued delta fields
// leave the previous value in place and slices append or replace
// according to domain rules.
type Reducer[S any] func(prev, delta S) S
