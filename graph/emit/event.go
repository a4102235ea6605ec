// Package emit provides observability events for workflow execution.
// Emitters receive one Event per engine action (node start, completion,
// interrupt, resume) and forward it to logs, traces, or nothing.
package emit

// Event is a single observability record from the engine.
type Event struct {
	// RunID identifies the workflow execution.
	RunID string `json:"run_id"`

	// Step is the execution step number at emission time.
	Step int `json:"step"`

	// NodeID is the node the event concerns, if any.
	NodeID string `json:"node_id,omitempty"`

	// Msg is a short human-readable description, e.g. "node completed".
	Msg string `json:"msg"`

	// Meta carries structured details (durations, outcomes, counts).
	Meta map[string]any `json:"meta,omitempty"`
}
