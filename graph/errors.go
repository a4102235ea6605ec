package graph

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Engine.Run and Engine.Resume.
var (
	// ErrInterrupted reports that the run suspended before a node in
	// the interrupt set. The state returned alongside it is the durable
	// snapshot; resume the run with Engine.Resume.
	ErrInterrupted = errors.New("graph: run interrupted awaiting resume")

	// ErrNotInterrupted reports a resume attempt for a run that has no
	// pending interrupt record.
	ErrNotInterrupted = errors.New("graph: run has no pending interrupt")

	// ErrAlreadyResumed reports a resume attempt for a run whose
	// interrupt record was already claimed by another resume.
	ErrAlreadyResumed = errors.New("graph: run already resumed")

	// ErrMaxStepsExceeded reports that the run hit the configured step
	// limit, usually indicating a routing cycle.
	ErrMaxStepsExceeded = errors.New("graph: maximum steps exceeded")
)

// EngineError reports a structural failure in graph configuration or
// routing, distinct from node-level failures (NodeError).
type EngineError struct {
	// Message describes the failure.
	Message string

	// Code classifies the failure for programmatic handling:
	// NO_START_NODE, UNKNOWN_NODE, NO_ROUTE, DUPLICATE_NODE,
	// INVALID_OPTION.
	Code string
}

// Error implements the error interface.
func (e *EngineError) Error() string {
	return fmt.Sprintf("engine error [%s]: %s", e.Code, e.Message)
}
