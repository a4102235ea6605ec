package store

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store for tests and throwaway runs. Nothing
// survives process exit.
type MemStore[S any] struct {
	mu         sync.Mutex
	steps      map[string][]StepRecord[S]
	interrupts map[string]*memInterrupt[S]
}

type memInterrupt[S any] struct {
	ip      Interrupt[S]
	claimed bool
}

// NewMemStore creates an empty in-memory store.
func NewMemStore[S any]() *MemStore[S] {
	return &MemStore[S]{
		steps:      map[string][]StepRecord[S]{},
		interrupts: map[string]*memInterrupt[S]{},
	}
}

// SaveStep records the state after a node execution.
func (m *MemStore[S]) SaveStep(_ context.Context, runID string, rec StepRecord[S]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.steps[runID]
	for i, r := range recs {
		if r.Step == rec.Step {
			recs[i] = rec
			return nil
		}
	}
	m.steps[runID] = append(recs, rec)
	return nil
}

// LoadLatest returns the highest-step record for the run.
func (m *MemStore[S]) LoadLatest(_ context.Context, runID string) (StepRecord[S], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recs := m.steps[runID]
	if len(recs) == 0 {
		var zero StepRecord[S]
		return zero, ErrNotFound
	}
	latest := recs[0]
	for _, r := range recs[1:] {
		if r.Step > latest.Step {
			latest = r
		}
	}
	return latest, nil
}

// SaveInterrupt persists a suspension snapshot, replacing any prior one.
func (m *MemStore[S]) SaveInterrupt(_ context.Context, ip Interrupt[S]) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.interrupts[ip.RunID] = &memInterrupt[S]{ip: ip}
	return nil
}

// LoadInterrupt returns the pending interrupt without consuming it.
func (m *MemStore[S]) LoadInterrupt(_ context.Context, runID string) (Interrupt[S], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.interrupts[runID]
	if !ok || entry.claimed {
		var zero Interrupt[S]
		return zero, ErrNotFound
	}
	return entry.ip, nil
}

// ClaimInterrupt atomically consumes the pending interrupt.
func (m *MemStore[S]) ClaimInterrupt(_ context.Context, runID string) (Interrupt[S], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var zero Interrupt[S]
	entry, ok := m.interrupts[runID]
	if !ok {
		return zero, ErrNotFound
	}
	if entry.claimed {
		return zero, ErrInterruptClaimed
	}
	entry.claimed = true
	return entry.ip, nil
}
