package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

type sqliteTestState struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func newSQLiteTestStore(t *testing.T) *SQLiteStore[sqliteTestState] {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := NewSQLiteStore[sqliteTestState](path)
	if err != nil {
		t.Fatalf("NewSQLiteStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteStoreSteps(t *testing.T) {
	ctx := context.Background()
	s := newSQLiteTestStore(t)

	t.Run("load from empty run", func(t *testing.T) {
		if _, err := s.LoadLatest(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadLatest() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("state round trips through JSON", func(t *testing.T) {
		want := sqliteTestState{Name: "run", Items: []string{"x", "y"}}
		rec := StepRecord[sqliteTestState]{Step: 1, NodeID: "reviewer", State: want}
		if err := s.SaveStep(ctx, "run-1", rec); err != nil {
			t.Fatalf("SaveStep() error: %v", err)
		}

		got, err := s.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadLatest() error: %v", err)
		}
		if got.State.Name != want.Name || len(got.State.Items) != 2 {
			t.Errorf("got %+v, want %+v", got.State, want)
		}
		if got.NodeID != "reviewer" {
			t.Errorf("NodeID = %q, want reviewer", got.NodeID)
		}
	})

	t.Run("latest step wins", func(t *testing.T) {
		for step := 2; step <= 4; step++ {
			rec := StepRecord[sqliteTestState]{Step: step, NodeID: "n", State: sqliteTestState{Name: "v"}}
			if err := s.SaveStep(ctx, "run-1", rec); err != nil {
				t.Fatalf("SaveStep(%d) error: %v", step, err)
			}
		}

		got, err := s.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadLatest() error: %v", err)
		}
		if got.Step != 4 {
			t.Errorf("Step = %d, want 4", got.Step)
		}
	})

	t.Run("same step upserts", func(t *testing.T) {
		rec := StepRecord[sqliteTestState]{Step: 4, NodeID: "n2", State: sqliteTestState{Name: "rewritten"}}
		if err := s.SaveStep(ctx, "run-1", rec); err != nil {
			t.Fatalf("SaveStep() error: %v", err)
		}

		got, err := s.LoadLatest(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadLatest() error: %v", err)
		}
		if got.State.Name != "rewritten" {
			t.Errorf("State.Name = %q, want rewritten", got.State.Name)
		}
	})

	t.Run("runs are isolated", func(t *testing.T) {
		rec := StepRecord[sqliteTestState]{Step: 1, NodeID: "n", State: sqliteTestState{Name: "other"}}
		if err := s.SaveStep(ctx, "run-2", rec); err != nil {
			t.Fatalf("SaveStep() error: %v", err)
		}

		got, err := s.LoadLatest(ctx, "run-2")
		if err != nil {
			t.Fatalf("LoadLatest() error: %v", err)
		}
		if got.State.Name != "other" || got.Step != 1 {
			t.Errorf("got %+v, want run-2's own record", got)
		}
	})
}

func TestSQLiteStoreInterrupts(t *testing.T) {
	ctx := context.Background()

	newInterrupt := func(runID string) Interrupt[sqliteTestState] {
		return Interrupt[sqliteTestState]{
			RunID:     runID,
			NextNode:  "poster",
			Step:      1,
			State:     sqliteTestState{Name: "pending", Items: []string{"c1"}},
			CreatedAt: time.Now().UTC(),
		}
	}

	t.Run("round trip", func(t *testing.T) {
		s := newSQLiteTestStore(t)
		if err := s.SaveInterrupt(ctx, newInterrupt("run-1")); err != nil {
			t.Fatalf("SaveInterrupt() error: %v", err)
		}

		ip, err := s.LoadInterrupt(ctx, "run-1")
		if err != nil {
			t.Fatalf("LoadInterrupt() error: %v", err)
		}
		if ip.NextNode != "poster" || ip.Step != 1 || ip.State.Name != "pending" {
			t.Errorf("got %+v, want saved snapshot", ip)
		}
		if ip.CreatedAt.IsZero() {
			t.Error("CreatedAt not persisted")
		}
	})

	t.Run("claim is single use", func(t *testing.T) {
		s := newSQLiteTestStore(t)
		if err := s.SaveInterrupt(ctx, newInterrupt("run-1")); err != nil {
			t.Fatalf("SaveInterrupt() error: %v", err)
		}

		ip, err := s.ClaimInterrupt(ctx, "run-1")
		if err != nil {
			t.Fatalf("first ClaimInterrupt() error: %v", err)
		}
		if ip.State.Name != "pending" {
			t.Errorf("claimed state = %+v, want snapshot", ip.State)
		}

		if _, err := s.ClaimInterrupt(ctx, "run-1"); !errors.Is(err, ErrInterruptClaimed) {
			t.Errorf("second ClaimInterrupt() error = %v, want ErrInterruptClaimed", err)
		}
		if _, err := s.LoadInterrupt(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
			t.Errorf("LoadInterrupt() after claim error = %v, want ErrNotFound", err)
		}
	})

	t.Run("claim of unknown run", func(t *testing.T) {
		s := newSQLiteTestStore(t)
		if _, err := s.ClaimInterrupt(ctx, "missing"); !errors.Is(err, ErrNotFound) {
			t.Errorf("ClaimInterrupt() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("saving again rearms the interrupt", func(t *testing.T) {
		s := newSQLiteTestStore(t)
		if err := s.SaveInterrupt(ctx, newInterrupt("run-1")); err != nil {
			t.Fatalf("SaveInterrupt() error: %v", err)
		}
		if _, err := s.ClaimInterrupt(ctx, "run-1"); err != nil {
			t.Fatalf("ClaimInterrupt() error: %v", err)
		}

		if err := s.SaveInterrupt(ctx, newInterrupt("run-1")); err != nil {
			t.Fatalf("second SaveInterrupt() error: %v", err)
		}
		if _, err := s.ClaimInterrupt(ctx, "run-1"); err != nil {
			t.Errorf("claim after re-save error: %v", err)
		}
	})
}
