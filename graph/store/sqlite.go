package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // pure-Go sqlite driver
)

// SQLiteStore persists runs in a SQLite database. This is the default
// backend: a single file, no server, durable across processes.
//
// The store opens the database in WAL mode with a busy timeout and
// limits itself to one connection, which sidesteps SQLITE_BUSY under
// concurrent writers.
type SQLiteStore[S any] struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path and
// ensures the schema exists.
func NewSQLiteStore[S any](path string) (*SQLiteStore[S], error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying %s: %w", p, err)
		}
	}

	s := &SQLiteStore[S]{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore[S]) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS workflow_steps (
			run_id     TEXT NOT NULL,
			step       INTEGER NOT NULL,
			node_id    TEXT NOT NULL,
			state      TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE(run_id, step)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_workflow_steps_run
			ON workflow_steps(run_id, step DESC)`,
		`CREATE TABLE IF NOT EXISTS workflow_interrupts (
			run_id     TEXT PRIMARY KEY,
			next_node  TEXT NOT NULL,
			step       INTEGER NOT NULL,
			state      TEXT NOT NULL,
			resumed    INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			resumed_at TEXT
		)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore[S]) Close() error { return s.db.Close() }

// SaveStep records the accumulated state after a node execution.
func (s *SQLiteStore[S]) SaveStep(ctx context.Context, runID string, rec StepRecord[S]) error {
	payload, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_steps (run_id, step, node_id, state, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(run_id, step) DO UPDATE SET
			node_id = excluded.node_id,
			state = excluded.state,
			created_at = excluded.created_at`,
		runID, rec.Step, rec.NodeID, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving step %d for run %s: %w", rec.Step, runID, err)
	}
	return nil
}

// LoadLatest returns the most recent step record for the run.
func (s *SQLiteStore[S]) LoadLatest(ctx context.Context, runID string) (StepRecord[S], error) {
	var (
		rec     StepRecord[S]
		payload string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT step, node_id, state FROM workflow_steps
		WHERE run_id = ? ORDER BY step DESC LIMIT 1`,
		runID).Scan(&rec.Step, &rec.NodeID, &payload)
	if errors.Is(err, sql.ErrNoRows) {
		return rec, ErrNotFound
	}
	if err != nil {
		return rec, fmt.Errorf("loading latest step for run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(payload), &rec.State); err != nil {
		return rec, fmt.Errorf("unmarshaling state for run %s: %w", runID, err)
	}
	return rec, nil
}

// SaveInterrupt persists a suspension snapshot, replacing any prior one.
func (s *SQLiteStore[S]) SaveInterrupt(ctx context.Context, ip Interrupt[S]) error {
	payload, err := json.Marshal(ip.State)
	if err != nil {
		return fmt.Errorf("marshaling interrupt state: %w", err)
	}

	created := ip.CreatedAt
	if created.IsZero() {
		created = time.Now().UTC()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_interrupts (run_id, next_node, step, state, resumed, created_at, resumed_at)
		VALUES (?, ?, ?, ?, 0, ?, NULL)
		ON CONFLICT(run_id) DO UPDATE SET
			next_node = excluded.next_node,
			step = excluded.step,
			state = excluded.state,
			resumed = 0,
			created_at = excluded.created_at,
			resumed_at = NULL`,
		ip.RunID, ip.NextNode, ip.Step, string(payload), created.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("saving interrupt for run %s: %w", ip.RunID, err)
	}
	return nil
}

// LoadInterrupt returns the pending interrupt without consuming it.
func (s *SQLiteStore[S]) LoadInterrupt(ctx context.Context, runID string) (Interrupt[S], error) {
	return s.scanInterrupt(ctx, runID, `
		SELECT run_id, next_node, step, state, created_at
		FROM workflow_interrupts WHERE run_id = ? AND resumed = 0`)
}

// ClaimInterrupt atomically consumes the pending interrupt. The claim
// is a guarded UPDATE inside a transaction: the first resume flips the
// resumed flag, later resumes see zero rows affected.
func (s *SQLiteStore[S]) ClaimInterrupt(ctx context.Context, runID string) (Interrupt[S], error) {
	var zero Interrupt[S]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		ip        Interrupt[S]
		payload   string
		createdAt string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT run_id, next_node, step, state, created_at
		FROM workflow_interrupts WHERE run_id = ?`,
		runID).Scan(&ip.RunID, &ip.NextNode, &ip.Step, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("loading interrupt for run %s: %w", runID, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE workflow_interrupts SET resumed = 1, resumed_at = ?
		WHERE run_id = ? AND resumed = 0`,
		time.Now().UTC().Format(time.RFC3339Nano), runID)
	if err != nil {
		return zero, fmt.Errorf("claiming interrupt for run %s: %w", runID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return zero, fmt.Errorf("checking claim for run %s: %w", runID, err)
	}
	if affected == 0 {
		return zero, ErrInterruptClaimed
	}

	if err := tx.Commit(); err != nil {
		return zero, fmt.Errorf("committing claim for run %s: %w", runID, err)
	}

	if err := json.Unmarshal([]byte(payload), &ip.State); err != nil {
		return zero, fmt.Errorf("unmarshaling interrupt state for run %s: %w", runID, err)
	}
	if ip.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return zero, fmt.Errorf("parsing interrupt timestamp for run %s: %w", runID, err)
	}
	return ip, nil
}

func (s *SQLiteStore[S]) scanInterrupt(ctx context.Context, runID, query string) (Interrupt[S], error) {
	var (
		ip        Interrupt[S]
		payload   string
		createdAt string
	)
	err := s.db.QueryRowContext(ctx, query, runID).
		Scan(&ip.RunID, &ip.NextNode, &ip.Step, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ip, ErrNotFound
	}
	if err != nil {
		return ip, fmt.Errorf("loading interrupt for run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(payload), &ip.State); err != nil {
		return ip, fmt.Errorf("unmarshaling interrupt state for run %s: %w", runID, err)
	}
	if ip.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return ip, fmt.Errorf("parsing interrupt timestamp for run %s: %w", runID, err)
	}
	return ip, nil
}
