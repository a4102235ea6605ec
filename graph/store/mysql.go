package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql" // mysql driver
)

// MySQLStore persists runs in MySQL. Same semantics as SQLiteStore with
// engine-appropriate DDL; use it when several operators share one
// deployment.
//
// The DSN must include parseTime=true so timestamps scan into
// time.Time.
type MySQLStore[S any] struct {
	db *sql.DB
}

// NewMySQLStore connects to the given DSN and ensures the schema
// exists.
func NewMySQLStore[S any](dsn string) (*MySQLStore[S], error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening mysql connection: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging mysql: %w", err)
	}

	s := &MySQLStore[S]{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *MySQLStore[S]) migrate() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS workflow_steps (
			run_id     VARCHAR(255) NOT NULL,
			step       INT NOT NULL,
			node_id    VARCHAR(255) NOT NULL,
			state      LONGTEXT NOT NULL,
			created_at DATETIME(6) NOT NULL,
			PRIMARY KEY (run_id, step)
		) ENGINE=InnoDB`,
		`CREATE TABLE IF NOT EXISTS workflow_interrupts (
			run_id     VARCHAR(255) NOT NULL,
			next_node  VARCHAR(255) NOT NULL,
			step       INT NOT NULL,
			state      LONGTEXT NOT NULL,
			resumed    TINYINT NOT NULL DEFAULT 0,
			created_at DATETIME(6) NOT NULL,
			resumed_at DATETIME(6) NULL,
			PRIMARY KEY (run_id)
		) ENGINE=InnoDB`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

// Close releases the connection pool.
func (s *MySQLStore[S]) Close() error { return s.db.Close() }

// SaveStep records the accumulated state after a node execution.
func (s *MySQLStore[S]) SaveStep(ctx context.Context, runID string, rec StepRecord[S]) error {
	payload, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("marshaling state: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO workflow_steps (run_id, step, node_id, state, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			node_id = VALUES(node_id),
			state = VALUES(state),
			created_at = VALUES(created_at)`,
		runID, rec.Step, rec.NodeID, string(payload), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving step %d for run %s: %w", rec.Step, runID, err)
	}
	return nil
}

// LoadLatest returns the most recent step record for the run.
func (s *MySQLStore[S]) LoadLatest(ctx context.Context, runID string) (StepRecord[S], error) {
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
func (s *MySQLStore[S]) SaveInterrupt(ctx context.Context, ip Interrupt[S]) error {
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
		ON DUPLICATE KEY UPDATE
			next_node = VALUES(next_node),
			step = VALUES(step),
			state = VALUES(state),
			resumed = 0,
			created_at = VALUES(created_at),
			resumed_at = NULL`,
		ip.RunID, ip.NextNode, ip.Step, string(payload), created)
	if err != nil {
		return fmt.Errorf("saving interrupt for run %s: %w", ip.RunID, err)
	}
	return nil
}

// LoadInterrupt returns the pending interrupt without consuming it.
func (s *MySQLStore[S]) LoadInterrupt(ctx context.Context, runID string) (Interrupt[S], error) {
	var (
		ip      Interrupt[S]
		payload string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT run_id, next_node, step, state, created_at
		FROM workflow_interrupts WHERE run_id = ? AND resumed = 0`,
		runID).Scan(&ip.RunID, &ip.NextNode, &ip.Step, &payload, &ip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ip, ErrNotFound
	}
	if err != nil {
		return ip, fmt.Errorf("loading interrupt for run %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(payload), &ip.State); err != nil {
		return ip, fmt.Errorf("unmarshaling interrupt state for run %s: %w", runID, err)
	}
	return ip, nil
}

// ClaimInterrupt atomically consumes the pending interrupt.
func (s *MySQLStore[S]) ClaimInterrupt(ctx context.Context, runID string) (Interrupt[S], error) {
	var zero Interrupt[S]

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return zero, fmt.Errorf("beginning claim transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		ip      Interrupt[S]
		payload string
	)
	err = tx.QueryRowContext(ctx, `
		SELECT run_id, next_node, step, state, created_at
		FROM workflow_interrupts WHERE run_id = ? FOR UPDATE`,
		runID).Scan(&ip.RunID, &ip.NextNode, &ip.Step, &payload, &ip.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, fmt.Errorf("loading interrupt for run %s: %w", runID, err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE workflow_interrupts SET resumed = 1, resumed_at = ?
		WHERE run_id = ? AND resumed = 0`,
		time.Now().UTC(), runID)
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
	return ip, nil
}
