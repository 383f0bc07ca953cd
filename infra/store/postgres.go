// Package store persists dispatch run results to Postgres so multiple day
// runs can be compared after the fact.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/flexfleet/flexdispatch/core/metrics"
)

// Config holds the connection settings for the run store.
type Config struct {
	Enabled     bool   `json:"enabled"`
	DatabaseURL string `json:"database_url"`
}

// RunStore writes per-run summaries and assignments to Postgres.
type RunStore struct {
	db *sql.DB
}

// Open connects to Postgres and bootstraps the schema.
func Open(databaseURL string) (*RunStore, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("verify postgres connection: %w", err)
	}
	s := &RunStore{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *RunStore) initSchema() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createRunsQuery := `
	CREATE TABLE IF NOT EXISTS dispatch_runs (
		id BIGSERIAL PRIMARY KEY,
		day DATE NOT NULL,
		fulfilled INTEGER NOT NULL,
		unfulfilled INTEGER NOT NULL,
		trucks INTEGER NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createAssignmentsQuery := `
	CREATE TABLE IF NOT EXISTS dispatch_assignments (
		id BIGSERIAL PRIMARY KEY,
		run_id BIGINT NOT NULL REFERENCES dispatch_runs(id),
		truck TEXT NOT NULL,
		orders INTEGER NOT NULL,
		rollcages INTEGER NOT NULL,
		score DOUBLE PRECISION NOT NULL,
		on_time DOUBLE PRECISION NOT NULL,
		forced BOOLEAN NOT NULL,
		start_time TIMESTAMPTZ NOT NULL,
		delivery_end TIMESTAMPTZ NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dispatch_assignments_run
	ON dispatch_assignments(run_id);
	`

	for i, stmt := range []string{createRunsQuery, createAssignmentsQuery, createIndexQuery} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

// SaveRun stores the run summary with its assignments and returns the run id.
func (s *RunStore) SaveRun(ctx context.Context, stats metrics.RunStats, assignments []metrics.AssignmentResult) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("save run: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var runID int64
	err = tx.QueryRowContext(ctx,
		`INSERT INTO dispatch_runs (day, fulfilled, unfulfilled, trucks)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		stats.Day, stats.Fulfilled, stats.Unfulfilled, stats.Trucks,
	).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("save run: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO dispatch_assignments
		 (run_id, truck, orders, rollcages, score, on_time, forced, start_time, delivery_end)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`)
	if err != nil {
		return 0, fmt.Errorf("save run: prepare assignments: %w", err)
	}
	defer stmt.Close()
	for _, a := range assignments {
		if _, err := stmt.ExecContext(ctx, runID, a.Truck, len(a.Orders), a.Quantity,
			a.Score, a.OnTime, a.Forced, a.Start, a.DeliveryEnd); err != nil {
			return 0, fmt.Errorf("save run: insert assignment for %s: %w", a.Truck, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("save run: commit tx: %w", err)
	}
	return runID, nil
}

// Close releases the connection pool.
func (s *RunStore) Close() error { return s.db.Close() }
