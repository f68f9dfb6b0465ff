/*
Package sqlite is the run journal: a SQLite-backed history of processing runs.

PURPOSE:
  Every processing run - full cycle or off cycle - is journaled with its pay
  period, status, and the artifact files it produced, so the HTTP shell can
  show history and serve past artifacts without re-deriving anything from the
  filesystem.

KEY TABLES:
  runs:      One row per run: kind, period, status, failure message
  artifacts: The files a completed run wrote, in write order

CONCURRENCY:
  A sync.Mutex serializes writers; SQLite runs in WAL mode so readers do not
  block. Payroll runs are operator-triggered and sequential, so contention is
  not a concern.

SEE ALSO:
  - runner: produces the results journaled here
  - api: the only caller
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/nova-hs/payroll-engine/pay"
)

// Run kinds.
const (
	KindFullCycle = "full_cycle"
	KindOffCycle  = "off_cycle"
)

// Run statuses.
const (
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

// Run is one journaled processing run.
type Run struct {
	ID   string
	Kind string

	// Employee is set for off-cycle runs only.
	Employee string

	Period pay.Period

	Status string
	Error  string

	Artifacts []string

	CreatedAt   time.Time
	CompletedAt *time.Time
}

// Journal is the SQLite-backed run history.
type Journal struct {
	db *sql.DB
	mu sync.Mutex
}

// New opens (creating if needed) the journal database at dbPath.
// Use ":memory:" for tests.
func New(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	j := &Journal{db: db}
	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return j, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	return j.db.Close()
}

func (j *Journal) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		employee TEXT NOT NULL DEFAULT '',
		period_start TEXT NOT NULL DEFAULT '',
		period_end TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'running',
		error TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		completed_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at
		ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS artifacts (
		run_id TEXT NOT NULL REFERENCES runs(id),
		position INTEGER NOT NULL,
		path TEXT NOT NULL,
		PRIMARY KEY (run_id, position)
	);
	`
	_, err := j.db.Exec(schema)
	return err
}

// =============================================================================
// WRITES
// =============================================================================

// Begin journals a new run in the running state.
func (j *Journal) Begin(ctx context.Context, id, kind, employee string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, employee, created_at)
		VALUES (?, ?, ?, ?)`,
		id, kind, employee, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to journal run: %w", err)
	}
	return nil
}

// Complete marks a run completed, recording its period and artifacts.
func (j *Journal) Complete(ctx context.Context, id string, period pay.Period, artifacts []string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE runs
		SET status = ?, period_start = ?, period_end = ?, completed_at = ?
		WHERE id = ?`,
		StatusCompleted,
		period.Start.Format(time.RFC3339),
		period.End.Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339),
		id)
	if err != nil {
		return fmt.Errorf("failed to complete run: %w", err)
	}

	for i, path := range artifacts {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (run_id, position, path) VALUES (?, ?, ?)`,
			id, i, path); err != nil {
			return fmt.Errorf("failed to journal artifact: %w", err)
		}
	}
	return tx.Commit()
}

// Fail marks a run failed with the error message the operator will see.
func (j *Journal) Fail(ctx context.Context, id string, runErr error) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.ExecContext(ctx, `
		UPDATE runs SET status = ?, error = ?, completed_at = ? WHERE id = ?`,
		StatusFailed, runErr.Error(), time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return fmt.Errorf("failed to journal run failure: %w", err)
	}
	return nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns one run with its artifacts, or sql.ErrNoRows.
func (j *Journal) Get(ctx context.Context, id string) (*Run, error) {
	rows, err := j.queryRuns(ctx, `
		SELECT id, kind, employee, period_start, period_end, status, error,
		       created_at, completed_at
		FROM runs WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, sql.ErrNoRows
	}
	return &rows[0], nil
}

// List returns runs newest-first.
func (j *Journal) List(ctx context.Context, limit int) ([]Run, error) {
	return j.queryRuns(ctx, `
		SELECT id, kind, employee, period_start, period_end, status, error,
		       created_at, completed_at
		FROM runs
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
}

func (j *Journal) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var (
			r                      Run
			periodStart, periodEnd string
			createdAt              string
			completedAt            sql.NullString
		)
		if err := rows.Scan(&r.ID, &r.Kind, &r.Employee, &periodStart, &periodEnd,
			&r.Status, &r.Error, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Period.Start, _ = time.Parse(time.RFC3339, periodStart)
		r.Period.End, _ = time.Parse(time.RFC3339, periodEnd)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if completedAt.Valid {
			if t, err := time.Parse(time.RFC3339, completedAt.String); err == nil {
				r.CompletedAt = &t
			}
		}
		if r.Artifacts, err = j.artifactsFor(ctx, r.ID); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (j *Journal) artifactsFor(ctx context.Context, runID string) ([]string, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT path FROM artifacts WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query artifacts: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan artifact: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
