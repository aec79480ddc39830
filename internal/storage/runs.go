package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"seal/internal/verdict"
)

// Run operations recorded in the journal.
const (
	OpPromote  = "promote"
	OpVerdicts = "verdicts"
	OpTidy     = "tidy"
)

// Run outcomes.
const (
	OutcomeOK        = "ok"
	OutcomeError     = "error"
	OutcomeCancelled = "cancelled"
)

// Run is one journal entry. Verdicts is attached for promote and verdicts
// operations and nil for tidy runs and failures.
type Run struct {
	ID               string
	SnapshotID       string
	Operation        string
	Outcome          string
	StartedAt        time.Time
	Duration         time.Duration
	Candidates       int
	Written          int
	Promoted         int
	DocumentsChanged int
	ErrorCode        *string
	Verdicts         *verdict.Verdicts
}

// NewRunID returns a fresh journal entry ID.
func NewRunID() string {
	return uuid.New().String()
}

// RunRepository provides access to the runs table
type RunRepository struct {
	db *DB
}

// NewRunRepository creates a new run repository
func NewRunRepository(db *DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a finished run.
func (r *RunRepository) Record(run *Run) error {
	var blob []byte
	if run.Verdicts != nil {
		var err error
		blob, err = msgpack.Marshal(run.Verdicts)
		if err != nil {
			return fmt.Errorf("failed to encode verdicts: %w", err)
		}
	}

	_, err := r.db.Exec(`
		INSERT INTO runs (
			id, snapshot_id, operation, outcome,
			started_at, duration_ms,
			candidates, written, promoted, documents_changed,
			error_code, verdict_blob
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		run.SnapshotID,
		run.Operation,
		run.Outcome,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.Duration.Milliseconds(),
		run.Candidates,
		run.Written,
		run.Promoted,
		run.DocumentsChanged,
		run.ErrorCode,
		blob,
	)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// Count returns the total number of recorded runs.
func (r *RunRepository) Count() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// Get retrieves one run by ID, or nil when the ID is unknown.
func (r *RunRepository) Get(id string) (*Run, error) {
	row := r.db.QueryRow(`
		SELECT id, snapshot_id, operation, outcome,
		       started_at, duration_ms,
		       candidates, written, promoted, documents_changed,
		       error_code, verdict_blob
		FROM runs
		WHERE id = ?
	`, id)

	run, err := scanRun(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// List returns the most recent runs, newest first. A limit of zero or less
// means no limit.
func (r *RunRepository) List(limit int) ([]*Run, error) {
	query := `
		SELECT id, snapshot_id, operation, outcome,
		       started_at, duration_ms,
		       candidates, written, promoted, documents_changed,
		       error_code, verdict_blob
		FROM runs
		ORDER BY started_at DESC, id
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

// ListBySnapshot returns the runs recorded for one snapshot, newest first.
func (r *RunRepository) ListBySnapshot(snapshotID string, limit int) ([]*Run, error) {
	query := `
		SELECT id, snapshot_id, operation, outcome,
		       started_at, duration_ms,
		       candidates, written, promoted, documents_changed,
		       error_code, verdict_blob
		FROM runs
		WHERE snapshot_id = ?
		ORDER BY started_at DESC, id
	`
	args := []any{snapshotID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	return runs, nil
}

func scanRun(scan func(dest ...any) error) (*Run, error) {
	var run Run
	var startedAt string
	var durationMS int64
	var blob []byte

	err := scan(
		&run.ID,
		&run.SnapshotID,
		&run.Operation,
		&run.Outcome,
		&startedAt,
		&durationMS,
		&run.Candidates,
		&run.Written,
		&run.Promoted,
		&run.DocumentsChanged,
		&run.ErrorCode,
		&blob,
	)
	if err != nil {
		return nil, err
	}

	run.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid started_at format: %w", err)
	}
	run.Duration = time.Duration(durationMS) * time.Millisecond

	if len(blob) > 0 {
		var v verdict.Verdicts
		if err := msgpack.Unmarshal(blob, &v); err != nil {
			return nil, fmt.Errorf("failed to decode verdicts: %w", err)
		}
		run.Verdicts = &v
	}
	return &run, nil
}
