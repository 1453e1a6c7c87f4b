package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    date              TEXT PRIMARY KEY,
    run_id            TEXT NOT NULL,
    status            TEXT NOT NULL,
    degraded_sections INTEGER NOT NULL DEFAULT 0,
    delivery_failed   INTEGER NOT NULL DEFAULT 0,
    started_at        TIMESTAMP NOT NULL,
    finished_at       TIMESTAMP,
    note              TEXT NOT NULL DEFAULT ''
)`

// Ledger records one row per date key and doubles as the run-lock: a date
// with a running or completed row cannot be acquired again, so a daily
// trigger that fires twice performs at most one pass.
type Ledger struct {
	db *sql.DB
}

var _ ports.RunLedger = (*Ledger)(nil)

// Open creates or opens the ledger database and ensures the schema.
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure ledger schema: %w", err)
	}

	return &Ledger{db: db}, nil
}

// Acquire claims the date key for runID. It returns false when the date
// already has a running or completed run; an aborted date may be retaken.
func (l *Ledger) Acquire(ctx context.Context, date, runID string) (bool, error) {
	if l.db == nil {
		return false, fmt.Errorf("ledger not open")
	}

	query, args, err := sq.Select("status").
		From("runs").
		Where(sq.Eq{"date": date}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build status query: %w", err)
	}

	var status string
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&status)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		// first claim for this date
	case err != nil:
		return false, fmt.Errorf("query run status: %w", err)
	case status != string(domain.RunAborted):
		return false, nil
	}

	query, args, err = sq.Insert("runs").
		Columns("date", "run_id", "status", "started_at").
		Values(date, runID, string(domain.RunCollecting), sq.Expr("CURRENT_TIMESTAMP")).
		Suffix("ON CONFLICT(date) DO UPDATE SET run_id = excluded.run_id, status = excluded.status, started_at = excluded.started_at, finished_at = NULL, note = ''").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build claim query: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return false, fmt.Errorf("claim run date: %w", err)
	}

	return true, nil
}

// Record stores the terminal state of one pass.
func (l *Ledger) Record(ctx context.Context, rec domain.RunRecord) error {
	if l.db == nil {
		return fmt.Errorf("ledger not open")
	}

	query, args, err := sq.Update("runs").
		Set("run_id", rec.ID).
		Set("status", string(rec.Status)).
		Set("degraded_sections", rec.DegradedSections).
		Set("delivery_failed", rec.DeliveryFailed).
		Set("finished_at", sq.Expr("CURRENT_TIMESTAMP")).
		Set("note", rec.Note).
		Where(sq.Eq{"date": rec.Date}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build record query: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("record run: %w", err)
	}

	return nil
}

// Status returns the recorded state for a date, or empty when absent.
func (l *Ledger) Status(ctx context.Context, date string) (domain.RunState, error) {
	if l.db == nil {
		return "", fmt.Errorf("ledger not open")
	}

	query, args, err := sq.Select("status").
		From("runs").
		Where(sq.Eq{"date": date}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build status query: %w", err)
	}

	var status string
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query run status: %w", err)
	}

	return domain.RunState(status), nil
}

// Close releases the underlying database handle.
func (l *Ledger) Close() error {
	if l.db == nil {
		return nil
	}
	return l.db.Close()
}
