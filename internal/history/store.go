// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history keeps a SQLite ledger of pdflinks runs and the outcome
// of every download attempted in them.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdflinks/pkg/types"
)

const defaultLimit = 20

// Store manages the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and ensures the schema
// exists. The parent directory is created if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			page_url TEXT NOT NULL,
			started_at TEXT NOT NULL,
			links INTEGER NOT NULL,
			total INTEGER NOT NULL,
			succeeded INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS outcomes (
			run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			url TEXT NOT NULL,
			path TEXT,
			status TEXT NOT NULL,
			reason TEXT,
			bytes INTEGER,
			PRIMARY KEY (run_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_page_url ON runs(page_url)`,
		`CREATE INDEX IF NOT EXISTS idx_outcomes_url ON outcomes(url)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record stores a run and its outcomes in one transaction and returns the
// new run ID.
func (s *Store) Record(ctx context.Context, rec types.RunRecord) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO runs (page_url, started_at, links, total, succeeded, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rec.PageURL, rec.StartedAt.UTC().Format(time.RFC3339Nano), rec.Links,
		rec.Summary.Total, rec.Summary.Succeeded, rec.Summary.Failed,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO outcomes (run_id, position, url, path, status, reason, bytes)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("preparing outcome insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range rec.Summary.Outcomes {
		if _, err := stmt.ExecContext(ctx, id, i, o.URL, o.Path, string(o.Status), o.Reason, o.Bytes); err != nil {
			return 0, fmt.Errorf("inserting outcome for %s: %w", o.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing run: %w", err)
	}
	return id, nil
}

// Recent returns up to limit runs, newest first, with their outcomes.
// A limit of zero or less uses the default of 20.
func (s *Store) Recent(ctx context.Context, limit int) ([]types.RunRecord, error) {
	if limit <= 0 {
		limit = defaultLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, page_url, started_at, links, total, succeeded, failed
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.RunRecord
	for rows.Next() {
		var (
			rec       types.RunRecord
			startedAt string
		)
		if err := rows.Scan(&rec.ID, &rec.PageURL, &startedAt, &rec.Links,
			&rec.Summary.Total, &rec.Summary.Succeeded, &rec.Summary.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
			rec.StartedAt = t
		}
		runs = append(runs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}

	for i := range runs {
		outcomes, err := s.outcomes(ctx, runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Summary.Outcomes = outcomes
	}
	return runs, nil
}

func (s *Store) outcomes(ctx context.Context, runID int64) ([]types.DownloadOutcome, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT url, COALESCE(path, ''), status, COALESCE(reason, ''), COALESCE(bytes, 0)
		 FROM outcomes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying outcomes for run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []types.DownloadOutcome
	for rows.Next() {
		var (
			o      types.DownloadOutcome
			status string
		)
		if err := rows.Scan(&o.URL, &o.Path, &status, &o.Reason, &o.Bytes); err != nil {
			return nil, fmt.Errorf("scanning outcome: %w", err)
		}
		o.Status = types.OutcomeStatus(status)
		out = append(out, o)
	}
	return out, rows.Err()
}
