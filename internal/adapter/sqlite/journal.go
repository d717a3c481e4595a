package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/skyarchive/fitsfetch/internal/domain"
	"github.com/skyarchive/fitsfetch/internal/port"
)

// Journal is the SQLite-backed run history. It records what each run did
// with each resource; the presence check never reads it.
type Journal struct {
	db *sql.DB
}

// Ensure Journal implements port.Journal
var _ port.Journal = (*Journal)(nil)

// Open opens a connection to the SQLite journal database
func Open(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %s: %w", pragma, err)
		}
	}

	j := &Journal{db: db}

	if err := j.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return j, nil
}

// Close closes the database connection
func (j *Journal) Close() error {
	if j.db != nil {
		return j.db.Close()
	}
	return nil
}

// migrate creates or updates the journal schema
func (j *Journal) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at TIMESTAMP NOT NULL,
			finished_at TIMESTAMP NOT NULL,
			skipped INTEGER NOT NULL DEFAULT 0,
			fetched INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,

		`CREATE TABLE IF NOT EXISTS results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER NOT NULL,
			url TEXT NOT NULL,
			outcome TEXT NOT NULL,
			bytes INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			recorded_at TIMESTAMP NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_results_run_id ON results(run_id)`,
	}

	for _, migration := range migrations {
		if _, err := j.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// RecordRun persists one run and its per-resource results in a single
// transaction
func (j *Journal) RecordRun(startedAt time.Time, summary *domain.Summary) error {
	tx, err := j.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	res, err := tx.Exec(
		`INSERT INTO runs (started_at, finished_at, skipped, fetched, failed) VALUES (?, ?, ?, ?, ?)`,
		startedAt.UTC(), now, summary.Skipped, summary.Fetched, summary.Failed,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get run id: %w", err)
	}

	for _, r := range summary.Results {
		errMsg := ""
		if r.Err != nil {
			errMsg = r.Err.Error()
		}
		_, err := tx.Exec(
			`INSERT INTO results (run_id, url, outcome, bytes, error, recorded_at) VALUES (?, ?, ?, ?, ?, ?)`,
			runID, r.URL, string(r.Outcome), r.BytesWritten, errMsg, now,
		)
		if err != nil {
			return fmt.Errorf("failed to insert result: %w", err)
		}
	}

	return tx.Commit()
}

// Recent returns the most recently recorded entries, newest first
func (j *Journal) Recent(limit int) ([]domain.HistoryEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.Query(
		`SELECT run_id, url, outcome, bytes, error, recorded_at
		 FROM results ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var outcome string
		if err := rows.Scan(&e.RunID, &e.URL, &outcome, &e.Bytes, &e.Error, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		e.Outcome = domain.Outcome(outcome)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}
