// Package history persists finished installation runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/initializ/edgard/installer"

	_ "modernc.org/sqlite"
)

// Store records finished runs. It implements installer.RunRecorder.
type Store struct {
	db *sql.DB
}

var _ installer.RunRecorder = (*Store)(nil)

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history db: %w", err)
	}
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set history db journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set history db busy timeout: %w", err)
	}
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	install_path TEXT NOT NULL,
	auto_update INTEGER NOT NULL,
	install_adguard INTEGER NOT NULL,
	outcome TEXT NOT NULL,
	exit_code INTEGER NOT NULL,
	log_count INTEGER NOT NULL,
	error_count INTEGER NOT NULL,
	started_at INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun stores one finished run. Recording the same id twice replaces
// the earlier row.
func (s *Store) RecordRun(run installer.RunSummary) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (id, install_path, auto_update, install_adguard, outcome, exit_code, log_count, error_count, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		 install_path = excluded.install_path,
		 auto_update = excluded.auto_update,
		 install_adguard = excluded.install_adguard,
		 outcome = excluded.outcome,
		 exit_code = excluded.exit_code,
		 log_count = excluded.log_count,
		 error_count = excluded.error_count,
		 started_at = excluded.started_at,
		 finished_at = excluded.finished_at`,
		run.ID,
		run.Options.InstallPath,
		boolInt(run.Options.AutoUpdate),
		boolInt(run.Options.InstallAdguard),
		string(run.Outcome),
		run.ExitCode,
		run.LogCount,
		run.ErrorCount,
		run.StartedAt.UnixNano(),
		run.FinishedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// List returns at most limit runs, newest first.
func (s *Store) List(ctx context.Context, limit int) ([]installer.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, install_path, auto_update, install_adguard, outcome, exit_code, log_count, error_count, started_at, finished_at
FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	out := make([]installer.RunSummary, 0)
	for rows.Next() {
		var (
			run                         installer.RunSummary
			autoUpdate, adguard         int
			outcome                     string
			startedNanos, finishedNanos int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.Options.InstallPath,
			&autoUpdate,
			&adguard,
			&outcome,
			&run.ExitCode,
			&run.LogCount,
			&run.ErrorCount,
			&startedNanos,
			&finishedNanos,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		run.Options.AutoUpdate = autoUpdate != 0
		run.Options.InstallAdguard = adguard != 0
		run.Outcome = installer.Outcome(outcome)
		run.StartedAt = time.Unix(0, startedNanos).UTC()
		run.FinishedAt = time.Unix(0, finishedNanos).UTC()
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return out, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
