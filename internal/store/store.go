// Package store keeps a durable history of process runs and task calls in
// a SQLite database under .praxis/state/. The run directory remains the
// source of truth; the store exists so the TUI and CLI can list history
// without walking every run directory.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"praxis/internal/task"
)

// RunRecord is one row of run history.
type RunRecord struct {
	RunID          string
	ProcessID      string
	ProcessVersion string
	Status         string
	Success        bool
	Summary        string
	Tasks          int
	StartedAt      time.Time
	FinishedAt     time.Time
	Error          string
}

// TaskRecord is one row of task-call history.
type TaskRecord struct {
	EffectID   string
	RunID      string
	Task       string
	Agent      string
	Status     string
	StartedAt  time.Time
	FinishedAt time.Time
	Error      string
}

// Store wraps the SQLite handle.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the history database and migrates it.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			process_id TEXT NOT NULL,
			process_version TEXT NOT NULL,
			status TEXT NOT NULL,
			success INTEGER NOT NULL DEFAULT 0,
			summary TEXT,
			tasks INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			error_message TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS task_calls (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			effect_id TEXT NOT NULL,
			run_id TEXT NOT NULL,
			task TEXT NOT NULL,
			agent TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			finished_at DATETIME,
			error_message TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_task_calls_run ON task_calls(run_id);`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

// RunStarted inserts a new run row in the running state.
func (s *Store) RunStarted(runID, processID, processVersion string, at time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, process_id, process_version, status, started_at) VALUES (?, ?, ?, ?, ?)`,
		runID, processID, processVersion, "running", at.UTC(),
	)
	if err != nil {
		return fmt.Errorf("store: record run %s: %w", runID, err)
	}
	return nil
}

// RunFinished closes out a run row.
func (s *Store) RunFinished(record RunRecord) error {
	result, err := s.db.Exec(
		`UPDATE runs SET status = ?, success = ?, summary = ?, tasks = ?, finished_at = ?, error_message = ? WHERE run_id = ?`,
		record.Status, boolToInt(record.Success), record.Summary, record.Tasks,
		record.FinishedAt.UTC(), record.Error, record.RunID,
	)
	if err != nil {
		return fmt.Errorf("store: finish run %s: %w", record.RunID, err)
	}
	affected, err := result.RowsAffected()
	if err == nil && affected == 0 {
		return fmt.Errorf("store: finish run %s: no such run", record.RunID)
	}
	return nil
}

// TaskStarted implements the host Recorder contract. Failures are dropped;
// history must never abort a run.
func (s *Store) TaskStarted(inv *task.Invocation, at time.Time) {
	s.db.Exec(
		`INSERT INTO task_calls (effect_id, run_id, task, agent, status, started_at) VALUES (?, ?, ?, ?, ?, ?)`,
		inv.EffectID, inv.RunID, inv.Task, inv.Agent, "running", at.UTC(),
	)
}

// TaskFinished implements the host Recorder contract.
func (s *Store) TaskFinished(inv *task.Invocation, status string, at time.Time, runErr error) {
	message := ""
	if runErr != nil {
		message = runErr.Error()
	}
	s.db.Exec(
		`UPDATE task_calls SET status = ?, finished_at = ?, error_message = ? WHERE effect_id = ? AND run_id = ?`,
		status, at.UTC(), message, inv.EffectID, inv.RunID,
	)
}

// ListRuns returns run history, most recent first.
func (s *Store) ListRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(
		`SELECT run_id, process_id, process_version, status, success, summary, tasks, started_at, finished_at, error_message
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

// GetRun returns one run row by ID.
func (s *Store) GetRun(runID string) (RunRecord, error) {
	row := s.db.QueryRow(
		`SELECT run_id, process_id, process_version, status, success, summary, tasks, started_at, finished_at, error_message
		 FROM runs WHERE run_id = ?`, runID)
	record, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return RunRecord{}, fmt.Errorf("store: run %s not found", runID)
	}
	return record, err
}

// ListTaskCalls returns the task calls of a run, in dispatch order.
func (s *Store) ListTaskCalls(runID string) ([]TaskRecord, error) {
	rows, err := s.db.Query(
		`SELECT effect_id, run_id, task, agent, status, started_at, finished_at, error_message
		 FROM task_calls WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("store: list task calls: %w", err)
	}
	defer rows.Close()

	var records []TaskRecord
	for rows.Next() {
		var record TaskRecord
		var finished sql.NullTime
		var summaryErr sql.NullString
		if err := rows.Scan(&record.EffectID, &record.RunID, &record.Task, &record.Agent,
			&record.Status, &record.StartedAt, &finished, &summaryErr); err != nil {
			return nil, fmt.Errorf("store: scan task call: %w", err)
		}
		if finished.Valid {
			record.FinishedAt = finished.Time
		}
		if summaryErr.Valid {
			record.Error = summaryErr.String
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (RunRecord, error) {
	var record RunRecord
	var success int
	var summary, message sql.NullString
	var finished sql.NullTime
	err := row.Scan(&record.RunID, &record.ProcessID, &record.ProcessVersion, &record.Status,
		&success, &summary, &record.Tasks, &record.StartedAt, &finished, &message)
	if err != nil {
		return RunRecord{}, err
	}
	record.Success = success != 0
	if summary.Valid {
		record.Summary = summary.String
	}
	if finished.Valid {
		record.FinishedAt = finished.Time
	}
	if message.Valid {
		record.Error = message.String
	}
	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
