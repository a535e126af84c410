// Package history persists startup-params harness results to SQLite.
//
// Recording is best-effort by contract: the harness logs a warning and moves
// on when a write fails, so a broken history database can never fail a test
// case. The database accumulates one row per run and one per executed case,
// which makes flaky cases visible across runs (a case that times out only
// when the port lingers shows up as an intermittent failure here).
package history

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// CaseResult is one executed test case's outcome.
type CaseResult struct {
	RunID         string
	Seq           int
	Description   string
	CmdlineParams string
	PropsFile     *string // nil when the case ran without a properties file
	DidStartup    bool
	ExitCode      *int // nil when DidStartup
	Passed        bool
	Duration      time.Duration
	Output        string
	RecordedAt    time.Time
}

// Store manages the SQLite history database.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the history database at dbPath.
// ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout first so later statements wait on locks instead of failing.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// BeginRun records the start of a harness run.
func (s *Store) BeginRun(ctx context.Context, runID string, startedAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at) VALUES (?, ?)`,
		runID, startedAt.UTC())
	if err != nil {
		return fmt.Errorf("record run start: %w", err)
	}
	return nil
}

// FinishRun records the end of a harness run with its final counts.
func (s *Store) FinishRun(ctx context.Context, runID string, caseCount, failCount int) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, case_count = ?, fail_count = ? WHERE id = ?`,
		time.Now().UTC(), caseCount, failCount, runID)
	if err != nil {
		return fmt.Errorf("record run finish: %w", err)
	}
	return nil
}

// RecordCase inserts one case result.
func (s *Store) RecordCase(ctx context.Context, cr *CaseResult) error {
	recordedAt := cr.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO case_results
			(run_id, seq, description, cmdline_params, props_file,
			 did_startup, exit_code, passed, duration_ms, output, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		cr.RunID, cr.Seq, cr.Description, cr.CmdlineParams, cr.PropsFile,
		cr.DidStartup, cr.ExitCode, cr.Passed, cr.Duration.Milliseconds(),
		cr.Output, recordedAt.UTC())
	if err != nil {
		return fmt.Errorf("record case result: %w", err)
	}
	return nil
}

// RunCases returns all case results for a run, ordered by suite position.
func (s *Store) RunCases(ctx context.Context, runID string) ([]*CaseResult, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_id, seq, description, cmdline_params, props_file,
		       did_startup, exit_code, passed, duration_ms, output, recorded_at
		FROM case_results
		WHERE run_id = ?
		ORDER BY seq`,
		runID)
	if err != nil {
		return nil, fmt.Errorf("query case results: %w", err)
	}
	defer rows.Close()

	var results []*CaseResult
	for rows.Next() {
		var cr CaseResult
		var durationMS int64
		if err := rows.Scan(&cr.RunID, &cr.Seq, &cr.Description, &cr.CmdlineParams,
			&cr.PropsFile, &cr.DidStartup, &cr.ExitCode, &cr.Passed,
			&durationMS, &cr.Output, &cr.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan case result: %w", err)
		}
		cr.Duration = time.Duration(durationMS) * time.Millisecond
		results = append(results, &cr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate case results: %w", err)
	}
	return results, nil
}

// FailCount returns the recorded failure count for a run.
func (s *Store) FailCount(ctx context.Context, runID string) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT fail_count FROM runs WHERE id = ?`, runID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("query fail count: %w", err)
	}
	return count, nil
}
