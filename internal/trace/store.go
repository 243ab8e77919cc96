// Package trace persists the dispatched step stream of a synthesis run to a
// SQLite event log, for progress inspection and failure localization after
// the fact. The synthesizer core stays persistence-free; the recorder sits
// on the caller's side of the callback boundary.
package trace

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Store provides durable storage for run event logs.
// Uses SQLite with WAL mode for concurrent read access.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY during a run.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply pragma %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts the run header row. Plan is the plan size reported by the
// synthesizer before the action phase begins.
func (s *Store) BeginRun(ctx context.Context, token, item string, plan int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (run_token, item, plan)
		VALUES (?, ?, ?)
	`, token, item, plan)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// WriteEvent appends one callback event to a run's log.
func (s *Store) WriteEvent(ctx context.Context, e Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (run_token, seq, kind, dimension, state, scope)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.RunToken, e.Seq, string(e.Kind), e.Dimension, e.State, e.Scope)
	if err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

// Run is one recorded run header.
type Run struct {
	Token string
	Item  string
	Plan  int
}

// ReadRun returns a run header by token.
func (s *Store) ReadRun(ctx context.Context, token string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT run_token, item, plan FROM runs WHERE run_token = ?
	`, token)
	var r Run
	if err := row.Scan(&r.Token, &r.Item, &r.Plan); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("run %q not found", token)
		}
		return nil, fmt.Errorf("read run: %w", err)
	}
	return &r, nil
}

// ListRuns returns all run headers in insertion order.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, item, plan FROM runs ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Token, &r.Item, &r.Plan); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// ReadEvents returns a run's events ordered by seq.
func (s *Store) ReadEvents(ctx context.Context, token string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT run_token, seq, kind, dimension, state, scope
		FROM events WHERE run_token = ? ORDER BY seq
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	defer rows.Close()
	var events []Event
	for rows.Next() {
		var e Event
		var kind string
		if err := rows.Scan(&e.RunToken, &e.Seq, &kind, &e.Dimension, &e.State, &e.Scope); err != nil {
			return nil, fmt.Errorf("read events: %w", err)
		}
		e.Kind = EventKind(kind)
		events = append(events, e)
	}
	return events, rows.Err()
}
