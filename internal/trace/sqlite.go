package trace

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"coopsched/internal/sched"

	_ "modernc.org/sqlite"
)

// schema is idempotent; several runs can share one database.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS events (
		run_id    TEXT NOT NULL,
		ts        TEXT NOT NULL,
		tick      INTEGER NOT NULL,
		cpu       INTEGER NOT NULL,
		kind      TEXT NOT NULL,
		task_id   INTEGER NOT NULL,
		priority  TEXT NOT NULL,
		name      TEXT NOT NULL DEFAULT '',
		from_cpu  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_events_run_kind ON events(run_id, kind)`,
}

// SQLiteRecorder stores events in an SQLite table. Use ":memory:" in tests.
type SQLiteRecorder struct {
	runID  string
	db     *sql.DB
	insert *sql.Stmt
	logger *slog.Logger
}

func NewSQLiteRecorder(path, runID string, logger *slog.Logger) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// a single connection keeps ":memory:" databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}
	ins, err := db.Prepare(`INSERT INTO events
		(run_id, ts, tick, cpu, kind, task_id, priority, name, from_cpu)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare insert: %w", err)
	}
	return &SQLiteRecorder{
		runID:  runID,
		db:     db,
		insert: ins,
		logger: logger.With("component", "trace"),
	}, nil
}

func (r *SQLiteRecorder) Record(ev sched.StatusEvent) error {
	_, err := r.insert.Exec(
		r.runID,
		ev.Time.Format(time.RFC3339Nano),
		int64(ev.Tick),
		ev.CPU,
		ev.Kind.String(),
		int64(ev.TaskID),
		ev.Priority.String(),
		ev.Name,
		ev.From,
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// CountByKind summarises one run, e.g. for the CLI report.
func (r *SQLiteRecorder) CountByKind(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT kind, COUNT(*) FROM events WHERE run_id = ? GROUP BY kind`, r.runID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var kind string
		var n int
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		out[kind] = n
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Debug("sql", "op", "close", "run_id", r.runID)
	r.insert.Close()
	return r.db.Close()
}
