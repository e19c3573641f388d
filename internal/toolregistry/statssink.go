package toolregistry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// StatsSink is an optional journal of individual tool calls, beyond the
// registry's in-memory Stats: an embedder that wants a durable call
// history across restarts can attach one instead of (or alongside) the
// registry's in-memory counters. It is an append-only table backed by the
// pure-Go modernc.org/sqlite driver rather than a ring buffer.
type StatsSink struct {
	db *sql.DB
}

// OpenStatsSink opens (creating if absent) a SQLite database at path and
// ensures its schema exists. path may be ":memory:" for a process-local
// journal.
func OpenStatsSink(path string) (*StatsSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening stats sink: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS tool_calls (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	tool_name TEXT NOT NULL,
	called_at INTEGER NOT NULL,
	duration_micros INTEGER NOT NULL,
	success INTEGER NOT NULL,
	result_digest INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating stats sink schema: %w", err)
	}
	return &StatsSink{db: db}, nil
}

// Record appends one call outcome to the journal.
func (s *StatsSink) Record(ctx context.Context, toolName string, calledAt time.Time, elapsed time.Duration, success bool, resultDigest uint64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tool_calls (tool_name, called_at, duration_micros, success, result_digest) VALUES (?, ?, ?, ?, ?)`,
		toolName, calledAt.Unix(), elapsed.Microseconds(), boolToInt(success), int64(resultDigest),
	)
	return err
}

// CountForTool returns the number of journaled calls for toolName.
func (s *StatsSink) CountForTool(ctx context.Context, toolName string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tool_calls WHERE tool_name = ?`, toolName).Scan(&n)
	return n, err
}

// Close releases the underlying database handle.
func (s *StatsSink) Close() error { return s.db.Close() }

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
