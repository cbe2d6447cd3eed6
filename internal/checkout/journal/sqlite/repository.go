// Package sqlite provides a SQLite-backed implementation of
// journal.Repository.
//
// WAL mode is enabled on Open so that readers never block writers:
// the submitter writes while a support tool may be reading.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nzmint/bullion-checkout/internal/checkout/journal"

	// Register the pure-Go SQLite driver. No CGO, so the CLI builds
	// and runs anywhere without a C toolchain.
	_ "modernc.org/sqlite"
)

// schema is the DDL executed once on startup.
// The table is append-only: each row is an immutable event in the
// submission's lifecycle. MAX(updated_at) per submission_id gives the
// current state.
const schema = `
CREATE TABLE IF NOT EXISTS submission_logs (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,

    -- Client-side submission identifier. Not UNIQUE because multiple
    -- rows exist per submission (one per transition).
    submission_id   TEXT        NOT NULL,

    -- Lifecycle state at the time this row was written.
    status          TEXT        NOT NULL,

    -- Pipeline stage that produced this row ("validate", "create-order", ...).
    stage           TEXT        NOT NULL DEFAULT '',

    -- JSON wire payload. Written on SUBMITTED, NULL otherwise.
    payload         TEXT,

    -- JSON array of error strings accumulated on failure.
    error_messages  TEXT        NOT NULL DEFAULT '[]',

    -- W3C trace_id / span_id from the active OTel span, if any.
    trace_id        TEXT        NOT NULL DEFAULT '',
    span_id         TEXT        NOT NULL DEFAULT '',

    -- RFC3339 stored as TEXT (SQLite idiom).
    updated_at      TEXT        NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_submission_logs_submission_id
    ON submission_logs(submission_id, updated_at);

CREATE INDEX IF NOT EXISTS idx_submission_logs_trace_id
    ON submission_logs(trace_id);
`

// Repository is the SQLite implementation of journal.Repository.
type Repository struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at the given path and
// applies the schema.
//
//	repo, err := sqlite.Open("./data/submissions.db")
func Open(path string) (*Repository, error) {
	// The pure-Go driver configures connection state via _pragma query
	// parameters. busy_timeout waits for locks instead of failing.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}

	// SQLite performs best with a single writer connection.
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Repository{db: db}, nil
}

// Close releases the database connection. Call it with defer in main().
func (r *Repository) Close() error {
	return r.db.Close()
}

// Save inserts a new journal entry. Safe to call concurrently.
func (r *Repository) Save(ctx context.Context, entry *journal.Entry) error {
	const q = `
		INSERT INTO submission_logs
			(submission_id, status, stage, payload, error_messages, trace_id, span_id, updated_at)
		VALUES
			(?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.ExecContext(ctx, q,
		entry.SubmissionID,
		string(entry.Status),
		entry.Stage,
		nullableString(entry.Payload),
		entry.ErrorMessages,
		entry.TraceID,
		entry.SpanID,
		entry.UpdatedAt.UTC().Format("2006-01-02T15:04:05.999999999Z"),
	)
	if err != nil {
		return fmt.Errorf("sqlite: save journal entry for %q: %w", entry.SubmissionID, err)
	}
	return nil
}

// GetLatest returns the most recent entry for a submission ID.
func (r *Repository) GetLatest(ctx context.Context, submissionID string) (*journal.Entry, error) {
	const q = `
		SELECT submission_id, status, stage, COALESCE(payload,''), error_messages,
		       trace_id, span_id, updated_at
		FROM   submission_logs
		WHERE  submission_id = ?
		ORDER  BY updated_at DESC, id DESC
		LIMIT  1`

	row := r.db.QueryRowContext(ctx, q, submissionID)

	var entry journal.Entry
	var updatedAt string
	err := row.Scan(
		&entry.SubmissionID,
		&entry.Status,
		&entry.Stage,
		&entry.Payload,
		&entry.ErrorMessages,
		&entry.TraceID,
		&entry.SpanID,
		&updatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sqlite: submission %q not found", submissionID)
	}
	if err != nil {
		return nil, fmt.Errorf("sqlite: get latest for %q: %w", submissionID, err)
	}

	entry.UpdatedAt, err = parseRFC3339(updatedAt)
	if err != nil {
		return nil, err
	}

	return &entry, nil
}

// applySchema runs the DDL statements once. Idempotent due to IF NOT EXISTS.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("sqlite: apply schema: %w", err)
	}
	return nil
}

// nullableString returns nil for empty strings so SQLite stores NULL
// instead of an empty TEXT on rows that carry no payload.
func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
