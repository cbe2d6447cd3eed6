package journal

import "context"

// Repository is the port (interface) for persisting journal entries.
// The submitter depends on this abstraction, not on SQLite directly,
// so the implementation can be swapped for Postgres, in-memory (tests),
// or discarded entirely.
type Repository interface {
	// Save persists a new entry. Each call appends a row; the table is
	// an append-only audit log, not an upsert.
	Save(ctx context.Context, entry *Entry) error
}
