// Package journal defines the domain types for the submission journal.
//
// The journal is a durable audit trail of every state transition a
// submission goes through. A failed order creation requires human
// attention, so the journal is what support staff query to see exactly
// how far a submission got and what the backend said, correlated with
// the distributed trace via the trace_id field.
package journal

import "time"

// Status represents the lifecycle state of a submission attempt.
type Status string

const (
	StatusStarted   Status = "STARTED"
	StatusValidated Status = "VALIDATED"
	StatusRejected  Status = "REJECTED"
	StatusSubmitted Status = "SUBMITTED"
	StatusFailed    Status = "FAILED"
)

// Entry is a single row in the submission_logs table.
// It captures a point-in-time snapshot of a submission attempt.
type Entry struct {
	// SubmissionID uniquely identifies this submission attempt. Once
	// the backend has answered it can be joined with the trade-order
	// ID it reported.
	SubmissionID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// Stage names the pipeline stage that produced this row, e.g.
	// "validate" or "create-order".
	Stage string

	// Payload is the JSON-serialised wire payload. Written once on
	// SUBMITTED so a support engineer can replay the exact request.
	Payload string

	// ErrorMessages accumulates failure details as a JSON array.
	ErrorMessages string

	// TraceID is the W3C trace ID of the OpenTelemetry span active
	// when this row was written. Empty when no span is active.
	TraceID string

	// SpanID pinpoints the exact operation within the trace.
	SpanID string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
