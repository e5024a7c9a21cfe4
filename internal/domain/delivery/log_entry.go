package delivery

import "time"

// Status is the outcome of one send attempt.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailed  Status = "failed"
)

// LogEntry records one send attempt to one recipient.
// Corresponds to the 'email_logs' table. Rows are append-only.
type LogEntry struct {
	ID       int64
	Email    string
	Quote    string
	Author   string
	Status   Status
	SentAt   time.Time
	SentDate string // local date of SentAt, YYYY-MM-DD
}
