package delivery

import "context"

// Repository appends and lists delivery log entries. There is no update or delete.
type Repository interface {
	// Append inserts the entry and commits it immediately.
	Append(ctx context.Context, entry *LogEntry) error
	ListByDate(ctx context.Context, sentDate string) ([]*LogEntry, error)
}
