package database

import (
	"context"
	"fmt"
)

func (d dialect) schemaStatements() []string {
	return []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS users (
    id %s,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    status TEXT NOT NULL DEFAULT 'active',
    frequency TEXT NOT NULL DEFAULT 'daily'
)`, d.idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS quotes (
    id %s,
    quote TEXT NOT NULL,
    author TEXT NOT NULL,
    date_fetched TEXT UNIQUE
)`, d.idColumn),
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS email_logs (
    id %s,
    email TEXT NOT NULL,
    quote TEXT NOT NULL DEFAULT '',
    author TEXT NOT NULL DEFAULT '',
    status TEXT NOT NULL,
    sent_at %s NOT NULL DEFAULT CURRENT_TIMESTAMP,
    sent_date TEXT NOT NULL
)`, d.idColumn, d.timestampType),
		// At most one successful delivery per email per day; failed attempts are unconstrained.
		`CREATE UNIQUE INDEX IF NOT EXISTS email_logs_success_per_day
    ON email_logs (email, sent_date) WHERE status = 'success'`,
		`CREATE INDEX IF NOT EXISTS email_logs_sent_date ON email_logs (sent_date)`,
	}
}

// EnsureSchema creates the users, quotes and email_logs tables and their
// indexes when absent. Running it again is a no-op.
func (s *Store) EnsureSchema(ctx context.Context) error {
	txn, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for schema: %w", err)
	}
	defer txn.Rollback() // Rollback if not committed

	for _, stmt := range s.dialect.schemaStatements() {
		if _, err := txn.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing schema statement: %w", err)
		}
	}
	return txn.Commit()
}
