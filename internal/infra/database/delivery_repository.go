package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"daily_quote_mailer/internal/domain/delivery"
	"daily_quote_mailer/internal/domain/quote"
)

// ErrDuplicateDelivery is returned when a second success row is appended for
// the same email and date.
var ErrDuplicateDelivery = fmt.Errorf("duplicate successful delivery (email, sent_date)")

type SQLDeliveryRepository struct {
	db      *sql.DB
	dialect dialect
}

// Append inserts one log row outside any transaction, so it is durable as soon as it returns.
func (r *SQLDeliveryRepository) Append(ctx context.Context, e *delivery.LogEntry) error {
	if e.SentAt.IsZero() {
		e.SentAt = time.Now()
	}
	if e.SentDate == "" {
		e.SentDate = quote.DateOf(e.SentAt)
	}

	query := r.dialect.rebind(`INSERT INTO email_logs (email, quote, author, status, sent_at, sent_date)
               VALUES (?, ?, ?, ?, ?, ?)
               RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, e.Email, e.Quote, e.Author, string(e.Status), e.SentAt, e.SentDate).Scan(&e.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("error appending log for %s on %s: %w", e.Email, e.SentDate, ErrDuplicateDelivery)
		}
		return fmt.Errorf("error appending log for %s: %w", e.Email, err)
	}
	return nil
}

func (r *SQLDeliveryRepository) ListByDate(ctx context.Context, sentDate string) ([]*delivery.LogEntry, error) {
	query := r.dialect.rebind(`SELECT id, email, quote, author, status, sent_at, sent_date
               FROM email_logs
               WHERE sent_date = ? ORDER BY id`)
	rows, err := r.db.QueryContext(ctx, query, sentDate)
	if err != nil {
		return nil, fmt.Errorf("error querying email logs by date: %w", err)
	}
	defer rows.Close()
	return scanLogEntries(rows)
}

// Helper to scan multiple rows
func scanLogEntries(rows *sql.Rows) ([]*delivery.LogEntry, error) {
	entries := make([]*delivery.LogEntry, 0)
	for rows.Next() {
		e := delivery.LogEntry{}
		if err := rows.Scan(&e.ID, &e.Email, &e.Quote, &e.Author, &e.Status, &e.SentAt, &e.SentDate); err != nil {
			return nil, fmt.Errorf("error scanning email log row: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating email log rows: %w", err)
	}
	return entries, nil
}
