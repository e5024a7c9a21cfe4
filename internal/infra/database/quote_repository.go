package database

import (
	"context"
	"database/sql"
	"fmt"

	"daily_quote_mailer/internal/domain/quote"
)

var ErrQuoteNotFound = fmt.Errorf("quote not found")
var ErrDuplicateQuoteDate = fmt.Errorf("a quote for this date already exists")

type SQLQuoteRepository struct {
	db      *sql.DB
	dialect dialect
}

func (r *SQLQuoteRepository) Create(ctx context.Context, q *quote.Quote) error {
	query := r.dialect.rebind(`INSERT INTO quotes (quote, author, date_fetched)
               VALUES (?, ?, ?)
               RETURNING id`)
	err := r.db.QueryRowContext(ctx, query, q.Text, q.Author, q.DateFetched).Scan(&q.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateQuoteDate
		}
		return fmt.Errorf("error creating quote: %w", err)
	}
	return nil
}

func (r *SQLQuoteRepository) GetByDate(ctx context.Context, date string) (*quote.Quote, error) {
	query := r.dialect.rebind(`SELECT id, quote, author, date_fetched FROM quotes WHERE date_fetched = ?`)
	q := &quote.Quote{}
	err := r.db.QueryRowContext(ctx, query, date).Scan(&q.ID, &q.Text, &q.Author, &q.DateFetched)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrQuoteNotFound
		}
		return nil, fmt.Errorf("error getting quote by date: %w", err)
	}
	return q, nil
}
