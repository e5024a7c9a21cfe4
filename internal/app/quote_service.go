package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"daily_quote_mailer/internal/domain/delivery"
	"daily_quote_mailer/internal/domain/quote"
)

var ErrInvalidQuote = errors.New("quote text, author and date are required")

// QuoteService handles manual quote intake and delivery history lookups.
type QuoteService struct {
	quotes     quote.Repository
	deliveries delivery.Repository
}

func NewQuoteService(quotes quote.Repository, deliveries delivery.Repository) *QuoteService {
	return &QuoteService{quotes: quotes, deliveries: deliveries}
}

// AddQuote stores the quote of a date (YYYY-MM-DD). A date holds at most one quote.
func (s *QuoteService) AddQuote(ctx context.Context, text, author, date string) (*quote.Quote, error) {
	text = strings.TrimSpace(text)
	author = strings.TrimSpace(author)
	if text == "" || author == "" || date == "" {
		return nil, ErrInvalidQuote
	}
	if _, err := time.Parse(quote.DateLayout, date); err != nil {
		return nil, fmt.Errorf("%w: bad date %q", ErrInvalidQuote, date)
	}

	q := &quote.Quote{Text: text, Author: author, DateFetched: date}
	if err := s.quotes.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// History returns the delivery log of one date in insertion order.
func (s *QuoteService) History(ctx context.Context, date string) ([]*delivery.LogEntry, error) {
	if _, err := time.Parse(quote.DateLayout, date); err != nil {
		return nil, fmt.Errorf("bad date %q: %w", date, err)
	}
	return s.deliveries.ListByDate(ctx, date)
}
