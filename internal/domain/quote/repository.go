package quote

import "context"

// Repository defines read and intake operations for quotes.
type Repository interface {
	Create(ctx context.Context, q *Quote) error
	GetByDate(ctx context.Context, date string) (*Quote, error)
}
