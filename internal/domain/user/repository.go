package user

import (
	"context"
)

// Repository defines the operations for persisting and retrieving User entities.
type Repository interface {
	// CreateIfAbsent inserts the user unless a row with the same email exists.
	// It reports whether a row was inserted.
	CreateIfAbsent(ctx context.Context, user *User) (bool, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	ListAll(ctx context.Context) ([]*User, error)
	// ListEligible returns active daily users without a successful delivery on sentDate (YYYY-MM-DD).
	ListEligible(ctx context.Context, sentDate string) ([]*User, error)
}
