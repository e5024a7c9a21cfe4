package app

import (
	"context"
	"strings"

	"daily_quote_mailer/internal/domain/user"
)

// SubscriberService answers read-only questions about the mailing list.
type SubscriberService struct {
	users user.Repository
}

func NewSubscriberService(users user.Repository) *SubscriberService {
	return &SubscriberService{users: users}
}

// List returns every user, eligible or not, in insertion order.
func (s *SubscriberService) List(ctx context.Context) ([]*user.User, error) {
	return s.users.ListAll(ctx)
}

// Find returns the user with the given email.
func (s *SubscriberService) Find(ctx context.Context, email string) (*user.User, error) {
	return s.users.GetByEmail(ctx, strings.TrimSpace(email))
}
