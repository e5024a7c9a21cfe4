package app

import (
	"context"
	"fmt"

	"daily_quote_mailer/internal/domain/user"

	"github.com/sirupsen/logrus"
)

// SchemaStore is the part of the store the initializer needs.
type SchemaStore interface {
	EnsureSchema(ctx context.Context) error
	Users() user.Repository
}

// SchemaInitializer creates the tables and inserts the seed users.
type SchemaInitializer struct {
	store  SchemaStore
	logger logrus.FieldLogger
}

func NewSchemaInitializer(store SchemaStore, logger logrus.FieldLogger) *SchemaInitializer {
	return &SchemaInitializer{
		store:  store,
		logger: logger,
	}
}

// Initialize ensures the schema and inserts every seed whose email is not yet
// present. Existing rows, seeded or not, are left as they are.
// It returns how many seed rows were inserted.
func (s *SchemaInitializer) Initialize(ctx context.Context, seeds []user.User) (int, error) {
	if err := s.store.EnsureSchema(ctx); err != nil {
		return 0, fmt.Errorf("failed to ensure schema: %w", err)
	}
	s.logger.Info("Tables users, quotes and email_logs are present")

	inserted := 0
	for i := range seeds {
		seed := seeds[i]
		created, err := s.store.Users().CreateIfAbsent(ctx, &seed)
		if err != nil {
			return inserted, fmt.Errorf("failed to seed user %s: %w", seed.Email, err)
		}
		if created {
			inserted++
			s.logger.WithField("email", seed.Email).Debug("Seed user inserted")
		} else {
			s.logger.WithField("email", seed.Email).Debug("Seed user already exists. Skipping.")
		}
	}

	s.logger.WithFields(logrus.Fields{"seeds": len(seeds), "inserted": inserted}).Info("Database initialized safely")
	return inserted, nil
}
