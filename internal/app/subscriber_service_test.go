package app

import (
	"context"
	"testing"

	"daily_quote_mailer/internal/domain/user"
	idb "daily_quote_mailer/internal/infra/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscriberService_List(t *testing.T) {
	store := inspect(t, setupDatabase(t))
	seedUsers(t, store, scenarioUsers()...)
	svc := NewSubscriberService(store.Users())

	users, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "alice@x.com", users[0].Email)
	assert.Equal(t, user.StatusInactive, users[2].Status)
}

func TestSubscriberService_Find(t *testing.T) {
	store := inspect(t, setupDatabase(t))
	seedUsers(t, store, scenarioUsers()...)
	svc := NewSubscriberService(store.Users())
	ctx := context.Background()

	u, err := svc.Find(ctx, " bob@x.com ")
	require.NoError(t, err)
	assert.Equal(t, "Bob", u.Name)
	assert.Equal(t, user.FrequencyDaily, u.Frequency)

	_, err = svc.Find(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, idb.ErrUserNotFound)
}
