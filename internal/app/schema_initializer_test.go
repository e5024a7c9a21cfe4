package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"daily_quote_mailer/internal/domain/user"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaInitializer_TwiceKeepsOneRowPerSeed(t *testing.T) {
	path := setupDatabase(t)
	store := inspect(t, path)
	ctx := context.Background()
	log, hook := newTestLogger()
	initializer := NewSchemaInitializer(store, log)

	inserted, err := initializer.Initialize(ctx, DefaultSeedUsers())
	require.NoError(t, err)
	assert.Equal(t, 4, inserted)
	assert.True(t, hasLog(hook, logrus.InfoLevel, "Database initialized safely"))

	// A user registered elsewhere between the two runs.
	seedUsers(t, store, user.User{Name: "Zoe", Email: "zoe@example.com", Status: user.StatusInactive})

	inserted, err = initializer.Initialize(ctx, DefaultSeedUsers())
	require.NoError(t, err)
	assert.Zero(t, inserted)

	all, err := store.Users().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 5)

	seen := map[string]int{}
	for _, u := range all {
		seen[u.Email]++
	}
	for _, seed := range DefaultSeedUsers() {
		assert.Equal(t, 1, seen[seed.Email], seed.Email)
	}

	zoe, err := store.Users().GetByEmail(ctx, "zoe@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Zoe", zoe.Name)
	assert.Equal(t, user.StatusInactive, zoe.Status)
}

func TestSchemaInitializer_LeavesExistingRowWithSeedEmail(t *testing.T) {
	path := setupDatabase(t)
	store := inspect(t, path)
	ctx := context.Background()
	log, _ := newTestLogger()

	// Victor unsubscribed before the initializer ran again.
	seedUsers(t, store, user.User{Name: "Victor", Email: "victor@example.com", Status: user.StatusInactive})

	inserted, err := NewSchemaInitializer(store, log).Initialize(ctx, DefaultSeedUsers())
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	victor, err := store.Users().GetByEmail(ctx, "victor@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.StatusInactive, victor.Status)
}

type failingSchemaStore struct {
	SchemaStore
	err error
}

func (f failingSchemaStore) EnsureSchema(context.Context) error { return f.err }

func TestSchemaInitializer_SchemaErrorIsReturned(t *testing.T) {
	boom := errors.New("disk I/O error")
	log, _ := newTestLogger()

	_, err := NewSchemaInitializer(failingSchemaStore{err: boom}, log).Initialize(context.Background(), DefaultSeedUsers())
	assert.ErrorIs(t, err, boom)
}

func TestLoadSeedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`users:
  - name: Alice
    email: alice@x.com
  - name: Carol
    email: carol@x.com
    status: inactive
`), 0o600))

	seeds, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, user.StatusActive, seeds[0].Status)
	assert.Equal(t, user.FrequencyDaily, seeds[0].Frequency)
	assert.Equal(t, user.StatusInactive, seeds[1].Status)
}

func TestLoadSeedFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	noEmail := filepath.Join(dir, "no_email.yaml")
	require.NoError(t, os.WriteFile(noEmail, []byte("users:\n  - name: Alice\n"), 0o600))
	_, err := LoadSeedFile(noEmail)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	badStatus := filepath.Join(dir, "bad_status.yaml")
	require.NoError(t, os.WriteFile(badStatus, []byte("users:\n  - name: A\n    email: a@x.com\n    status: paused\n"), 0o600))
	_, err = LoadSeedFile(badStatus)
	assert.ErrorIs(t, err, ErrInvalidSeed)

	_, err = LoadSeedFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
