package app

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"daily_quote_mailer/internal/domain/email"
	"daily_quote_mailer/internal/domain/quote"
	"daily_quote_mailer/internal/domain/user"
	"daily_quote_mailer/internal/infra/config"
	idb "daily_quote_mailer/internal/infra/database"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var (
	fixedNow = time.Date(2026, 10, 14, 8, 0, 0, 0, time.Local)
	today    = "2026-10-14"

	validSMTP = config.SMTPConfig{
		Server:   "smtp.example.com",
		Port:     465,
		Address:  "quotes@example.com",
		Password: "secret",
	}
)

// setupDatabase creates a SQLite file with the schema and returns its path.
func setupDatabase(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "storage.db")
	store, err := idb.Open(context.Background(), path, idb.Options{CreateIfMissing: true})
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(context.Background()))
	return path
}

// inspect opens a separate connection for seeding and assertions.
func inspect(t *testing.T, path string) *idb.Store {
	t.Helper()
	store, err := idb.Open(context.Background(), path, idb.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedUsers(t *testing.T, store *idb.Store, users ...user.User) {
	t.Helper()
	for i := range users {
		_, err := store.Users().CreateIfAbsent(context.Background(), &users[i])
		require.NoError(t, err)
	}
}

func seedQuote(t *testing.T, store *idb.Store, text, author, date string) {
	t.Helper()
	require.NoError(t, store.Quotes().Create(context.Background(), &quote.Quote{Text: text, Author: author, DateFetched: date}))
}

// trackingStorage records whether the run released its connection.
type trackingStorage struct {
	*idb.Store
	closed bool
}

func (s *trackingStorage) Close() error {
	s.closed = true
	return s.Store.Close()
}

type storageTracker struct {
	mu     sync.Mutex
	opened []*trackingStorage
}

func (tr *storageTracker) opener(path string) StorageOpener {
	return func(ctx context.Context) (Storage, error) {
		store, err := idb.Open(ctx, path, idb.Options{})
		if err != nil {
			return nil, err
		}
		ts := &trackingStorage{Store: store}
		tr.mu.Lock()
		tr.opened = append(tr.opened, ts)
		tr.mu.Unlock()
		return ts, nil
	}
}

func (tr *storageTracker) allClosed() bool {
	tr.mu.Lock()
	defer tr.mu.Unlock()
	for _, s := range tr.opened {
		if !s.closed {
			return false
		}
	}
	return true
}

// fakeDialer is an in-memory email.Dialer.
type fakeDialer struct {
	dialErr  error
	failFor  map[string]error
	dials    int
	closes   int
	attempts []string
	sent     []*email.Message
}

func (f *fakeDialer) Dial(ctx context.Context) (email.Session, error) {
	f.dials++
	if f.dialErr != nil {
		return nil, f.dialErr
	}
	return &fakeSession{dialer: f}, nil
}

type fakeSession struct {
	dialer *fakeDialer
}

func (s *fakeSession) Send(ctx context.Context, msg *email.Message) error {
	s.dialer.attempts = append(s.dialer.attempts, msg.To)
	if err := s.dialer.failFor[msg.To]; err != nil {
		return err
	}
	s.dialer.sent = append(s.dialer.sent, msg)
	return nil
}

func (s *fakeSession) Close() error {
	s.dialer.closes++
	return nil
}

func newTestLogger() (*logrus.Logger, *logtest.Hook) {
	log, hook := logtest.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	return log, hook
}

func hasLog(hook *logtest.Hook, level logrus.Level, msg string) bool {
	for _, e := range hook.AllEntries() {
		if e.Level == level && e.Message == msg {
			return true
		}
	}
	return false
}
