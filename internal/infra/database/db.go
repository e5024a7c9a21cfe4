package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"daily_quote_mailer/internal/domain/delivery"
	"daily_quote_mailer/internal/domain/quote"
	"daily_quote_mailer/internal/domain/user"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = 5 * time.Minute
	defaultConnMaxIdleTime = 1 * time.Minute
)

// ErrDatabaseMissing is returned when a SQLite file does not exist and
// Options.CreateIfMissing is false.
var ErrDatabaseMissing = errors.New("database file does not exist")

// Options control how Open treats the target.
type Options struct {
	// CreateIfMissing lets Open create a missing SQLite file and its directory.
	// Ignored for PostgreSQL.
	CreateIfMissing bool
}

// Store is an open connection to the persistent store with its repositories.
type Store struct {
	db         *sql.DB
	dialect    dialect
	users      *SQLUserRepository
	quotes     *SQLQuoteRepository
	deliveries *SQLDeliveryRepository
}

// Open connects to databaseURL and pings it. A postgres:// or postgresql://
// URL selects PostgreSQL; anything else is a SQLite file path.
func Open(ctx context.Context, databaseURL string, opts Options) (*Store, error) {
	d := dialectFor(databaseURL)

	if d.name == dialectSQLite {
		if err := prepareSQLiteFile(databaseURL, opts.CreateIfMissing); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(d.driverName, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if d.name == dialectSQLite {
		// One writer; also keeps every statement on the same file handle.
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(defaultMaxOpenConns)
		db.SetMaxIdleConns(defaultMaxIdleConns)
		db.SetConnMaxIdleTime(defaultConnMaxIdleTime)
	}
	db.SetConnMaxLifetime(defaultConnMaxLifetime)

	if err = db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{
		db:         db,
		dialect:    d,
		users:      &SQLUserRepository{db: db, dialect: d},
		quotes:     &SQLQuoteRepository{db: db, dialect: d},
		deliveries: &SQLDeliveryRepository{db: db, dialect: d},
	}, nil
}

func prepareSQLiteFile(path string, create bool) error {
	_, err := os.Stat(path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to stat database file: %w", err)
	}
	if !create {
		return fmt.Errorf("%w: %s", ErrDatabaseMissing, path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

func (s *Store) Users() user.Repository          { return s.users }
func (s *Store) Quotes() quote.Repository        { return s.quotes }
func (s *Store) Deliveries() delivery.Repository { return s.deliveries }

// Dialect returns "sqlite" or "postgres".
func (s *Store) Dialect() string { return s.dialect.name }

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}
