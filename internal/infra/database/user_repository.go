package database

import (
	"context"
	"database/sql"
	"fmt" // For error wrapping

	"daily_quote_mailer/internal/domain/delivery"
	"daily_quote_mailer/internal/domain/user"
)

// Custom errors
var ErrUserNotFound = fmt.Errorf("user not found")

type SQLUserRepository struct {
	db      *sql.DB
	dialect dialect
}

func (r *SQLUserRepository) CreateIfAbsent(ctx context.Context, u *user.User) (bool, error) {
	query := r.dialect.rebind(`INSERT INTO users (name, email, status, frequency)
               VALUES (?, ?, ?, ?)
               ON CONFLICT (email) DO NOTHING`)

	if u.Status == "" {
		u.Status = user.StatusActive
	}
	if u.Frequency == "" {
		u.Frequency = user.FrequencyDaily
	}

	res, err := r.db.ExecContext(ctx, query, u.Name, u.Email, string(u.Status), string(u.Frequency))
	if err != nil {
		return false, fmt.Errorf("error creating user %s: %w", u.Email, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("error reading affected rows for user %s: %w", u.Email, err)
	}
	return affected > 0, nil
}

func (r *SQLUserRepository) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	query := r.dialect.rebind(`SELECT id, name, email, status, frequency
               FROM users WHERE email = ?`)
	u := &user.User{}
	err := r.db.QueryRowContext(ctx, query, email).Scan(&u.ID, &u.Name, &u.Email, &u.Status, &u.Frequency)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("error getting user by email: %w", err)
	}
	return u, nil
}

func (r *SQLUserRepository) ListAll(ctx context.Context) ([]*user.User, error) {
	query := `SELECT id, name, email, status, frequency FROM users ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing all users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func (r *SQLUserRepository) ListEligible(ctx context.Context, sentDate string) ([]*user.User, error) {
	query := r.dialect.rebind(`SELECT u.id, u.name, u.email, u.status, u.frequency
               FROM users u
               WHERE u.status = ?
                 AND u.frequency = ?
                 AND NOT EXISTS (
                     SELECT 1 FROM email_logs e
                     WHERE e.email = u.email AND e.sent_date = ? AND e.status = ?
                 )
               ORDER BY u.id`)

	rows, err := r.db.QueryContext(ctx, query, string(user.StatusActive), string(user.FrequencyDaily), sentDate, string(delivery.StatusSuccess))
	if err != nil {
		return nil, fmt.Errorf("error listing eligible users: %w", err)
	}
	defer rows.Close()
	return scanUsers(rows)
}

func scanUsers(rows *sql.Rows) ([]*user.User, error) {
	users := make([]*user.User, 0)
	for rows.Next() {
		u := &user.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Status, &u.Frequency); err != nil {
			return nil, fmt.Errorf("error scanning user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}
	return users, nil
}
