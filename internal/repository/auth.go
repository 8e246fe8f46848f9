// Package repository provides PostgreSQL persistence for users, sessions,
// tutors, favorites and trial bookings.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// PostgresAuthRepository implements account and session operations using a PostgreSQL database.
type PostgresAuthRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresAuthRepository creates a new PostgresAuthRepository with the given database connection.
// db must be a valid *sql.DB connected to a PostgreSQL instance.
func NewPostgresAuthRepository(db *sql.DB) *PostgresAuthRepository {
	return &PostgresAuthRepository{DB: db}
}

// CreateUser inserts a new user.
// Returns ErrDuplicate if the email is already registered.
func (r *PostgresAuthRepository) CreateUser(ctx context.Context, u *models.User) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (id, name, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Name, u.Email, u.PasswordHash, u.CreatedAt,
	)
	if err != nil {
		if pqCode(err) == uniqueViolation {
			return ErrDuplicate
		}
		return fmt.Errorf("CreateUser: %w", err)
	}
	return nil
}

// FindByEmail looks up a user by email.
// Returns ErrNotFound if no user has that email.
func (r *PostgresAuthRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`,
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("FindByEmail: %w", err)
	}
	return &u, nil
}

// CreateSession stores a new login session.
func (r *PostgresAuthRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, expires_at) VALUES ($1, $2, $3)`,
		s.ID, s.UserID, s.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("CreateSession: %w", err)
	}
	return nil
}

// SessionActive reports whether the session exists, is not revoked and has not expired at now.
func (r *PostgresAuthRepository) SessionActive(ctx context.Context, id string, now time.Time) (bool, error) {
	var active bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM sessions WHERE id = $1 AND revoked = false AND expires_at > $2)`,
		id, now,
	).Scan(&active)
	return active, err
}

// RevokeSession marks the session revoked. Revoking an unknown session is not an error.
func (r *PostgresAuthRepository) RevokeSession(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, `UPDATE sessions SET revoked = true WHERE id = $1`, id)
	return err
}
