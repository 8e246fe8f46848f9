package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/atinyakov/LearnLingo/internal/models"
)

// PostgresBookingRepository stores trial-lesson requests.
type PostgresBookingRepository struct {
	DB *sql.DB
}

// NewPostgresBookingRepository creates a PostgresBookingRepository using the provided *sql.DB.
func NewPostgresBookingRepository(db *sql.DB) *PostgresBookingRepository {
	return &PostgresBookingRepository{DB: db}
}

// CreateBooking inserts b. Returns ErrNotFound when the tutor does not exist.
func (r *PostgresBookingRepository) CreateBooking(ctx context.Context, b *models.TrialBooking) error {
	var userID sql.NullString
	if b.UserID != "" {
		userID = sql.NullString{String: b.UserID, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO trial_bookings (id, tutor_id, user_id, reason, full_name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, b.ID, b.TutorID, userID, string(b.Reason), b.FullName, b.Email, b.Phone, b.CreatedAt)
	if err != nil {
		if pqCode(err) == foreignKeyViolation {
			return ErrNotFound
		}
		return fmt.Errorf("CreateBooking: %w", err)
	}
	return nil
}
