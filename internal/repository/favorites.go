package repository

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresFavoriteRepository stores each user's favorite tutor keys.
type PostgresFavoriteRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresFavoriteRepository creates a PostgresFavoriteRepository using the provided *sql.DB.
func NewPostgresFavoriteRepository(db *sql.DB) *PostgresFavoriteRepository {
	return &PostgresFavoriteRepository{DB: db}
}

// SetFavorite adds tutorID to the user's favorites. Setting an existing key is a no-op.
func (r *PostgresFavoriteRepository) SetFavorite(ctx context.Context, userID, tutorID string) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO favorites (user_id, tutor_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		userID, tutorID,
	)
	if err != nil {
		return fmt.Errorf("SetFavorite: %w", err)
	}
	return nil
}

// RemoveFavorite removes tutorID from the user's favorites. Removing a missing key is a no-op.
func (r *PostgresFavoriteRepository) RemoveFavorite(ctx context.Context, userID, tutorID string) error {
	_, err := r.DB.ExecContext(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND tutor_id = $2`,
		userID, tutorID,
	)
	if err != nil {
		return fmt.Errorf("RemoveFavorite: %w", err)
	}
	return nil
}

// ListFavorites returns the user's favorite tutor keys in key order.
func (r *PostgresFavoriteRepository) ListFavorites(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT tutor_id FROM favorites WHERE user_id = $1 ORDER BY tutor_id`, userID)
	if err != nil {
		return nil, fmt.Errorf("ListFavorites: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
