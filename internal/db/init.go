// Package db opens the Postgres store and runs its maintenance jobs.
package db

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL DEFAULT '',
    email TEXT NOT NULL UNIQUE,
    password_hash BYTEA NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    expires_at TIMESTAMPTZ NOT NULL,
    revoked BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS tutors (
    id TEXT PRIMARY KEY COLLATE "C",
    name TEXT NOT NULL,
    surname TEXT NOT NULL,
    languages TEXT[] NOT NULL,
    levels TEXT[] NOT NULL,
    rating DOUBLE PRECISION NOT NULL DEFAULT 0,
    reviews JSONB NOT NULL DEFAULT '[]',
    price_per_hour DOUBLE PRECISION NOT NULL DEFAULT 0,
    lessons_done INTEGER NOT NULL DEFAULT 0,
    avatar_url TEXT NOT NULL DEFAULT '',
    lesson_info TEXT NOT NULL DEFAULT '',
    conditions TEXT[] NOT NULL DEFAULT '{}',
    experience TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS favorites (
    user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    tutor_id TEXT NOT NULL,
    PRIMARY KEY (user_id, tutor_id)
);

CREATE TABLE IF NOT EXISTS trial_bookings (
    id TEXT PRIMARY KEY,
    tutor_id TEXT NOT NULL REFERENCES tutors(id) ON DELETE CASCADE,
    user_id TEXT,
    reason TEXT NOT NULL,
    full_name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

// InitPostgres opens dsn, verifies the connection and applies the schema.
func InitPostgres(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}
