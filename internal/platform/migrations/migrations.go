// Package migrations holds the database schema as a list of idempotent
// statements applied in order at startup.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

var statements = []string{
	`CREATE TABLE IF NOT EXISTS tracker_users (
		id BIGSERIAL PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT '',
		bio TEXT NOT NULL DEFAULT '',
		profile_picture_url TEXT NOT NULL DEFAULT '',
		total_animals_logged INTEGER NOT NULL DEFAULT 0,
		unique_species_count INTEGER NOT NULL DEFAULT 0,
		last_activity_date TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tracker_sightings (
		id BIGSERIAL PRIMARY KEY,
		species TEXT NOT NULL DEFAULT '',
		location TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT '',
		image_url TEXT NOT NULL DEFAULT '',
		observed_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		pixel_x INTEGER,
		pixel_y INTEGER,
		user_id BIGINT REFERENCES tracker_users(id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracker_sightings_user ON tracker_sightings (user_id)`,
	`CREATE TABLE IF NOT EXISTS tracker_notifications (
		id BIGSERIAL PRIMARY KEY,
		user_id BIGINT NOT NULL REFERENCES tracker_users(id) ON DELETE CASCADE,
		message TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		read BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_tracker_notifications_user ON tracker_notifications (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS tracker_species (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS tracker_reports (
		id BIGSERIAL PRIMARY KEY,
		sighting_id BIGINT NOT NULL REFERENCES tracker_sightings(id) ON DELETE CASCADE,
		user_id BIGINT NOT NULL REFERENCES tracker_users(id) ON DELETE CASCADE,
		reason TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (sighting_id, user_id)
	)`,
}

// Apply runs every schema statement in order. Statements are written to be
// safe to re-run on an already migrated database.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
