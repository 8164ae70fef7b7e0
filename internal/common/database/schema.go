// internal/common/database/schema.go
package database

import (
	"context"
	"fmt"
)

// schemaStatements are applied in order on startup. Every statement is
// idempotent so restarts against an existing database are safe.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		is_admin      BOOLEAN NOT NULL DEFAULT FALSE,
		is_verified   BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS profiles (
		id           UUID PRIMARY KEY,
		user_id      UUID NOT NULL UNIQUE REFERENCES users(id) ON DELETE CASCADE,
		full_name    TEXT NOT NULL DEFAULT '',
		phone        TEXT NOT NULL DEFAULT '',
		address      TEXT NOT NULL DEFAULT '',
		city         TEXT NOT NULL DEFAULT '',
		state        TEXT NOT NULL DEFAULT '',
		pincode      TEXT NOT NULL DEFAULT '',
		occupation   TEXT NOT NULL DEFAULT '',
		organization TEXT NOT NULL DEFAULT '',
		avatar       TEXT,
		avatar_type  TEXT,
		created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id             UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		email_notifications BOOLEAN NOT NULL DEFAULT TRUE,
		event_reminders     BOOLEAN NOT NULL DEFAULT TRUE,
		newsletter          BOOLEAN NOT NULL DEFAULT TRUE,
		dark_mode           BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at          TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS memberships (
		id             UUID PRIMARY KEY,
		user_id        UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		membership_id  TEXT NOT NULL UNIQUE,
		plan           TEXT NOT NULL,
		payment_status TEXT NOT NULL DEFAULT 'completed',
		amount         NUMERIC(10,2) NOT NULL DEFAULT 0,
		start_date     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		expiry_date    TIMESTAMPTZ NOT NULL,
		created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	`CREATE TABLE IF NOT EXISTS newsletter_subscribers (
		id            UUID PRIMARY KEY,
		email         TEXT NOT NULL UNIQUE,
		subscribed_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// One row per notification regardless of audience size. Broadcast
	// notifications set is_for_all_users and carry no recipient rows.
	`CREATE TABLE IF NOT EXISTS notifications (
		id               UUID PRIMARY KEY,
		title            TEXT NOT NULL,
		message          TEXT NOT NULL,
		category         TEXT NOT NULL DEFAULT 'system',
		priority         TEXT NOT NULL DEFAULT 'medium',
		link             TEXT,
		image            TEXT,
		image_type       TEXT,
		is_for_all_users BOOLEAN NOT NULL DEFAULT FALSE,
		created_by       UUID,
		created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,

	// user_id is TEXT without a foreign key: recipient ids are accepted
	// as-is, and an id that matches no user simply never resolves.
	`CREATE TABLE IF NOT EXISTS notification_recipients (
		notification_id UUID NOT NULL REFERENCES notifications(id) ON DELETE CASCADE,
		user_id         TEXT NOT NULL,
		PRIMARY KEY (notification_id, user_id)
	)`,

	`CREATE TABLE IF NOT EXISTS notification_reads (
		notification_id UUID NOT NULL REFERENCES notifications(id) ON DELETE CASCADE,
		user_id         UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		read_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (notification_id, user_id)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_notifications_created_at
		ON notifications (created_at DESC, id DESC)`,

	`CREATE INDEX IF NOT EXISTS idx_notification_recipients_user
		ON notification_recipients (user_id)`,

	`CREATE INDEX IF NOT EXISTS idx_memberships_user
		ON memberships (user_id)`,
}

// Migrate creates all tables and indexes if they don't exist yet.
func Migrate(ctx context.Context, client *PostgresClient) error {
	for _, stmt := range schemaStatements {
		if _, err := client.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("schema migration failed: %w", err)
		}
	}
	return nil
}
