package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Migration is one idempotent schema step.
type Migration struct {
	Version int
	Name    string
	Up      string
}

const migration001Up = `
CREATE TABLE IF NOT EXISTS users (
    id UUID PRIMARY KEY,
    full_name VARCHAR(150) NOT NULL,
    email VARCHAR(255) NOT NULL UNIQUE,
    role VARCHAR(20) NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT valid_role CHECK (role IN ('STUDENT', 'ALUMNI', 'ADMIN'))
);

CREATE TABLE IF NOT EXISTS alumni_profiles (
    user_id UUID PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
    available_for_mentorship BOOLEAN NOT NULL DEFAULT FALSE,
    max_mentees INTEGER NOT NULL DEFAULT 0,
    mentorship_topics TEXT[] NOT NULL DEFAULT '{}',
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT valid_max_mentees CHECK (max_mentees >= 0)
);
`

const migration002Up = `
CREATE TABLE IF NOT EXISTS mentorship_requests (
    id UUID PRIMARY KEY,
    student_id UUID NOT NULL REFERENCES users(id),
    alumni_id UUID NOT NULL REFERENCES users(id),
    status VARCHAR(16) NOT NULL,
    queue_position INTEGER,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT mentorship_requests_pair_key UNIQUE (student_id, alumni_id),
    CONSTRAINT valid_mentorship_status CHECK (status IN ('PENDING', 'QUEUED', 'ACCEPTED', 'REJECTED')),
    CONSTRAINT queue_position_iff_queued CHECK ((queue_position IS NOT NULL) = (status = 'QUEUED')),
    CONSTRAINT positive_queue_position CHECK (queue_position IS NULL OR queue_position > 0)
);

CREATE INDEX IF NOT EXISTS idx_mentorship_alumni_status ON mentorship_requests(alumni_id, status);
CREATE INDEX IF NOT EXISTS idx_mentorship_student ON mentorship_requests(student_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_mentorship_queue
    ON mentorship_requests(alumni_id, queue_position)
    WHERE status = 'QUEUED';
`

const migration003Up = `
CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    type VARCHAR(40) NOT NULL,
    message TEXT NOT NULL,
    reference_id UUID,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    read_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications(user_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_notifications_unread ON notifications(user_id) WHERE is_read = FALSE;

CREATE TABLE IF NOT EXISTS audit_logs (
    id UUID PRIMARY KEY,
    user_id UUID,
    action VARCHAR(50) NOT NULL,
    resource VARCHAR(50) NOT NULL,
    resource_id VARCHAR(64),
    old_values JSONB,
    new_values JSONB,
    ip_address VARCHAR(64) NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// Migrations lists the schema steps in order.
var Migrations = []Migration{
	{Version: 1, Name: "users_and_alumni_profiles", Up: migration001Up},
	{Version: 2, Name: "mentorship_requests", Up: migration002Up},
	{Version: 3, Name: "notifications_and_audit", Up: migration003Up},
}

const schemaVersionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name VARCHAR(100) NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Migrate applies pending migrations, each inside its own transaction.
func Migrate(ctx context.Context, db *sqlx.DB) (applied int, err error) {
	if _, err = db.ExecContext(ctx, schemaVersionTable); err != nil {
		return 0, fmt.Errorf("create schema_migrations: %w", err)
	}

	var current int
	if err = db.GetContext(ctx, &current, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range Migrations {
		if m.Version <= current {
			continue
		}
		if err = apply(ctx, db, m); err != nil {
			return applied, err
		}
		applied++
	}
	return applied, nil
}

func apply(ctx context.Context, db *sqlx.DB, m Migration) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration %d: %w", m.Version, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Name, err)
	}
	if _, err = tx.ExecContext(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return fmt.Errorf("record migration %d: %w", m.Version, err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration %d: %w", m.Version, err)
	}
	return nil
}
