package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateUsersTable, downCreateUsersTable)
}

func upCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE users (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  full_name TEXT NOT NULL,
	  email TEXT NOT NULL UNIQUE,
	  password_hash TEXT NOT NULL,
	  role TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'instructor', 'admin')),
	  email_verified BOOLEAN NOT NULL DEFAULT FALSE,
	  email_verification_token_hash TEXT UNIQUE,
	  email_verification_expires_at TIMESTAMP WITH TIME ZONE,
	  password_reset_token_hash TEXT UNIQUE,
	  password_reset_expires_at TIMESTAMP WITH TIME ZONE,
	  refresh_token_hash TEXT,
	  login_streak INTEGER NOT NULL DEFAULT 0,
	  last_login_at TIMESTAMP WITH TIME ZONE,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  CHECK ((email_verification_token_hash IS NULL) = (email_verification_expires_at IS NULL)),
	  CHECK ((password_reset_token_hash IS NULL) = (password_reset_expires_at IS NULL))
	);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateUsersTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS users;`)
	return err
}
