package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateNotificationsTable, downCreateNotificationsTable)
}

func upCreateNotificationsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE notifications (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	  title TEXT NOT NULL,
	  body TEXT NOT NULL DEFAULT '',
	  read BOOLEAN NOT NULL DEFAULT FALSE,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	CREATE INDEX idx_notifications_user_id_created_at ON notifications(user_id, created_at DESC);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateNotificationsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS notifications;`)
	return err
}
