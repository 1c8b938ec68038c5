package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateEnrollmentsTable, downCreateEnrollmentsTable)
}

func upCreateEnrollmentsTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE enrollments (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	  course_id UUID NOT NULL REFERENCES courses(id) ON DELETE CASCADE,
	  completed_lessons INTEGER NOT NULL DEFAULT 0 CHECK (completed_lessons >= 0),
	  completed_at TIMESTAMP WITH TIME ZONE,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  UNIQUE (user_id, course_id)
	);

	CREATE INDEX idx_enrollments_course_id ON enrollments(course_id);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateEnrollmentsTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS enrollments;`)
	return err
}
