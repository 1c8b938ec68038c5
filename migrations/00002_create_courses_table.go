package migrations

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upCreateCoursesTable, downCreateCoursesTable)
}

func upCreateCoursesTable(ctx context.Context, tx *sql.Tx) error {
	query := `
	CREATE TABLE courses (
	  id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	  title TEXT NOT NULL,
	  description TEXT NOT NULL DEFAULT '',
	  instructor_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
	  lesson_count INTEGER NOT NULL DEFAULT 0 CHECK (lesson_count >= 0),
	  published BOOLEAN NOT NULL DEFAULT FALSE,
	  created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now(),
	  updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);

	CREATE INDEX idx_courses_instructor_id ON courses(instructor_id);
	`

	_, err := tx.ExecContext(ctx, query)
	return err
}

func downCreateCoursesTable(ctx context.Context, tx *sql.Tx) error {
	_, err := tx.ExecContext(ctx, `DROP TABLE IF EXISTS courses;`)
	return err
}
