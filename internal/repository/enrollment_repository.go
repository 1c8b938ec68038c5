package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MostTP/EduWave-Backend/internal/model"
)

type EnrollmentRepository interface {
	Find(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
	Upsert(ctx context.Context, userID, courseID uuid.UUID, completedLessons int, completed bool) (*model.Enrollment, bool, error)
}

type postgresEnrollmentRepository struct {
	db *sqlx.DB
}

func NewPostgresEnrollmentRepository(db *sqlx.DB) EnrollmentRepository {
	return &postgresEnrollmentRepository{db: db}
}

func (r *postgresEnrollmentRepository) Find(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	var e model.Enrollment
	query := `SELECT id, user_id, course_id, completed_lessons, completed_at, created_at, updated_at
		FROM enrollments WHERE user_id = $1 AND course_id = $2`
	if err := r.db.GetContext(ctx, &e, query, userID, courseID); err != nil {
		return nil, err
	}
	return &e, nil
}

// Upsert writes the (already clamped) lesson counter. completed_at is set at
// most once; later updates never unset or move it. The second return value
// reports whether this call was the one that recorded completion: now() is
// the statement's transaction timestamp, so completed_at equals it only when
// this statement set it, which keeps the check race-free for concurrent
// completing updates.
func (r *postgresEnrollmentRepository) Upsert(ctx context.Context, userID, courseID uuid.UUID, completedLessons int, completed bool) (*model.Enrollment, bool, error) {
	query := `INSERT INTO enrollments (user_id, course_id, completed_lessons, completed_at)
		VALUES ($1, $2, $3, CASE WHEN $4 THEN now() ELSE NULL END)
		ON CONFLICT (user_id, course_id) DO UPDATE
		SET completed_lessons = EXCLUDED.completed_lessons,
			completed_at = COALESCE(enrollments.completed_at, EXCLUDED.completed_at),
			updated_at = now()
		RETURNING id, user_id, course_id, completed_lessons, completed_at, created_at, updated_at,
			(completed_at IS NOT NULL AND completed_at = now()) AS just_completed`

	var row struct {
		model.Enrollment
		JustCompleted bool `db:"just_completed"`
	}
	err := r.db.QueryRowxContext(ctx, query, userID, courseID, completedLessons, completed).StructScan(&row)
	if err != nil {
		return nil, false, err
	}
	return &row.Enrollment, row.JustCompleted, nil
}
