package repository

import (
	"context"
	"math"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MostTP/EduWave-Backend/internal/model"
)

type PaginationMeta struct {
	CurrentPage int `json:"currentPage"`
	TotalPages  int `json:"totalPages"`
	TotalItems  int `json:"totalItems"`
	PerPage     int `json:"perPage"`
}

type CourseRepository interface {
	Create(ctx context.Context, course *model.Course) (*model.Course, error)
	Update(ctx context.Context, course *model.Course) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error)
	ListPublished(ctx context.Context, limit, offset int) ([]model.Course, PaginationMeta, error)
}

type postgresCourseRepository struct {
	db *sqlx.DB
}

func NewPostgresCourseRepository(db *sqlx.DB) CourseRepository {
	return &postgresCourseRepository{db: db}
}

func (r *postgresCourseRepository) Create(ctx context.Context, course *model.Course) (*model.Course, error) {
	query := `INSERT INTO courses (title, description, instructor_id, lesson_count, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowxContext(ctx, query,
		course.Title, course.Description, course.InstructorID, course.LessonCount, course.Published,
	).Scan(&course.ID, &course.CreatedAt, &course.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *postgresCourseRepository) Update(ctx context.Context, course *model.Course) error {
	query := `UPDATE courses
		SET title = $2, description = $3, lesson_count = $4, published = $5, updated_at = now()
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query,
		course.ID, course.Title, course.Description, course.LessonCount, course.Published)
	return err
}

func (r *postgresCourseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	var course model.Course
	query := `SELECT id, title, description, instructor_id, lesson_count, published, created_at, updated_at
		FROM courses WHERE id = $1`
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

func (r *postgresCourseRepository) ListPublished(ctx context.Context, limit, offset int) ([]model.Course, PaginationMeta, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM courses WHERE published = TRUE`); err != nil {
		return nil, PaginationMeta{}, err
	}

	courses := []model.Course{}
	query := `SELECT id, title, description, instructor_id, lesson_count, published, created_at, updated_at
		FROM courses WHERE published = TRUE
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &courses, query, limit, offset); err != nil {
		return nil, PaginationMeta{}, err
	}

	meta := PaginationMeta{
		CurrentPage: offset/limit + 1,
		TotalPages:  int(math.Ceil(float64(total) / float64(limit))),
		TotalItems:  total,
		PerPage:     limit,
	}
	return courses, meta, nil
}
