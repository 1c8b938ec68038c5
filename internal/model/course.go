package model

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Title        string    `db:"title" json:"title"`
	Description  string    `db:"description" json:"description"`
	InstructorID uuid.UUID `db:"instructor_id" json:"instructorId"`
	LessonCount  int       `db:"lesson_count" json:"lessonCount"`
	Published    bool      `db:"published" json:"published"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Enrollment tracks one user's progress through one course. CompletedLessons
// never leaves [0, Course.LessonCount]; CompletedAt is set once, when the
// counter first reaches the lesson count.
type Enrollment struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	UserID           uuid.UUID  `db:"user_id" json:"userId"`
	CourseID         uuid.UUID  `db:"course_id" json:"courseId"`
	CompletedLessons int        `db:"completed_lessons" json:"completedLessons"`
	CompletedAt      *time.Time `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updatedAt"`
}
