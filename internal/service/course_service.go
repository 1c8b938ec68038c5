package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/MostTP/EduWave-Backend/internal/events"
	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
)

var (
	ErrCourseNotFound  = errors.New("course not found")
	ErrNotCourseOwner  = errors.New("course belongs to another instructor")
	ErrNoProgress      = errors.New("no progress recorded for this course")
	ErrCourseNoLessons = errors.New("course has no lessons")
)

type CourseInput struct {
	Title       string
	Description string
	LessonCount int
	Published   bool
}

type CourseService interface {
	CreateCourse(ctx context.Context, actor *model.User, input CourseInput) (*model.Course, error)
	UpdateCourse(ctx context.Context, actor *model.User, courseID uuid.UUID, input CourseInput) (*model.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error)
	ListCourses(ctx context.Context, page, limit int) ([]model.Course, repository.PaginationMeta, error)
	UpdateProgress(ctx context.Context, userID, courseID uuid.UUID, completedLessons int) (*model.Enrollment, error)
	GetProgress(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error)
}

type courseService struct {
	courseRepo     repository.CourseRepository
	enrollmentRepo repository.EnrollmentRepository
	publisher      events.Publisher
}

func NewCourseService(courseRepo repository.CourseRepository, enrollmentRepo repository.EnrollmentRepository, publisher events.Publisher) CourseService {
	return &courseService{
		courseRepo:     courseRepo,
		enrollmentRepo: enrollmentRepo,
		publisher:      publisher,
	}
}

func (s *courseService) CreateCourse(ctx context.Context, actor *model.User, input CourseInput) (*model.Course, error) {
	course := &model.Course{
		Title:        input.Title,
		Description:  input.Description,
		InstructorID: actor.ID,
		LessonCount:  input.LessonCount,
		Published:    input.Published,
	}
	return s.courseRepo.Create(ctx, course)
}

// UpdateCourse lets an instructor edit only their own courses; admins may
// edit any.
func (s *courseService) UpdateCourse(ctx context.Context, actor *model.User, courseID uuid.UUID, input CourseInput) (*model.Course, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	if actor.Role != model.RoleAdmin && course.InstructorID != actor.ID {
		return nil, ErrNotCourseOwner
	}

	course.Title = input.Title
	course.Description = input.Description
	course.LessonCount = input.LessonCount
	course.Published = input.Published

	if err := s.courseRepo.Update(ctx, course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *courseService) GetCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	return s.findCourse(ctx, courseID)
}

func (s *courseService) ListCourses(ctx context.Context, page, limit int) ([]model.Course, repository.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	return s.courseRepo.ListPublished(ctx, limit, (page-1)*limit)
}

// UpdateProgress clamps the lesson counter to [0, lesson_count]. The first
// time the counter reaches the lesson count, completion is recorded and a
// course.completed event goes out.
func (s *courseService) UpdateProgress(ctx context.Context, userID, courseID uuid.UUID, completedLessons int) (*model.Enrollment, error) {
	course, err := s.findCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if course.LessonCount <= 0 {
		return nil, ErrCourseNoLessons
	}

	clamped := completedLessons
	if clamped < 0 {
		clamped = 0
	}
	if clamped > course.LessonCount {
		clamped = course.LessonCount
	}
	completed := clamped == course.LessonCount

	// The upsert itself reports whether it recorded completion, so two
	// concurrent completing updates cannot both publish the event.
	enrollment, justCompleted, err := s.enrollmentRepo.Upsert(ctx, userID, courseID, clamped, completed)
	if err != nil {
		return nil, err
	}

	if justCompleted {
		go s.publisher.PublishCourseCompleted(userID, courseID, course.Title)
	}

	return enrollment, nil
}

func (s *courseService) GetProgress(ctx context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	enrollment, err := s.enrollmentRepo.Find(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoProgress
		}
		return nil, err
	}
	return enrollment, nil
}

func (s *courseService) findCourse(ctx context.Context, courseID uuid.UUID) (*model.Course, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}
