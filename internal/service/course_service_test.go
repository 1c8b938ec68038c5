package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
)

type fakeCourseRepo struct {
	courses map[uuid.UUID]*model.Course
}

func (f *fakeCourseRepo) Create(_ context.Context, c *model.Course) (*model.Course, error) {
	c.ID = uuid.New()
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	f.courses[c.ID] = c
	return c, nil
}

func (f *fakeCourseRepo) Update(_ context.Context, c *model.Course) error {
	f.courses[c.ID] = c
	return nil
}

func (f *fakeCourseRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Course, error) {
	c, ok := f.courses[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCourseRepo) ListPublished(_ context.Context, limit, offset int) ([]model.Course, repository.PaginationMeta, error) {
	out := []model.Course{}
	for _, c := range f.courses {
		if c.Published {
			out = append(out, *c)
		}
	}
	return out, repository.PaginationMeta{TotalItems: len(out), PerPage: limit}, nil
}

type fakeEnrollmentRepo struct {
	mu    sync.Mutex
	byKey map[string]*model.Enrollment
}

func key(userID, courseID uuid.UUID) string { return userID.String() + "/" + courseID.String() }

func (f *fakeEnrollmentRepo) Find(_ context.Context, userID, courseID uuid.UUID) (*model.Enrollment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byKey[key(userID, courseID)]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

// Upsert mirrors the single-statement semantics: completed_at is set at most
// once and the call that set it is the only one to report justCompleted.
func (f *fakeEnrollmentRepo) Upsert(_ context.Context, userID, courseID uuid.UUID, completedLessons int, completed bool) (*model.Enrollment, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byKey[key(userID, courseID)]
	if !ok {
		e = &model.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID}
		f.byKey[key(userID, courseID)] = e
	}
	e.CompletedLessons = completedLessons
	justCompleted := false
	if completed && e.CompletedAt == nil {
		now := time.Now()
		e.CompletedAt = &now
		justCompleted = true
	}
	cp := *e
	return &cp, justCompleted, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	completed []uuid.UUID
}

func (p *recordingPublisher) PublishUserRegistered(*model.User) error { return nil }

func (p *recordingPublisher) PublishCourseCompleted(_, courseID uuid.UUID, _ string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.completed = append(p.completed, courseID)
	return nil
}

func (p *recordingPublisher) completedCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.completed)
}

func newCourseFixture() (CourseService, *fakeCourseRepo, *recordingPublisher) {
	courses := &fakeCourseRepo{courses: map[uuid.UUID]*model.Course{}}
	enrollments := &fakeEnrollmentRepo{byKey: map[string]*model.Enrollment{}}
	pub := &recordingPublisher{}
	return NewCourseService(courses, enrollments, pub), courses, pub
}

func instructor() *model.User {
	return &model.User{ID: uuid.New(), Role: model.RoleInstructor}
}

func TestUpdateProgress_ClampsBothBounds(t *testing.T) {
	svc, _, _ := newCourseFixture()
	actor := instructor()

	course, err := svc.CreateCourse(context.Background(), actor, CourseInput{
		Title: "Algebra", LessonCount: 10, Published: true,
	})
	require.NoError(t, err)

	studentID := uuid.New()

	e, err := svc.UpdateProgress(context.Background(), studentID, course.ID, -5)
	require.NoError(t, err)
	require.Equal(t, 0, e.CompletedLessons)

	e, err = svc.UpdateProgress(context.Background(), studentID, course.ID, 999)
	require.NoError(t, err)
	require.Equal(t, 10, e.CompletedLessons)
	require.NotNil(t, e.CompletedAt)
}

func TestUpdateProgress_CompletionEventFiresOnce(t *testing.T) {
	svc, _, pub := newCourseFixture()
	actor := instructor()

	course, err := svc.CreateCourse(context.Background(), actor, CourseInput{
		Title: "Algebra", LessonCount: 3, Published: true,
	})
	require.NoError(t, err)

	studentID := uuid.New()

	_, err = svc.UpdateProgress(context.Background(), studentID, course.ID, 3)
	require.NoError(t, err)
	_, err = svc.UpdateProgress(context.Background(), studentID, course.ID, 3)
	require.NoError(t, err)

	require.Eventually(t, func() bool { return pub.completedCount() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, pub.completedCount())
}

func TestUpdateProgress_ConcurrentCompletionsPublishOnce(t *testing.T) {
	svc, _, pub := newCourseFixture()
	actor := instructor()

	course, err := svc.CreateCourse(context.Background(), actor, CourseInput{
		Title: "Algebra", LessonCount: 3, Published: true,
	})
	require.NoError(t, err)

	studentID := uuid.New()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.UpdateProgress(context.Background(), studentID, course.ID, 3)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	require.Eventually(t, func() bool { return pub.completedCount() == 1 }, time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, pub.completedCount())
}

func TestUpdateProgress_UnknownCourse(t *testing.T) {
	svc, _, _ := newCourseFixture()

	_, err := svc.UpdateProgress(context.Background(), uuid.New(), uuid.New(), 1)
	require.ErrorIs(t, err, ErrCourseNotFound)
}

func TestUpdateCourse_OwnershipIsEnforced(t *testing.T) {
	svc, _, _ := newCourseFixture()
	owner := instructor()
	stranger := instructor()
	admin := &model.User{ID: uuid.New(), Role: model.RoleAdmin}

	course, err := svc.CreateCourse(context.Background(), owner, CourseInput{Title: "Old", LessonCount: 5})
	require.NoError(t, err)

	_, err = svc.UpdateCourse(context.Background(), stranger, course.ID, CourseInput{Title: "Hijacked", LessonCount: 5})
	require.ErrorIs(t, err, ErrNotCourseOwner)

	updated, err := svc.UpdateCourse(context.Background(), admin, course.ID, CourseInput{Title: "New", LessonCount: 5})
	require.NoError(t, err)
	require.Equal(t, "New", updated.Title)
}

func TestUpdateProgress_CourseWithoutLessons(t *testing.T) {
	svc, _, _ := newCourseFixture()
	actor := instructor()

	course, err := svc.CreateCourse(context.Background(), actor, CourseInput{Title: "Empty", LessonCount: 0})
	require.NoError(t, err)

	_, err = svc.UpdateProgress(context.Background(), uuid.New(), course.ID, 1)
	require.ErrorIs(t, err, ErrCourseNoLessons)
}
