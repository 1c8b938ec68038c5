package events

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/MostTP/EduWave-Backend/internal/model"
)

const (
	SubjectUserRegistered  = "user.registered"
	SubjectCourseCompleted = "course.completed"
)

type Publisher interface {
	PublishUserRegistered(user *model.User) error
	PublishCourseCompleted(userID, courseID uuid.UUID, courseTitle string) error
}

type UserRegisteredEvent struct {
	EventType    string    `json:"event_type"`
	UserID       uuid.UUID `json:"user_id"`
	FullName     string    `json:"full_name"`
	RegisteredAt time.Time `json:"registered_at"`
}

type CourseCompletedEvent struct {
	EventType   string    `json:"event_type"`
	UserID      uuid.UUID `json:"user_id"`
	CourseID    uuid.UUID `json:"course_id"`
	CourseTitle string    `json:"course_title"`
	CompletedAt time.Time `json:"completed_at"`
}

type NatsPublisher struct {
	conn *nats.Conn
}

func NewNatsPublisher(natsURL string) (Publisher, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	return &NatsPublisher{conn: nc}, nil
}

func (p *NatsPublisher) PublishUserRegistered(user *model.User) error {
	return p.publish(SubjectUserRegistered, UserRegisteredEvent{
		EventType:    SubjectUserRegistered,
		UserID:       user.ID,
		FullName:     user.FullName,
		RegisteredAt: time.Now(),
	})
}

func (p *NatsPublisher) PublishCourseCompleted(userID, courseID uuid.UUID, courseTitle string) error {
	return p.publish(SubjectCourseCompleted, CourseCompletedEvent{
		EventType:   SubjectCourseCompleted,
		UserID:      userID,
		CourseID:    courseID,
		CourseTitle: courseTitle,
		CompletedAt: time.Now(),
	})
}

func (p *NatsPublisher) publish(subject string, event any) error {
	payload, err := json.Marshal(event)
	if err != nil {
		slog.Error("failed to marshal event", "subject", subject, "error", err)
		return err
	}

	if err := p.conn.Publish(subject, payload); err != nil {
		slog.Error("failed to publish to NATS", "subject", subject, "error", err)
		return err
	}

	slog.Info("published event", "subject", subject)
	return nil
}

// NoopPublisher keeps the server usable when NATS is not configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishUserRegistered(*model.User) error { return nil }

func (NoopPublisher) PublishCourseCompleted(uuid.UUID, uuid.UUID, string) error { return nil }
