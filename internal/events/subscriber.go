package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MostTP/EduWave-Backend/internal/model"
	"github.com/MostTP/EduWave-Backend/internal/repository"
)

const (
	maxRetries    = 3
	retryDelaySec = 2
	dlqSubject    = "notification.failed"
)

// NotificationSubscriber turns lifecycle events into in-app notification
// rows. Writes are retried; messages that never persist go to a DLQ subject.
type NotificationSubscriber struct {
	natsConn *nats.Conn
	repo     repository.NotificationRepository
}

func NewNotificationSubscriber(natsURL string, repo repository.NotificationRepository) (*NotificationSubscriber, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, err
	}
	slog.Info("notification subscriber connected to NATS")

	s := &NotificationSubscriber{natsConn: nc, repo: repo}
	if err := s.subscribe(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *NotificationSubscriber) subscribe() error {
	if _, err := s.natsConn.Subscribe(SubjectUserRegistered, s.handleUserRegistered); err != nil {
		return err
	}
	if _, err := s.natsConn.Subscribe(SubjectCourseCompleted, s.handleCourseCompleted); err != nil {
		return err
	}
	slog.Info("notification subscriber listening", "subjects", []string{SubjectUserRegistered, SubjectCourseCompleted})
	return nil
}

func (s *NotificationSubscriber) handleUserRegistered(msg *nats.Msg) {
	var event UserRegisteredEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("failed to unmarshal user.registered event", "error", err)
		return
	}

	s.saveWithRetry(msg, &model.Notification{
		UserID: event.UserID,
		Title:  "Welcome to EduWave",
		Body:   fmt.Sprintf("Hi %s, your account has been created. Verify your email to get started.", event.FullName),
	})
}

func (s *NotificationSubscriber) handleCourseCompleted(msg *nats.Msg) {
	var event CourseCompletedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		slog.Error("failed to unmarshal course.completed event", "error", err)
		return
	}

	s.saveWithRetry(msg, &model.Notification{
		UserID: event.UserID,
		Title:  "Course completed",
		Body:   fmt.Sprintf("Congratulations, you finished %q!", event.CourseTitle),
	})
}

func (s *NotificationSubscriber) saveWithRetry(msg *nats.Msg, n *model.Notification) {
	var saveErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		saveErr = s.repo.Create(context.Background(), n)
		if saveErr == nil {
			slog.Info("notification stored", "user_id", n.UserID, "title", n.Title)
			return
		}

		slog.Warn("failed to store notification, retrying",
			"attempt", attempt, "error", saveErr, "delay_sec", retryDelaySec)
		time.Sleep(time.Second * retryDelaySec)
	}

	slog.Error("giving up on notification after retries",
		"attempts", maxRetries, "user_id", n.UserID, "error", saveErr)

	if err := s.natsConn.Publish(dlqSubject, msg.Data); err != nil {
		slog.Error("failed to publish to DLQ", "subject", dlqSubject, "error", err)
	} else {
		slog.Info("published failed event to DLQ", "subject", dlqSubject)
	}
}
