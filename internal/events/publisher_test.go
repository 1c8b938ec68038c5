package events_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MostTP/EduWave-Backend/internal/events"
)

func TestUserRegisteredEvent_Marshal(t *testing.T) {
	ev := events.UserRegisteredEvent{
		EventType:    events.SubjectUserRegistered,
		UserID:       uuid.New(),
		FullName:     "Ada Lovelace",
		RegisteredAt: time.Now(),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "user.registered", decoded["event_type"])
	require.Equal(t, "Ada Lovelace", decoded["full_name"])
}

func TestCourseCompletedEvent_Marshal(t *testing.T) {
	ev := events.CourseCompletedEvent{
		EventType:   events.SubjectCourseCompleted,
		UserID:      uuid.New(),
		CourseID:    uuid.New(),
		CourseTitle: "Calculus I",
		CompletedAt: time.Now(),
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	require.Equal(t, "course.completed", decoded["event_type"])
	require.Equal(t, "Calculus I", decoded["course_title"])
}
