package models

import "time"

type TrainingType string

const (
	TrainingGroup    TrainingType = "group"
	TrainingPersonal TrainingType = "personal"
	TrainingOpen     TrainingType = "open"
)

// Training is a scheduled, capacity-limited session members can book into.
// ScheduledAt is always UTC. Trainings are never deleted; cancellation is a
// monotonic flag so history stays available for mirrors and statistics.
type Training struct {
	ID              string       `json:"id"`
	Title           string       `json:"title"`
	Description     string       `json:"description,omitempty"`
	Type            TrainingType `json:"training_type"`
	ScheduledAt     time.Time    `json:"scheduled_at"`
	DurationMinutes int          `json:"duration_minutes"`
	MaxParticipants int          `json:"max_participants"`
	Location        string       `json:"location,omitempty"`
	IsCancelled     bool         `json:"is_cancelled"`
	CalendarEventID string       `json:"-"`
	Created         time.Time    `json:"created"`
	Updated         time.Time    `json:"updated"`
}

func (t *Training) EndsAt() time.Time {
	return t.ScheduledAt.Add(time.Duration(t.DurationMinutes) * time.Minute)
}

// HasStarted reports whether the session start time has passed. Started
// sessions are excluded from reminder sweeps even when still inside a
// tolerance window.
func (t *Training) HasStarted(now time.Time) bool {
	return !t.ScheduledAt.After(now)
}
