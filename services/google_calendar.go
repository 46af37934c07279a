package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	"gym-booking/models"
	"gym-booking/store"
)

// CalendarSink mirrors trainings into a Google Calendar. The created event
// id is written back to the training so a later cancellation can find it.
// Bookings are not mirrored here, only the sessions themselves.
type CalendarSink struct {
	svc        *calendar.Service
	calendarID string
	store      store.Store
}

func NewCalendarSink(ctx context.Context, credentialsJSON []byte, calendarID string, st store.Store) (*CalendarSink, error) {
	svc, err := calendar.NewService(ctx,
		option.WithCredentialsJSON(credentialsJSON),
		option.WithScopes(calendar.CalendarScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	return &CalendarSink{svc: svc, calendarID: calendarID, store: st}, nil
}

func (s *CalendarSink) Name() string { return "google_calendar" }

func (s *CalendarSink) OnTrainingCreated(ctx context.Context, t *models.Training) error {
	event := &calendar.Event{
		Summary:     t.Title,
		Description: t.Description,
		Location:    t.Location,
		Start: &calendar.EventDateTime{
			DateTime: t.ScheduledAt.UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: t.EndsAt().UTC().Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}

	created, err := s.svc.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}

	if err := s.store.SetTrainingCalendarEventID(ctx, t.ID, created.Id); err != nil {
		// The event exists but the back reference is lost; cancellation
		// will no longer remove it from the calendar.
		log.Printf("calendar event %s created but not linked to training %s: %v", created.Id, t.ID, err)
	}
	return nil
}

func (s *CalendarSink) OnTrainingCancelled(ctx context.Context, t *models.Training) error {
	if t.CalendarEventID == "" {
		return nil
	}
	if err := s.svc.Events.Delete(s.calendarID, t.CalendarEventID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete event %s: %w", t.CalendarEventID, err)
	}
	return nil
}

func (s *CalendarSink) OnBookingCreated(ctx context.Context, b *models.Booking, m *models.Member, t *models.Training) error {
	return nil
}

func (s *CalendarSink) OnBookingCancelled(ctx context.Context, b *models.Booking, m *models.Member, t *models.Training) error {
	return nil
}
