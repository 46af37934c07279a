package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pocketbase/dbx"
	"github.com/pocketbase/pocketbase/core"
	"github.com/pocketbase/pocketbase/tools/types"

	"gym-booking/models"
)

// Collection names. Members live in the framework's auth collection.
const (
	CollectionTrainings = "trainings"
	CollectionBookings  = "bookings"
	CollectionMembers   = "users"
)

// PBStore implements Store on top of a PocketBase app. The lead time list
// decides which reminder flag columns are read into Booking.Reminders.
type PBStore struct {
	app   core.App
	leads []models.LeadTime
}

func NewPBStore(app core.App, leads []models.LeadTime) *PBStore {
	return &PBStore{app: app, leads: leads}
}

func (s *PBStore) CreateTraining(ctx context.Context, t *models.Training) error {
	collection, err := s.app.FindCollectionByNameOrId(CollectionTrainings)
	if err != nil {
		return err
	}

	record := core.NewRecord(collection)
	record.Set("title", t.Title)
	record.Set("description", t.Description)
	record.Set("training_type", string(t.Type))
	record.Set("scheduled_at", t.ScheduledAt.UTC())
	record.Set("duration_minutes", t.DurationMinutes)
	record.Set("max_participants", t.MaxParticipants)
	record.Set("location", t.Location)
	record.Set("is_cancelled", false)

	if err := s.app.Save(record); err != nil {
		return err
	}

	t.ID = record.Id
	t.Created = record.GetDateTime("created").Time()
	t.Updated = record.GetDateTime("updated").Time()
	return nil
}

func (s *PBStore) TrainingByID(ctx context.Context, id string) (*models.Training, error) {
	record, err := s.app.FindRecordById(CollectionTrainings, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return trainingFromRecord(record), nil
}

func (s *PBStore) CancelTraining(ctx context.Context, id string) error {
	record, err := s.app.FindRecordById(CollectionTrainings, id)
	if err != nil {
		return mapNotFound(err)
	}
	record.Set("is_cancelled", true)
	return s.app.Save(record)
}

func (s *PBStore) SetTrainingCalendarEventID(ctx context.Context, id, eventID string) error {
	record, err := s.app.FindRecordById(CollectionTrainings, id)
	if err != nil {
		return mapNotFound(err)
	}
	record.Set("calendar_event_id", eventID)
	return s.app.Save(record)
}

func (s *PBStore) TrainingsInWindow(ctx context.Context, from, to time.Time) ([]*models.Training, error) {
	records, err := s.app.FindAllRecords(CollectionTrainings,
		dbx.NewExp("scheduled_at >= {:from} AND scheduled_at <= {:to}", dbx.Params{
			"from": from.UTC().Format(types.DefaultDateLayout),
			"to":   to.UTC().Format(types.DefaultDateLayout),
		}),
		dbx.HashExp{"is_cancelled": false},
	)
	if err != nil {
		return nil, err
	}

	trainings := make([]*models.Training, 0, len(records))
	for _, record := range records {
		trainings = append(trainings, trainingFromRecord(record))
	}
	return trainings, nil
}

func (s *PBStore) UpcomingTrainings(ctx context.Context, now time.Time, limit int) ([]*models.Training, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionTrainings,
		"scheduled_at > {:now} && is_cancelled = false",
		"scheduled_at",
		limit,
		0,
		dbx.Params{"now": now.UTC().Format(types.DefaultDateLayout)},
	)
	if err != nil {
		return nil, err
	}

	trainings := make([]*models.Training, 0, len(records))
	for _, record := range records {
		trainings = append(trainings, trainingFromRecord(record))
	}
	return trainings, nil
}

func (s *PBStore) CreateBooking(ctx context.Context, memberID, trainingID string) (*models.Booking, error) {
	collection, err := s.app.FindCollectionByNameOrId(CollectionBookings)
	if err != nil {
		return nil, err
	}

	record := core.NewRecord(collection)
	record.Set("member", memberID)
	record.Set("training", trainingID)
	record.Set("status", string(models.BookingConfirmed))
	for _, lead := range s.leads {
		record.Set(lead.Field(), false)
	}

	// The partial unique index on (member, training) WHERE
	// status = 'confirmed' backstops duplicate confirmed bookings here.
	if err := s.app.Save(record); err != nil {
		return nil, err
	}
	return s.bookingFromRecord(record), nil
}

func (s *PBStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	record, err := s.app.FindRecordById(CollectionBookings, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.bookingFromRecord(record), nil
}

func (s *PBStore) ConfirmedBooking(ctx context.Context, memberID, trainingID string) (*models.Booking, error) {
	record, err := s.app.FindFirstRecordByFilter(
		CollectionBookings,
		"member = {:member} && training = {:training} && status = 'confirmed'",
		dbx.Params{"member": memberID, "training": trainingID},
	)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return s.bookingFromRecord(record), nil
}

func (s *PBStore) SetBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	record, err := s.app.FindRecordById(CollectionBookings, id)
	if err != nil {
		return mapNotFound(err)
	}
	record.Set("status", string(status))
	return s.app.Save(record)
}

func (s *PBStore) SetReminderFlag(ctx context.Context, id string, lead models.LeadTime) error {
	record, err := s.app.FindRecordById(CollectionBookings, id)
	if err != nil {
		return mapNotFound(err)
	}
	record.Set(lead.Field(), true)
	return s.app.Save(record)
}

func (s *PBStore) CountConfirmed(ctx context.Context, trainingID string) (int, error) {
	total, err := s.app.CountRecords(CollectionBookings, dbx.HashExp{
		"training": trainingID,
		"status":   string(models.BookingConfirmed),
	})
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *PBStore) ConfirmedBookings(ctx context.Context, trainingID string) ([]*models.Booking, error) {
	records, err := s.app.FindAllRecords(CollectionBookings, dbx.HashExp{
		"training": trainingID,
		"status":   string(models.BookingConfirmed),
	})
	if err != nil {
		return nil, err
	}

	bookings := make([]*models.Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, s.bookingFromRecord(record))
	}
	return bookings, nil
}

func (s *PBStore) MemberBookings(ctx context.Context, memberID string, after time.Time) ([]*models.Booking, error) {
	records, err := s.app.FindRecordsByFilter(
		CollectionBookings,
		"member = {:member} && status = 'confirmed' && training.scheduled_at > {:after} && training.is_cancelled = false",
		"-created",
		0,
		0,
		dbx.Params{
			"member": memberID,
			"after":  after.UTC().Format(types.DefaultDateLayout),
		},
	)
	if err != nil {
		return nil, err
	}

	bookings := make([]*models.Booking, 0, len(records))
	for _, record := range records {
		bookings = append(bookings, s.bookingFromRecord(record))
	}
	return bookings, nil
}

func (s *PBStore) MemberByID(ctx context.Context, id string) (*models.Member, error) {
	record, err := s.app.FindRecordById(CollectionMembers, id)
	if err != nil {
		return nil, mapNotFound(err)
	}
	return memberFromRecord(record), nil
}

func (s *PBStore) CountActiveMembers(ctx context.Context) (int, error) {
	total, err := s.app.CountRecords(CollectionMembers, dbx.HashExp{"is_active": true})
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

func (s *PBStore) RunInTransaction(fn func(tx Store) error) error {
	return s.app.RunInTransaction(func(txApp core.App) error {
		return fn(&PBStore{app: txApp, leads: s.leads})
	})
}

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func trainingFromRecord(record *core.Record) *models.Training {
	return &models.Training{
		ID:              record.Id,
		Title:           record.GetString("title"),
		Description:     record.GetString("description"),
		Type:            models.TrainingType(record.GetString("training_type")),
		ScheduledAt:     record.GetDateTime("scheduled_at").Time(),
		DurationMinutes: record.GetInt("duration_minutes"),
		MaxParticipants: record.GetInt("max_participants"),
		Location:        record.GetString("location"),
		IsCancelled:     record.GetBool("is_cancelled"),
		CalendarEventID: record.GetString("calendar_event_id"),
		Created:         record.GetDateTime("created").Time(),
		Updated:         record.GetDateTime("updated").Time(),
	}
}

func (s *PBStore) bookingFromRecord(record *core.Record) *models.Booking {
	reminders := make(map[models.LeadTime]bool, len(s.leads))
	for _, lead := range s.leads {
		reminders[lead] = record.GetBool(lead.Field())
	}
	return &models.Booking{
		ID:         record.Id,
		MemberID:   record.GetString("member"),
		TrainingID: record.GetString("training"),
		Status:     models.BookingStatus(record.GetString("status")),
		Reminders:  reminders,
		Created:    record.GetDateTime("created").Time(),
		Updated:    record.GetDateTime("updated").Time(),
	}
}

func memberFromRecord(record *core.Record) *models.Member {
	return &models.Member{
		ID:                   record.Id,
		Name:                 record.GetString("name"),
		Phone:                record.GetString("phone"),
		IsAdmin:              record.GetBool("is_admin"),
		IsActive:             record.GetBool("is_active"),
		NotificationsEnabled: record.GetBool("notifications_enabled"),
		Created:              record.GetDateTime("created").Time(),
	}
}
