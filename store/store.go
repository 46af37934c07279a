// Package store persists trainings, bookings and members. The Store
// interface is the only surface the services touch; PBStore backs it with
// PocketBase collections and MemStore backs it in memory for tests.
package store

import (
	"context"
	"errors"
	"time"

	"gym-booking/models"
)

var ErrNotFound = errors.New("record not found")

type Store interface {
	// Trainings
	CreateTraining(ctx context.Context, t *models.Training) error
	TrainingByID(ctx context.Context, id string) (*models.Training, error)
	CancelTraining(ctx context.Context, id string) error
	SetTrainingCalendarEventID(ctx context.Context, id, eventID string) error
	// TrainingsInWindow returns non-cancelled trainings with
	// from <= scheduled_at <= to.
	TrainingsInWindow(ctx context.Context, from, to time.Time) ([]*models.Training, error)
	UpcomingTrainings(ctx context.Context, now time.Time, limit int) ([]*models.Training, error)

	// Bookings
	CreateBooking(ctx context.Context, memberID, trainingID string) (*models.Booking, error)
	BookingByID(ctx context.Context, id string) (*models.Booking, error)
	// ConfirmedBooking returns the confirmed booking for the
	// (member, training) pair, or ErrNotFound.
	ConfirmedBooking(ctx context.Context, memberID, trainingID string) (*models.Booking, error)
	SetBookingStatus(ctx context.Context, id string, status models.BookingStatus) error
	// SetReminderFlag flips the lead time's sent flag to true. Flags are
	// never reset by any store operation.
	SetReminderFlag(ctx context.Context, id string, lead models.LeadTime) error
	CountConfirmed(ctx context.Context, trainingID string) (int, error)
	ConfirmedBookings(ctx context.Context, trainingID string) ([]*models.Booking, error)
	MemberBookings(ctx context.Context, memberID string, after time.Time) ([]*models.Booking, error)

	// Members
	MemberByID(ctx context.Context, id string) (*models.Member, error)
	CountActiveMembers(ctx context.Context) (int, error)

	// RunInTransaction executes fn against a transactional view of the
	// store. Concurrent transactions touching the same rows are
	// serialized; fn returning an error rolls the transaction back.
	RunInTransaction(fn func(tx Store) error) error
}
