package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"gym-booking/config"
	"gym-booking/models"
	"gym-booking/monitoring"
	"gym-booking/store"
)

const defaultScheduleLimit = 10

// ScheduleEntry is a training enriched with its remaining capacity. This
// is the shape the schedule endpoint serves and the schedule cache stores.
type ScheduleEntry struct {
	models.Training
	AvailableSpots int `json:"available_spots"`
}

// Participant is one confirmed attendee of a training, for the coach view.
type Participant struct {
	BookingID string `json:"booking_id"`
	MemberID  string `json:"member_id"`
	Name      string `json:"name"`
	Phone     string `json:"phone"`
	Status    string `json:"status"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	ActiveMembers     int `json:"active_members"`
	UpcomingTrainings int `json:"upcoming_trainings"`
	ConfirmedBookings int `json:"confirmed_bookings"`
}

// BookingService owns the booking lifecycle: creating trainings, claiming
// and releasing spots, attendance marking and the derived read views.
// The capacity check and the booking insert always run inside one store
// transaction so two racing members can't both take the last spot.
type BookingService struct {
	store    store.Store
	mirrors  *Mirrors
	notifier Notifier
	cache    *ScheduleCache
	cfg      *config.Config
	now      func() time.Time
}

func NewBookingService(st store.Store, mirrors *Mirrors, notifier Notifier, cache *ScheduleCache, cfg *config.Config) *BookingService {
	return &BookingService{
		store:    st,
		mirrors:  mirrors,
		notifier: notifier,
		cache:    cache,
		cfg:      cfg,
		now:      time.Now,
	}
}

// CreateTraining persists a new training. A non-positive capacity falls
// back to the configured default.
func (s *BookingService) CreateTraining(ctx context.Context, t *models.Training) (*models.Training, error) {
	if t.MaxParticipants <= 0 {
		t.MaxParticipants = s.cfg.CapacityDefault
	}
	if t.Type == "" {
		t.Type = models.TrainingGroup
	}
	if err := s.store.CreateTraining(ctx, t); err != nil {
		return nil, err
	}

	s.cache.Invalidate(ctx)
	s.mirrors.TrainingCreated(t)
	return t, nil
}

// Book claims a spot on a training for a member. The existence, duplicate
// and capacity checks plus the insert run in one transaction; the partial
// unique index on confirmed (member, training) pairs backstops the
// duplicate check under concurrency.
func (s *BookingService) Book(ctx context.Context, memberID, trainingID string) (*models.Booking, error) {
	var (
		booking  *models.Booking
		training *models.Training
	)

	err := s.store.RunInTransaction(func(tx store.Store) error {
		var err error
		training, err = tx.TrainingByID(ctx, trainingID)
		if errors.Is(err, store.ErrNotFound) {
			return ErrTrainingNotFound
		}
		if err != nil {
			return err
		}
		if training.IsCancelled {
			return ErrTrainingCancelled
		}

		if _, err := tx.ConfirmedBooking(ctx, memberID, trainingID); err == nil {
			return ErrAlreadyBooked
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		count, err := tx.CountConfirmed(ctx, trainingID)
		if err != nil {
			return err
		}
		if count >= training.MaxParticipants {
			return ErrTrainingFull
		}

		booking, err = tx.CreateBooking(ctx, memberID, trainingID)
		return err
	})
	if err != nil {
		monitoring.TrackBooking("book", "rejected")
		return nil, err
	}

	monitoring.TrackBooking("book", "ok")
	s.cache.Invalidate(ctx)

	if member, merr := s.store.MemberByID(ctx, memberID); merr == nil {
		s.mirrors.BookingCreated(booking, member, training)
		s.confirmToMember(ctx, member, training)
	} else {
		log.Printf("booking %s created but member %s lookup failed: %v", booking.ID, memberID, merr)
	}

	return booking, nil
}

// Booking fetches one booking, mapping the store's not-found error into
// the service taxonomy. Handlers use it for ownership checks.
func (s *BookingService) Booking(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	return booking, err
}

// Cancel releases a booking's spot. Cancelling an already cancelled
// booking is a no-op; attended and no_show bookings can't be cancelled.
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (*models.Booking, error) {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	if booking.Status == models.BookingCancelled {
		return booking, nil
	}
	if !booking.CanTransitionTo(models.BookingCancelled) {
		return nil, ErrInvalidTransition
	}

	if err := s.store.SetBookingStatus(ctx, bookingID, models.BookingCancelled); err != nil {
		monitoring.TrackBooking("cancel", "error")
		return nil, err
	}
	booking.Status = models.BookingCancelled

	monitoring.TrackBooking("cancel", "ok")
	s.cache.Invalidate(ctx)

	training, terr := s.store.TrainingByID(ctx, booking.TrainingID)
	member, merr := s.store.MemberByID(ctx, booking.MemberID)
	if terr == nil && merr == nil {
		s.mirrors.BookingCancelled(booking, member, training)
	}

	return booking, nil
}

// CancelTraining cancels a whole session and notifies every confirmed
// participant. Bookings keep their confirmed status; the cancelled
// training simply stops appearing in schedules and reminder sweeps.
// Cancelling an already cancelled training is a no-op.
func (s *BookingService) CancelTraining(ctx context.Context, trainingID string) error {
	training, err := s.store.TrainingByID(ctx, trainingID)
	if errors.Is(err, store.ErrNotFound) {
		return ErrTrainingNotFound
	}
	if err != nil {
		return err
	}
	if training.IsCancelled {
		return nil
	}

	// Snapshot participants before flipping the flag; afterwards the
	// training no longer shows up in confirmed-booking views.
	bookings, err := s.store.ConfirmedBookings(ctx, trainingID)
	if err != nil {
		return err
	}

	if err := s.store.CancelTraining(ctx, trainingID); err != nil {
		return err
	}
	training.IsCancelled = true

	s.cache.Invalidate(ctx)
	s.mirrors.TrainingCancelled(training)

	for _, booking := range bookings {
		member, err := s.store.MemberByID(ctx, booking.MemberID)
		if err != nil {
			log.Printf("cancel notice for booking %s: member lookup failed: %v", booking.ID, err)
			continue
		}
		if !member.Notifiable() {
			continue
		}
		s.deliver(ctx, member.ID, trainingCancelledMessage(training))
	}
	return nil
}

// MarkAttendance records whether a confirmed booking's member showed up.
func (s *BookingService) MarkAttendance(ctx context.Context, bookingID string, attended bool) (*models.Booking, error) {
	booking, err := s.store.BookingByID(ctx, bookingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, err
	}

	next := models.BookingAttended
	if !attended {
		next = models.BookingNoShow
	}
	if !booking.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	if err := s.store.SetBookingStatus(ctx, bookingID, next); err != nil {
		return nil, err
	}
	booking.Status = next
	monitoring.TrackBooking("attendance", "ok")
	return booking, nil
}

// AvailableSpots returns the remaining capacity of a training, never
// negative even if the count ever overshoots the cap.
func (s *BookingService) AvailableSpots(ctx context.Context, t *models.Training) (int, error) {
	count, err := s.store.CountConfirmed(ctx, t.ID)
	if err != nil {
		return 0, err
	}
	spots := t.MaxParticipants - count
	if spots < 0 {
		spots = 0
	}
	return spots, nil
}

// CanBook reports whether a training currently accepts new bookings.
func (s *BookingService) CanBook(ctx context.Context, t *models.Training) (bool, error) {
	if t.IsCancelled {
		return false, nil
	}
	spots, err := s.AvailableSpots(ctx, t)
	if err != nil {
		return false, err
	}
	return spots > 0, nil
}

// UpcomingSchedule returns future trainings with their remaining spots,
// served from the cache when it's warm.
func (s *BookingService) UpcomingSchedule(ctx context.Context) ([]ScheduleEntry, error) {
	if payload, ok := s.cache.Get(ctx); ok {
		var entries []ScheduleEntry
		if err := json.Unmarshal(payload, &entries); err == nil {
			return entries, nil
		}
		// Corrupt payload, fall through to the store and overwrite it.
	}

	trainings, err := s.store.UpcomingTrainings(ctx, s.now(), defaultScheduleLimit)
	if err != nil {
		return nil, err
	}

	entries := make([]ScheduleEntry, 0, len(trainings))
	for _, t := range trainings {
		spots, err := s.AvailableSpots(ctx, t)
		if err != nil {
			return nil, err
		}
		entries = append(entries, ScheduleEntry{Training: *t, AvailableSpots: spots})
	}
	monitoring.SetUpcomingTrainings(len(entries))

	if payload, err := json.Marshal(entries); err == nil {
		s.cache.Set(ctx, payload)
	}
	return entries, nil
}

// MemberSchedule returns the member's confirmed bookings on future,
// non-cancelled trainings, each paired with its training.
func (s *BookingService) MemberSchedule(ctx context.Context, memberID string) ([]ScheduleEntry, []*models.Booking, error) {
	bookings, err := s.store.MemberBookings(ctx, memberID, s.now())
	if err != nil {
		return nil, nil, err
	}

	entries := make([]ScheduleEntry, 0, len(bookings))
	for _, b := range bookings {
		t, err := s.store.TrainingByID(ctx, b.TrainingID)
		if err != nil {
			return nil, nil, err
		}
		spots, err := s.AvailableSpots(ctx, t)
		if err != nil {
			return nil, nil, err
		}
		entries = append(entries, ScheduleEntry{Training: *t, AvailableSpots: spots})
	}
	return entries, bookings, nil
}

// Participants lists a training's confirmed attendees for the coach view.
func (s *BookingService) Participants(ctx context.Context, trainingID string) ([]Participant, error) {
	if _, err := s.store.TrainingByID(ctx, trainingID); errors.Is(err, store.ErrNotFound) {
		return nil, ErrTrainingNotFound
	} else if err != nil {
		return nil, err
	}

	bookings, err := s.store.ConfirmedBookings(ctx, trainingID)
	if err != nil {
		return nil, err
	}

	participants := make([]Participant, 0, len(bookings))
	for _, b := range bookings {
		member, err := s.store.MemberByID(ctx, b.MemberID)
		if err != nil {
			log.Printf("participants of %s: member %s lookup failed: %v", trainingID, b.MemberID, err)
			continue
		}
		participants = append(participants, Participant{
			BookingID: b.ID,
			MemberID:  member.ID,
			Name:      member.Name,
			Phone:     member.Phone,
			Status:    string(b.Status),
		})
	}
	return participants, nil
}

// Statistics aggregates the admin dashboard counters.
func (s *BookingService) Statistics(ctx context.Context) (*Stats, error) {
	members, err := s.store.CountActiveMembers(ctx)
	if err != nil {
		return nil, err
	}

	trainings, err := s.store.UpcomingTrainings(ctx, s.now(), 0)
	if err != nil {
		return nil, err
	}

	confirmed := 0
	for _, t := range trainings {
		count, err := s.store.CountConfirmed(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		confirmed += count
	}

	return &Stats{
		ActiveMembers:     members,
		UpcomingTrainings: len(trainings),
		ConfirmedBookings: confirmed,
	}, nil
}

func (s *BookingService) confirmToMember(ctx context.Context, member *models.Member, training *models.Training) {
	if !member.Notifiable() {
		return
	}
	s.deliver(ctx, member.ID, bookingConfirmedMessage(training))
}

// deliver sends one best-effort notification under the delivery timeout.
func (s *BookingService) deliver(ctx context.Context, memberID string, message map[string]any) {
	if s.notifier == nil {
		return
	}
	sendCtx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
	defer cancel()
	if err := s.notifier.Send(sendCtx, memberID, message); err != nil {
		log.Printf("notify member %s: %v", memberID, err)
	}
}
