package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gym-booking/models"
)

// MemStore is an in-memory Store used by the service tests. It honors the
// same contract as PBStore: transactions are serialized by a single mutex,
// so two concurrent RunInTransaction bodies never interleave. Writes are
// applied immediately (no rollback); tests don't rely on aborted writes.
type MemStore struct {
	mu     sync.Mutex
	locked bool // true inside a transaction view

	trainings map[string]*models.Training
	bookings  map[string]*models.Booking
	members   map[string]*models.Member
	leads     []models.LeadTime
	seq       int
}

func NewMemStore(leads []models.LeadTime) *MemStore {
	return &MemStore{
		trainings: map[string]*models.Training{},
		bookings:  map[string]*models.Booking{},
		members:   map[string]*models.Member{},
		leads:     leads,
	}
}

func (s *MemStore) lock() func() {
	if s.locked {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *MemStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s_%d", prefix, s.seq)
}

// AddMember seeds a member; test helper.
func (s *MemStore) AddMember(m *models.Member) *models.Member {
	defer s.lock()()
	if m.ID == "" {
		m.ID = s.nextID("member")
	}
	cp := *m
	s.members[cp.ID] = &cp
	return &cp
}

func (s *MemStore) CreateTraining(ctx context.Context, t *models.Training) error {
	defer s.lock()()
	if t.ID == "" {
		t.ID = s.nextID("training")
	}
	t.Created = time.Now().UTC()
	t.Updated = t.Created
	cp := *t
	s.trainings[t.ID] = &cp
	return nil
}

func (s *MemStore) TrainingByID(ctx context.Context, id string) (*models.Training, error) {
	defer s.lock()()
	t, ok := s.trainings[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *MemStore) CancelTraining(ctx context.Context, id string) error {
	defer s.lock()()
	t, ok := s.trainings[id]
	if !ok {
		return ErrNotFound
	}
	t.IsCancelled = true
	t.Updated = time.Now().UTC()
	return nil
}

func (s *MemStore) SetTrainingCalendarEventID(ctx context.Context, id, eventID string) error {
	defer s.lock()()
	t, ok := s.trainings[id]
	if !ok {
		return ErrNotFound
	}
	t.CalendarEventID = eventID
	return nil
}

func (s *MemStore) TrainingsInWindow(ctx context.Context, from, to time.Time) ([]*models.Training, error) {
	defer s.lock()()
	var out []*models.Training
	for _, t := range s.trainings {
		if t.IsCancelled {
			continue
		}
		if t.ScheduledAt.Before(from) || t.ScheduledAt.After(to) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sortByStart(out)
	return out, nil
}

func (s *MemStore) UpcomingTrainings(ctx context.Context, now time.Time, limit int) ([]*models.Training, error) {
	defer s.lock()()
	var out []*models.Training
	for _, t := range s.trainings {
		if t.IsCancelled || !t.ScheduledAt.After(now) {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	sortByStart(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemStore) CreateBooking(ctx context.Context, memberID, trainingID string) (*models.Booking, error) {
	defer s.lock()()
	for _, b := range s.bookings {
		if b.MemberID == memberID && b.TrainingID == trainingID && b.Status == models.BookingConfirmed {
			return nil, fmt.Errorf("unique constraint: confirmed booking exists for (%s, %s)", memberID, trainingID)
		}
	}
	reminders := make(map[models.LeadTime]bool, len(s.leads))
	for _, lead := range s.leads {
		reminders[lead] = false
	}
	b := &models.Booking{
		ID:         s.nextID("booking"),
		MemberID:   memberID,
		TrainingID: trainingID,
		Status:     models.BookingConfirmed,
		Reminders:  reminders,
		Created:    time.Now().UTC(),
		Updated:    time.Now().UTC(),
	}
	s.bookings[b.ID] = b
	cp := copyBooking(b)
	return cp, nil
}

func (s *MemStore) BookingByID(ctx context.Context, id string) (*models.Booking, error) {
	defer s.lock()()
	b, ok := s.bookings[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyBooking(b), nil
}

func (s *MemStore) ConfirmedBooking(ctx context.Context, memberID, trainingID string) (*models.Booking, error) {
	defer s.lock()()
	for _, b := range s.bookings {
		if b.MemberID == memberID && b.TrainingID == trainingID && b.Status == models.BookingConfirmed {
			return copyBooking(b), nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) SetBookingStatus(ctx context.Context, id string, status models.BookingStatus) error {
	defer s.lock()()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Status = status
	b.Updated = time.Now().UTC()
	return nil
}

func (s *MemStore) SetReminderFlag(ctx context.Context, id string, lead models.LeadTime) error {
	defer s.lock()()
	b, ok := s.bookings[id]
	if !ok {
		return ErrNotFound
	}
	b.Reminders[lead] = true
	b.Updated = time.Now().UTC()
	return nil
}

func (s *MemStore) CountConfirmed(ctx context.Context, trainingID string) (int, error) {
	defer s.lock()()
	count := 0
	for _, b := range s.bookings {
		if b.TrainingID == trainingID && b.Status == models.BookingConfirmed {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) ConfirmedBookings(ctx context.Context, trainingID string) ([]*models.Booking, error) {
	defer s.lock()()
	var out []*models.Booking
	for _, b := range s.bookings {
		if b.TrainingID == trainingID && b.Status == models.BookingConfirmed {
			out = append(out, copyBooking(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) MemberBookings(ctx context.Context, memberID string, after time.Time) ([]*models.Booking, error) {
	defer s.lock()()
	var out []*models.Booking
	for _, b := range s.bookings {
		if b.MemberID != memberID || b.Status != models.BookingConfirmed {
			continue
		}
		t, ok := s.trainings[b.TrainingID]
		if !ok || t.IsCancelled || !t.ScheduledAt.After(after) {
			continue
		}
		out = append(out, copyBooking(b))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) MemberByID(ctx context.Context, id string) (*models.Member, error) {
	defer s.lock()()
	m, ok := s.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *MemStore) CountActiveMembers(ctx context.Context) (int, error) {
	defer s.lock()()
	count := 0
	for _, m := range s.members {
		if m.IsActive {
			count++
		}
	}
	return count, nil
}

func (s *MemStore) RunInTransaction(fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &MemStore{
		locked:    true,
		trainings: s.trainings,
		bookings:  s.bookings,
		members:   s.members,
		leads:     s.leads,
		seq:       s.seq,
	}
	err := fn(tx)
	s.seq = tx.seq
	return err
}

func sortByStart(ts []*models.Training) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ScheduledAt.Before(ts[j].ScheduledAt) })
}

func copyBooking(b *models.Booking) *models.Booking {
	cp := *b
	cp.Reminders = make(map[models.LeadTime]bool, len(b.Reminders))
	for k, v := range b.Reminders {
		cp.Reminders[k] = v
	}
	return &cp
}
