package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-booking/models"
	"gym-booking/store"
)

// fakeNotifier records deliveries and can be told to fail.
type fakeNotifier struct {
	mu   sync.Mutex
	sent []string
	fail bool
}

func (f *fakeNotifier) Send(ctx context.Context, memberID string, message map[string]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("gateway unavailable")
	}
	f.sent = append(f.sent, memberID)
	return nil
}

func (f *fakeNotifier) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

func (f *fakeNotifier) setFail(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail = fail
}

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

const lead24 = models.LeadTime(24 * time.Hour)

func newTestReminderService(notifier Notifier) (*ReminderService, *store.MemStore) {
	ms := store.NewMemStore(testLeads)
	svc := NewReminderService(ms, notifier, testConfig())
	svc.now = func() time.Time { return fixedNow }
	return svc, ms
}

func seedTrainingAt(ctx context.Context, t *testing.T, ms *store.MemStore, at time.Time) *models.Training {
	t.Helper()
	training := &models.Training{
		Title:           "Evening Yoga",
		Type:            models.TrainingGroup,
		ScheduledAt:     at,
		DurationMinutes: 60,
		MaxParticipants: 10,
	}
	require.NoError(t, ms.CreateTraining(ctx, training))
	return training
}

func seedBooking(ctx context.Context, t *testing.T, ms *store.MemStore, memberID, trainingID string) *models.Booking {
	t.Helper()
	booking, err := ms.CreateBooking(ctx, memberID, trainingID)
	require.NoError(t, err)
	return booking
}

func TestSweepSendsOncePerLead(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)

	training := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour))
	alice := seedMember(ms, "Alice")
	booking := seedBooking(ctx, t, ms, alice.ID, training.ID)

	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{alice.ID}, notifier.sentTo())

	// The persisted flag dedups every following tick.
	sent, err = svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Len(t, notifier.sentTo(), 1)

	stored, err := ms.BookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.True(t, stored.Reminders[lead24])
	assert.False(t, stored.Reminders[models.LeadTime(2*time.Hour)])
}

func TestSweepWindowBoundaries(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)
	alice := seedMember(ms, "Alice")

	inside := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour).Add(29*time.Minute))
	outside := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour).Add(31*time.Minute))
	tooEarly := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour).Add(-31*time.Minute))

	seedBooking(ctx, t, ms, alice.ID, inside.ID)
	seedBooking(ctx, t, ms, alice.ID, outside.ID)
	seedBooking(ctx, t, ms, alice.ID, tooEarly.ID)

	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSweepSkipsCancelledAndStarted(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)
	alice := seedMember(ms, "Alice")

	cancelled := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour))
	seedBooking(ctx, t, ms, alice.ID, cancelled.ID)
	require.NoError(t, ms.CancelTraining(ctx, cancelled.ID))

	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	// A short lead whose tolerance window reaches into the past must not
	// remind for sessions that already began.
	leadShort := models.LeadTime(10 * time.Minute)
	started := seedTrainingAt(ctx, t, ms, fixedNow.Add(-5*time.Minute))
	seedBooking(ctx, t, ms, alice.ID, started.ID)

	sent, err = svc.Sweep(ctx, leadShort)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, notifier.sentTo())
}

func TestSweepRetriesFailedDeliveries(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)

	training := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour))
	alice := seedMember(ms, "Alice")
	booking := seedBooking(ctx, t, ms, alice.ID, training.ID)

	notifier.setFail(true)
	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)

	// The flag only flips after a verified send, so the next tick retries.
	stored, err := ms.BookingByID(ctx, booking.ID)
	require.NoError(t, err)
	assert.False(t, stored.Reminders[lead24])

	notifier.setFail(false)
	sent, err = svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
}

func TestSweepRespectsMemberPreferences(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)

	training := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour))

	muted := ms.AddMember(&models.Member{Name: "Muted", IsActive: true, NotificationsEnabled: false})
	inactive := ms.AddMember(&models.Member{Name: "Gone", IsActive: false, NotificationsEnabled: true})
	mutedBooking := seedBooking(ctx, t, ms, muted.ID, training.ID)
	seedBooking(ctx, t, ms, inactive.ID, training.ID)

	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, notifier.sentTo())

	// Skipping leaves the flag unset; re-enabling notifications while the
	// training is still in the window gets the reminder delivered.
	stored, err := ms.BookingByID(ctx, mutedBooking.ID)
	require.NoError(t, err)
	assert.False(t, stored.Reminders[lead24])
}

func TestSweepPicksUpLateBookings(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)

	training := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour))
	alice := seedMember(ms, "Alice")
	bob := seedMember(ms, "Bob")
	seedBooking(ctx, t, ms, alice.ID, training.ID)

	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	// Bob books between ticks and still gets the reminder.
	seedBooking(ctx, t, ms, bob.ID, training.ID)

	sent, err = svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	assert.Equal(t, []string{alice.ID, bob.ID}, notifier.sentTo())
}

func TestLateBookingMissesPassedWindow(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)

	// Booked one hour before start: both lead windows already passed, so
	// neither sweep ever sends for this booking.
	training := seedTrainingAt(ctx, t, ms, fixedNow.Add(time.Hour))
	alice := seedMember(ms, "Alice")
	seedBooking(ctx, t, ms, alice.ID, training.ID)

	for _, lead := range testLeads {
		sent, err := svc.Sweep(ctx, lead)
		require.NoError(t, err)
		assert.Equal(t, 0, sent)
	}
	assert.Empty(t, notifier.sentTo())
}

func TestSweepIgnoresCancelledBookings(t *testing.T) {
	ctx := context.Background()
	notifier := &fakeNotifier{}
	svc, ms := newTestReminderService(notifier)

	training := seedTrainingAt(ctx, t, ms, fixedNow.Add(24*time.Hour))
	alice := seedMember(ms, "Alice")
	booking := seedBooking(ctx, t, ms, alice.ID, training.ID)
	require.NoError(t, ms.SetBookingStatus(ctx, booking.ID, models.BookingCancelled))

	sent, err := svc.Sweep(ctx, lead24)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
}
