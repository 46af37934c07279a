package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gym-booking/models"
)

var memLeads = []models.LeadTime{models.LeadTime(24 * time.Hour)}

func TestMemStoreUniqueConfirmedBooking(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore(memLeads)

	training := &models.Training{Title: "HIIT", ScheduledAt: time.Now().Add(time.Hour), MaxParticipants: 5}
	require.NoError(t, ms.CreateTraining(ctx, training))
	member := ms.AddMember(&models.Member{Name: "Alice", IsActive: true})

	booking, err := ms.CreateBooking(ctx, member.ID, training.ID)
	require.NoError(t, err)

	_, err = ms.CreateBooking(ctx, member.ID, training.ID)
	assert.Error(t, err)

	// Cancelled rows don't block a new confirmed booking.
	require.NoError(t, ms.SetBookingStatus(ctx, booking.ID, models.BookingCancelled))
	_, err = ms.CreateBooking(ctx, member.ID, training.ID)
	assert.NoError(t, err)
}

func TestMemStoreTrainingsInWindowBoundsInclusive(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore(memLeads)
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	for _, offset := range []time.Duration{-time.Minute, 0, 30 * time.Minute, time.Hour, time.Hour + time.Minute} {
		require.NoError(t, ms.CreateTraining(ctx, &models.Training{
			Title:       "Session",
			ScheduledAt: base.Add(offset),
		}))
	}

	trainings, err := ms.TrainingsInWindow(ctx, base, base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, trainings, 3)
	assert.Equal(t, base, trainings[0].ScheduledAt)
	assert.Equal(t, base.Add(time.Hour), trainings[2].ScheduledAt)
}

func TestMemStoreTransactionRollsNothingButReportsError(t *testing.T) {
	ctx := context.Background()
	ms := NewMemStore(memLeads)

	err := ms.RunInTransaction(func(tx Store) error {
		require.NoError(t, tx.CreateTraining(ctx, &models.Training{Title: "Tx"}))
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	// Nested reads inside the transaction see its writes.
	err = ms.RunInTransaction(func(tx Store) error {
		training := &models.Training{Title: "Visible"}
		if err := tx.CreateTraining(ctx, training); err != nil {
			return err
		}
		_, err := tx.TrainingByID(ctx, training.ID)
		return err
	})
	assert.NoError(t, err)
}
