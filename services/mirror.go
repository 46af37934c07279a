package services

import (
	"context"
	"log"
	"time"

	"gym-booking/models"
	"gym-booking/monitoring"
)

// MirrorSink receives booking-system events and reflects them into an
// external system. Sinks are best effort: an error is logged and counted,
// the booking flow never waits on or fails because of a mirror.
type MirrorSink interface {
	Name() string
	OnTrainingCreated(ctx context.Context, t *models.Training) error
	OnTrainingCancelled(ctx context.Context, t *models.Training) error
	OnBookingCreated(ctx context.Context, b *models.Booking, m *models.Member, t *models.Training) error
	OnBookingCancelled(ctx context.Context, b *models.Booking, m *models.Member, t *models.Training) error
}

// Mirrors fans events out to every configured sink on a background
// goroutine, bounded by the mirror timeout.
type Mirrors struct {
	sinks   []MirrorSink
	timeout time.Duration
}

func NewMirrors(timeout time.Duration, sinks ...MirrorSink) *Mirrors {
	return &Mirrors{sinks: sinks, timeout: timeout}
}

func (m *Mirrors) TrainingCreated(t *models.Training) {
	m.dispatch("training_created", func(ctx context.Context, sink MirrorSink) error {
		return sink.OnTrainingCreated(ctx, t)
	})
}

func (m *Mirrors) TrainingCancelled(t *models.Training) {
	m.dispatch("training_cancelled", func(ctx context.Context, sink MirrorSink) error {
		return sink.OnTrainingCancelled(ctx, t)
	})
}

func (m *Mirrors) BookingCreated(b *models.Booking, member *models.Member, t *models.Training) {
	m.dispatch("booking_created", func(ctx context.Context, sink MirrorSink) error {
		return sink.OnBookingCreated(ctx, b, member, t)
	})
}

func (m *Mirrors) BookingCancelled(b *models.Booking, member *models.Member, t *models.Training) {
	m.dispatch("booking_cancelled", func(ctx context.Context, sink MirrorSink) error {
		return sink.OnBookingCancelled(ctx, b, member, t)
	})
}

func (m *Mirrors) dispatch(event string, fn func(ctx context.Context, sink MirrorSink) error) {
	if m == nil || len(m.sinks) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		for _, sink := range m.sinks {
			if err := fn(ctx, sink); err != nil {
				log.Printf("mirror %s: %s failed: %v", sink.Name(), event, err)
				monitoring.TrackMirrorFailure(sink.Name(), event)
			}
		}
	}()
}
