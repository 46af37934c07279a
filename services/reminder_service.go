package services

import (
	"context"
	"log"
	"time"

	"gym-booking/config"
	"gym-booking/models"
	"gym-booking/monitoring"
	"gym-booking/store"
)

// ReminderService sends training reminders at each configured lead time.
// One sweep goroutine runs per lead; each tick scans trainings starting
// near now+lead and sends at most one reminder per (booking, lead),
// deduplicated by the booking's persisted sent flag. The flag flips only
// after the gateway accepts the send, so a crash between send and flip
// yields at most one duplicate, never a silent miss.
type ReminderService struct {
	store    store.Store
	notifier Notifier
	cfg      *config.Config
	now      func() time.Time
}

func NewReminderService(st store.Store, notifier Notifier, cfg *config.Config) *ReminderService {
	return &ReminderService{
		store:    st,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Run starts one sweep loop per configured lead time and returns
// immediately. The loops stop when ctx is cancelled.
func (s *ReminderService) Run(ctx context.Context) {
	for _, lead := range s.cfg.LeadTimes {
		go s.runLead(ctx, lead)
	}
}

func (s *ReminderService) runLead(ctx context.Context, lead models.LeadTime) {
	interval := s.cfg.TickInterval(lead)
	log.Printf("reminder sweep for %s lead every %s", lead, interval)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		sent, err := s.Sweep(ctx, lead)
		if err != nil {
			// Tick isolation: a failed sweep is dropped, the next tick
			// re-derives its window from the clock.
			log.Printf("reminder sweep %s failed: %v", lead, err)
			continue
		}
		if sent > 0 {
			log.Printf("reminder sweep %s sent %d reminders", lead, sent)
		}
	}
}

// Sweep runs one pass for a lead time and returns how many reminders were
// sent. Failures for individual bookings are logged and skipped; the
// unset flag makes the next tick retry them while the training is still
// inside the tolerance window.
func (s *ReminderService) Sweep(ctx context.Context, lead models.LeadTime) (int, error) {
	started := s.now()
	defer func() {
		monitoring.ObserveSweepDuration(lead.String(), time.Since(started).Seconds())
	}()

	target := started.Add(lead.Duration())
	from := target.Add(-s.cfg.ToleranceWindow)
	to := target.Add(s.cfg.ToleranceWindow)

	trainings, err := s.store.TrainingsInWindow(ctx, from, to)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, training := range trainings {
		if training.IsCancelled || training.HasStarted(started) {
			continue
		}

		bookings, err := s.store.ConfirmedBookings(ctx, training.ID)
		if err != nil {
			log.Printf("sweep %s: bookings for training %s: %v", lead, training.ID, err)
			continue
		}

		for _, booking := range bookings {
			if booking.Reminders[lead] {
				continue
			}

			member, err := s.store.MemberByID(ctx, booking.MemberID)
			if err != nil {
				log.Printf("sweep %s: member %s for booking %s: %v", lead, booking.MemberID, booking.ID, err)
				continue
			}
			if !member.Notifiable() {
				continue
			}

			sendCtx, cancel := context.WithTimeout(ctx, s.cfg.DeliveryTimeout)
			err = s.notifier.Send(sendCtx, member.ID, reminderMessage(training, lead))
			cancel()
			if err != nil {
				log.Printf("sweep %s: send to member %s failed: %v", lead, member.ID, err)
				monitoring.TrackReminderFailure(lead.String())
				continue
			}

			if err := s.store.SetReminderFlag(ctx, booking.ID, lead); err != nil {
				// The reminder went out but the flag didn't stick; the next
				// tick may send a duplicate, which beats a missed reminder.
				log.Printf("sweep %s: flag booking %s: %v", lead, booking.ID, err)
			}
			monitoring.TrackReminderSent(lead.String())
			sent++
		}
	}
	return sent, nil
}
