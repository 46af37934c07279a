package services

import (
	"context"
	"fmt"

	pubnub "github.com/pubnub/go"

	"gym-booking/models"
)

// Notifier is the delivery gateway: one shot, one recipient, no internal
// retry. The caller decides the retry policy (the reminder sweep simply
// waits for its next tick).
type Notifier interface {
	Send(ctx context.Context, memberID string, message map[string]any) error
}

// PubNubNotifier publishes to the member's personal channel. Request
// timeouts are configured on the SDK config at construction time
// (NonSubscribeRequestTimeout), so a hung publish can't stall a sweep.
type PubNubNotifier struct {
	pn *pubnub.PubNub
}

func NewPubNubNotifier(pn *pubnub.PubNub) *PubNubNotifier {
	return &PubNubNotifier{pn: pn}
}

func (n *PubNubNotifier) Send(ctx context.Context, memberID string, message map[string]any) error {
	channel := fmt.Sprintf("member-%s", memberID)
	_, _, err := n.pn.Publish().
		Channel(channel).
		Message(message).
		Execute()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func reminderMessage(t *models.Training, lead models.LeadTime) map[string]any {
	return map[string]any{
		"type":         "reminder",
		"training_id":  t.ID,
		"title":        t.Title,
		"scheduled_at": t.ScheduledAt.UTC().Format("2006-01-02 15:04"),
		"hours_before": lead.Hours(),
		"text": fmt.Sprintf("Reminder: %s starts at %s (about %dh from now)",
			t.Title, t.ScheduledAt.UTC().Format("02.01.2006 15:04"), lead.Hours()),
	}
}

func bookingConfirmedMessage(t *models.Training) map[string]any {
	return map[string]any{
		"type":         "booking_confirmed",
		"training_id":  t.ID,
		"title":        t.Title,
		"scheduled_at": t.ScheduledAt.UTC().Format("2006-01-02 15:04"),
		"text": fmt.Sprintf("You are booked for %s on %s",
			t.Title, t.ScheduledAt.UTC().Format("02.01.2006 15:04")),
	}
}

func trainingCancelledMessage(t *models.Training) map[string]any {
	return map[string]any{
		"type":         "training_cancelled",
		"training_id":  t.ID,
		"title":        t.Title,
		"scheduled_at": t.ScheduledAt.UTC().Format("2006-01-02 15:04"),
		"text": fmt.Sprintf("%s on %s was cancelled, check the schedule for alternatives",
			t.Title, t.ScheduledAt.UTC().Format("02.01.2006 15:04")),
	}
}
