package models

import (
	"fmt"
	"time"
)

type BookingStatus string

const (
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingAttended  BookingStatus = "attended"
	BookingNoShow    BookingStatus = "no_show"
)

// LeadTime is a configured duration before a training's start at which a
// reminder fires. Each lead time owns one sent-flag column on the booking.
type LeadTime time.Duration

func (l LeadTime) Duration() time.Duration { return time.Duration(l) }

func (l LeadTime) Hours() int { return int(time.Duration(l).Hours()) }

func (l LeadTime) String() string { return fmt.Sprintf("%dh", l.Hours()) }

// Field returns the booking column holding this lead time's sent flag,
// e.g. "reminder_24h_sent". Adding a lead time to the config therefore
// requires a matching migration.
func (l LeadTime) Field() string {
	return fmt.Sprintf("reminder_%dh_sent", l.Hours())
}

// Booking is one member's claim on one seat of one training. The per-lead
// sent flags flip false→true exactly once, only after a verified send.
type Booking struct {
	ID         string            `json:"id"`
	MemberID   string            `json:"member_id"`
	TrainingID string            `json:"training_id"`
	Status     BookingStatus     `json:"status"`
	Reminders  map[LeadTime]bool `json:"-"`
	Created    time.Time         `json:"created"`
	Updated    time.Time         `json:"updated"`
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
// confirmed ⇄ nothing: cancelled, attended and no_show are terminal; a
// cancelled booking may be "cancelled" again (idempotent no-op upstream).
func (b *Booking) CanTransitionTo(next BookingStatus) bool {
	switch next {
	case BookingCancelled:
		return b.Status == BookingConfirmed || b.Status == BookingCancelled
	case BookingAttended, BookingNoShow:
		return b.Status == BookingConfirmed
	default:
		return false
	}
}
