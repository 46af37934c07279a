package models

import "time"

// Member mirrors the auth record of a person who books trainings.
type Member struct {
	ID                   string    `json:"id"`
	Name                 string    `json:"name"`
	Phone                string    `json:"phone,omitempty"`
	IsAdmin              bool      `json:"is_admin"`
	IsActive             bool      `json:"is_active"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	Created              time.Time `json:"created"`
}

// Notifiable reports whether the reminder sweep may message this member.
func (m *Member) Notifiable() bool {
	return m.IsActive && m.NotificationsEnabled
}
