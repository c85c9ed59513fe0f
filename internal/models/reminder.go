package models

import (
	"time"

	"github.com/google/uuid"
)

// Reminder is a user's scheduled reminder
type Reminder struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	RemindAt    time.Time  `json:"reminder_time"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	NotifiedAt  *time.Time `json:"notified_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// IsDue reports whether the reminder should fire at now
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.Completed && !r.RemindAt.After(now)
}
