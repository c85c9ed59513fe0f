package database

import (
	"context"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/google/uuid"
)

// ReminderStore is the reminder persistence used by the HTTP handlers and the respond pipeline.
// This interface enables better testability by allowing fake implementations.
type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.Reminder, error)
	ListByUser(ctx context.Context, userID string, includeCompleted bool) ([]*models.Reminder, error)
	ListDue(ctx context.Context, userID string, now time.Time) ([]*models.Reminder, error)
	Complete(ctx context.Context, id uuid.UUID, userID string, at time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID, userID string) (bool, error)
}

// DueReminderSource is the subset of reminder operations the due-reminder dispatcher needs
type DueReminderSource interface {
	ListDueUnnotified(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error)
	MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Ensure concrete types implement the interfaces
var (
	_ ReminderStore     = (*ReminderRepository)(nil)
	_ DueReminderSource = (*ReminderRepository)(nil)
)
