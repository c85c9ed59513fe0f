package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/google/uuid"
)

// ErrReminderNotFound is returned when no reminder matches the id and owner
var ErrReminderNotFound = errors.New("reminder not found")

const reminderColumns = `id, user_id, title, description, remind_at, completed, completed_at, notified_at, created_at`

// ReminderRepository handles reminder database operations
type ReminderRepository struct {
	db *DB
}

// NewReminderRepository creates a new reminder repository
func NewReminderRepository(db *DB) *ReminderRepository {
	return &ReminderRepository{db: db}
}

// storedTime normalises times so both backends compare them consistently
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: storedTime(*t), Valid: true}
}

// Create inserts a reminder. A nil ID is replaced with a new one and CreatedAt is set.
func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	if reminder.ID == uuid.Nil {
		reminder.ID = uuid.New()
	}
	reminder.CreatedAt = storedTime(time.Now())
	reminder.RemindAt = storedTime(reminder.RemindAt)

	query := `
		INSERT INTO reminders (` + reminderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, r.db.rebind(query),
		reminder.ID,
		reminder.UserID,
		reminder.Title,
		reminder.Description,
		reminder.RemindAt,
		reminder.Completed,
		nullTime(reminder.CompletedAt),
		nullTime(reminder.NotifiedAt),
		reminder.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// GetByID retrieves a reminder owned by userID
func (r *ReminderRepository) GetByID(ctx context.Context, id uuid.UUID, userID string) (*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE id = $1 AND user_id = $2`
	reminder, err := scanReminder(r.db.QueryRowContext(ctx, r.db.rebind(query), id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReminderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}
	return reminder, nil
}

// ListByUser returns a user's reminders ordered by reminder time, earliest first
func (r *ReminderRepository) ListByUser(ctx context.Context, userID string, includeCompleted bool) ([]*models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1`
	if !includeCompleted {
		query += ` AND completed = FALSE`
	}
	query += ` ORDER BY remind_at ASC`
	return r.query(ctx, query, userID)
}

// ListDue returns a user's incomplete reminders whose time is at or before now
func (r *ReminderRepository) ListDue(ctx context.Context, userID string, now time.Time) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + ` FROM reminders
		WHERE user_id = $1 AND completed = FALSE AND remind_at <= $2
		ORDER BY remind_at ASC
	`
	return r.query(ctx, query, userID, storedTime(now))
}

// ListDueUnnotified returns due reminders of every user that have not been dispatched yet
func (r *ReminderRepository) ListDueUnnotified(ctx context.Context, now time.Time, limit int) ([]*models.Reminder, error) {
	query := `
		SELECT ` + reminderColumns + ` FROM reminders
		WHERE completed = FALSE AND notified_at IS NULL AND remind_at <= $1
		ORDER BY remind_at ASC
		LIMIT $2
	`
	return r.query(ctx, query, storedTime(now), limit)
}

// Complete marks a reminder completed. It reports false when no reminder matched.
func (r *ReminderRepository) Complete(ctx context.Context, id uuid.UUID, userID string, at time.Time) (bool, error) {
	query := `UPDATE reminders SET completed = TRUE, completed_at = $3 WHERE id = $1 AND user_id = $2`
	return r.exec(ctx, "complete", query, id, userID, storedTime(at))
}

// Delete removes a reminder. It reports false when no reminder matched.
func (r *ReminderRepository) Delete(ctx context.Context, id uuid.UUID, userID string) (bool, error) {
	query := `DELETE FROM reminders WHERE id = $1 AND user_id = $2`
	return r.exec(ctx, "delete", query, id, userID)
}

// MarkNotified records that a due notification was dispatched
func (r *ReminderRepository) MarkNotified(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE reminders SET notified_at = $2 WHERE id = $1`
	ok, err := r.exec(ctx, "mark notified", query, id, storedTime(at))
	if err != nil {
		return err
	}
	if !ok {
		return ErrReminderNotFound
	}
	return nil
}

func (r *ReminderRepository) exec(ctx context.Context, op, query string, args ...any) (bool, error) {
	result, err := r.db.ExecContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to %s reminder: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

func (r *ReminderRepository) query(ctx context.Context, query string, args ...any) ([]*models.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, r.db.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders: %w", err)
	}
	defer func() { _ = rows.Close() }()

	reminders := []*models.Reminder{}
	for rows.Next() {
		reminder, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating reminders: %w", err)
	}
	return reminders, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReminder(row rowScanner) (*models.Reminder, error) {
	reminder := &models.Reminder{}
	var completedAt, notifiedAt sql.NullTime
	err := row.Scan(
		&reminder.ID,
		&reminder.UserID,
		&reminder.Title,
		&reminder.Description,
		&reminder.RemindAt,
		&reminder.Completed,
		&completedAt,
		&notifiedAt,
		&reminder.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		reminder.CompletedAt = &completedAt.Time
	}
	if notifiedAt.Valid {
		reminder.NotifiedAt = &notifiedAt.Time
	}
	return reminder, nil
}
