package queue

import (
	"time"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeReminderDue delivers a notification for a reminder whose time has come
	JobTypeReminderDue JobType = "reminder_due"
)

const (
	// DefaultMaxRetries is how many times a failed job is redelivered before it is dead lettered
	DefaultMaxRetries = 3
	// DefaultReminderTTL bounds how long after its reminder time a notification is still worth sending
	DefaultReminderTTL = 24 * time.Hour
)

// ReminderPayload is the reminder snapshot carried by a reminder_due job
type ReminderPayload struct {
	ReminderID  uuid.UUID `json:"reminder_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	RemindAt    time.Time `json:"reminder_time"`
}

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID         `json:"id"`
	Type       JobType           `json:"type"`
	UserID     string            `json:"user_id"`
	Reminder   *ReminderPayload  `json:"reminder,omitempty"`
	NotBefore  *time.Time        `json:"not_before,omitempty"` // Job should not be processed before this time
	NotAfter   *time.Time        `json:"not_after,omitempty"`  // Job expires after this time
	Metadata   map[string]string `json:"metadata,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	RetryCount int               `json:"retry_count"`
	MaxRetries int               `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, userID string, now time.Time) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		UserID:     userID,
		Metadata:   make(map[string]string),
		CreatedAt:  now,
		MaxRetries: DefaultMaxRetries,
	}
}

// NewReminderDueJob builds the notification job for a due reminder. The job expires
// DefaultReminderTTL after the reminder time.
func NewReminderDueJob(r *models.Reminder, now time.Time) *Job {
	job := NewJob(JobTypeReminderDue, r.UserID, now)
	job.Reminder = &ReminderPayload{
		ReminderID:  r.ID,
		Title:       r.Title,
		Description: r.Description,
		RemindAt:    r.RemindAt,
	}
	notAfter := r.RemindAt.Add(DefaultReminderTTL)
	if notAfter.Before(now) {
		notAfter = now.Add(time.Hour)
	}
	job.NotAfter = &notAfter
	return job
}

// ShouldProcess checks if the job should be processed at now
func (j *Job) ShouldProcess(now time.Time) bool {
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	return !j.IsExpired(now)
}

// IsExpired checks if the job has passed its NotAfter time
func (j *Job) IsExpired(now time.Time) bool {
	return j.NotAfter != nil && now.After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
