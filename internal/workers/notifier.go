package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/notify"
	"github.com/benvon/talk-to-my-ai/internal/queue"
	"go.uber.org/zap"
)

// ErrUnsupportedJob is returned for jobs this worker cannot handle. Such jobs are dead lettered.
var ErrUnsupportedJob = errors.New("unsupported job")

// ReminderNotifier consumes reminder_due jobs and delivers their notifications
type ReminderNotifier struct {
	notifier notify.Notifier
	jobs     Enqueuer // For re-enqueueing failed jobs with an updated retry count
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderNotifier creates a consumer delivering through notifier. jobs may be nil, in which
// case failed deliveries go straight to the DLQ.
func NewReminderNotifier(notifier notify.Notifier, jobs Enqueuer, m *metrics.Metrics, logger *zap.Logger) *ReminderNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderNotifier{
		notifier: notifier,
		jobs:     jobs,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// Run processes messages until ctx is cancelled or the delivery channel closes
func (n *ReminderNotifier) Run(ctx context.Context, msgs <-chan *queue.Message, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			n.logger.Warn("queue_consume_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("message channel closed")
			}
			if err := n.ProcessJob(ctx, msg); err != nil {
				n.logger.Warn("reminder_job_failed", zap.Error(err))
			}
		}
	}
}

// ProcessJob delivers one reminder_due job and settles its message
func (n *ReminderNotifier) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()
	if job == nil || job.Type != queue.JobTypeReminderDue || job.Reminder == nil {
		if nackErr := msg.Nack(false); nackErr != nil {
			n.logger.Warn("queue_nack_failed", zap.Error(nackErr))
		}
		n.metrics.IncNotification("rejected")
		if job == nil {
			return ErrUnsupportedJob
		}
		return fmt.Errorf("%w: %s", ErrUnsupportedJob, job.Type)
	}

	err := n.notifier.Notify(ctx, notify.Notification{
		ReminderID:  job.Reminder.ReminderID,
		UserID:      job.UserID,
		Title:       job.Reminder.Title,
		Description: job.Reminder.Description,
		RemindAt:    job.Reminder.RemindAt,
		SentAt:      n.now(),
	})
	if err != nil {
		return n.handleJobError(ctx, msg, job, err)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack job: %w", ackErr)
	}
	n.metrics.IncNotification("sent")
	return nil
}

// handleJobError re-enqueues a copy of the job with its retry count bumped, or dead letters it
// once retries are exhausted
func (n *ReminderNotifier) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, cause error) error {
	if job.CanRetry() && n.jobs != nil {
		retry := *job
		retry.IncrementRetry()
		err := n.jobs.Enqueue(ctx, &retry)
		if err == nil {
			if ackErr := msg.Ack(); ackErr != nil {
				n.logger.Warn("queue_ack_failed", zap.Error(ackErr))
			}
			n.metrics.IncNotification("retried")
			return fmt.Errorf("notification failed (attempt %d/%d, will retry): %w", retry.RetryCount, job.MaxRetries, cause)
		}
		n.logger.Warn("reminder_requeue_failed",
			zap.String("job_id", job.ID.String()),
			zap.Error(err),
		)
	}

	if nackErr := msg.Nack(false); nackErr != nil {
		n.logger.Warn("queue_nack_failed", zap.Error(nackErr))
	}
	n.metrics.IncNotification("failed")
	return fmt.Errorf("notification failed (sent to DLQ): %w", cause)
}
