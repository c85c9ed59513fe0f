package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/database"
	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/queue"
	"go.uber.org/zap"
)

// DefaultDispatchBatch caps how many due reminders one poll enqueues
const DefaultDispatchBatch = 100

// Enqueuer accepts jobs for asynchronous processing
type Enqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

// Dispatcher polls for reminders that are due and not yet notified and turns each one into a
// reminder_due job. A reminder is marked notified only after its job was enqueued.
type Dispatcher struct {
	source    database.DueReminderSource
	jobs      Enqueuer
	metrics   *metrics.Metrics
	logger    *zap.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

// NewDispatcher creates a dispatcher polling every interval
func NewDispatcher(source database.DueReminderSource, jobs Enqueuer, m *metrics.Metrics, logger *zap.Logger, interval time.Duration) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		source:    source,
		jobs:      jobs,
		metrics:   m,
		logger:    logger,
		interval:  interval,
		batchSize: DefaultDispatchBatch,
		now:       time.Now,
	}
}

// Start dispatches once immediately and then on every tick until ctx is cancelled
func (d *Dispatcher) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		if _, err := d.RunOnce(ctx); err != nil && ctx.Err() == nil {
			d.logger.Error("reminder_dispatch_failed", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce enqueues jobs for the currently due reminders and returns how many were dispatched.
// A reminder whose job cannot be enqueued stays unnotified and is retried on the next poll.
func (d *Dispatcher) RunOnce(ctx context.Context) (int, error) {
	now := d.now()
	due, err := d.source.ListDueUnnotified(ctx, now, d.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	dispatched := 0
	for _, r := range due {
		job := queue.NewReminderDueJob(r, now)
		if err := d.jobs.Enqueue(ctx, job); err != nil {
			d.metrics.IncNotification("enqueue_failed")
			d.logger.Warn("reminder_enqueue_failed",
				zap.String("reminder_id", r.ID.String()),
				zap.Error(err),
			)
			continue
		}
		if err := d.source.MarkNotified(ctx, r.ID, now); err != nil {
			// The job is already queued; the reminder may be dispatched twice.
			d.logger.Error("reminder_mark_notified_failed",
				zap.String("reminder_id", r.ID.String()),
				zap.Error(err),
			)
		}
		d.metrics.IncNotification("enqueued")
		dispatched++
	}

	if dispatched > 0 {
		d.logger.Info("reminders_dispatched",
			zap.Int("count", dispatched),
			zap.Int("due", len(due)),
		)
	}
	return dispatched, nil
}
