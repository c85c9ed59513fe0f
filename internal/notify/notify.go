// Package notify delivers due reminder notifications to connected clients.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChannelPrefix namespaces the per-user pub/sub channels
const ChannelPrefix = "reminders:"

// Notification is the payload published when a reminder comes due
type Notification struct {
	ReminderID  uuid.UUID `json:"reminder_id"`
	UserID      string    `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	RemindAt    time.Time `json:"reminder_time"`
	SentAt      time.Time `json:"sent_at"`
}

// Notifier delivers a notification to its user
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// Channel returns the pub/sub channel for userID
func Channel(userID string) string {
	return ChannelPrefix + userID
}

// Publisher is the subset of the redis client used for notifications
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisNotifier publishes notifications on the user's redis channel
type RedisNotifier struct {
	client Publisher
	logger *zap.Logger
}

// NewRedisNotifier creates a notifier publishing through client
func NewRedisNotifier(client Publisher, log *zap.Logger) *RedisNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisNotifier{client: client, logger: log}
}

// Notify publishes n as JSON. A channel with no subscribers is not an error.
func (r *RedisNotifier) Notify(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}
	receivers, err := r.client.Publish(ctx, Channel(n.UserID), payload).Result()
	if err != nil {
		return fmt.Errorf("failed to publish notification: %w", err)
	}
	r.logger.Debug("reminder_notification_published",
		zap.String("reminder_id", n.ReminderID.String()),
		zap.String("user_id", logger.SanitizeUserID(n.UserID)),
		zap.Int64("receivers", receivers),
	)
	return nil
}

// LogNotifier writes notifications to the log. It is used when no redis is configured.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogNotifier{logger: log}
}

// Notify logs n and never fails
func (l *LogNotifier) Notify(_ context.Context, n Notification) error {
	l.logger.Info("reminder_due",
		zap.String("reminder_id", n.ReminderID.String()),
		zap.String("user_id", logger.SanitizeUserID(n.UserID)),
		zap.String("title", logger.SanitizeUtterance(n.Title)),
		zap.Time("reminder_time", n.RemindAt),
	)
	return nil
}

// Ensure concrete types implement the interfaces
var (
	_ Notifier  = (*RedisNotifier)(nil)
	_ Notifier  = (*LogNotifier)(nil)
	_ Publisher = (*redis.Client)(nil)
)
