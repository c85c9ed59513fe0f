// Package assistant runs the respond pipeline: language understanding, reply generation and,
// for reminder requests, scheduling.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/benvon/talk-to-my-ai/internal/services/ai"
	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/benvon/talk-to-my-ai/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrEmptyText is returned when the request text is blank after trimming
var ErrEmptyText = errors.New("empty text provided")

// ReminderTimeLayout renders the confirmation time, e.g. "January 02 at 02:00 PM"
const ReminderTimeLayout = "January 02 at 03:04 PM"

// ReminderCreator persists reminders scheduled from a conversation
type ReminderCreator interface {
	Create(ctx context.Context, reminder *models.Reminder) error
}

// Dependencies wires a Pipeline. Analyzer, Resolver, Replies and Reminders are required.
type Dependencies struct {
	Analyzer  *nlu.Analyzer
	Resolver  *temporal.Resolver
	Replies   ai.ReplyGenerator
	Reminders ReminderCreator
	History   *ai.HistoryStore
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Now       func() time.Time
}

// Pipeline answers one user utterance
type Pipeline struct {
	analyzer  *nlu.Analyzer
	resolver  *temporal.Resolver
	replies   ai.ReplyGenerator
	reminders ReminderCreator
	history   *ai.HistoryStore
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
	tracer    trace.Tracer
}

// NewPipeline validates deps and builds a pipeline
func NewPipeline(deps Dependencies) (*Pipeline, error) {
	switch {
	case deps.Analyzer == nil:
		return nil, fmt.Errorf("analyzer is required")
	case deps.Resolver == nil:
		return nil, fmt.Errorf("resolver is required")
	case deps.Replies == nil:
		return nil, fmt.Errorf("reply generator is required")
	case deps.Reminders == nil:
		return nil, fmt.Errorf("reminder store is required")
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Pipeline{
		analyzer:  deps.Analyzer,
		resolver:  deps.Resolver,
		replies:   deps.Replies,
		reminders: deps.Reminders,
		history:   deps.History,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		now:       deps.Now,
		tracer:    otel.Tracer("github.com/benvon/talk-to-my-ai/internal/services/assistant"),
	}, nil
}

// Respond classifies the text, generates a reply and schedules a reminder when the intent asks
// for one. The reference instant for time resolution is read once per call.
func (p *Pipeline) Respond(ctx context.Context, userID string, req models.RespondRequest) (*models.RespondResponse, error) {
	totalStart := time.Now()
	ctx, span := p.tracer.Start(ctx, "assistant.respond")
	defer span.End()

	text := validation.SanitizeText(req.Text)
	if text == "" {
		return nil, ErrEmptyText
	}
	now := p.now()
	recruiter := req.Recruiter()

	history := req.History
	if len(history) == 0 && p.history != nil {
		history = p.history.Recent(userID)
	}

	var (
		analysis   nlu.Result
		nluLatency time.Duration
		reply      ai.Reply
	)
	g, gctx := errgroup.WithContext(ai.WithUserID(ctx, userID))
	g.Go(func() error {
		_, nluSpan := p.tracer.Start(gctx, "nlu.analyze")
		defer nluSpan.End()
		start := time.Now()
		analysis = p.analyzer.Analyze(text)
		nluLatency = time.Since(start)
		nluSpan.SetAttributes(attribute.String("intent", analysis.Intent.Label))
		return nil
	})
	g.Go(func() error {
		llmCtx, llmSpan := p.tracer.Start(gctx, "llm.reply")
		defer llmSpan.End()
		reply = p.replies.GenerateReply(llmCtx, ai.ReplyRequest{
			Text:          text,
			History:       history,
			RecruiterMode: recruiter,
			Task:          req.Task,
		})
		if reply.Err != nil {
			llmSpan.RecordError(reply.Err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	p.metrics.IncIntent(analysis.Intent.Label)
	p.metrics.ObserveStage("nlu", nluLatency)
	p.metrics.ObserveStage("llm", reply.Latency)
	p.metrics.IncLLMReply(replyOutcome(p.replies, reply))

	p.logger.Debug("nlu_analyzed",
		zap.String("user_id", userID),
		zap.String("intent", analysis.Intent.Label),
		zap.Float64("confidence", analysis.Intent.Confidence),
		zap.Int("entity_count", len(analysis.Entities)),
	)
	if reply.Err != nil {
		p.logger.Warn("llm_reply_failed", zap.String("user_id", userID), zap.Error(reply.Err))
	}

	replyText := reply.Text
	var reminderID *string
	if analysis.Intent.Label == nlu.LabelReminder {
		reminder, err := p.scheduleReminder(ctx, userID, text, analysis.Entities, now)
		if err != nil {
			span.SetStatus(codes.Error, "reminder creation failed")
			return nil, err
		}
		id := reminder.ID.String()
		reminderID = &id
		replyText = fmt.Sprintf("✓ Reminder set for %s: %s", reminder.RemindAt.Format(ReminderTimeLayout), reminder.Title)
	}

	toolTrace := make([]string, 0, len(analysis.Trace)+len(reply.Trace)+4)
	toolTrace = append(toolTrace, analysis.Trace...)
	toolTrace = append(toolTrace, reply.Trace...)
	toolTrace = append(toolTrace, "recruiter_mode="+strconv.FormatBool(recruiter))
	if req.Task != "" {
		toolTrace = append(toolTrace, "task="+req.Task)
	}
	toolTrace = append(toolTrace, "entities="+formatEntities(analysis.Entities))
	if reminderID != nil {
		toolTrace = append(toolTrace, "reminder_created="+*reminderID)
	}

	if p.history != nil {
		p.history.Append(userID,
			models.Message{Role: models.RoleUser, Content: text},
			models.Message{Role: models.RoleAssistant, Content: replyText},
		)
	}

	total := time.Since(totalStart)
	p.metrics.ObserveStage("total", total)
	span.SetAttributes(
		attribute.String("intent", analysis.Intent.Label),
		attribute.Bool("reminder_created", reminderID != nil),
	)

	return &models.RespondResponse{
		Reply:      replyText,
		Intent:     models.IntentResult{Label: analysis.Intent.Label, Confidence: analysis.Intent.Confidence},
		Entities:   analysis.Entities,
		ToolTrace:  toolTrace,
		LatencyMS:  models.Latency{NLU: nluLatency.Milliseconds(), LLM: reply.Latency.Milliseconds(), Total: total.Milliseconds()},
		ReminderID: reminderID,
	}, nil
}

// scheduleReminder resolves the time phrase (the extracted time entity, else the whole text)
// and stores a reminder whose title is the text without its time phrases and filler.
func (p *Pipeline) scheduleReminder(ctx context.Context, userID, text string, entities nlu.Entities, now time.Time) (*models.Reminder, error) {
	ctx, span := p.tracer.Start(ctx, "reminder.create")
	defer span.End()

	phrase, ok := entities[nlu.EntityTime]
	if !ok {
		phrase = text
	}
	resolution := p.resolver.Resolve(phrase, now)
	p.metrics.IncTemporalRule(resolution.Rule)

	reminder := &models.Reminder{
		UserID:      userID,
		Title:       nlu.ReminderTitle(text, p.analyzer.Extractor().TimePhrases(text)),
		Description: text,
		RemindAt:    resolution.Time,
	}
	if err := p.reminders.Create(ctx, reminder); err != nil {
		span.RecordError(err)
		p.logger.Error("reminder_create_failed", zap.String("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("failed to schedule reminder: %w", err)
	}
	// keep the caller's location for the confirmation text
	reminder.RemindAt = resolution.Time
	p.metrics.IncReminderCreated("pipeline")

	p.logger.Info("reminder_created",
		zap.String("user_id", userID),
		zap.String("reminder_id", reminder.ID.String()),
		zap.String("rule", resolution.Rule),
		zap.Time("remind_at", resolution.Time),
	)
	return reminder, nil
}

func replyOutcome(g ai.ReplyGenerator, r ai.Reply) string {
	switch {
	case r.Err != nil:
		return "error"
	case !g.Online():
		return "offline"
	default:
		return "model"
	}
}

// formatEntities renders entities as comma-separated key=value pairs in key order
func formatEntities(e nlu.Entities) string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e[k])
	}
	return strings.Join(parts, ",")
}
