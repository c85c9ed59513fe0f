// Package metrics exposes the Prometheus collectors shared by the server and the worker.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "assistant"

// Metrics groups the assistant's collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	intents          *prometheus.CounterVec
	temporalRules    *prometheus.CounterVec
	stageDuration    *prometheus.HistogramVec
	remindersCreated *prometheus.CounterVec
	llmReplies       *prometheus.CounterVec
	notifications    *prometheus.CounterVec
}

// MustNewMetrics constructs the collectors and registers them with reg. Collectors that are
// already registered are reused, so repeated construction against one registry is safe.
func MustNewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		intents: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nlu",
			Name:      "intents_total",
			Help:      "Classified intents by label.",
		}, []string{"label"})),
		temporalRules: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "temporal",
			Name:      "rules_total",
			Help:      "Resolved time phrases by the rule that matched.",
		}, []string{"rule"})),
		stageDuration: register(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each respond pipeline stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"})),
		remindersCreated: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_created_total",
			Help:      "Reminders created, by source.",
		}, []string{"source"})),
		llmReplies: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "replies_total",
			Help:      "Generated replies by outcome.",
		}, []string{"outcome"})),
		notifications: register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "worker",
			Name:      "notifications_total",
			Help:      "Due reminder notifications by status.",
		}, []string{"status"})),
	}
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}

// Handler serves the metrics gathered by g in the Prometheus text format
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// IncIntent counts one classification
func (m *Metrics) IncIntent(label string) {
	if m == nil {
		return
	}
	m.intents.WithLabelValues(label).Inc()
}

// IncTemporalRule counts one resolved phrase
func (m *Metrics) IncTemporalRule(rule string) {
	if m == nil {
		return
	}
	m.temporalRules.WithLabelValues(rule).Inc()
}

// ObserveStage records how long a pipeline stage took
func (m *Metrics) ObserveStage(stage string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// IncReminderCreated counts a created reminder. source is "pipeline" or "api".
func (m *Metrics) IncReminderCreated(source string) {
	if m == nil {
		return
	}
	m.remindersCreated.WithLabelValues(source).Inc()
}

// IncLLMReply counts a reply by outcome: "model", "offline" or "error"
func (m *Metrics) IncLLMReply(outcome string) {
	if m == nil {
		return
	}
	m.llmReplies.WithLabelValues(outcome).Inc()
}

// IncNotification counts a dispatched or failed due-reminder notification
func (m *Metrics) IncNotification(status string) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(status).Inc()
}
