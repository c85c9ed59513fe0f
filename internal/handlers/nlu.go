package handlers

import (
	"net/http"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/gorilla/mux"
)

// AnalyzeRequest is the body of POST /api/v1/nlu/analyze
type AnalyzeRequest struct {
	Text string `json:"text" validate:"required,max=4000"`
}

// ResolveRequest is the body of POST /api/v1/nlu/resolve. Now defaults to the server clock.
type ResolveRequest struct {
	Phrase string     `json:"phrase" validate:"required,max=500"`
	Now    *time.Time `json:"now,omitempty"`
}

// NLUHandler exposes the language-understanding core directly
type NLUHandler struct {
	analyzer *nlu.Analyzer
	resolver *temporal.Resolver
	metrics  *metrics.Metrics
	clock    Clock
}

// NewNLUHandler creates a new NLU handler
func NewNLUHandler(analyzer *nlu.Analyzer, resolver *temporal.Resolver, m *metrics.Metrics, clock Clock) *NLUHandler {
	return &NLUHandler{analyzer: analyzer, resolver: resolver, metrics: m, clock: clock.orDefault()}
}

// RegisterRoutes registers NLU routes on a /api/v1/nlu router
func (h *NLUHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/analyze", h.Analyze).Methods("POST")
	r.HandleFunc("/resolve", h.Resolve).Methods("POST")
}

// Analyze classifies and extracts entities from text
func (h *NLUHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	result := h.analyzer.Analyze(req.Text)
	h.metrics.IncIntent(result.Intent.Label)
	respondJSON(w, http.StatusOK, result)
}

// Resolve turns a time phrase into an absolute timestamp
func (h *NLUHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	var req ResolveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	now := h.clock()
	if req.Now != nil {
		now = *req.Now
	}
	res := h.resolver.Resolve(req.Phrase, now)
	h.metrics.IncTemporalRule(res.Rule)
	respondJSON(w, http.StatusOK, res)
}
