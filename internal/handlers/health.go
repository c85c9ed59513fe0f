package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/services/ai"
	"github.com/gorilla/mux"
)

// healthCheckTimeout bounds each dependency probe
const healthCheckTimeout = 5 * time.Second

// Pinger is a dependency that can be probed
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

// PingContext calls f
func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthChecker handles health check requests
type HealthChecker struct {
	db      Pinger
	redis   Pinger
	replies ai.ReplyGenerator
}

// NewHealthChecker creates a new health checker. redis may be nil when it is not configured.
func NewHealthChecker(db Pinger, redis Pinger, replies ai.ReplyGenerator) *HealthChecker {
	return &HealthChecker{db: db, redis: redis, replies: replies}
}

// RegisterRoutes registers /health and /healthz on the root router
func (h *HealthChecker) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.Health).Methods("GET")
	r.HandleFunc("/healthz", h.HealthCheck).Methods("GET")
}

// StatusResponse is the /health body
type StatusResponse struct {
	Status string `json:"status"`
	Model  string `json:"model"`
	LLM    string `json:"llm"`
}

// Health reports the configured model and whether replies come from it or the offline fallback
func (h *HealthChecker) Health(w http.ResponseWriter, r *http.Request) {
	llm := "offline"
	if h.replies.Online() {
		llm = "online"
	}
	writeHealth(w, http.StatusOK, StatusResponse{Status: "ok", Model: h.replies.Model(), LLM: llm})
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles /healthz; mode=extended also probes the database and Redis
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if r.URL.Query().Get("mode") != "extended" {
		writeHealth(w, http.StatusOK, response)
		return
	}

	probes := map[string]Pinger{"database": h.db}
	if h.redis != nil {
		probes["redis"] = h.redis
	}
	response.Checks = make(map[string]string, len(probes))
	for name, p := range probes {
		if err := probe(r.Context(), p); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + err.Error()
			continue
		}
		response.Checks[name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, response)
}

func probe(ctx context.Context, p Pinger) error {
	ctx, cancel := context.WithTimeout(ctx, healthCheckTimeout)
	defer cancel()
	return p.PingContext(ctx)
}

func writeHealth(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
