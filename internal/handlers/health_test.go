package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/talk-to-my-ai/internal/services/ai"
	"github.com/gorilla/mux"
)

func healthRouter(db, redis Pinger, replies ai.ReplyGenerator) *mux.Router {
	r := mux.NewRouter()
	NewHealthChecker(db, redis, replies).RegisterRoutes(r)
	return r
}

var healthyPing = PingFunc(func(context.Context) error { return nil })

func TestHealthChecker_Health(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		replies ai.ReplyGenerator
		want    StatusResponse
	}{
		{
			name:    "offline",
			replies: ai.NewOfflineProvider(""),
			want:    StatusResponse{Status: "ok", Model: ai.DefaultOpenAIModel, LLM: "offline"},
		},
		{
			name:    "online",
			replies: ai.NewOpenAIProvider(ai.OpenAIConfig{APIKey: "sk", Model: "gpt-4.1"}, nil),
			want:    StatusResponse{Status: "ok", Model: "gpt-4.1", LLM: "online"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			healthRouter(healthyPing, nil, tt.replies).ServeHTTP(w, httptest.NewRequest("GET", "/health", nil))

			var got StatusResponse
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if got != tt.want {
				t.Errorf("health = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHealthChecker_HealthCheck(t *testing.T) {
	t.Parallel()

	failing := PingFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		query      string
		db         Pinger
		redis      Pinger
		wantStatus int
		wantChecks map[string]string
	}{
		{name: "basic mode skips probes", query: "", db: failing, wantStatus: http.StatusOK},
		{
			name: "extended healthy", query: "?mode=extended", db: healthyPing, redis: healthyPing,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "healthy", "redis": "healthy"},
		},
		{
			name: "extended without redis", query: "?mode=extended", db: healthyPing,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"database": "healthy"},
		},
		{
			name: "extended database down", query: "?mode=extended", db: failing, redis: healthyPing,
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"database": "unhealthy: connection refused", "redis": "healthy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := httptest.NewRecorder()
			healthRouter(tt.db, tt.redis, ai.NewOfflineProvider("")).ServeHTTP(w, httptest.NewRequest("GET", "/healthz"+tt.query, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}

			var got HealthResponse
			if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(got.Checks) != len(tt.wantChecks) {
				t.Fatalf("checks = %v, want %v", got.Checks, tt.wantChecks)
			}
			for k, v := range tt.wantChecks {
				if got.Checks[k] != v {
					t.Errorf("checks[%s] = %q, want %q", k, got.Checks[k], v)
				}
			}
		})
	}
}
