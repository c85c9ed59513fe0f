package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/request"
	"go.uber.org/zap"
)

func TestRateLimit_MemoryStore(t *testing.T) {
	t.Parallel()

	l, err := NewLimiter("2-M", nil)
	if err != nil {
		t.Fatalf("NewLimiter() error = %v", err)
	}
	handler := RateLimit(l, zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("POST", "/api/v1/respond", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
		if w.Header().Get("X-RateLimit-Limit") != "2" {
			t.Errorf("X-RateLimit-Limit = %q, want 2", w.Header().Get("X-RateLimit-Limit"))
		}
	}
	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}

	// A different caller has its own budget
	req := httptest.NewRequest("POST", "/api/v1/respond", nil)
	req.RemoteAddr = "10.0.0.10:1234"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("second caller status = %d, want 200", w.Code)
	}
}

func TestNewLimiter_InvalidRate(t *testing.T) {
	t.Parallel()

	if _, err := NewLimiter("lots", nil); err == nil {
		t.Error("NewLimiter(lots) error = nil, want error")
	}
}

func TestRateLimitKey(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = "1.2.3.4:5"
	if got := rateLimitKey(req); got != "ip:1.2.3.4:5" {
		t.Errorf("rateLimitKey(no user) = %q", got)
	}

	anon := req.WithContext(request.WithUser(req.Context(), models.AnonymousUser()))
	if got := rateLimitKey(anon); got != "ip:1.2.3.4:5" {
		t.Errorf("rateLimitKey(anonymous) = %q", got)
	}

	authed := req.WithContext(request.WithUser(req.Context(), &models.User{ID: "alice"}))
	if got := rateLimitKey(authed); got != "user:alice" {
		t.Errorf("rateLimitKey(alice) = %q", got)
	}
}
