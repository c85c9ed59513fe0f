package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMaxRequestSize(t *testing.T) {
	t.Parallel()

	var readErr error
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
	})
	mw := MaxRequestSize(8)(handler)

	w := httptest.NewRecorder()
	mw.ServeHTTP(w, httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("a", 16))))
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("declared oversize status = %d, want 413", w.Code)
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(strings.Repeat("a", 16)))
	req.ContentLength = -1
	mw.ServeHTTP(httptest.NewRecorder(), req)
	var maxErr *http.MaxBytesError
	if !errors.As(readErr, &maxErr) {
		t.Errorf("read error = %v, want MaxBytesError", readErr)
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		method      string
		body        string
		contentType string
		wantStatus  int
	}{
		{name: "GET passes", method: "GET", wantStatus: http.StatusOK},
		{name: "JSON POST", method: "POST", body: "{}", contentType: "application/json; charset=utf-8", wantStatus: http.StatusOK},
		{name: "bodiless PATCH", method: "PATCH", wantStatus: http.StatusOK},
		{name: "missing header", method: "POST", body: "{}", wantStatus: http.StatusBadRequest},
		{name: "form body", method: "POST", body: "a=b", contentType: "application/x-www-form-urlencoded", wantStatus: http.StatusUnsupportedMediaType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
			var body io.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			}
			req := httptest.NewRequest(tt.method, "/api/v1/respond", body)
			if tt.contentType != "" {
				req.Header.Set("Content-Type", tt.contentType)
			}
			w := httptest.NewRecorder()
			ContentType(handler).ServeHTTP(w, req)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestTimeout(t *testing.T) {
	t.Parallel()

	var deadline time.Time
	var ok bool
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok = r.Context().Deadline()
		<-r.Context().Done()
		if !errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			t.Errorf("ctx err = %v", r.Context().Err())
		}
	})

	start := time.Now()
	Timeout(10*time.Millisecond)(handler).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))
	if !ok || deadline.Before(start) {
		t.Errorf("deadline = %v (set %v), want after %v", deadline, ok, start)
	}
}
