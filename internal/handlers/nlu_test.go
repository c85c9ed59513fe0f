package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/gorilla/mux"
)

var fixedNow = time.Date(2024, time.January, 1, 8, 0, 0, 0, time.UTC)

func newNLURouter() *mux.Router {
	h := NewNLUHandler(nlu.MustNewAnalyzer(nil), temporal.Default(), nil, func() time.Time { return fixedNow })
	r := mux.NewRouter()
	h.RegisterRoutes(r.PathPrefix("/api/v1/nlu").Subrouter())
	return r
}

func postJSON(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestNLUHandler_Analyze(t *testing.T) {
	t.Parallel()

	w := postJSON(newNLURouter(), "/api/v1/nlu/analyze", `{"text":"open slack tomorrow"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}

	var got nlu.Result
	if err := json.Unmarshal(decodeEnvelope(t, w).Data, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Intent.Label != nlu.LabelOpenApp {
		t.Errorf("label = %q, want open_app", got.Intent.Label)
	}
	if got.Entities[nlu.EntityApp] != "slack" || got.Entities[nlu.EntityTime] != "tomorrow" {
		t.Errorf("entities = %v", got.Entities)
	}
}

func TestNLUHandler_Resolve(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantTime time.Time
		wantRule string
	}{
		{
			name:     "server clock",
			body:     `{"phrase":"tomorrow at 3pm"}`,
			wantTime: time.Date(2024, time.January, 2, 15, 0, 0, 0, time.UTC),
			wantRule: temporal.RuleTomorrow,
		},
		{
			name:     "explicit now",
			body:     `{"phrase":"in 2 hours","now":"2024-06-01T10:00:00Z"}`,
			wantTime: time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC),
			wantRule: temporal.RuleRelativeOffset,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			w := postJSON(newNLURouter(), "/api/v1/nlu/resolve", tt.body)
			if w.Code != http.StatusOK {
				t.Fatalf("status = %d: %s", w.Code, w.Body.String())
			}
			var got temporal.Resolution
			if err := json.Unmarshal(decodeEnvelope(t, w).Data, &got); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !got.Time.Equal(tt.wantTime) || got.Rule != tt.wantRule {
				t.Errorf("got (%v, %s), want (%v, %s)", got.Time, got.Rule, tt.wantTime, tt.wantRule)
			}
		})
	}
}

func TestNLUHandler_RejectsEmpty(t *testing.T) {
	t.Parallel()

	r := newNLURouter()
	if w := postJSON(r, "/api/v1/nlu/analyze", `{"text":""}`); w.Code != http.StatusBadRequest {
		t.Errorf("analyze status = %d, want 400", w.Code)
	}
	if w := postJSON(r, "/api/v1/nlu/resolve", `{}`); w.Code != http.StatusBadRequest {
		t.Errorf("resolve status = %d, want 400", w.Code)
	}
}
