package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false, ServiceName: "assistant-api"})
	if err != nil {
		t.Fatalf("Setup() error = %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("shutdown() error = %v", err)
	}
}

func TestNewTracerProvider(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tp, err := newTracerProvider(ctx, Config{Enabled: true, ServiceName: "assistant-api", Endpoint: "localhost:4318"})
	if err != nil {
		t.Fatalf("newTracerProvider() error = %v", err)
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := tp.Shutdown(shutdownCtx); err != nil {
		t.Errorf("Shutdown() error = %v", err)
	}
}

func TestMiddleware_ContinuesIncomingTrace(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prop := propagation.TraceContext{}

	r := mux.NewRouter()
	r.Use(otelmuxWith(tp, prop))
	var handlerSpan trace.SpanContext
	r.HandleFunc("/api/v1/respond", func(w http.ResponseWriter, r *http.Request) {
		handlerSpan = trace.SpanContextFromContext(r.Context())
	}).Methods("POST")

	parent, parentSpan := tp.Tracer("client").Start(context.Background(), "client")
	req := httptest.NewRequest("POST", "/api/v1/respond", nil)
	prop.Inject(parent, propagation.HeaderCarrier(req.Header))
	r.ServeHTTP(httptest.NewRecorder(), req)
	parentSpan.End()

	if handlerSpan.TraceID() != parentSpan.SpanContext().TraceID() {
		t.Errorf("trace id = %s, want %s", handlerSpan.TraceID(), parentSpan.SpanContext().TraceID())
	}
	var names []string
	for _, s := range exporter.GetSpans() {
		names = append(names, s.Name)
	}
	found := false
	for _, n := range names {
		if strings.Contains(n, "/api/v1/respond") {
			found = true
		}
	}
	if !found {
		t.Errorf("spans = %v, want a span named after the route", names)
	}
}
