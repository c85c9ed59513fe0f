package telemetry

import (
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// otelmuxWith is Middleware with an explicit provider so tests avoid the globals
func otelmuxWith(tp trace.TracerProvider, prop propagation.TextMapPropagator) mux.MiddlewareFunc {
	return otelmux.Middleware("assistant-api", otelmux.WithTracerProvider(tp), otelmux.WithPropagators(prop))
}
