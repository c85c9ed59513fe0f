package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/benvon/talk-to-my-ai/internal/config"
	"github.com/benvon/talk-to-my-ai/internal/database"
	"github.com/benvon/talk-to-my-ai/internal/handlers"
	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/middleware"
	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/benvon/talk-to-my-ai/internal/services/ai"
	"github.com/benvon/talk-to-my-ai/internal/telemetry"
	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"go.uber.org/zap"
)

// routerDeps is everything the HTTP surface needs. Redis, Limiter and Verifier are optional.
type routerDeps struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        handlers.Pinger
	Redis     handlers.Pinger
	Limiter   *limiter.Limiter
	Verifier  middleware.TokenVerifier
	Pipeline  handlers.Responder
	Analyzer  *nlu.Analyzer
	Resolver  *temporal.Resolver
	Reminders database.ReminderStore
	Replies   ai.ReplyGenerator
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
}

// newRouter builds the API handler. CORS wraps the router so preflight requests are answered
// before route matching.
func newRouter(d routerDeps) (http.Handler, error) {
	r := mux.NewRouter()

	// mux runs middleware in registration order, outermost first
	if d.Config.OTELEnabled {
		r.Use(telemetry.Middleware(serviceName))
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.SecurityHeaders(d.Config.EnableHSTS))
	r.Use(middleware.MaxRequestSize(middleware.DefaultMaxRequestSize))
	r.Use(middleware.ContentType)
	r.Use(middleware.Timeout(middleware.DefaultRequestTimeout))
	r.Use(middleware.ErrorHandler(d.Logger))
	r.Use(middleware.Audit(d.Logger))
	r.Use(middleware.Logging(d.Logger))

	// Public routes, registered before the /api/v1 subrouter so they win the match
	handlers.NewHealthChecker(d.DB, d.Redis, d.Replies).RegisterRoutes(r)
	r.Handle("/metrics", metrics.Handler(d.Gatherer)).Methods("GET")

	openAPIHandler, err := handlers.NewOpenAPIHandler()
	if err != nil {
		return nil, fmt.Errorf("load openapi document: %w", err)
	}
	openAPIHandler.RegisterRoutes(r)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(d.Verifier, d.Logger))
	if d.Limiter != nil {
		api.Use(middleware.RateLimit(d.Limiter, d.Logger))
	}

	handlers.NewRespondHandler(d.Pipeline, d.Logger).RegisterRoutes(api)
	handlers.NewNLUHandler(d.Analyzer, d.Resolver, d.Metrics, nil).RegisterRoutes(api.PathPrefix("/nlu").Subrouter())
	handlers.NewReminderHandler(d.Reminders, d.Resolver, d.Metrics, nil, d.Logger).RegisterRoutes(api.PathPrefix("/reminders").Subrouter())
	handlers.NewAuthHandler().RegisterRoutes(api.PathPrefix("/auth").Subrouter())

	return middleware.CORS(d.Config.AllowedOrigins)(r), nil
}

func pingRedis(client *redis.Client) handlers.PingFunc {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
