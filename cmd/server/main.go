package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/config"
	"github.com/benvon/talk-to-my-ai/internal/database"
	"github.com/benvon/talk-to-my-ai/internal/handlers"
	"github.com/benvon/talk-to-my-ai/internal/logger"
	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/middleware"
	"github.com/benvon/talk-to-my-ai/internal/nlu"
	"github.com/benvon/talk-to-my-ai/internal/services/ai"
	"github.com/benvon/talk-to-my-ai/internal/services/assistant"
	"github.com/benvon/talk-to-my-ai/internal/services/token"
	"github.com/benvon/talk-to-my-ai/internal/telemetry"
	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const serviceName = "talk-to-my-ai-api"

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging, including LLM request tracing")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	debugMode := cfg.ServerDebugMode || *debugFlag
	cfg.ServerDebugMode = debugMode

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, zapLogger); err != nil {
		zapLogger.Error("server_failed", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, zapLogger *zap.Logger) error {
	zapLogger.Info("starting_server",
		zap.Bool("debug_mode", cfg.ServerDebugMode),
		zap.String("server_port", cfg.ServerPort),
		zap.String("ai_model", cfg.AIModel),
		zap.Bool("anonymous_mode", cfg.AnonymousMode()),
		zap.Bool("otel_enabled", cfg.OTELEnabled),
	)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTELEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		// Tracing is best effort
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			zapLogger.Warn("failed_to_shutdown_otel_tracer", zap.Error(err))
		}
	}()

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			zapLogger.Warn("failed_to_close_database_connection", zap.Error(err))
		}
	}()
	zapLogger.Info("connected_to_database", zap.String("dialect", string(db.Dialect())))

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = connectRedis(ctx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				zapLogger.Warn("failed_to_close_redis_connection", zap.Error(err))
			}
		}()
		zapLogger.Info("connected_to_redis")
	}

	limiter, err := middleware.NewLimiter(cfg.RateLimit, redisClient)
	if err != nil {
		return fmt.Errorf("configure rate limit: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.MustNewMetrics(registry)

	vocab, err := loadVocabulary(cfg.VocabularyFile)
	if err != nil {
		return err
	}
	analyzer, err := nlu.NewAnalyzer(vocab)
	if err != nil {
		return fmt.Errorf("build analyzer: %w", err)
	}
	resolver := temporal.Default()

	replies, err := newReplyGenerator(cfg, zapLogger)
	if err != nil {
		return err
	}
	zapLogger.Info("reply_generator_ready",
		zap.String("model", replies.Model()),
		zap.Bool("online", replies.Online()),
	)

	history, err := ai.NewHistoryStore(cfg.HistoryCacheSize, ai.DefaultMaxTurns)
	if err != nil {
		return err
	}

	reminders := database.NewReminderRepository(db)
	pipeline, err := assistant.NewPipeline(assistant.Dependencies{
		Analyzer:  analyzer,
		Resolver:  resolver,
		Replies:   replies,
		Reminders: reminders,
		History:   history,
		Metrics:   m,
		Logger:    zapLogger,
	})
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	// A nil interface keeps the API anonymous; a typed nil would not
	var verifier middleware.TokenVerifier
	if !cfg.AnonymousMode() {
		v, err := token.NewVerifier(cfg.AuthSecret, token.DefaultIssuer)
		if err != nil {
			return fmt.Errorf("configure token verifier: %w", err)
		}
		verifier = v
	}

	var redisPinger handlers.Pinger
	if redisClient != nil {
		redisPinger = pingRedis(redisClient)
	}

	router, err := newRouter(routerDeps{
		Config:    cfg,
		Logger:    zapLogger,
		DB:        db,
		Redis:     redisPinger,
		Limiter:   limiter,
		Verifier:  verifier,
		Pipeline:  pipeline,
		Analyzer:  analyzer,
		Resolver:  resolver,
		Reminders: reminders,
		Replies:   replies,
		Metrics:   m,
		Gatherer:  registry,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      middleware.DefaultRequestTimeout + 15*time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		zapLogger.Info("server_listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	zapLogger.Info("server_shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	zapLogger.Info("server_exited")
	return nil
}

func connectRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return client, nil
}

func loadVocabulary(path string) (*nlu.Vocabulary, error) {
	if path == "" {
		return nil, nil
	}
	vocab, err := nlu.LoadVocabulary(path)
	if err != nil {
		return nil, fmt.Errorf("load vocabulary: %w", err)
	}
	return vocab, nil
}

// newReplyGenerator picks the OpenAI provider when a key is configured and the offline
// fallback otherwise
func newReplyGenerator(cfg *config.Config, zapLogger *zap.Logger) (ai.ReplyGenerator, error) {
	name := "offline"
	if cfg.OpenAIKey != "" {
		name = "openai"
	}
	g, err := ai.NewDefaultRegistry().GetProvider(name, cfg.AIProviderConfig(), zapLogger)
	if err != nil {
		return nil, fmt.Errorf("create %s reply provider: %w", name, err)
	}
	return g, nil
}
