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
	"github.com/benvon/talk-to-my-ai/internal/logger"
	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/notify"
	"github.com/benvon/talk-to-my-ai/internal/queue"
	"github.com/benvon/talk-to-my-ai/internal/telemetry"
	"github.com/benvon/talk-to-my-ai/internal/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const serviceName = "talk-to-my-ai-worker"

const (
	maxConnectAttempts  = 10
	initialConnectDelay = 2 * time.Second
	maxConnectDelay     = 30 * time.Second
)

func main() {
	debugFlag := flag.Bool("debug", false, "Enable debug logging")
	metricsAddr := flag.String("metrics-addr", ":9091", "Address for the worker /metrics endpoint; empty disables it")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.RequireQueue(); err != nil {
		log.Fatalf("Invalid worker configuration: %v", err)
	}
	debugMode := cfg.WorkerDebugMode || *debugFlag

	zapLogger, err := logger.NewProductionLogger(serviceName, debugMode)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync(zapLogger) }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *metricsAddr, zapLogger); err != nil {
		zapLogger.Error("worker_failed", zap.Error(err))
		_ = logger.Sync(zapLogger)
		os.Exit(1)
	}
	zapLogger.Info("worker_stopped")
}

func run(ctx context.Context, cfg *config.Config, metricsAddr string, zapLogger *zap.Logger) error {
	zapLogger.Info("starting_worker",
		zap.Duration("poll_interval", cfg.ReminderPollInterval),
		zap.Int("prefetch", cfg.RabbitMQPrefetch),
		zap.Bool("redis_configured", cfg.RedisURL != ""),
	)

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:     cfg.OTELEnabled,
		ServiceName: serviceName,
		Endpoint:    cfg.OTELEndpoint,
	})
	if err != nil {
		zapLogger.Warn("failed_to_initialize_otel_tracer", zap.Error(err))
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(shutdownCtx)
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

	jobQueue, err := connectQueue(ctx, cfg.RabbitMQURL, zapLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := jobQueue.Close(); err != nil {
			zapLogger.Warn("failed_to_close_rabbitmq_connection", zap.Error(err))
		}
	}()

	var notifier notify.Notifier = notify.NewLogNotifier(zapLogger)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("parse REDIS_URL: %w", err)
		}
		client := redis.NewClient(opts)
		defer func() { _ = client.Close() }()
		notifier = notify.NewRedisNotifier(client, zapLogger)
	}

	registry := prometheus.NewRegistry()
	m := metrics.MustNewMetrics(registry)

	dispatcher := workers.NewDispatcher(database.NewReminderRepository(db), jobQueue, m, zapLogger, cfg.ReminderPollInterval)
	consumer := workers.NewReminderNotifier(notifier, jobQueue, m, zapLogger)
	gc := queue.NewGarbageCollector(jobQueue, queue.DefaultGCInterval, queue.DefaultDLQRetention, zapLogger)

	msgs, errs, err := jobQueue.Consume(ctx, cfg.RabbitMQPrefetch)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}
	zapLogger.Info("worker_started")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(dispatcher.Start(gctx)) })
	g.Go(func() error { return ignoreCanceled(consumer.Run(gctx, msgs, errs)) })
	g.Go(func() error { return ignoreCanceled(gc.Start(gctx)) })
	if metricsAddr != "" {
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           metrics.Handler(registry),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	return g.Wait()
}

// connectQueue retries with exponential backoff so the worker survives RabbitMQ starting late
func connectQueue(ctx context.Context, url string, zapLogger *zap.Logger) (*queue.RabbitMQQueue, error) {
	var lastErr error
	for attempt := 0; attempt < maxConnectAttempts; attempt++ {
		q, err := queue.NewRabbitMQQueue(url, zapLogger)
		if err == nil {
			zapLogger.Info("connected_to_rabbitmq")
			return q, nil
		}
		lastErr = err

		delay := initialConnectDelay * time.Duration(1<<uint(attempt))
		if delay > maxConnectDelay {
			delay = maxConnectDelay
		}
		zapLogger.Warn("failed_to_connect_to_rabbitmq_retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxConnectAttempts),
			zap.Duration("retry_delay", delay),
			zap.Error(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("connect to rabbitmq after %d attempts: %w", maxConnectAttempts, lastErr)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
