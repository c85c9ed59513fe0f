package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAllowedOrigins are the local development front ends
var DefaultAllowedOrigins = []string{
	"http://localhost:5173",
	"http://127.0.0.1:5173",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

// Config holds application configuration
type Config struct {
	DatabaseURL    string
	ServerPort     string
	AllowedOrigins []string
	EnableHSTS     bool

	OpenAIKey     string
	AIModel       string
	AIBaseURL     string
	AIMaxTokens   int
	AITemperature float64

	// AuthSecret signs HS256 bearer tokens. Empty runs the API in anonymous mode.
	AuthSecret string

	RedisURL  string
	RateLimit string

	RabbitMQURL          string
	RabbitMQPrefetch     int
	ReminderPollInterval time.Duration

	VocabularyFile   string
	HistoryCacheSize int

	WorkerDebugMode bool
	ServerDebugMode bool
	OTELEnabled     bool
	OTELEndpoint    string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(lookup func(string) string) (*Config, error) {
	e := env{lookup: lookup}
	cfg := &Config{
		DatabaseURL:          e.str("DATABASE_URL", ""),
		ServerPort:           e.str("SERVER_PORT", "8000"),
		AllowedOrigins:       e.list("ALLOWED_ORIGINS", DefaultAllowedOrigins),
		EnableHSTS:           e.boolean("ENABLE_HSTS", false),
		OpenAIKey:            e.str("OPENAI_API_KEY", ""),
		AIModel:              e.str("AI_MODEL", "gpt-4o-mini"),
		AIBaseURL:            e.str("AI_BASE_URL", ""),
		AIMaxTokens:          e.integer("AI_MAX_TOKENS", 350),
		AITemperature:        e.float("AI_TEMPERATURE", 0.6),
		AuthSecret:           e.str("AUTH_SECRET", ""),
		RedisURL:             e.str("REDIS_URL", ""),
		RateLimit:            e.str("RATE_LIMIT", "60-M"),
		RabbitMQURL:          e.str("RABBITMQ_URL", ""),
		RabbitMQPrefetch:     e.integer("RABBITMQ_PREFETCH", 1),
		ReminderPollInterval: e.duration("REMINDER_POLL_INTERVAL", 30*time.Second),
		VocabularyFile:       e.str("VOCABULARY_FILE", ""),
		HistoryCacheSize:     e.integer("HISTORY_CACHE_SIZE", 1024),
		WorkerDebugMode:      e.boolean("WORKER_DEBUG_MODE", false),
		ServerDebugMode:      e.boolean("SERVER_DEBUG_MODE", false),
		OTELEnabled:          e.boolean("OTEL_ENABLED", false),
		OTELEndpoint:         e.str("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.HistoryCacheSize <= 0 {
		return nil, fmt.Errorf("HISTORY_CACHE_SIZE must be positive, got %d", cfg.HistoryCacheSize)
	}
	if cfg.ReminderPollInterval <= 0 {
		return nil, fmt.Errorf("REMINDER_POLL_INTERVAL must be positive, got %s", cfg.ReminderPollInterval)
	}

	return cfg, nil
}

// RequireQueue reports an error when the worker's RabbitMQ settings are missing
func (c *Config) RequireQueue() error {
	if c.RabbitMQURL == "" {
		return errors.New("RABBITMQ_URL is required for reminder notifications")
	}
	if c.RabbitMQPrefetch <= 0 {
		return fmt.Errorf("RABBITMQ_PREFETCH must be positive, got %d", c.RabbitMQPrefetch)
	}
	return nil
}

// AnonymousMode is true when no token secret is configured
func (c *Config) AnonymousMode() bool {
	return c.AuthSecret == ""
}

// AIProviderConfig returns the options passed to the reply provider registry
func (c *Config) AIProviderConfig() map[string]string {
	return map[string]string{
		"api_key":     c.OpenAIKey,
		"base_url":    c.AIBaseURL,
		"model":       c.AIModel,
		"max_tokens":  strconv.Itoa(c.AIMaxTokens),
		"temperature": strconv.FormatFloat(c.AITemperature, 'f', -1, 64),
		"debug":       strconv.FormatBool(c.ServerDebugMode),
	}
}

type env struct {
	lookup func(string) string
}

func (e env) str(key, defaultValue string) string {
	if value := e.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (e env) boolean(key string, defaultValue bool) bool {
	if value := e.lookup(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func (e env) integer(key string, defaultValue int) int {
	if value := e.lookup(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (e env) float(key string, defaultValue float64) float64 {
	if value := e.lookup(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func (e env) duration(key string, defaultValue time.Duration) time.Duration {
	if value := e.lookup(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// list splits a comma separated value, dropping empty items
func (e env) list(key string, defaultValue []string) []string {
	value := e.lookup(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
