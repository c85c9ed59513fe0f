package middleware

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/benvon/talk-to-my-ai/internal/request"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
	"go.uber.org/zap"
)

const (
	// DefaultRate applies when no RATE_LIMIT is configured
	DefaultRate     = "60-M"
	rateLimitPrefix = "assistant:ratelimit"
)

// NewLimiter builds a ulule limiter for a formatted rate such as "60-M". Counters live in
// Redis when a client is given so every API replica shares them, and in memory otherwise.
func NewLimiter(rate string, redisClient *redis.Client) (*limiter.Limiter, error) {
	if rate == "" {
		rate = DefaultRate
	}
	parsed, err := limiter.NewRateFromFormatted(rate)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit %q: %w", rate, err)
	}

	var store limiter.Store
	if redisClient != nil {
		store, err = redisstore.NewStoreWithOptions(redisClient, limiter.StoreOptions{Prefix: rateLimitPrefix})
		if err != nil {
			return nil, fmt.Errorf("failed to create redis rate limit store: %w", err)
		}
	} else {
		store = memory.NewStoreWithOptions(limiter.StoreOptions{Prefix: rateLimitPrefix})
	}
	return limiter.New(store, parsed), nil
}

// RateLimit rejects callers over the limiter's rate with a 429 envelope. Limiter errors
// are logged and the request is let through.
func RateLimit(l *limiter.Limiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := l.Get(r.Context(), rateLimitKey(r))
			if err != nil {
				logger.Warn("rate_limiter_error", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.FormatInt(lctx.Limit, 10))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(lctx.Remaining, 10))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(lctx.Reset, 10))

			if lctx.Reached {
				respondErrorJSON(w, r, http.StatusTooManyRequests, "Too Many Requests", "Rate limit exceeded, try again later", logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitKey keys authenticated callers by user and everyone else by client IP
func rateLimitKey(r *http.Request) string {
	if u := request.UserFromContext(r); u != nil && !u.Anonymous {
		return "user:" + u.ID
	}
	return "ip:" + request.ClientIP(r)
}
