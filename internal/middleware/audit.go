package middleware

import (
	"net/http"

	logpkg "github.com/benvon/talk-to-my-ai/internal/logger"
	"github.com/benvon/talk-to-my-ai/internal/request"
	"go.uber.org/zap"
)

// Audit logs rejected authentication and rate limit hits
func Audit(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)

			var event string
			switch rec.status {
			case http.StatusUnauthorized, http.StatusForbidden:
				event = "security_event"
			case http.StatusTooManyRequests:
				event = "rate_limit_violation"
			default:
				return
			}
			logger.Warn(event,
				zap.Int("status_code", rec.status),
				zap.String("method", r.Method),
				zap.String("path", logpkg.SanitizePath(r.URL.Path)),
				zap.String("ip", logpkg.SanitizeString(request.ClientIP(r), logpkg.MaxUserIDLength)),
				zap.String("request_id", request.RequestID(r.Context())),
			)
		})
	}
}
