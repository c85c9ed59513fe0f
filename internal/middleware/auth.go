package middleware

import (
	"net/http"
	"strings"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/request"
	"go.uber.org/zap"
)

// TokenVerifier validates a raw bearer token
type TokenVerifier interface {
	Verify(raw string) (*models.JWTClaims, error)
}

// Auth attaches the caller to the request context. With a nil verifier every request is
// attributed to the anonymous user; otherwise a valid bearer token is required.
func Auth(verifier TokenVerifier, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if verifier == nil {
				next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), models.AnonymousUser())))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Missing Authorization header", logger)
				return
			}
			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid Authorization header format", logger)
				return
			}

			claims, err := verifier.Verify(strings.TrimSpace(raw))
			if err != nil {
				logger.Debug("token_verification_failed",
					zap.Error(err),
					zap.String("request_id", request.RequestID(r.Context())),
				)
				respondErrorJSON(w, r, http.StatusUnauthorized, "Unauthorized", "Invalid or expired token", logger)
				return
			}

			user := &models.User{ID: claims.Sub, Email: claims.Email, Name: claims.Name}
			next.ServeHTTP(w, r.WithContext(request.WithUser(r.Context(), user)))
		})
	}
}
