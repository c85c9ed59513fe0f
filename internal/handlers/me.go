package handlers

import (
	"net/http"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/request"
	"github.com/gorilla/mux"
)

// AuthHandler reports who the API thinks the caller is
type AuthHandler struct{}

// NewAuthHandler creates a new auth handler
func NewAuthHandler() *AuthHandler {
	return &AuthHandler{}
}

// RegisterRoutes registers auth routes on a /api/v1/auth router
func (h *AuthHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/me", h.GetMe).Methods("GET")
}

// GetMe returns the authenticated user, or the anonymous user when auth is disabled
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	user := request.UserFromContext(r)
	if user == nil {
		user = models.AnonymousUser()
	}
	respondJSON(w, http.StatusOK, user)
}
