package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/request"
	"github.com/benvon/talk-to-my-ai/internal/services/ai"
	"github.com/benvon/talk-to-my-ai/internal/services/assistant"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Responder answers one conversational turn
type Responder interface {
	Respond(ctx context.Context, userID string, req models.RespondRequest) (*models.RespondResponse, error)
}

// RespondHandler serves the conversational endpoint
type RespondHandler struct {
	responder Responder
	logger    *zap.Logger
}

// NewRespondHandler creates a new respond handler
func NewRespondHandler(responder Responder, logger *zap.Logger) *RespondHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RespondHandler{responder: responder, logger: logger}
}

// RegisterRoutes registers the respond route on a /api/v1 router
func (h *RespondHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/respond", h.Respond).Methods("POST")
}

// Respond runs the assistant pipeline for the caller
func (h *RespondHandler) Respond(w http.ResponseWriter, r *http.Request) {
	var req models.RespondRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := request.UserID(r)
	ctx := ai.WithRequestID(r.Context(), request.RequestID(r.Context()))

	resp, err := h.responder.Respond(ctx, userID, req)
	if err != nil {
		if errors.Is(err, assistant.ErrEmptyText) {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "Text is required and cannot be empty")
			return
		}
		h.logger.Error("respond_failed",
			zap.String("user_id", userID),
			zap.String("request_id", request.RequestID(r.Context())),
			zap.Error(err),
		)
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to generate a response")
		return
	}

	respondJSON(w, http.StatusOK, resp)
}
