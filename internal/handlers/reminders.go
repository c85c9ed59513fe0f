package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/benvon/talk-to-my-ai/internal/database"
	"github.com/benvon/talk-to-my-ai/internal/metrics"
	"github.com/benvon/talk-to-my-ai/internal/models"
	"github.com/benvon/talk-to-my-ai/internal/request"
	"github.com/benvon/talk-to-my-ai/internal/temporal"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// localISOLayout accepts ISO-8601 timestamps without an offset, read in the server location
const localISOLayout = "2006-01-02T15:04:05"

// CreateReminderRequest is the body of POST /api/v1/reminders. ReminderTime is an ISO-8601
// timestamp or a natural phrase such as "tomorrow at 3pm".
type CreateReminderRequest struct {
	Title        string `json:"title" validate:"required,max=200"`
	Description  string `json:"description" validate:"max=2000"`
	ReminderTime string `json:"reminder_time" validate:"required,max=200"`
}

// ReminderHandler serves the reminder REST API
type ReminderHandler struct {
	store    database.ReminderStore
	resolver *temporal.Resolver
	metrics  *metrics.Metrics
	clock    Clock
	logger   *zap.Logger
}

// NewReminderHandler creates a new reminder handler
func NewReminderHandler(store database.ReminderStore, resolver *temporal.Resolver, m *metrics.Metrics, clock Clock, logger *zap.Logger) *ReminderHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderHandler{store: store, resolver: resolver, metrics: m, clock: clock.orDefault(), logger: logger}
}

// RegisterRoutes registers reminder routes on a /api/v1/reminders router
func (h *ReminderHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListReminders).Methods("GET")
	r.HandleFunc("", h.CreateReminder).Methods("POST")
	r.HandleFunc("/due", h.ListDueReminders).Methods("GET")
	r.HandleFunc("/{id}", h.GetReminder).Methods("GET")
	r.HandleFunc("/{id}", h.DeleteReminder).Methods("DELETE")
	r.HandleFunc("/{id}/complete", h.CompleteReminder).Methods("PATCH")
}

// ListReminders lists the caller's reminders ordered by time. Completed reminders are
// included only with include_completed=true.
func (h *ReminderHandler) ListReminders(w http.ResponseWriter, r *http.Request) {
	includeCompleted := false
	if v := r.URL.Query().Get("include_completed"); v != "" {
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "include_completed must be a boolean")
			return
		}
		includeCompleted = parsed
	}

	userID := request.UserID(r)
	reminders, err := h.store.ListByUser(r.Context(), userID, includeCompleted)
	if err != nil {
		h.logger.Error("list_reminders_failed", zap.String("user_id", userID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve reminders")
		return
	}
	respondJSON(w, http.StatusOK, nonNil(reminders))
}

// ListDueReminders lists the caller's open reminders whose time has passed
func (h *ReminderHandler) ListDueReminders(w http.ResponseWriter, r *http.Request) {
	userID := request.UserID(r)
	reminders, err := h.store.ListDue(r.Context(), userID, h.clock())
	if err != nil {
		h.logger.Error("list_due_reminders_failed", zap.String("user_id", userID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve due reminders")
		return
	}
	respondJSON(w, http.StatusOK, nonNil(reminders))
}

// CreateReminder stores a reminder from an explicit time or a time phrase
func (h *ReminderHandler) CreateReminder(w http.ResponseWriter, r *http.Request) {
	var req CreateReminderRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Title is required and cannot be empty")
		return
	}

	remindAt, rule := h.reminderTime(req.ReminderTime)
	userID := request.UserID(r)
	reminder := &models.Reminder{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		RemindAt:    remindAt,
	}
	if err := h.store.Create(r.Context(), reminder); err != nil {
		h.logger.Error("create_reminder_failed", zap.String("user_id", userID), zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to create reminder")
		return
	}
	h.metrics.IncReminderCreated("api")
	h.logger.Info("reminder_created",
		zap.String("user_id", userID),
		zap.String("reminder_id", reminder.ID.String()),
		zap.String("rule", rule),
	)
	respondJSON(w, http.StatusCreated, reminder)
}

// reminderTime parses an ISO-8601 value and otherwise hands the text to the temporal resolver
func (h *ReminderHandler) reminderTime(value string) (time.Time, string) {
	value = strings.TrimSpace(value)
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, "iso8601"
	}
	now := h.clock()
	if t, err := time.ParseInLocation(localISOLayout, value, now.Location()); err == nil {
		return t, "iso8601"
	}
	res := h.resolver.Resolve(value, now)
	h.metrics.IncTemporalRule(res.Rule)
	return res.Time, res.Rule
}

// GetReminder returns one of the caller's reminders
func (h *ReminderHandler) GetReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := reminderID(w, r)
	if !ok {
		return
	}
	reminder, err := h.store.GetByID(r.Context(), id, request.UserID(r))
	if err != nil {
		if errors.Is(err, database.ErrReminderNotFound) {
			respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
			return
		}
		h.logger.Error("get_reminder_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve reminder")
		return
	}
	respondJSON(w, http.StatusOK, reminder)
}

// CompleteReminder marks a reminder completed
func (h *ReminderHandler) CompleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := reminderID(w, r)
	if !ok {
		return
	}
	found, err := h.store.Complete(r.Context(), id, request.UserID(r), h.clock())
	if err != nil {
		h.logger.Error("complete_reminder_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to complete reminder")
		return
	}
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "completed": true})
}

// DeleteReminder deletes a reminder
func (h *ReminderHandler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	id, ok := reminderID(w, r)
	if !ok {
		return
	}
	found, err := h.store.Delete(r.Context(), id, request.UserID(r))
	if err != nil {
		h.logger.Error("delete_reminder_failed", zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to delete reminder")
		return
	}
	if !found {
		respondJSONError(w, http.StatusNotFound, "Not Found", "Reminder not found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func reminderID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid reminder ID")
		return uuid.Nil, false
	}
	return id, true
}

// nonNil makes empty lists encode as [] rather than null
func nonNil(reminders []*models.Reminder) []*models.Reminder {
	if reminders == nil {
		return []*models.Reminder{}
	}
	return reminders
}
