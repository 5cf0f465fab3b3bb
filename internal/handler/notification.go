package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/ferrinbar/chorewheel/internal/notify"
	"github.com/ferrinbar/chorewheel/internal/store"
)

const (
	defaultHistoryPageSize = 20
	maxHistoryPageSize     = 100
)

type NotificationHandler struct {
	users         *store.UserStore
	notifications *store.NotificationStore
	notifier      *notify.Service
	logger        *slog.Logger
}

func NewNotificationHandler(us *store.UserStore, ns *store.NotificationStore, notifier *notify.Service, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{users: us, notifications: ns, notifier: notifier, logger: logger}
}

// GetPreference returns the user's notification method, or 404 when the user
// has not picked one yet.
func (h *NotificationHandler) GetPreference(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeDomainError(w, apperr.NotFound("user", userID))
		return
	}

	method, err := h.notifications.GetMethod(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get notification preference")
		return
	}
	if method == nil {
		writeDomainError(w, apperr.NotFound("notification preference for user", userID))
		return
	}

	writeJSON(w, http.StatusOK, method)
}

// SetPreference replaces the user's notification method. The request carries a
// type discriminator and the fields that type needs.
func (h *NotificationHandler) SetPreference(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		Type     string `json:"type"`
		Name     string `json:"name"`
		Topic    string `json:"topic"`
		Endpoint string `json:"endpoint"`
		P256dh   string `json:"p256dh"`
		Auth     string `json:"auth"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeDomainError(w, apperr.NotFound("user", userID))
		return
	}

	var method *model.NotificationMethod
	switch req.Type {
	case model.MethodConsole:
		method, err = notify.NewConsoleMethod(userID, req.Name)
	case model.MethodNtfy:
		method, err = notify.NewNtfyMethod(userID, req.Topic)
	case model.MethodWebPush:
		method, err = notify.NewWebPushMethod(userID, req.Endpoint, req.P256dh, req.Auth)
	default:
		err = apperr.Validation("unknown notification method type")
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	saved, err := h.notifications.SetMethod(method)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save notification preference")
		return
	}

	// Confirm through the new channel so a broken subscription surfaces
	// immediately rather than at the next reminder.
	if _, err := h.notifier.Send(r.Context(), userID, "Notification preference updated", "You will now receive chore reminders here."); err != nil {
		h.logger.Warn("confirmation notification failed", "user_id", userID, "error", err)
	}

	writeJSON(w, http.StatusOK, saved)
}

// ListHistory returns the user's notification attempts, newest first. Pass the
// attempted_at of the last row back as "after" to fetch the next page.
func (h *NotificationHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeDomainError(w, apperr.NotFound("user", userID))
		return
	}

	pageSize := defaultHistoryPageSize
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := parsePositiveInt(raw)
		if err != nil || n > maxHistoryPageSize {
			writeDomainError(w, apperr.Validation("page_size must be between 1 and 100"))
			return
		}
		pageSize = n
	}

	var after *time.Time
	if raw := r.URL.Query().Get("after"); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeDomainError(w, apperr.Validation("after must be an RFC 3339 timestamp"))
			return
		}
		after = &t
	}

	attempts, err := h.notifications.ListAttempts(userID, pageSize, after)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list notification history")
		return
	}

	writeJSON(w, http.StatusOK, attempts)
}
