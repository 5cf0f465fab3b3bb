package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/ferrinbar/chorewheel/internal/store"
	"github.com/ferrinbar/chorewheel/internal/websocket"
	"golang.org/x/crypto/bcrypt"
)

type UserHandler struct {
	users       *store.UserStore
	occurrences *store.OccurrenceStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewUserHandler(us *store.UserStore, os *store.OccurrenceStore, hub *websocket.Hub, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: us, occurrences: os, hub: hub, logger: logger}
}

func (h *UserHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func validUserName(name string) bool {
	return name != "" && len(name) <= 100
}

func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if !validUserName(req.Name) {
		writeError(w, http.StatusBadRequest, "name is required and cannot exceed 100 characters")
		return
	}

	user, err := h.users.Create(req.Name)
	if err != nil {
		h.logger.Error("create user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	h.broadcast(websocket.NewMessage("user", "created", user.ID, nil))
	writeJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if !validUserName(req.Name) {
		writeError(w, http.StatusBadRequest, "name is required and cannot exceed 100 characters")
		return
	}

	user, err := h.users.Update(id, req.Name)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update user")
		return
	}

	h.broadcast(websocket.NewMessage("user", "updated", user.ID, nil))
	writeJSON(w, http.StatusOK, user)
}

func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	if err := h.users.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	h.broadcast(websocket.NewMessage("user", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// ListOccurrences returns all occurrences ever assigned to the user, oldest
// due first.
func (h *UserHandler) ListOccurrences(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	occs, err := h.occurrences.ListByUser(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list occurrences")
		return
	}
	if occs == nil {
		occs = []model.Occurrence{}
	}
	writeJSON(w, http.StatusOK, occs)
}

// Statistics summarizes the user's occurrence history, optionally limited to
// a due-date range given as RFC 3339 `from` and `to` query parameters.
func (h *UserHandler) Statistics(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	user, err := h.users.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get user")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	var from, to *time.Time
	if v := r.URL.Query().Get("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "from must be an RFC 3339 timestamp")
			return
		}
		from = &t
	}
	if v := r.URL.Query().Get("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "to must be an RFC 3339 timestamp")
			return
		}
		to = &t
	}

	stats, err := h.occurrences.UserStatistics(id, from, to)
	if err != nil {
		h.logger.Error("user statistics", "user_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to compute statistics")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *UserHandler) SetPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if len(req.PIN) < 4 || len(req.PIN) > 8 || !isDigits(req.PIN) {
		writeError(w, http.StatusBadRequest, "PIN must be 4-8 digits")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.PIN), bcrypt.DefaultCost)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to hash PIN")
		return
	}

	if err := h.users.SetPIN(id, string(hash)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to set PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *UserHandler) ClearPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.users.ClearPIN(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to clear PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *UserHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		PIN string `json:"pin"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	hash, err := h.users.GetPINHash(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get PIN")
		return
	}
	if hash == "" {
		writeError(w, http.StatusBadRequest, "no PIN set for this user")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.PIN)); err != nil {
		writeError(w, http.StatusUnauthorized, "incorrect PIN")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
