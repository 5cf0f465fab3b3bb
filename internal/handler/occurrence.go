package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/clock"
	"github.com/ferrinbar/chorewheel/internal/occurrence"
	"github.com/ferrinbar/chorewheel/internal/scheduling"
	"github.com/ferrinbar/chorewheel/internal/store"
	"github.com/ferrinbar/chorewheel/internal/websocket"
)

type OccurrenceHandler struct {
	occurrences *store.OccurrenceStore
	chores      *store.ChoreStore
	scheduler   *scheduling.Service
	clock       clock.Clock
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewOccurrenceHandler(os *store.OccurrenceStore, cs *store.ChoreStore, sched *scheduling.Service, clk clock.Clock, hub *websocket.Hub, logger *slog.Logger) *OccurrenceHandler {
	return &OccurrenceHandler{occurrences: os, chores: cs, scheduler: sched, clock: clk, hub: hub, logger: logger}
}

func (h *OccurrenceHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

// Complete marks the occurrence done by the acting user and schedules the
// chore's next occurrence.
func (h *OccurrenceHandler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	occ, err := h.occurrences.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get occurrence")
		return
	}
	if occ == nil {
		writeDomainError(w, apperr.NotFound("occurrence", id))
		return
	}

	now := h.clock.Now()
	if err := occurrence.Complete(occ, req.UserID, now); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.occurrences.Save(occ); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save occurrence")
		return
	}

	chore, err := h.chores.GetByID(occ.ChoreID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if chore != nil {
		if _, err := h.scheduler.ScheduleNextIfNeeded(chore, now, occ); err != nil {
			// An ended schedule or emptied rotation just means the chain
			// stops here; the completion itself stands.
			h.logger.Info("no next occurrence scheduled", "chore_id", chore.ID, "reason", err)
		}
	}

	h.broadcast(websocket.NewMessage("occurrence", "completed", occ.ID, map[string]any{"chore_id": occ.ChoreID}))
	writeJSON(w, http.StatusOK, occ)
}

// Snooze pushes the occurrence's due time out by the requested duration, or
// the chore's default when none is given.
func (h *OccurrenceHandler) Snooze(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req struct {
		UserID   int64   `json:"user_id"`
		Duration *string `json:"duration"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	var duration *time.Duration
	if req.Duration != nil {
		d, err := time.ParseDuration(*req.Duration)
		if err != nil || d <= 0 {
			writeError(w, http.StatusBadRequest, "duration must be a positive duration string like \"2h\"")
			return
		}
		duration = &d
	}

	occ, err := h.occurrences.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get occurrence")
		return
	}
	if occ == nil {
		writeDomainError(w, apperr.NotFound("occurrence", id))
		return
	}

	chore, err := h.chores.GetByID(occ.ChoreID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if chore == nil {
		writeDomainError(w, apperr.NotFound("chore", occ.ChoreID))
		return
	}

	if err := occurrence.Snooze(occ, chore, req.UserID, h.clock.Now(), duration); err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.occurrences.Save(occ); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save occurrence")
		return
	}

	h.broadcast(websocket.NewMessage("occurrence", "snoozed", occ.ID, map[string]any{"chore_id": occ.ChoreID}))
	writeJSON(w, http.StatusOK, occ)
}
