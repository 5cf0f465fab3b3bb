package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/clock"
	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/ferrinbar/chorewheel/internal/recurrence"
	"github.com/ferrinbar/chorewheel/internal/rotation"
	"github.com/ferrinbar/chorewheel/internal/scheduling"
	"github.com/ferrinbar/chorewheel/internal/store"
	"github.com/ferrinbar/chorewheel/internal/websocket"
)

type ChoreHandler struct {
	chores    *store.ChoreStore
	users     *store.UserStore
	scheduler *scheduling.Service
	clock     clock.Clock
	hub       *websocket.Hub
	logger    *slog.Logger
}

func NewChoreHandler(cs *store.ChoreStore, us *store.UserStore, sched *scheduling.Service, clk clock.Clock, hub *websocket.Hub, logger *slog.Logger) *ChoreHandler {
	return &ChoreHandler{chores: cs, users: us, scheduler: sched, clock: clk, hub: hub, logger: logger}
}

func (h *ChoreHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type choreRequest struct {
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	ScheduleStart  time.Time  `json:"schedule_start"`
	IntervalDays   int        `json:"interval_days"`
	ScheduleUntil  *time.Time `json:"schedule_until"`
	SnoozeDuration *string    `json:"snooze_duration"` // Go duration string, e.g. "24h"; null disables snoozing
}

func (r *choreRequest) snoozeDuration() (*time.Duration, error) {
	if r.SnoozeDuration == nil {
		return nil, nil
	}
	d, err := time.ParseDuration(*r.SnoozeDuration)
	if err != nil {
		return nil, apperr.Validation("snooze_duration must be a duration string like \"24h\"")
	}
	return &d, nil
}

func (h *ChoreHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		choreRequest
		AssigneeUserIDs []int64 `json:"assignee_user_ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	snooze, err := req.snoozeDuration()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	chore, err := model.NewChore(req.Title, req.Description, snooze)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	schedule, err := recurrence.New(req.ScheduleStart, req.IntervalDays, req.ScheduleUntil)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	chore.ScheduleStart = schedule.Start
	chore.IntervalDays = schedule.IntervalDays
	chore.ScheduleUntil = schedule.Until

	// Resolve assignees before creating anything.
	var assignees []model.Assignee
	cursor := 0
	for _, userID := range req.AssigneeUserIDs {
		user, err := h.users.GetByID(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check user")
			return
		}
		if user == nil {
			writeDomainError(w, apperr.NotFound("user", userID))
			return
		}
		assignees, cursor, err = rotation.Add(assignees, cursor, user.ID, user.Name, nil)
		if err != nil {
			writeDomainError(w, err)
			return
		}
	}

	created, err := h.chores.Create(chore)
	if err != nil {
		h.logger.Error("create chore", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create chore")
		return
	}

	if len(assignees) > 0 {
		if err := h.chores.SaveRotation(created.ID, assignees, cursor); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to save assignees")
			return
		}
		created, err = h.chores.GetByID(created.ID)
		if err != nil || created == nil {
			writeError(w, http.StatusInternalServerError, "failed to reload chore")
			return
		}

		if _, err := h.scheduler.ScheduleNextIfNeeded(created, h.clock.Now(), nil); err != nil {
			// A schedule that has already ended is a valid chore to keep on
			// record; anything else is unexpected at creation time.
			if apperr.KindOf(err) == apperr.KindUnknown {
				writeError(w, http.StatusInternalServerError, "failed to schedule occurrence")
				return
			}
			h.logger.Warn("no occurrence scheduled for new chore", "chore_id", created.ID, "reason", err)
		}
	}

	h.broadcast(websocket.NewMessage("chore", "created", created.ID, nil))
	writeJSON(w, http.StatusCreated, created)
}

func (h *ChoreHandler) List(w http.ResponseWriter, r *http.Request) {
	chores, err := h.chores.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list chores")
		return
	}
	if chores == nil {
		chores = []model.Chore{}
	}
	writeJSON(w, http.StatusOK, chores)
}

func (h *ChoreHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	chore, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if chore == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}
	writeJSON(w, http.StatusOK, chore)
}

func (h *ChoreHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req choreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	snooze, err := req.snoozeDuration()
	if err != nil {
		writeDomainError(w, err)
		return
	}

	updated, err := model.NewChore(req.Title, req.Description, snooze)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	schedule, err := recurrence.New(req.ScheduleStart, req.IntervalDays, req.ScheduleUntil)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	existing.Title = updated.Title
	existing.Description = updated.Description
	existing.SnoozeDuration = updated.SnoozeDuration
	existing.ScheduleStart = schedule.Start
	existing.IntervalDays = schedule.IntervalDays
	existing.ScheduleUntil = schedule.Until

	chore, err := h.chores.Update(existing)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update chore")
		return
	}

	h.broadcast(websocket.NewMessage("chore", "updated", chore.ID, nil))
	writeJSON(w, http.StatusOK, chore)
}

func (h *ChoreHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	existing, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	if err := h.chores.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete chore")
		return
	}

	h.broadcast(websocket.NewMessage("chore", "deleted", id, nil))
	w.WriteHeader(http.StatusNoContent)
}

// AddAssignee inserts a user into the chore's rotation. Adding the first
// assignee to a chore schedules its first occurrence.
func (h *ChoreHandler) AddAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	chore, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if chore == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	var req struct {
		UserID int64 `json:"user_id"`
		Order  *int  `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	user, err := h.users.GetByID(req.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}
	if user == nil {
		writeDomainError(w, apperr.NotFound("user", req.UserID))
		return
	}

	if req.Order != nil && (*req.Order < 0 || *req.Order > len(chore.Assignees)) {
		writeError(w, http.StatusBadRequest, "order must be between 0 and "+strconv.Itoa(len(chore.Assignees)))
		return
	}

	wasEmpty := len(chore.Assignees) == 0

	assignees, cursor, err := rotation.Add(chore.Assignees, chore.NextAssigneeIndex, user.ID, user.Name, req.Order)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.chores.SaveRotation(chore.ID, assignees, cursor); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save rotation")
		return
	}

	chore, err = h.chores.GetByID(chore.ID)
	if err != nil || chore == nil {
		writeError(w, http.StatusInternalServerError, "failed to reload chore")
		return
	}

	// A chore without assignees may never have been scheduled.
	if wasEmpty {
		if _, err := h.scheduler.ScheduleNextIfNeeded(chore, h.clock.Now(), nil); err != nil {
			if apperr.KindOf(err) == apperr.KindUnknown {
				writeError(w, http.StatusInternalServerError, "failed to schedule occurrence")
				return
			}
			h.logger.Warn("no occurrence scheduled after first assignee", "chore_id", chore.ID, "reason", err)
		}
	}

	h.broadcast(websocket.NewMessage("chore", "assignee_added", chore.ID, map[string]any{"user_id": user.ID}))
	writeJSON(w, http.StatusOK, chore)
}

// RemoveAssignee drops a user from the chore's rotation.
func (h *ChoreHandler) RemoveAssignee(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid id")
		return
	}

	userID, err := strconv.ParseInt(r.PathValue("user_id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	chore, err := h.chores.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get chore")
		return
	}
	if chore == nil {
		writeError(w, http.StatusNotFound, "chore not found")
		return
	}

	user, err := h.users.GetByID(userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to check user")
		return
	}
	if user == nil {
		writeDomainError(w, apperr.NotFound("user", userID))
		return
	}

	assignees, cursor, err := rotation.Remove(chore.Assignees, chore.NextAssigneeIndex, userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	if err := h.chores.SaveRotation(chore.ID, assignees, cursor); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save rotation")
		return
	}

	h.broadcast(websocket.NewMessage("chore", "assignee_removed", chore.ID, map[string]any{"user_id": userID}))
	w.WriteHeader(http.StatusNoContent)
}
