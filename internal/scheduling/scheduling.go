// Package scheduling materializes the next occurrence of a chore: next due
// time from the recurrence schedule, next assignee from the rotation, and
// the guarantee that a chore never has more than one open occurrence.
package scheduling

import (
	"log/slog"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/ferrinbar/chorewheel/internal/recurrence"
	"github.com/ferrinbar/chorewheel/internal/rotation"
	"github.com/ferrinbar/chorewheel/internal/store"
)

type Service struct {
	chores      *store.ChoreStore
	occurrences *store.OccurrenceStore
	logger      *slog.Logger
}

func NewService(chores *store.ChoreStore, occurrences *store.OccurrenceStore, logger *slog.Logger) *Service {
	return &Service{chores: chores, occurrences: occurrences, logger: logger}
}

// ScheduleNextIfNeeded creates the next occurrence for the chore strictly
// after the given instant. When the caller already holds the chore's latest
// occurrence it can pass it as last to skip the open-occurrence query.
//
// Fails with InvalidOperation if an open occurrence exists, if the schedule
// has ended, or if the chore has no assignees. Calling it twice without an
// intervening completion fails the second time; there is no silent no-op.
func (s *Service) ScheduleNextIfNeeded(chore *model.Chore, after time.Time, last *model.Occurrence) (*model.Occurrence, error) {
	if last != nil && last.ChoreID == chore.ID && last.Open() {
		return nil, apperr.InvalidOperation("chore already has an open occurrence")
	}
	if last == nil {
		open, err := s.occurrences.HasOpenForChore(chore.ID)
		if err != nil {
			return nil, err
		}
		if open {
			return nil, apperr.InvalidOperation("chore already has an open occurrence")
		}
	}

	schedule, err := recurrence.New(chore.ScheduleStart, chore.IntervalDays, chore.ScheduleUntil)
	if err != nil {
		return nil, err
	}

	nextTime := schedule.NextAfter(after)
	if nextTime == nil {
		return nil, apperr.InvalidOperation("chore schedule has ended")
	}

	next, cursor, err := rotation.Next(chore.Assignees, chore.NextAssigneeIndex)
	if err != nil {
		return nil, err
	}

	occ, err := s.occurrences.Create(&model.Occurrence{
		ChoreID:      chore.ID,
		UserID:       next.UserID,
		ScheduledFor: *nextTime,
		DueAt:        *nextTime,
	})
	if err != nil {
		return nil, err
	}

	if err := s.chores.UpdateCursor(chore.ID, cursor); err != nil {
		return nil, err
	}
	chore.NextAssigneeIndex = cursor

	s.logger.Info("scheduled occurrence",
		"chore_id", chore.ID, "occurrence_id", occ.ID,
		"user_id", next.UserID, "due_at", *nextTime)
	return occ, nil
}
