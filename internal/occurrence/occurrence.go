// Package occurrence holds the lifecycle rules for a single chore
// occurrence: open until completed, due once past DueAt, pushed out by
// snoozing. The functions mutate the passed occurrence; callers persist.
package occurrence

import (
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
)

// Complete marks the occurrence done at the given instant. Only the assigned
// user may complete it, and only once; a second completion is an error, not
// a no-op.
func Complete(occ *model.Occurrence, actorUserID int64, now time.Time) error {
	if occ.UserID != actorUserID {
		return apperr.Forbidden("occurrence is not assigned to this user")
	}
	if occ.CompletedAt != nil {
		return apperr.InvalidOperation("occurrence is already completed")
	}

	occ.CompletedAt = &now
	return nil
}

// Snooze pushes DueAt forward by the given duration, or by the chore's
// configured snooze duration when none is given. ScheduledFor is never
// touched so the original due time stays available for statistics, and
// LastNotifiedAt is left alone so the reminder cooldown keeps its meaning.
func Snooze(occ *model.Occurrence, chore *model.Chore, actorUserID int64, now time.Time, duration *time.Duration) error {
	if occ.UserID != actorUserID {
		return apperr.Forbidden("occurrence is not assigned to this user")
	}
	if occ.CompletedAt != nil {
		return apperr.InvalidOperation("occurrence is already completed")
	}
	if !chore.AllowSnooze() {
		return apperr.InvalidOperation("chore does not allow snoozing")
	}
	if now.Before(occ.DueAt) {
		return apperr.InvalidOperation("occurrence is not due yet")
	}

	d := chore.SnoozeDuration
	if duration != nil {
		d = duration
	}

	occ.DueAt = now.Add(*d)
	return nil
}
