// Package recurrence computes when the next occurrence of a chore falls.
// The only shape currently supported is a fixed interval in days anchored at
// a start instant; additional shapes should be added as new Kind values
// dispatched in NextAfter, not as new types.
package recurrence

import (
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
)

const KindIntervalDays = "interval_days"

// Schedule is a pure description of a recurrence lattice: start + k*interval,
// optionally cut off at Until.
type Schedule struct {
	Kind         string
	Start        time.Time
	IntervalDays int
	Until        *time.Time
}

// New validates and builds a fixed-interval schedule.
func New(start time.Time, intervalDays int, until *time.Time) (Schedule, error) {
	if intervalDays <= 0 {
		return Schedule{}, apperr.Validation("interval days must be greater than 0")
	}
	if until != nil && until.Before(start) {
		return Schedule{}, apperr.Validation("schedule end must not be before its start")
	}
	return Schedule{
		Kind:         KindIntervalDays,
		Start:        start,
		IntervalDays: intervalDays,
		Until:        until,
	}, nil
}

// NextAfter returns the next instant strictly after the given one that lies
// on the schedule's lattice, or nil if that instant would fall past Until.
// An instant before Start yields Start itself.
func (s Schedule) NextAfter(after time.Time) *time.Time {
	switch s.Kind {
	case KindIntervalDays, "":
		return s.nextIntervalDays(after)
	}
	panic("recurrence: unknown schedule kind " + s.Kind)
}

func (s Schedule) nextIntervalDays(after time.Time) *time.Time {
	if after.Before(s.Start) {
		start := s.Start
		return &start
	}

	elapsedDays := after.Sub(s.Start).Hours() / 24
	intervalsElapsed := int64(elapsedDays / float64(s.IntervalDays))

	next := s.Start.AddDate(0, 0, int((intervalsElapsed+1)*int64(s.IntervalDays)))

	if s.Until != nil && next.After(*s.Until) {
		return nil
	}
	return &next
}
