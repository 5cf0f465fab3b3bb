// Package sweeper runs the overdue-reminder loop: every interval it finds
// open occurrences past their due time whose last reminder is outside the
// cooldown, and nudges the assigned user. The same pass drives the
// household alert indicator.
package sweeper

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ferrinbar/chorewheel/internal/alert"
	"github.com/ferrinbar/chorewheel/internal/clock"
	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/ferrinbar/chorewheel/internal/notify"
	"github.com/ferrinbar/chorewheel/internal/store"
	"github.com/ferrinbar/chorewheel/internal/websocket"
)

const (
	// DefaultInterval bounds reminder latency; a chore becomes overdue at
	// most one interval before its first reminder.
	DefaultInterval = 3 * time.Minute

	// DefaultCooldown is the minimum spacing between reminders for the same
	// occurrence. This is the engine's only retry mechanism.
	DefaultCooldown = time.Hour
)

// Sweeper periodically checks for overdue occurrences and sends reminders.
type Sweeper struct {
	mu          sync.RWMutex
	occurrences *store.OccurrenceStore
	notifier    *notify.Service
	clock       clock.Clock
	hub         *websocket.Hub
	indicator   alert.Indicator
	interval    time.Duration
	cooldown    time.Duration
	logger      *slog.Logger
	cancel      context.CancelFunc
	done        chan struct{}

	// indicatorOn mirrors the last state pushed to the indicator; nil until
	// the first sweep. Touched only by the sweep loop.
	indicatorOn *bool
}

func New(occurrences *store.OccurrenceStore, notifier *notify.Service, clk clock.Clock, hub *websocket.Hub, indicator alert.Indicator, interval, cooldown time.Duration, logger *slog.Logger) *Sweeper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Sweeper{
		occurrences: occurrences,
		notifier:    notifier,
		clock:       clk,
		hub:         hub,
		indicator:   indicator,
		interval:    interval,
		cooldown:    cooldown,
		logger:      logger,
	}
}

// Start begins the sweep loop.
func (s *Sweeper) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.logger.Info("overdue sweeper started", "interval", s.interval, "cooldown", s.cooldown)
		for {
			select {
			case <-ctx.Done():
				s.logger.Info("overdue sweeper stopped")
				return
			case <-ticker.C:
				s.Sweep(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the current sweep to finish.
func (s *Sweeper) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Sweep runs one pass. Exported so tests and one-shot callers can drive it
// with their own clock.
func (s *Sweeper) Sweep(ctx context.Context) {
	now := s.clock.Now()

	overdue, err := s.occurrences.ListOverdue(now, now.Add(-s.cooldown))
	if err != nil {
		s.logger.Error("list overdue occurrences", "error", err)
		return
	}
	if len(overdue) > 0 {
		s.logger.Info("found overdue occurrences", "count", len(overdue))
	}

	for i := range overdue {
		if ctx.Err() != nil {
			return
		}
		s.remind(ctx, &overdue[i], now)
	}

	s.updateIndicator(ctx, now)
}

// updateIndicator switches the household alert indicator on while any open
// occurrence is past due, independent of reminder cooldown. A failed switch
// is retried on the next sweep.
func (s *Sweeper) updateIndicator(ctx context.Context, now time.Time) {
	if s.indicator == nil {
		return
	}

	n, err := s.occurrences.CountOverdue(now)
	if err != nil {
		s.logger.Error("count overdue occurrences", "error", err)
		return
	}

	on := n > 0
	if s.indicatorOn != nil && *s.indicatorOn == on {
		return
	}
	if err := s.indicator.Set(ctx, on); err != nil {
		s.logger.Warn("set alert indicator", "on", on, "error", err)
		return
	}
	s.indicatorOn = &on
}

// remind handles one occurrence in isolation: a panic or failure here must
// not stop the rest of the batch.
func (s *Sweeper) remind(ctx context.Context, occ *model.Occurrence, now time.Time) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("reminder panicked", "occurrence_id", occ.ID, "panic", r)
		}
	}()

	title := "Chore overdue: " + occ.ChoreTitle
	message := fmt.Sprintf("Your chore %q was due at %s. Please complete it as soon as possible.",
		occ.ChoreTitle, occ.DueAt.Format("Mon Jan 2 15:04"))

	if _, err := s.notifier.Send(ctx, occ.UserID, title, message); err != nil {
		// Leave last_notified_at untouched so the next sweep retries.
		s.logger.Warn("reminder not delivered",
			"occurrence_id", occ.ID, "user_id", occ.UserID, "error", err)
		return
	}

	if err := s.occurrences.MarkNotified(occ.ID, now); err != nil {
		s.logger.Error("mark notified", "occurrence_id", occ.ID, "error", err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(websocket.NewMessage("occurrence", "reminded", occ.ID,
			map[string]any{"chore_id": occ.ChoreID, "user_id": occ.UserID}))
	}

	s.logger.Info("sent overdue reminder",
		"occurrence_id", occ.ID, "chore", occ.ChoreTitle, "user_id", occ.UserID)
}
