package notify

import (
	"context"
	"log/slog"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/clock"
	"github.com/ferrinbar/chorewheel/internal/store"
)

// Service sends a notification to a user through their configured method and
// records the attempt either way. A user without a preference still gets an
// attempt on record, marked failed, so the history shows what was tried.
type Service struct {
	users         *store.UserStore
	notifications *store.NotificationStore
	router        *Router
	clock         clock.Clock
	logger        *slog.Logger
}

func NewService(users *store.UserStore, notifications *store.NotificationStore, router *Router, clk clock.Clock, logger *slog.Logger) *Service {
	return &Service{
		users:         users,
		notifications: notifications,
		router:        router,
		clock:         clk,
		logger:        logger,
	}
}

// Send returns the attempt id on delivery. The returned error carries the
// domain kind (NotFound for a missing user, InvalidOperation when no
// preference is configured) or the sender's failure.
func (s *Service) Send(ctx context.Context, userID int64, title, message string) (string, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.NotFound("user", userID)
	}

	n := Notification{Title: title, Message: message}
	now := s.clock.Now()

	method, err := s.notifications.GetMethod(userID)
	if err != nil {
		return "", err
	}

	if method == nil {
		attempt := newAttempt(userID, n, nil, now)
		_ = markFailed(attempt, "user has no notification preference set")
		if err := s.notifications.InsertAttempt(attempt); err != nil {
			return "", err
		}
		return "", apperr.InvalidOperation("user has no notification preference set")
	}

	attempt := newAttempt(userID, n, &method.Type, now)

	sendErr := s.router.Send(ctx, n, method)
	if sendErr != nil {
		_ = markFailed(attempt, sendErr.Error())
		if err := s.notifications.InsertAttempt(attempt); err != nil {
			return "", err
		}
		s.logger.Warn("notification failed",
			"user_id", userID, "method", method.Type, "error", sendErr)
		return "", sendErr
	}

	_ = markDelivered(attempt, s.clock.Now())
	if err := s.notifications.InsertAttempt(attempt); err != nil {
		return "", err
	}
	return attempt.ID, nil
}
