package notify

import (
	"context"
	"log/slog"

	"github.com/ferrinbar/chorewheel/internal/model"
)

// ConsoleSender writes notifications to the log. Useful for development and
// for households that just watch the server console.
type ConsoleSender struct {
	logger *slog.Logger
}

func NewConsoleSender(logger *slog.Logger) *ConsoleSender {
	return &ConsoleSender{logger: logger}
}

func (s *ConsoleSender) Type() string {
	return model.MethodConsole
}

func (s *ConsoleSender) Send(_ context.Context, n Notification, method *model.NotificationMethod) error {
	s.logger.Info("notification",
		"recipient", method.Name,
		"title", n.Title,
		"message", n.Message)
	return nil
}
