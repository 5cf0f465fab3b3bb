// Package alert exposes a household alert indicator that is switched on
// while any chore is overdue and off once everything is caught up. The
// Indicator interface is the seam for hardware implementations such as a
// smart plug driving a lamp.
package alert

import (
	"context"
	"log/slog"
)

// Indicator turns an external overdue signal on or off.
type Indicator interface {
	Set(ctx context.Context, on bool) error
}

// LogIndicator reports indicator transitions to the log. It stands in for
// hardware on installations without one.
type LogIndicator struct {
	logger *slog.Logger
}

func NewLogIndicator(logger *slog.Logger) *LogIndicator {
	return &LogIndicator{logger: logger}
}

func (i *LogIndicator) Set(_ context.Context, on bool) error {
	if on {
		i.logger.Info("chore alert indicator on")
	} else {
		i.logger.Info("chore alert indicator off")
	}
	return nil
}
