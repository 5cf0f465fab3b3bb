package notify

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/google/uuid"
)

const maxFailureReasonLen = 1000

func newAttempt(userID int64, n Notification, methodType *string, at time.Time) *model.NotificationAttempt {
	return &model.NotificationAttempt{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       n.Title,
		Message:     n.Message,
		MethodType:  methodType,
		AttemptedAt: at,
		Status:      model.DeliveryPending,
	}
}

// markDelivered resolves a pending attempt as delivered. An attempt resolves
// exactly once; resolving twice is an error.
func markDelivered(a *model.NotificationAttempt, at time.Time) error {
	if a.Status != model.DeliveryPending {
		return apperr.InvalidOperation("notification attempt is already " + a.Status)
	}
	if at.Before(a.AttemptedAt) {
		return apperr.InvalidOperation("delivered-at cannot be earlier than attempted-at")
	}
	a.Status = model.DeliveryDelivered
	a.DeliveredAt = &at
	return nil
}

// markFailed resolves a pending attempt as failed, truncating long reasons.
func markFailed(a *model.NotificationAttempt, reason string) error {
	if a.Status != model.DeliveryPending {
		return apperr.InvalidOperation("notification attempt is already " + a.Status)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown failure"
	}
	if len(reason) > maxFailureReasonLen {
		cut := maxFailureReasonLen - 3
		for cut > 0 && !utf8.RuneStart(reason[cut]) {
			cut--
		}
		reason = reason[:cut] + "..."
	}
	a.Status = model.DeliveryFailed
	a.FailureReason = &reason
	return nil
}
