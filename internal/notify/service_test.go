package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/clock"
	"github.com/ferrinbar/chorewheel/internal/database"
	"github.com/ferrinbar/chorewheel/internal/model"
	"github.com/ferrinbar/chorewheel/internal/store"
)

type serviceFixture struct {
	users         *store.UserStore
	notifications *store.NotificationStore
	sender        *fakeSender
	service       *Service
}

func setupService(t *testing.T) *serviceFixture {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	f := &serviceFixture{
		users:         store.NewUserStore(db),
		notifications: store.NewNotificationStore(db),
		sender:        &fakeSender{methodType: model.MethodConsole},
	}
	clk := &clock.Fixed{T: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.service = NewService(f.users, f.notifications, NewRouter(f.sender), clk, logger)
	return f
}

func TestServiceSendDelivered(t *testing.T) {
	f := setupService(t)

	user, err := f.users.Create("Alice")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	method, _ := NewConsoleMethod(user.ID, "Alice")
	if _, err := f.notifications.SetMethod(method); err != nil {
		t.Fatalf("set method: %v", err)
	}

	id, err := f.service.Send(context.Background(), user.ID, "Chore overdue", "Do the dishes")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if id == "" {
		t.Fatal("expected attempt id")
	}
	if len(f.sender.sent) != 1 {
		t.Fatalf("sender got %d notifications, want 1", len(f.sender.sent))
	}

	attempts, err := f.notifications.ListAttempts(user.ID, 10, nil)
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(attempts))
	}
	a := attempts[0]
	if a.ID != id {
		t.Errorf("attempt id = %q, want %q", a.ID, id)
	}
	if a.Status != model.DeliveryDelivered {
		t.Errorf("status = %q, want delivered", a.Status)
	}
	if a.DeliveredAt == nil {
		t.Error("DeliveredAt must be set")
	}
	if a.MethodType == nil || *a.MethodType != model.MethodConsole {
		t.Errorf("method type = %v, want console", a.MethodType)
	}
}

func TestServiceSendSenderFailure(t *testing.T) {
	f := setupService(t)

	user, _ := f.users.Create("Alice")
	method, _ := NewConsoleMethod(user.ID, "Alice")
	f.notifications.SetMethod(method)

	f.sender.err = errSendFailed
	_, err := f.service.Send(context.Background(), user.ID, "t", "m")
	if err == nil {
		t.Fatal("expected the sender's error")
	}

	attempts, _ := f.notifications.ListAttempts(user.ID, 10, nil)
	if len(attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(attempts))
	}
	a := attempts[0]
	if a.Status != model.DeliveryFailed {
		t.Errorf("status = %q, want failed", a.Status)
	}
	if a.FailureReason == nil || *a.FailureReason != errSendFailed.Error() {
		t.Errorf("reason = %v, want %q", a.FailureReason, errSendFailed.Error())
	}
}

func TestServiceSendNoPreference(t *testing.T) {
	f := setupService(t)

	user, _ := f.users.Create("Alice")

	_, err := f.service.Send(context.Background(), user.ID, "t", "m")
	if apperr.KindOf(err) != apperr.KindInvalidOperation {
		t.Fatalf("kind = %v, want invalid_operation", apperr.KindOf(err))
	}

	// The refusal still leaves a failed attempt on record.
	attempts, _ := f.notifications.ListAttempts(user.ID, 10, nil)
	if len(attempts) != 1 {
		t.Fatalf("got %d attempts, want 1", len(attempts))
	}
	if attempts[0].Status != model.DeliveryFailed {
		t.Errorf("status = %q, want failed", attempts[0].Status)
	}
	if attempts[0].MethodType != nil {
		t.Errorf("method type = %v, want nil", attempts[0].MethodType)
	}
}

func TestServiceSendUnknownUser(t *testing.T) {
	f := setupService(t)

	_, err := f.service.Send(context.Background(), 999, "t", "m")
	if apperr.KindOf(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not_found", apperr.KindOf(err))
	}
}
