// Package notify delivers notifications to users through their configured
// method and records every attempt, delivered or not.
package notify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
)

// Notification is the content handed to a sender.
type Notification struct {
	Title   string
	Message string
}

// Sender delivers a notification through one method type.
type Sender interface {
	Type() string
	Send(ctx context.Context, n Notification, method *model.NotificationMethod) error
}

// Router dispatches a notification to the sender registered for the
// method's type.
type Router struct {
	senders map[string]Sender
}

func NewRouter(senders ...Sender) *Router {
	m := make(map[string]Sender, len(senders))
	for _, s := range senders {
		m[s.Type()] = s
	}
	return &Router{senders: m}
}

// Send panics when no sender is registered for the method's type: a user can
// only hold a preference for a type the server was built with, so a miss is
// a wiring bug, not a runtime condition.
func (r *Router) Send(ctx context.Context, n Notification, method *model.NotificationMethod) error {
	sender, ok := r.senders[method.Type]
	if !ok {
		panic(fmt.Sprintf("notify: no sender registered for method type %q", method.Type))
	}
	return sender.Send(ctx, n, method)
}

var ntfyTopicRegexp = regexp.MustCompile(`^[-_A-Za-z0-9]{1,64}$`)

// NewConsoleMethod builds a console delivery preference.
func NewConsoleMethod(userID int64, name string) (*model.NotificationMethod, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.Validation("console method name cannot be empty")
	}
	return &model.NotificationMethod{UserID: userID, Type: model.MethodConsole, Name: name}, nil
}

// NewNtfyMethod builds an ntfy topic preference.
func NewNtfyMethod(userID int64, topic string) (*model.NotificationMethod, error) {
	if !ntfyTopicRegexp.MatchString(topic) {
		return nil, apperr.Validation("topic must be 1-64 characters of letters, numbers, hyphens, and underscores")
	}
	return &model.NotificationMethod{UserID: userID, Type: model.MethodNtfy, Topic: topic}, nil
}

// NewWebPushMethod builds a web push subscription preference.
func NewWebPushMethod(userID int64, endpoint, p256dh, auth string) (*model.NotificationMethod, error) {
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, apperr.Validation("web push method requires endpoint, p256dh key, and auth key")
	}
	return &model.NotificationMethod{
		UserID:    userID,
		Type:      model.MethodWebPush,
		Endpoint:  endpoint,
		P256dhKey: p256dh,
		AuthKey:   auth,
	}, nil
}
