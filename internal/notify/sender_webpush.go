package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ferrinbar/chorewheel/internal/model"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// WebPushSender delivers notifications through the browser push service a
// user subscribed with. Register it only when VAPID keys are configured.
type WebPushSender struct {
	publicKey  string
	privateKey string
	subscriber string
}

func NewWebPushSender(publicKey, privateKey, subscriber string) *WebPushSender {
	return &WebPushSender{
		publicKey:  publicKey,
		privateKey: privateKey,
		subscriber: subscriber,
	}
}

func (s *WebPushSender) Type() string {
	return model.MethodWebPush
}

type webPushPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *WebPushSender) Send(ctx context.Context, n Notification, method *model.NotificationMethod) error {
	data, err := json.Marshal(webPushPayload{Title: n.Title, Body: n.Message})
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, data, &webpush.Subscription{
		Endpoint: method.Endpoint,
		Keys: webpush.Keys{
			P256dh: method.P256dhKey,
			Auth:   method.AuthKey,
		},
	}, &webpush.Options{
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		Subscriber:      s.subscriber,
		TTL:             86400,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusGone {
		return fmt.Errorf("push subscription expired")
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("push service returned %d", resp.StatusCode)
	}
	return nil
}
