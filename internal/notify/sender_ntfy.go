package notify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ferrinbar/chorewheel/internal/model"
)

const defaultNtfyBaseURL = "https://ntfy.sh"

// NtfySender publishes notifications to an ntfy topic over plain HTTP.
type NtfySender struct {
	client  *http.Client
	baseURL string
}

func NewNtfySender(baseURL string) *NtfySender {
	if baseURL == "" {
		baseURL = defaultNtfyBaseURL
	}
	return &NtfySender{
		client:  &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *NtfySender) Type() string {
	return model.MethodNtfy
}

func (s *NtfySender) Send(ctx context.Context, n Notification, method *model.NotificationMethod) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		s.baseURL+"/"+method.Topic, strings.NewReader(n.Message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("Title", n.Title)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to ntfy: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("ntfy returned %d", resp.StatusCode)
	}
	return nil
}
