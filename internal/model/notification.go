package model

import "time"

// Notification method types. A user's preference carries exactly one.
const (
	MethodConsole = "console"
	MethodNtfy    = "ntfy"
	MethodWebPush = "webpush"
)

// NotificationMethod is a user's configured delivery method. Exactly one of
// the per-type fields is meaningful, selected by Type.
type NotificationMethod struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"user_id"`
	Type   string `json:"type"`

	// console
	Name string `json:"name,omitempty"`

	// ntfy
	Topic string `json:"topic,omitempty"`

	// webpush
	Endpoint  string `json:"endpoint,omitempty"`
	P256dhKey string `json:"p256dh_key,omitempty"`
	AuthKey   string `json:"auth_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Delivery status of a notification attempt. Pending exists only while the
// attempt is in flight; it is resolved before the attempt is returned to
// callers.
const (
	DeliveryPending   = "pending"
	DeliveryDelivered = "delivered"
	DeliveryFailed    = "failed"
)

// NotificationAttempt records one try at delivering a notification to a
// user, whatever the outcome.
type NotificationAttempt struct {
	ID            string     `json:"id"`
	UserID        int64      `json:"user_id"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	MethodType    *string    `json:"method_type"`
	AttemptedAt   time.Time  `json:"attempted_at"`
	Status        string     `json:"status"`
	DeliveredAt   *time.Time `json:"delivered_at"`
	FailureReason *string    `json:"failure_reason"`
}
