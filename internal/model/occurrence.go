package model

import "time"

// Occurrence is one concrete due instance of a recurring chore, assigned to
// a single user. ScheduledFor is the original due instant and never changes;
// DueAt moves forward when the occurrence is snoozed.
type Occurrence struct {
	ID      int64 `json:"id"`
	ChoreID int64 `json:"chore_id"`
	UserID  int64 `json:"user_id"`

	ScheduledFor   time.Time  `json:"scheduled_for"`
	DueAt          time.Time  `json:"due_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	LastNotifiedAt *time.Time `json:"last_notified_at"`

	CreatedAt time.Time `json:"created_at"`

	// Denormalized for listings and reminder messages.
	ChoreTitle string `json:"chore_title,omitempty"`
	UserName   string `json:"user_name,omitempty"`
}

func (o *Occurrence) Open() bool {
	return o.CompletedAt == nil
}

// IsDue reports whether the occurrence is open and past its due time.
func (o *Occurrence) IsDue(now time.Time) bool {
	return o.CompletedAt == nil && !now.Before(o.DueAt)
}
