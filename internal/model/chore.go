package model

import (
	"strings"
	"time"

	"github.com/ferrinbar/chorewheel/internal/apperr"
)

type Chore struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// Schedule fields; see internal/recurrence.
	ScheduleStart time.Time  `json:"schedule_start"`
	IntervalDays  int        `json:"interval_days"`
	ScheduleUntil *time.Time `json:"schedule_until"`

	// Nil means the chore cannot be snoozed.
	SnoozeDuration *time.Duration `json:"snooze_duration"`

	// Index into the ordered assignee list; may be stale and must be
	// normalized before use.
	NextAssigneeIndex int `json:"next_assignee_index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Assignees []Assignee `json:"assignees,omitempty"`
}

// Assignee is one entry in a chore's rotation, ordered by SortOrder.
type Assignee struct {
	ID        int64     `json:"id"`
	ChoreID   int64     `json:"chore_id"`
	UserID    int64     `json:"user_id"`
	UserName  string    `json:"user_name"`
	SortOrder int       `json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Chore) AllowSnooze() bool {
	return c.SnoozeDuration != nil
}

const (
	maxChoreTitleLen       = 100
	maxChoreDescriptionLen = 1000
)

// NewChore validates the user-supplied fields and returns an unsaved chore.
// Schedule fields are validated separately by the recurrence package.
func NewChore(title, description string, snoozeDuration *time.Duration) (*Chore, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperr.Validation("title cannot be empty")
	}
	if len(title) > maxChoreTitleLen {
		return nil, apperr.Validation("title cannot exceed 100 characters")
	}
	if len(description) > maxChoreDescriptionLen {
		return nil, apperr.Validation("description cannot exceed 1000 characters")
	}
	if snoozeDuration != nil && *snoozeDuration <= 0 {
		return nil, apperr.Validation("snooze duration must be greater than zero")
	}

	return &Chore{
		Title:          title,
		Description:    description,
		SnoozeDuration: snoozeDuration,
	}, nil
}
