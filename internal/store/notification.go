package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ferrinbar/chorewheel/internal/model"
)

type NotificationStore struct {
	db *sql.DB
}

func NewNotificationStore(db *sql.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

const methodCols = `id, user_id, type, name, topic, endpoint, p256dh_key, auth_key, created_at`

// GetMethod returns the user's configured delivery method, or nil if none is
// set.
func (s *NotificationStore) GetMethod(userID int64) (*model.NotificationMethod, error) {
	var m model.NotificationMethod
	err := s.db.QueryRow(
		`SELECT `+methodCols+` FROM notification_methods WHERE user_id = ?`, userID,
	).Scan(&m.ID, &m.UserID, &m.Type, &m.Name, &m.Topic, &m.Endpoint, &m.P256dhKey, &m.AuthKey, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get notification method: %w", err)
	}
	return &m, nil
}

// SetMethod replaces the user's delivery method. One method per user.
func (s *NotificationStore) SetMethod(m *model.NotificationMethod) (*model.NotificationMethod, error) {
	_, err := s.db.Exec(
		`INSERT INTO notification_methods (user_id, type, name, topic, endpoint, p256dh_key, auth_key)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (user_id) DO UPDATE SET
			type = excluded.type, name = excluded.name, topic = excluded.topic,
			endpoint = excluded.endpoint, p256dh_key = excluded.p256dh_key, auth_key = excluded.auth_key`,
		m.UserID, m.Type, m.Name, m.Topic, m.Endpoint, m.P256dhKey, m.AuthKey,
	)
	if err != nil {
		return nil, fmt.Errorf("set notification method: %w", err)
	}
	return s.GetMethod(m.UserID)
}

const attemptCols = `id, user_id, title, message, method_type, attempted_at, status, delivered_at, failure_reason`

func (s *NotificationStore) InsertAttempt(a *model.NotificationAttempt) error {
	_, err := s.db.Exec(
		`INSERT INTO notification_attempts (`+attemptCols+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Title, a.Message, a.MethodType, a.AttemptedAt, a.Status, a.DeliveredAt, a.FailureReason,
	)
	if err != nil {
		return fmt.Errorf("insert notification attempt: %w", err)
	}
	return nil
}

// ListAttempts returns the user's notification history newest first, keyset
// paginated: pass the attempted-at of the last item seen to get the next
// page.
func (s *NotificationStore) ListAttempts(userID int64, pageSize int, after *time.Time) ([]model.NotificationAttempt, error) {
	rows, err := s.db.Query(
		`SELECT `+attemptCols+` FROM notification_attempts
		 WHERE user_id = ? AND (? IS NULL OR attempted_at < ?)
		 ORDER BY attempted_at DESC, id DESC
		 LIMIT ?`,
		userID, after, after, pageSize,
	)
	if err != nil {
		return nil, fmt.Errorf("list notification attempts: %w", err)
	}
	defer rows.Close()

	var attempts []model.NotificationAttempt
	for rows.Next() {
		var a model.NotificationAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.Title, &a.Message, &a.MethodType,
			&a.AttemptedAt, &a.Status, &a.DeliveredAt, &a.FailureReason); err != nil {
			return nil, fmt.Errorf("scan notification attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}
