package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ferrinbar/chorewheel/internal/model"
)

type OccurrenceStore struct {
	db *sql.DB
}

func NewOccurrenceStore(db *sql.DB) *OccurrenceStore {
	return &OccurrenceStore{db: db}
}

const occurrenceCols = `o.id, o.chore_id, o.user_id, o.scheduled_for, o.due_at,
	o.completed_at, o.last_notified_at, o.created_at, c.title, u.name`

const occurrenceFrom = ` FROM occurrences o
	JOIN chores c ON c.id = o.chore_id
	JOIN users u ON u.id = o.user_id`

func scanOccurrence(scanner interface{ Scan(...any) error }) (*model.Occurrence, error) {
	var o model.Occurrence
	err := scanner.Scan(
		&o.ID, &o.ChoreID, &o.UserID, &o.ScheduledFor, &o.DueAt,
		&o.CompletedAt, &o.LastNotifiedAt, &o.CreatedAt, &o.ChoreTitle, &o.UserName,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (s *OccurrenceStore) Create(o *model.Occurrence) (*model.Occurrence, error) {
	result, err := s.db.Exec(
		`INSERT INTO occurrences (chore_id, user_id, scheduled_for, due_at) VALUES (?, ?, ?, ?)`,
		o.ChoreID, o.UserID, o.ScheduledFor, o.DueAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert occurrence: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OccurrenceStore) GetByID(id int64) (*model.Occurrence, error) {
	row := s.db.QueryRow(`SELECT `+occurrenceCols+occurrenceFrom+` WHERE o.id = ?`, id)
	o, err := scanOccurrence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get occurrence: %w", err)
	}
	return o, nil
}

// HasOpenForChore reports whether the chore already has an occurrence
// without a completion timestamp.
func (s *OccurrenceStore) HasOpenForChore(choreID int64) (bool, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM occurrences WHERE chore_id = ? AND completed_at IS NULL`,
		choreID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count open occurrences: %w", err)
	}
	return n > 0, nil
}

func (s *OccurrenceStore) ListByUser(userID int64) ([]model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+occurrenceFrom+` WHERE o.user_id = ? ORDER BY o.due_at ASC, o.id ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

// CountOverdue reports how many open occurrences are past due at the given
// instant, regardless of reminder cooldown.
func (s *OccurrenceStore) CountOverdue(now time.Time) (int, error) {
	var n int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM occurrences WHERE completed_at IS NULL AND due_at <= ?`,
		now,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue occurrences: %w", err)
	}
	return n, nil
}

// ListOverdue returns open occurrences due at or before the given instant
// that have never been notified or were last notified at or before the
// cooldown cutoff.
func (s *OccurrenceStore) ListOverdue(now, notifiedCutoff time.Time) ([]model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+occurrenceFrom+`
		 WHERE o.completed_at IS NULL
		   AND o.due_at <= ?
		   AND (o.last_notified_at IS NULL OR o.last_notified_at <= ?)
		 ORDER BY o.due_at ASC`,
		now, notifiedCutoff,
	)
	if err != nil {
		return nil, fmt.Errorf("list overdue occurrences: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

func collectOccurrences(rows *sql.Rows) ([]model.Occurrence, error) {
	var occs []model.Occurrence
	for rows.Next() {
		o, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		occs = append(occs, *o)
	}
	return occs, rows.Err()
}

// Save writes back the mutable lifecycle fields: due time, completion and
// last-notified timestamps.
func (s *OccurrenceStore) Save(o *model.Occurrence) error {
	_, err := s.db.Exec(
		`UPDATE occurrences SET due_at = ?, completed_at = ?, last_notified_at = ? WHERE id = ?`,
		o.DueAt, o.CompletedAt, o.LastNotifiedAt, o.ID,
	)
	if err != nil {
		return fmt.Errorf("save occurrence: %w", err)
	}
	return nil
}

// MarkNotified sets last_notified_at only if the occurrence is still open,
// so a completion racing the sweeper never resurrects reminder state.
func (s *OccurrenceStore) MarkNotified(id int64, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE occurrences SET last_notified_at = ? WHERE id = ? AND completed_at IS NULL`,
		at, id,
	)
	if err != nil {
		return fmt.Errorf("mark notified: %w", err)
	}
	return nil
}

// UserStatistics summarizes a user's occurrence history.
type UserStatistics struct {
	TotalAssigned   int     `json:"total_assigned"`
	TotalCompleted  int     `json:"total_completed"`
	SnoozeFrequency float64 `json:"snooze_frequency"`
	// Mean of (completed_at - due_at) over completed occurrences. Negative
	// means the user finishes early on average.
	AvgCompletionLagSeconds float64 `json:"avg_completion_lag_seconds"`
}

func (s *OccurrenceStore) UserStatistics(userID int64, from, to *time.Time) (*UserStatistics, error) {
	var st UserStatistics
	err := s.db.QueryRow(
		`SELECT
			COUNT(*),
			COUNT(completed_at),
			COALESCE(AVG(CASE WHEN scheduled_for != due_at THEN 1.0 ELSE 0.0 END), 0),
			COALESCE(AVG(CASE WHEN completed_at IS NOT NULL
				THEN (julianday(completed_at) - julianday(due_at)) * 86400.0 END), 0)
		 FROM occurrences
		 WHERE user_id = ?
		   AND (? IS NULL OR due_at >= ?)
		   AND (? IS NULL OR due_at <= ?)`,
		userID, from, from, to, to,
	).Scan(&st.TotalAssigned, &st.TotalCompleted, &st.SnoozeFrequency, &st.AvgCompletionLagSeconds)
	if err != nil {
		return nil, fmt.Errorf("user statistics: %w", err)
	}
	return &st, nil
}
