package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ferrinbar/chorewheel/internal/model"
)

type ChoreStore struct {
	db *sql.DB
}

func NewChoreStore(db *sql.DB) *ChoreStore {
	return &ChoreStore{db: db}
}

const choreCols = `id, title, description, schedule_start, interval_days, schedule_until,
	snooze_duration_seconds, next_assignee_index, created_at, updated_at`

func scanChore(scanner interface{ Scan(...any) error }) (*model.Chore, error) {
	var c model.Chore
	var snoozeSeconds sql.NullInt64
	err := scanner.Scan(
		&c.ID, &c.Title, &c.Description, &c.ScheduleStart, &c.IntervalDays, &c.ScheduleUntil,
		&snoozeSeconds, &c.NextAssigneeIndex, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if snoozeSeconds.Valid {
		d := time.Duration(snoozeSeconds.Int64) * time.Second
		c.SnoozeDuration = &d
	}
	return &c, nil
}

func snoozeSecondsArg(d *time.Duration) any {
	if d == nil {
		return nil
	}
	return int64(d.Seconds())
}

func (s *ChoreStore) Create(c *model.Chore) (*model.Chore, error) {
	result, err := s.db.Exec(
		`INSERT INTO chores (title, description, schedule_start, interval_days, schedule_until, snooze_duration_seconds)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.Title, c.Description, c.ScheduleStart, c.IntervalDays, c.ScheduleUntil, snoozeSecondsArg(c.SnoozeDuration),
	)
	if err != nil {
		return nil, fmt.Errorf("insert chore: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChoreStore) List() ([]model.Chore, error) {
	rows, err := s.db.Query(`SELECT ` + choreCols + ` FROM chores ORDER BY title ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list chores: %w", err)
	}
	defer rows.Close()

	var chores []model.Chore
	for rows.Next() {
		c, err := scanChore(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chore: %w", err)
		}
		chores = append(chores, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range chores {
		assignees, err := s.ListAssignees(chores[i].ID)
		if err != nil {
			return nil, err
		}
		chores[i].Assignees = assignees
	}
	return chores, nil
}

// GetByID returns the chore with its assignees loaded, or nil if it does not
// exist.
func (s *ChoreStore) GetByID(id int64) (*model.Chore, error) {
	row := s.db.QueryRow(`SELECT `+choreCols+` FROM chores WHERE id = ?`, id)
	c, err := scanChore(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get chore: %w", err)
	}

	c.Assignees, err = s.ListAssignees(id)
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *ChoreStore) Update(c *model.Chore) (*model.Chore, error) {
	_, err := s.db.Exec(
		`UPDATE chores SET title = ?, description = ?, schedule_start = ?, interval_days = ?,
		 schedule_until = ?, snooze_duration_seconds = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		c.Title, c.Description, c.ScheduleStart, c.IntervalDays, c.ScheduleUntil,
		snoozeSecondsArg(c.SnoozeDuration), c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update chore: %w", err)
	}
	return s.GetByID(c.ID)
}

func (s *ChoreStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM chores WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chore: %w", err)
	}
	return nil
}

func (s *ChoreStore) ListAssignees(choreID int64) ([]model.Assignee, error) {
	rows, err := s.db.Query(
		`SELECT ca.id, ca.chore_id, ca.user_id, u.name, ca.sort_order, ca.created_at
		 FROM chore_assignees ca
		 JOIN users u ON u.id = ca.user_id
		 WHERE ca.chore_id = ?
		 ORDER BY ca.sort_order ASC, ca.id ASC`,
		choreID,
	)
	if err != nil {
		return nil, fmt.Errorf("list assignees: %w", err)
	}
	defer rows.Close()

	var assignees []model.Assignee
	for rows.Next() {
		var a model.Assignee
		if err := rows.Scan(&a.ID, &a.ChoreID, &a.UserID, &a.UserName, &a.SortOrder, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assignee: %w", err)
		}
		assignees = append(assignees, a)
	}
	return assignees, rows.Err()
}

// SaveRotation replaces the chore's rotation in one transaction: sort orders
// are upserted per user, assignees no longer in the list are removed, and
// the cursor is written. Existing rows keep their ids so ordering ties stay
// stable.
func (s *ChoreStore) SaveRotation(choreID int64, assignees []model.Assignee, cursor int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	keep := make([]any, 0, len(assignees)+1)
	keep = append(keep, choreID)
	placeholders := ""
	for i, a := range assignees {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		keep = append(keep, a.UserID)

		if _, err := tx.Exec(
			`INSERT INTO chore_assignees (chore_id, user_id, sort_order) VALUES (?, ?, ?)
			 ON CONFLICT (chore_id, user_id) DO UPDATE SET sort_order = excluded.sort_order`,
			choreID, a.UserID, a.SortOrder,
		); err != nil {
			return fmt.Errorf("upsert assignee %d: %w", a.UserID, err)
		}
	}

	deleteQuery := `DELETE FROM chore_assignees WHERE chore_id = ?`
	if len(assignees) > 0 {
		deleteQuery += ` AND user_id NOT IN (` + placeholders + `)`
	}
	if _, err := tx.Exec(deleteQuery, keep...); err != nil {
		return fmt.Errorf("prune assignees: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE chores SET next_assignee_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		cursor, choreID,
	); err != nil {
		return fmt.Errorf("update cursor: %w", err)
	}

	return tx.Commit()
}

// UpdateCursor persists just the rotation cursor.
func (s *ChoreStore) UpdateCursor(choreID int64, cursor int) error {
	_, err := s.db.Exec(
		`UPDATE chores SET next_assignee_index = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		cursor, choreID,
	)
	if err != nil {
		return fmt.Errorf("update cursor: %w", err)
	}
	return nil
}
