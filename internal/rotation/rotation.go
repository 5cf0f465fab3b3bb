// Package rotation implements the assignee rotation for a chore: an ordered
// list of assignees plus a cursor pointing at whoever is next. All functions
// are pure over the slice and cursor; persistence is the caller's problem.
package rotation

import (
	"sort"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
)

// Ordered returns the assignees sorted by sort order, tie-broken by row id
// so the order stays deterministic even if sort orders were corrupted by an
// external fixup.
func Ordered(assignees []model.Assignee) []model.Assignee {
	out := make([]model.Assignee, len(assignees))
	copy(out, assignees)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Normalize maps any cursor value, stale or negative, into [0, n). Zero when
// the list is empty.
func Normalize(index, n int) int {
	if n <= 0 {
		return 0
	}
	return ((index % n) + n) % n
}

// Next returns the assignee the cursor points at and the advanced cursor.
func Next(assignees []model.Assignee, cursor int) (model.Assignee, int, error) {
	ordered := Ordered(assignees)
	if len(ordered) == 0 {
		return model.Assignee{}, 0, apperr.InvalidOperation("chore has no assignees")
	}

	cursor = Normalize(cursor, len(ordered))
	next := ordered[cursor]
	return next, (cursor + 1) % len(ordered), nil
}

// Add inserts a user into the rotation at the given position (append when
// at == nil) and returns the re-indexed list and adjusted cursor. The cursor
// keeps pointing at the same logical person: an insertion at or before the
// cursor shifts it forward by one.
//
// An out-of-range position is a caller bug, not a domain condition.
func Add(assignees []model.Assignee, cursor int, userID int64, userName string, at *int) ([]model.Assignee, int, error) {
	for _, a := range assignees {
		if a.UserID == userID {
			return nil, 0, apperr.Conflict("user is already an assignee of this chore")
		}
	}

	ordered := Ordered(assignees)

	insertAt := len(ordered)
	if at != nil {
		insertAt = *at
	}
	if insertAt < 0 || insertAt > len(ordered) {
		panic("rotation: insert position out of range")
	}

	if len(ordered) > 0 {
		cursor = Normalize(cursor, len(ordered))
		if insertAt <= cursor {
			cursor++
		}
	}

	entry := model.Assignee{UserID: userID, UserName: userName, SortOrder: insertAt}
	ordered = append(ordered[:insertAt], append([]model.Assignee{entry}, ordered[insertAt:]...)...)
	reindex(ordered)

	return ordered, Normalize(cursor, len(ordered)), nil
}

// Remove drops a user from the rotation and returns the re-indexed list and
// adjusted cursor. Removing a position before the cursor shifts it back by
// one; an emptied rotation resets the cursor to zero.
func Remove(assignees []model.Assignee, cursor int, userID int64) ([]model.Assignee, int, error) {
	ordered := Ordered(assignees)

	removeAt := -1
	for i, a := range ordered {
		if a.UserID == userID {
			removeAt = i
			break
		}
	}
	if removeAt < 0 {
		return nil, 0, apperr.InvalidOperation("user is not assigned to this chore")
	}

	cursor = Normalize(cursor, len(ordered))

	ordered = append(ordered[:removeAt], ordered[removeAt+1:]...)
	reindex(ordered)

	if len(ordered) == 0 {
		return ordered, 0, nil
	}

	if removeAt < cursor {
		cursor--
	}
	return ordered, Normalize(cursor, len(ordered)), nil
}

func reindex(assignees []model.Assignee) {
	for i := range assignees {
		assignees[i].SortOrder = i
	}
}
