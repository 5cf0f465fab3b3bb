package rotation

import (
	"testing"

	"github.com/ferrinbar/chorewheel/internal/apperr"
	"github.com/ferrinbar/chorewheel/internal/model"
)

func threeAssignees() []model.Assignee {
	return []model.Assignee{
		{ID: 1, UserID: 10, UserName: "Alice", SortOrder: 0},
		{ID: 2, UserID: 20, UserName: "Bob", SortOrder: 1},
		{ID: 3, UserID: 30, UserName: "Carol", SortOrder: 2},
	}
}

func TestNextCyclesFairly(t *testing.T) {
	assignees := threeAssignees()
	cursor := 0

	counts := map[int64]int{}
	for i := 0; i < 9; i++ {
		next, advanced, err := Next(assignees, cursor)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		counts[next.UserID]++
		cursor = advanced
	}

	for _, userID := range []int64{10, 20, 30} {
		if counts[userID] != 3 {
			t.Errorf("user %d picked %d times over 9 turns, want 3", userID, counts[userID])
		}
	}
	if cursor != 0 {
		t.Errorf("cursor after 9 turns = %d, want 0", cursor)
	}
}

func TestNextEmptyRotation(t *testing.T) {
	_, _, err := Next(nil, 0)
	if err == nil {
		t.Fatal("expected error for empty rotation")
	}
	if apperr.KindOf(err) != apperr.KindInvalidOperation {
		t.Errorf("kind = %v, want invalid_operation", apperr.KindOf(err))
	}
}

func TestNextNormalizesStaleCursor(t *testing.T) {
	assignees := threeAssignees()

	next, advanced, err := Next(assignees, 7) // 7 mod 3 == 1
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if next.UserID != 20 {
		t.Errorf("next = user %d, want 20", next.UserID)
	}
	if advanced != 2 {
		t.Errorf("advanced cursor = %d, want 2", advanced)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		index, n, want int
	}{
		{0, 3, 0},
		{2, 3, 2},
		{3, 3, 0},
		{7, 3, 1},
		{-1, 3, 2},
		{-4, 3, 2},
		{5, 0, 0},
	}
	for _, tt := range tests {
		if got := Normalize(tt.index, tt.n); got != tt.want {
			t.Errorf("Normalize(%d, %d) = %d, want %d", tt.index, tt.n, got, tt.want)
		}
	}
}

func TestOrderedTieBreaksByID(t *testing.T) {
	assignees := []model.Assignee{
		{ID: 5, UserID: 50, SortOrder: 1},
		{ID: 2, UserID: 20, SortOrder: 1},
		{ID: 9, UserID: 90, SortOrder: 0},
	}

	ordered := Ordered(assignees)
	wantIDs := []int64{9, 2, 5}
	for i, a := range ordered {
		if a.ID != wantIDs[i] {
			t.Errorf("ordered[%d].ID = %d, want %d", i, a.ID, wantIDs[i])
		}
	}
}

func TestAddAppends(t *testing.T) {
	assignees, cursor, err := Add(threeAssignees(), 1, 40, "Dave", nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(assignees) != 4 {
		t.Fatalf("len = %d, want 4", len(assignees))
	}
	if assignees[3].UserID != 40 || assignees[3].SortOrder != 3 {
		t.Errorf("appended = %+v, want user 40 at position 3", assignees[3])
	}
	if cursor != 1 {
		t.Errorf("cursor = %d, want 1 (append after cursor leaves it alone)", cursor)
	}
}

func TestAddBeforeCursorShiftsIt(t *testing.T) {
	at := 0
	assignees, cursor, err := Add(threeAssignees(), 1, 40, "Dave", &at)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Cursor pointed at Bob; it still must.
	if cursor != 2 {
		t.Errorf("cursor = %d, want 2", cursor)
	}
	if assignees[cursor].UserID != 20 {
		t.Errorf("cursor points at user %d, want 20 (Bob)", assignees[cursor].UserID)
	}
}

func TestAddAtCursorShiftsIt(t *testing.T) {
	at := 1
	assignees, cursor, err := Add(threeAssignees(), 1, 40, "Dave", &at)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if cursor != 2 {
		t.Errorf("cursor = %d, want 2", cursor)
	}
	if assignees[cursor].UserID != 20 {
		t.Errorf("cursor points at user %d, want 20 (Bob)", assignees[cursor].UserID)
	}
}

func TestAddToEmptyRotation(t *testing.T) {
	assignees, cursor, err := Add(nil, 0, 10, "Alice", nil)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if len(assignees) != 1 || assignees[0].SortOrder != 0 {
		t.Errorf("assignees = %+v, want single entry at position 0", assignees)
	}
	if cursor != 0 {
		t.Errorf("cursor = %d, want 0", cursor)
	}
}

func TestAddDuplicateUser(t *testing.T) {
	_, _, err := Add(threeAssignees(), 0, 20, "Bob", nil)
	if err == nil {
		t.Fatal("expected error for duplicate user")
	}
	if apperr.KindOf(err) != apperr.KindConflict {
		t.Errorf("kind = %v, want conflict", apperr.KindOf(err))
	}
}

func TestAddOutOfRangePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for out-of-range position")
		}
	}()

	at := 5
	Add(threeAssignees(), 0, 40, "Dave", &at)
}

func TestAddReindexesSortOrder(t *testing.T) {
	at := 1
	assignees, _, err := Add(threeAssignees(), 0, 40, "Dave", &at)
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	for i, a := range assignees {
		if a.SortOrder != i {
			t.Errorf("assignees[%d].SortOrder = %d, want %d", i, a.SortOrder, i)
		}
	}
}

func TestRemoveBeforeCursorShiftsItBack(t *testing.T) {
	// Cursor at Carol (2); removing Alice (0) must keep it on Carol.
	assignees, cursor, err := Remove(threeAssignees(), 2, 10)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(assignees) != 2 {
		t.Fatalf("len = %d, want 2", len(assignees))
	}
	if cursor != 1 {
		t.Errorf("cursor = %d, want 1", cursor)
	}
	if assignees[cursor].UserID != 30 {
		t.Errorf("cursor points at user %d, want 30 (Carol)", assignees[cursor].UserID)
	}
}

func TestRemoveAtCursor(t *testing.T) {
	// Removing the person the cursor points at leaves it on their successor.
	assignees, cursor, err := Remove(threeAssignees(), 1, 20)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cursor != 1 {
		t.Errorf("cursor = %d, want 1", cursor)
	}
	if assignees[cursor].UserID != 30 {
		t.Errorf("cursor points at user %d, want 30 (Carol)", assignees[cursor].UserID)
	}
}

func TestRemoveLastWrapsCursor(t *testing.T) {
	// Cursor at Carol (2); removing Carol wraps the cursor to the front.
	_, cursor, err := Remove(threeAssignees(), 2, 30)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if cursor != 0 {
		t.Errorf("cursor = %d, want 0", cursor)
	}
}

func TestRemoveToEmptyResetsCursor(t *testing.T) {
	single := []model.Assignee{{ID: 1, UserID: 10, SortOrder: 0}}
	assignees, cursor, err := Remove(single, 0, 10)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(assignees) != 0 {
		t.Errorf("len = %d, want 0", len(assignees))
	}
	if cursor != 0 {
		t.Errorf("cursor = %d, want 0", cursor)
	}
}

func TestRemoveUnknownUser(t *testing.T) {
	_, _, err := Remove(threeAssignees(), 0, 99)
	if err == nil {
		t.Fatal("expected error for unknown user")
	}
	if apperr.KindOf(err) != apperr.KindInvalidOperation {
		t.Errorf("kind = %v, want invalid_operation", apperr.KindOf(err))
	}
}

func TestRemoveReindexesSortOrder(t *testing.T) {
	assignees, _, err := Remove(threeAssignees(), 0, 20)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for i, a := range assignees {
		if a.SortOrder != i {
			t.Errorf("assignees[%d].SortOrder = %d, want %d", i, a.SortOrder, i)
		}
	}
}
