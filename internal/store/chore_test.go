package store

import (
	"testing"
	"time"

	"github.com/ferrinbar/chorewheel/internal/model"
)

var choreStart = time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)

func choreStores(t *testing.T) (*ChoreStore, *UserStore) {
	t.Helper()
	db := setupTestDB(t)
	return NewChoreStore(db), NewUserStore(db)
}

func TestChoreCreate(t *testing.T) {
	cs, _ := choreStores(t)

	snooze := 2 * time.Hour
	c, err := cs.Create(&model.Chore{
		Title:          "Dishes",
		Description:    "Every evening",
		ScheduleStart:  choreStart,
		IntervalDays:   7,
		SnoozeDuration: &snooze,
	})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if c.ID == 0 {
		t.Error("expected non-zero ID")
	}
	if c.SnoozeDuration == nil || *c.SnoozeDuration != snooze {
		t.Errorf("snooze = %v, want %v", c.SnoozeDuration, snooze)
	}
	if c.NextAssigneeIndex != 0 {
		t.Errorf("cursor = %d, want 0", c.NextAssigneeIndex)
	}
}

func TestChoreCreateNoSnooze(t *testing.T) {
	cs, _ := choreStores(t)

	c, err := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 1})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}
	if c.SnoozeDuration != nil {
		t.Errorf("snooze = %v, want nil", c.SnoozeDuration)
	}
	if c.AllowSnooze() {
		t.Error("chore without snooze duration must not allow snoozing")
	}
}

func TestChoreCreateRejectsZeroInterval(t *testing.T) {
	cs, _ := choreStores(t)

	if _, err := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 0}); err == nil {
		t.Fatal("expected CHECK constraint error for interval 0")
	}
}

func TestChoreGetByIDNotFound(t *testing.T) {
	cs, _ := choreStores(t)

	c, err := cs.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if c != nil {
		t.Error("expected nil for nonexistent chore")
	}
}

func TestChoreUpdate(t *testing.T) {
	cs, _ := choreStores(t)

	c, err := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 7})
	if err != nil {
		t.Fatalf("create chore: %v", err)
	}

	c.Title = "Dishes and counters"
	c.IntervalDays = 3
	until := choreStart.AddDate(0, 6, 0)
	c.ScheduleUntil = &until

	updated, err := cs.Update(c)
	if err != nil {
		t.Fatalf("update chore: %v", err)
	}
	if updated.Title != "Dishes and counters" || updated.IntervalDays != 3 {
		t.Errorf("updated = %+v", updated)
	}
	if updated.ScheduleUntil == nil || !updated.ScheduleUntil.Equal(until) {
		t.Errorf("until = %v, want %v", updated.ScheduleUntil, until)
	}
}

func TestChoreDeleteCascadesAssignees(t *testing.T) {
	cs, us := choreStores(t)

	u, _ := us.Create("Alice")
	c, _ := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 7})
	if err := cs.SaveRotation(c.ID, []model.Assignee{{UserID: u.ID, SortOrder: 0}}, 0); err != nil {
		t.Fatalf("save rotation: %v", err)
	}

	if err := cs.Delete(c.ID); err != nil {
		t.Fatalf("delete chore: %v", err)
	}

	assignees, err := cs.ListAssignees(c.ID)
	if err != nil {
		t.Fatalf("list assignees: %v", err)
	}
	if len(assignees) != 0 {
		t.Errorf("got %d assignees after delete, want 0", len(assignees))
	}
}

func TestSaveRotationUpsertsAndPrunes(t *testing.T) {
	cs, us := choreStores(t)

	alice, _ := us.Create("Alice")
	bob, _ := us.Create("Bob")
	carol, _ := us.Create("Carol")

	c, _ := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 7})

	rotation := []model.Assignee{
		{UserID: alice.ID, SortOrder: 0},
		{UserID: bob.ID, SortOrder: 1},
		{UserID: carol.ID, SortOrder: 2},
	}
	if err := cs.SaveRotation(c.ID, rotation, 1); err != nil {
		t.Fatalf("save rotation: %v", err)
	}

	loaded, _ := cs.GetByID(c.ID)
	if len(loaded.Assignees) != 3 {
		t.Fatalf("got %d assignees, want 3", len(loaded.Assignees))
	}
	if loaded.NextAssigneeIndex != 1 {
		t.Errorf("cursor = %d, want 1", loaded.NextAssigneeIndex)
	}
	bobRowID := loaded.Assignees[1].ID

	// Drop Alice and swap the remaining order; Bob's row must survive with
	// its id intact.
	rotation = []model.Assignee{
		{UserID: carol.ID, SortOrder: 0},
		{UserID: bob.ID, SortOrder: 1},
	}
	if err := cs.SaveRotation(c.ID, rotation, 0); err != nil {
		t.Fatalf("save rotation: %v", err)
	}

	loaded, _ = cs.GetByID(c.ID)
	if len(loaded.Assignees) != 2 {
		t.Fatalf("got %d assignees, want 2", len(loaded.Assignees))
	}
	if loaded.Assignees[0].UserID != carol.ID || loaded.Assignees[1].UserID != bob.ID {
		t.Errorf("order = %d, %d, want carol, bob", loaded.Assignees[0].UserID, loaded.Assignees[1].UserID)
	}
	if loaded.Assignees[1].ID != bobRowID {
		t.Errorf("bob's row id = %d, want %d (row must be updated, not recreated)", loaded.Assignees[1].ID, bobRowID)
	}
}

func TestSaveRotationEmptyClearsAll(t *testing.T) {
	cs, us := choreStores(t)

	u, _ := us.Create("Alice")
	c, _ := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 7})
	if err := cs.SaveRotation(c.ID, []model.Assignee{{UserID: u.ID, SortOrder: 0}}, 0); err != nil {
		t.Fatalf("save rotation: %v", err)
	}

	if err := cs.SaveRotation(c.ID, nil, 0); err != nil {
		t.Fatalf("save empty rotation: %v", err)
	}

	loaded, _ := cs.GetByID(c.ID)
	if len(loaded.Assignees) != 0 {
		t.Errorf("got %d assignees, want 0", len(loaded.Assignees))
	}
}

func TestListAssigneesCarriesUserName(t *testing.T) {
	cs, us := choreStores(t)

	u, _ := us.Create("Alice")
	c, _ := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 7})
	if err := cs.SaveRotation(c.ID, []model.Assignee{{UserID: u.ID, SortOrder: 0}}, 0); err != nil {
		t.Fatalf("save rotation: %v", err)
	}

	assignees, err := cs.ListAssignees(c.ID)
	if err != nil {
		t.Fatalf("list assignees: %v", err)
	}
	if len(assignees) != 1 || assignees[0].UserName != "Alice" {
		t.Errorf("assignees = %+v, want Alice", assignees)
	}
}

func TestUpdateCursor(t *testing.T) {
	cs, _ := choreStores(t)

	c, _ := cs.Create(&model.Chore{Title: "Dishes", ScheduleStart: choreStart, IntervalDays: 7})
	if err := cs.UpdateCursor(c.ID, 4); err != nil {
		t.Fatalf("update cursor: %v", err)
	}

	loaded, _ := cs.GetByID(c.ID)
	if loaded.NextAssigneeIndex != 4 {
		t.Errorf("cursor = %d, want 4", loaded.NextAssigneeIndex)
	}
}
