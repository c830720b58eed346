package repo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"remindex/db"
	"remindex/models"
)

var testStore *db.Store

func TestMain(m *testing.M) {
	// Setup
	dbPath := "./test_repo.db"
	var err error
	testStore, err = db.Open(dbPath)
	if err != nil {
		panic(err)
	}

	// Run tests
	code := m.Run()

	// Teardown
	testStore.Close()
	os.Remove(dbPath)

	os.Exit(code)
}

func TestUserCreateAndReadBack(t *testing.T) {
	users := NewUserRepo(testStore)
	ctx := context.Background()

	u := &models.User{Username: "alice", Password: "secret1", Email: "a@x.com"}
	id, err := users.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Expected positive generated id, got %d", id)
	}

	got, err := users.ByID(ctx, id)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if got.Username != "alice" || got.Email != "a@x.com" {
		t.Errorf("Read-back mismatch: %+v", got)
	}
	if got.DisplayName != "alice" {
		t.Errorf("DisplayName should default to username, got '%s'", got.DisplayName)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt was not set")
	}
}

func TestUserDuplicateUsername(t *testing.T) {
	users := NewUserRepo(testStore)
	ctx := context.Background()

	if _, err := users.Create(ctx, &models.User{Username: "bob", Password: "secret1"}); err != nil {
		t.Fatalf("First create failed: %v", err)
	}

	_, err := users.Create(ctx, &models.User{Username: "bob", Password: "other12"})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("Expected ErrDuplicate for second 'bob', got %v", err)
	}
}

func TestUserByCredentials(t *testing.T) {
	users := NewUserRepo(testStore)
	ctx := context.Background()

	users.Create(ctx, &models.User{Username: "carol", Password: "pass123"})

	if _, err := users.ByCredentials(ctx, "carol", "pass123"); err != nil {
		t.Errorf("Expected credential match, got %v", err)
	}

	// Both a wrong password and an unknown username yield ErrNotFound
	if _, err := users.ByCredentials(ctx, "carol", "wrong"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for wrong password, got %v", err)
	}
	if _, err := users.ByCredentials(ctx, "nobody", "pass123"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound for unknown user, got %v", err)
	}
}

func TestReminderRoundTrip(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	rem := &models.Reminder{
		UserID:    1,
		Title:     "Buy milk",
		Content:   "",
		CreatedAt: now,
		UpdatedAt: now,
		Category:  "Shopping",
		Priority:  models.PriorityNormal,
	}
	id, err := reminders.Insert(ctx, rem)
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if id <= 0 {
		t.Fatalf("Expected positive generated id, got %d", id)
	}

	got, err := reminders.ByID(ctx, 1, id)
	if err != nil {
		t.Fatalf("ByID failed: %v", err)
	}
	if got.Title != "Buy milk" || got.Category != "Shopping" || got.Priority != models.PriorityNormal {
		t.Errorf("Round-trip mismatch: %+v", got)
	}
	if !got.CreatedAt.Equal(now) || !got.UpdatedAt.Equal(now) {
		t.Errorf("Timestamp mismatch: created=%v updated=%v want %v", got.CreatedAt, got.UpdatedAt, now)
	}
}

func TestReminderScoping(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	now := time.Now()
	id, err := reminders.Insert(ctx, &models.Reminder{
		UserID: 2, Title: "user2 private", Content: "", CreatedAt: now, UpdatedAt: now,
		Category: models.DefaultCategory,
	})
	if err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	// User 3 must not see, update or delete user 2's reminder
	if _, err := reminders.ByID(ctx, 3, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound reading foreign reminder, got %v", err)
	}
	if err := reminders.DeleteByID(ctx, 3, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound deleting foreign reminder, got %v", err)
	}

	list, err := reminders.AllForUser(ctx, 3)
	if err != nil {
		t.Fatalf("AllForUser failed: %v", err)
	}
	for _, rem := range list {
		if rem.ID == id {
			t.Error("Foreign reminder leaked into another user's listing")
		}
	}

	// The owner still sees it
	if _, err := reminders.ByID(ctx, 2, id); err != nil {
		t.Errorf("Owner could not read own reminder: %v", err)
	}
}

func TestReminderSearch(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	now := time.Now()
	reminders.Insert(ctx, &models.Reminder{
		UserID: 5, Title: "Buy Milk", Content: "", CreatedAt: now, UpdatedAt: now,
		Category: models.DefaultCategory,
	})
	reminders.Insert(ctx, &models.Reminder{
		UserID: 5, Title: "Meeting", Content: "bring milk jug", CreatedAt: now, UpdatedAt: now,
		Category: models.DefaultCategory,
	})
	reminders.Insert(ctx, &models.Reminder{
		UserID: 5, Title: "Unrelated", Content: "nothing here", CreatedAt: now, UpdatedAt: now,
		Category: models.DefaultCategory,
	})

	// Case-insensitive substring over title OR content
	results, err := reminders.Search(ctx, 5, "milk")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 matches for 'milk', got %d", len(results))
	}
	for _, rem := range results {
		if rem.Title == "Unrelated" {
			t.Error("Search returned a non-matching reminder")
		}
	}
}

func TestReminderUpdatePreservesIdentity(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	created := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
	rem := &models.Reminder{
		UserID: 6, Title: "Original", Content: "v1", CreatedAt: created, UpdatedAt: created,
		Category: models.DefaultCategory, Priority: models.PriorityNormal,
	}
	id, _ := reminders.Insert(ctx, rem)

	updated := *rem
	updated.Title = "Edited"
	updated.Content = "v2"
	updated.Priority = models.PriorityUrgent
	updated.UpdatedAt = time.Now().Truncate(time.Millisecond)
	if err := reminders.Update(ctx, updated); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := reminders.ByID(ctx, 6, id)
	if err != nil {
		t.Fatalf("ByID after update failed: %v", err)
	}
	if got.ID != id {
		t.Errorf("Update changed id: %d != %d", got.ID, id)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("Update changed createdAt: %v != %v", got.CreatedAt, created)
	}
	if got.UpdatedAt.Before(created) {
		t.Error("UpdatedAt went backwards")
	}
	if got.Title != "Edited" || got.Priority != models.PriorityUrgent {
		t.Errorf("Mutable fields not updated: %+v", got)
	}
}

func TestReminderOrdering(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	reminders.Insert(ctx, &models.Reminder{
		UserID: 7, Title: "older", Content: "", CreatedAt: base.Add(-2 * time.Hour), UpdatedAt: base.Add(-2 * time.Hour),
		Category: models.DefaultCategory,
	})
	reminders.Insert(ctx, &models.Reminder{
		UserID: 7, Title: "newer", Content: "", CreatedAt: base, UpdatedAt: base,
		Category: models.DefaultCategory,
	})

	list, err := reminders.AllForUser(ctx, 7)
	if err != nil {
		t.Fatalf("AllForUser failed: %v", err)
	}
	if len(list) != 2 || list[0].Title != "newer" {
		t.Errorf("Expected updatedAt-descending order, got %+v", list)
	}
}

func TestReminderDeleteAllForUser(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	now := time.Now()
	reminders.Insert(ctx, &models.Reminder{UserID: 8, Title: "a", Content: "", CreatedAt: now, UpdatedAt: now, Category: models.DefaultCategory})
	reminders.Insert(ctx, &models.Reminder{UserID: 8, Title: "b", Content: "", CreatedAt: now, UpdatedAt: now, Category: models.DefaultCategory})
	keepID, _ := reminders.Insert(ctx, &models.Reminder{UserID: 9, Title: "keep", Content: "", CreatedAt: now, UpdatedAt: now, Category: models.DefaultCategory})

	deleted, err := reminders.DeleteAllForUser(ctx, 8)
	if err != nil {
		t.Fatalf("DeleteAllForUser failed: %v", err)
	}
	if deleted != 2 {
		t.Errorf("Expected 2 deleted rows, got %d", deleted)
	}

	if _, err := reminders.ByID(ctx, 9, keepID); err != nil {
		t.Errorf("Bulk delete touched another user's reminder: %v", err)
	}
}

func TestReminderCategories(t *testing.T) {
	reminders := NewReminderRepo(testStore)
	ctx := context.Background()

	now := time.Now()
	reminders.Insert(ctx, &models.Reminder{UserID: 10, Title: "w", Content: "", CreatedAt: now, UpdatedAt: now, Category: "Work"})
	reminders.Insert(ctx, &models.Reminder{UserID: 10, Title: "w2", Content: "", CreatedAt: now, UpdatedAt: now, Category: "Work"})
	reminders.Insert(ctx, &models.Reminder{UserID: 10, Title: "h", Content: "", CreatedAt: now, UpdatedAt: now, Category: "Health"})

	cats, err := reminders.Categories(ctx, 10)
	if err != nil {
		t.Fatalf("Categories failed: %v", err)
	}
	if len(cats) != 2 || cats[0] != "Health" || cats[1] != "Work" {
		t.Errorf("Expected alphabetically ordered distinct categories, got %v", cats)
	}
}
