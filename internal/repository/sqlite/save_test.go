package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/mkaur/perfect-recipe/internal/apperror"
	"github.com/mkaur/perfect-recipe/internal/model"
)

func createTestSave(t *testing.T, db *DB, userID, recipeID int64) *model.Save {
	t.Helper()
	save := &model.Save{UserID: userID, RecipeID: recipeID}
	if err := db.Insert(context.Background(), save); err != nil {
		t.Fatalf("failed to create test save: %v", err)
	}
	return save
}

func TestSaveInsert(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "saver")

	save := &model.Save{UserID: user.ID, RecipeID: 654959}
	if err := db.Insert(context.Background(), save); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if save.ID == 0 {
		t.Error("Insert() did not set save.ID")
	}

	saved, err := db.IsSaved(context.Background(), user.ID, 654959)
	if err != nil {
		t.Fatalf("IsSaved() error = %v", err)
	}
	if !saved {
		t.Error("IsSaved() = false after Insert()")
	}
}

func TestSaveInsert_DuplicatePair(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "dupe_saver")
	createTestSave(t, db, user.ID, 100)

	err := db.Insert(context.Background(), &model.Save{UserID: user.ID, RecipeID: 100})

	if err == nil {
		t.Fatal("Insert() should have failed for a duplicate (user, recipe) pair")
	}
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("Insert() error = %v, want ErrConflict", err)
	}

	// Still exactly one row for the pair.
	ids, listErr := db.ListSaved(context.Background(), user.ID)
	if listErr != nil {
		t.Fatalf("ListSaved() error = %v", listErr)
	}
	if len(ids) != 1 {
		t.Errorf("ListSaved() returned %d rows, want 1", len(ids))
	}
}

func TestSaveInsert_SameRecipeDifferentUsers(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice")
	bob := createTestUser(t, db, "bob")

	createTestSave(t, db, alice.ID, 100)
	createTestSave(t, db, bob.ID, 100) // not a conflict — different user

	saved, err := db.IsSaved(context.Background(), bob.ID, 100)
	if err != nil {
		t.Fatalf("IsSaved() error = %v", err)
	}
	if !saved {
		t.Error("bob's save of recipe 100 should exist")
	}
}

func TestSaveDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "deleter")
	createTestSave(t, db, user.ID, 200)

	if err := db.Delete(context.Background(), user.ID, 200); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	saved, err := db.IsSaved(context.Background(), user.ID, 200)
	if err != nil {
		t.Fatalf("IsSaved() error = %v", err)
	}
	if saved {
		t.Error("IsSaved() = true after Delete()")
	}

	// Deleting an absent save is a no-op, not an error.
	if err := db.Delete(context.Background(), user.ID, 200); err != nil {
		t.Errorf("Delete() of absent save should not error, got %v", err)
	}
}

func TestSaveIsSaved_Unsaved(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "empty_saver")

	saved, err := db.IsSaved(context.Background(), user.ID, 300)
	if err != nil {
		t.Fatalf("IsSaved() error = %v", err)
	}
	if saved {
		t.Error("IsSaved() = true for a recipe that was never saved")
	}
}

func TestSaveListSaved_InsertionOrder(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "list_user")

	for _, recipeID := range []int64{30, 10, 20} {
		createTestSave(t, db, user.ID, recipeID)
	}

	ids, err := db.ListSaved(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListSaved() error = %v", err)
	}

	want := []int64{30, 10, 20} // storage order, not numeric order
	if len(ids) != len(want) {
		t.Fatalf("ListSaved() returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ListSaved()[%d] = %d, want %d", i, ids[i], want[i])
		}
	}
}

func TestSaveSavedSet(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "set_user")
	createTestSave(t, db, user.ID, 11)
	createTestSave(t, db, user.ID, 22)

	set, err := db.SavedSet(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("SavedSet() error = %v", err)
	}

	if !set[11] || !set[22] {
		t.Errorf("SavedSet() = %v, missing saved ids", set)
	}
	if set[33] {
		t.Error("SavedSet() contains an id that was never saved")
	}
}

func TestSaveCascadeOnUserDelete(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "cascade_user")
	createTestSave(t, db, user.ID, 400)

	// Administrative delete — not exposed through the app, but the schema
	// must clean up the join table.
	if _, err := db.conn.Exec(`DELETE FROM users WHERE id = ?`, user.ID); err != nil {
		t.Fatalf("deleting user row: %v", err)
	}

	ids, err := db.ListSaved(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("ListSaved() error = %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("saves survived user deletion: %v", ids)
	}
}
