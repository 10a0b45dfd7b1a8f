package sqlite

import (
	"context"
	"testing"

	"github.com/sakif/birthday-board/internal/model"
)

// seedTestUser creates a user row and returns its internal ID — contacts
// carry a foreign key, so every contact test needs one.
func seedTestUser(t *testing.T, db *DB, googleID string) string {
	t.Helper()
	u := &model.User{GoogleID: googleID}
	if err := db.Upsert(context.Background(), u); err != nil {
		t.Fatalf("seeding user: %v", err)
	}
	return u.ID
}

func TestUpsertBatch_InsertAndList(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := seedTestUser(t, db, "g-42")

	batch := []model.Contact{
		{ResourceName: "people/c1", Name: "Ann", Email: "ann@example.com", Birthday: "1900-03-15"},
		{ResourceName: "people/c2", Name: "Bob", Birthday: "1992-07-04", PhotoURL: "https://example.com/bob.jpg"},
	}
	if err := db.UpsertBatch(ctx, userID, batch); err != nil {
		t.Fatalf("UpsertBatch() error = %v", err)
	}

	got, err := db.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ListByUser() = %d contacts, want 2", len(got))
	}
	// ListByUser orders by name.
	if got[0].Name != "Ann" || got[1].Name != "Bob" {
		t.Errorf("order = %q, %q; want Ann, Bob", got[0].Name, got[1].Name)
	}
	if got[0].ID == "" || got[0].CreatedAt.IsZero() {
		t.Error("stored contact missing generated ID or timestamps")
	}
	if got[0].Birthday != "1900-03-15" {
		t.Errorf("birthday = %q, want stored verbatim", got[0].Birthday)
	}
}

func TestUpsertBatch_Idempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := seedTestUser(t, db, "g-42")

	batch := []model.Contact{
		{ResourceName: "people/c1", Name: "Ann", Birthday: "1900-03-15"},
		{ResourceName: "people/c2", Name: "Bob", Birthday: "1992-07-04"},
	}
	if err := db.UpsertBatch(ctx, userID, batch); err != nil {
		t.Fatalf("first UpsertBatch() error = %v", err)
	}
	if err := db.UpsertBatch(ctx, userID, batch); err != nil {
		t.Fatalf("second UpsertBatch() error = %v", err)
	}

	got, err := db.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListByUser() = %d contacts after two identical syncs, want 2", len(got))
	}
}

func TestUpsertBatch_ConflictUpdatesInPlace(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	userID := seedTestUser(t, db, "g-42")

	if err := db.UpsertBatch(ctx, userID, []model.Contact{
		{ResourceName: "people/c1", Name: "Ann", Email: "old@example.com", Birthday: "1900-03-15"},
	}); err != nil {
		t.Fatalf("first UpsertBatch() error = %v", err)
	}
	before, err := db.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	// Upstream changed the contact's details; same resource name.
	if err := db.UpsertBatch(ctx, userID, []model.Contact{
		{ResourceName: "people/c1", Name: "Ann B", Email: "new@example.com", Birthday: "1991-03-15"},
	}); err != nil {
		t.Fatalf("second UpsertBatch() error = %v", err)
	}
	after, err := db.ListByUser(ctx, userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}

	if len(after) != 1 {
		t.Fatalf("ListByUser() = %d contacts, want the row updated in place", len(after))
	}
	if after[0].ID != before[0].ID {
		t.Errorf("internal id changed on conflict: %q then %q", before[0].ID, after[0].ID)
	}
	if after[0].Name != "Ann B" || after[0].Email != "new@example.com" || after[0].Birthday != "1991-03-15" {
		t.Errorf("row not refreshed: %+v", after[0])
	}
}

func TestListByUser_ScopedPerUser(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	alice := seedTestUser(t, db, "g-alice")
	bob := seedTestUser(t, db, "g-bob")

	if err := db.UpsertBatch(ctx, alice, []model.Contact{
		{ResourceName: "people/c1", Name: "Ann", Birthday: "1900-03-15"},
	}); err != nil {
		t.Fatalf("UpsertBatch(alice) error = %v", err)
	}
	if err := db.UpsertBatch(ctx, bob, []model.Contact{
		{ResourceName: "people/c1", Name: "Carl", Birthday: "1980-01-01"},
		{ResourceName: "people/c2", Name: "Dana", Birthday: "1985-02-02"},
	}); err != nil {
		t.Fatalf("UpsertBatch(bob) error = %v", err)
	}

	aliceRows, err := db.ListByUser(ctx, alice)
	if err != nil {
		t.Fatalf("ListByUser(alice) error = %v", err)
	}
	if len(aliceRows) != 1 || aliceRows[0].Name != "Ann" {
		t.Errorf("alice sees %d contacts, want only her own", len(aliceRows))
	}

	bobRows, err := db.ListByUser(ctx, bob)
	if err != nil {
		t.Fatalf("ListByUser(bob) error = %v", err)
	}
	if len(bobRows) != 2 {
		t.Errorf("bob sees %d contacts, want 2", len(bobRows))
	}
}

func TestListByUser_EmptyIsNotAnError(t *testing.T) {
	db := newTestDB(t)
	userID := seedTestUser(t, db, "g-42")

	got, err := db.ListByUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("ListByUser() error = %v", err)
	}
	if len(got) != 0 {
		t.Errorf("ListByUser() = %d contacts for a fresh user, want 0", len(got))
	}
}
