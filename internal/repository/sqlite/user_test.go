package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/birthday-board/internal/apperror"
	"github.com/sakif/birthday-board/internal/model"
)

// newTestDB opens an in-memory database with the full schema applied.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(\":memory:\"): %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUpsert_Insert(t *testing.T) {
	db := newTestDB(t)

	u := &model.User{
		GoogleID:     "g-42",
		Email:        "ann@example.com",
		Name:         "Ann",
		AvatarURL:    "https://example.com/ann.jpg",
		AccessToken:  "AT1",
		RefreshToken: "RT1",
	}
	if err := db.Upsert(context.Background(), u); err != nil {
		t.Fatalf("Upsert() error = %v", err)
	}

	if u.ID == "" {
		t.Fatal("Upsert() did not assign an internal ID")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("Upsert() did not set timestamps")
	}

	got, err := db.GetByID(context.Background(), u.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.GoogleID != "g-42" || got.Email != "ann@example.com" || got.AccessToken != "AT1" {
		t.Errorf("stored user = %+v, fields don't match input", got)
	}
}

func TestUpsert_RepeatLoginKeepsInternalID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{GoogleID: "g-42", Email: "ann@example.com", AccessToken: "AT1", RefreshToken: "RT1"}
	if err := db.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}

	// Same Google account, fresh access token, new display name.
	second := &model.User{GoogleID: "g-42", Email: "ann@example.com", Name: "Ann B", AccessToken: "AT2", RefreshToken: "RT2"}
	if err := db.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("internal ID changed across logins: %q then %q", first.ID, second.ID)
	}

	got, err := db.GetByID(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.AccessToken != "AT2" || got.RefreshToken != "RT2" {
		t.Errorf("tokens = %q/%q, want AT2/RT2", got.AccessToken, got.RefreshToken)
	}
	if got.Name != "Ann B" {
		t.Errorf("name = %q, want updated profile", got.Name)
	}
}

func TestUpsert_EmptyRefreshTokenPreservesStored(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first := &model.User{GoogleID: "g-42", AccessToken: "AT1", RefreshToken: "RT1"}
	if err := db.Upsert(ctx, first); err != nil {
		t.Fatalf("first Upsert() error = %v", err)
	}

	// Google omits the refresh token on repeat logins.
	second := &model.User{GoogleID: "g-42", AccessToken: "AT2", RefreshToken: ""}
	if err := db.Upsert(ctx, second); err != nil {
		t.Fatalf("second Upsert() error = %v", err)
	}

	tokens, err := db.GetTokens(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetTokens() error = %v", err)
	}
	if tokens.AccessToken != "AT2" {
		t.Errorf("access token = %q, want AT2", tokens.AccessToken)
	}
	if tokens.RefreshToken != "RT1" {
		t.Errorf("refresh token = %q, want the original RT1 preserved", tokens.RefreshToken)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetByID(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestGetTokens_NotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.GetTokens(context.Background(), "no-such-id")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetTokens() error = %v, want ErrNotFound", err)
	}
}
