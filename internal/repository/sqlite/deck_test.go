package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
)

func createTestDeck(t *testing.T, db *DB, userID, name string) *model.Deck {
	t.Helper()
	deck := &model.Deck{Name: name, UserID: userID}
	if err := db.CreateDeck(context.Background(), deck); err != nil {
		t.Fatalf("failed to create test deck: %v", err)
	}
	return deck
}

func TestCreateAndGetDeck(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")

	deck := createTestDeck(t, db, user.ID, "Burn")

	got, err := db.GetDeckByID(context.Background(), deck.ID)
	if err != nil {
		t.Fatalf("GetDeckByID() error = %v", err)
	}
	if got.Name != "Burn" || got.UserID != user.ID {
		t.Errorf("GetDeckByID() = %+v", got)
	}
	if got.FolderID != "" {
		t.Errorf("new deck FolderID = %q, want empty", got.FolderID)
	}
}

func TestUpdateDeck_FolderPlacement(t *testing.T) {
	db := newTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	deck := createTestDeck(t, db, user.ID, "Burn")

	folder := &model.Folder{Name: "Modern", UserID: user.ID}
	if err := db.CreateFolder(context.Background(), folder); err != nil {
		t.Fatalf("CreateFolder() error = %v", err)
	}

	deck.FolderID = folder.ID
	if err := db.UpdateDeck(context.Background(), deck); err != nil {
		t.Fatalf("UpdateDeck() error = %v", err)
	}

	got, err := db.GetDeckByID(context.Background(), deck.ID)
	if err != nil {
		t.Fatalf("GetDeckByID() error = %v", err)
	}
	if got.FolderID != folder.ID {
		t.Errorf("FolderID = %q, want %q", got.FolderID, folder.ID)
	}

	// Move it back out of the folder.
	deck.FolderID = ""
	if err := db.UpdateDeck(context.Background(), deck); err != nil {
		t.Fatalf("UpdateDeck() error = %v", err)
	}
	got, _ = db.GetDeckByID(context.Background(), deck.ID)
	if got.FolderID != "" {
		t.Errorf("FolderID = %q, want empty", got.FolderID)
	}
}

func TestUpdateDeck_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateDeck(context.Background(), &model.Deck{ID: "missing", Name: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("UpdateDeck() = %v, want ErrNotFound", err)
	}
}

func TestListDecksByUser_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")

	createTestDeck(t, db, alice.ID, "First")
	createTestDeck(t, db, alice.ID, "Second")
	createTestDeck(t, db, bob.ID, "Bob's")

	decks, err := db.ListDecksByUser(context.Background(), alice.ID)
	if err != nil {
		t.Fatalf("ListDecksByUser() error = %v", err)
	}
	if len(decks) != 2 {
		t.Fatalf("ListDecksByUser() returned %d decks, want 2", len(decks))
	}
	for _, d := range decks {
		if d.UserID != alice.ID {
			t.Errorf("deck %q belongs to %q, want %q", d.Name, d.UserID, alice.ID)
		}
	}
}

func TestDeleteDeck_CascadesAssociations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	user := createTestUser(t, db, "alice@example.com")
	deck := createTestDeck(t, db, user.ID, "Burn")
	card := createTestCard(t, db, "sf-001", "Lightning Bolt")

	if _, err := db.AddDeckCard(ctx, deck.ID, card.ID, model.ZoneMain, 4); err != nil {
		t.Fatalf("AddDeckCard() error = %v", err)
	}

	if err := db.DeleteDeck(ctx, deck.ID); err != nil {
		t.Fatalf("DeleteDeck() error = %v", err)
	}

	// The card record is shared and must survive the deck.
	if _, err := db.GetCardByID(ctx, card.ID); err != nil {
		t.Errorf("card should survive deck deletion, got %v", err)
	}

	if _, err := db.GetDeckByID(ctx, deck.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetDeckByID() after delete = %v, want ErrNotFound", err)
	}
}
