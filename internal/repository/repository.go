// Package repository defines the storage interfaces the service layer
// programs against. The sqlite subpackage is the only implementation; tests
// substitute in-memory mocks.
package repository

import (
	"context"

	"github.com/sakif/deck-hub/internal/model"
)

type UserRepository interface {
	// CreateUser inserts a new user. Returns apperror.ErrConflict if the
	// email is already registered.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser inserts or updates a user keyed on their GitHub ID.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}

type CardRepository interface {
	// CreateCard inserts a new card. Returns apperror.ErrConflict when a row
	// with the same scryfall_id already exists — the resolver recovers from
	// that by re-reading.
	CreateCard(ctx context.Context, card *model.Card) error
	GetCardByID(ctx context.Context, id string) (*model.Card, error)
	GetCardByScryfallID(ctx context.Context, scryfallID string) (*model.Card, error)
	SearchCardsByName(ctx context.Context, query string, limit int) ([]model.Card, error)
}

type DeckRepository interface {
	CreateDeck(ctx context.Context, deck *model.Deck) error
	// GetDeckByID returns the deck row without its card associations.
	GetDeckByID(ctx context.Context, id string) (*model.Deck, error)
	ListDecksByUser(ctx context.Context, userID string) ([]model.Deck, error)
	UpdateDeck(ctx context.Context, deck *model.Deck) error
	// DeleteDeck removes the deck; its deck_cards rows go with it (FK
	// cascade). The shared card records survive.
	DeleteDeck(ctx context.Context, id string) error

	// ListDeckCards returns a deck's associations with Card populated.
	ListDeckCards(ctx context.Context, deckID string) ([]model.DeckCard, error)
	// AddDeckCard atomically increments the (deck, card, zone) row by delta,
	// creating it with quantity=delta when absent, and returns the row.
	AddDeckCard(ctx context.Context, deckID, cardID string, zone model.Zone, delta int) (*model.DeckCard, error)
	// SetDeckCardQuantity upserts the row to the exact quantity; quantity 0
	// deletes it and returns nil.
	SetDeckCardQuantity(ctx context.Context, deckID, cardID string, zone model.Zone, quantity int) (*model.DeckCard, error)
	// RemoveDeckCard deletes the association; an empty zone removes the card
	// from every zone. Returns the number of rows removed (0 is not an error).
	RemoveDeckCard(ctx context.Context, deckID, cardID string, zone model.Zone) (int64, error)
	// ZoneCount sums the quantities of a deck's rows in the given zone.
	ZoneCount(ctx context.Context, deckID string, zone model.Zone) (int, error)
}

type FolderRepository interface {
	CreateFolder(ctx context.Context, folder *model.Folder) error
	GetFolderByID(ctx context.Context, id string) (*model.Folder, error)
	ListFoldersByUser(ctx context.Context, userID string) ([]model.Folder, error)
	UpdateFolder(ctx context.Context, folder *model.Folder) error
	// HasContents reports whether the folder has child folders or decks.
	HasContents(ctx context.Context, id string) (bool, error)
	// DeleteFolder removes a single folder row.
	DeleteFolder(ctx context.Context, id string) error
	// DeleteFolderCascade removes the folder and all descendant folders in
	// one transaction, re-parenting every contained deck to no folder.
	DeleteFolderCascade(ctx context.Context, id string) error
}
