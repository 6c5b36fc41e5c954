package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
	"github.com/sakif/deck-hub/internal/repository"
)

const (
	MaxDeckNameLength        = 100
	MaxDeckDescriptionLength = 2000
)

// DeckService handles deck CRUD and deck composition. Every method takes the
// acting user's ID explicitly and enforces that only the owner can read or
// modify a deck.
type DeckService struct {
	repo    repository.DeckRepository
	folders repository.FolderRepository
	cards   *CardService
	logger  *slog.Logger
}

func NewDeckService(repo repository.DeckRepository, folders repository.FolderRepository, cards *CardService, logger *slog.Logger) *DeckService {
	return &DeckService{
		repo:    repo,
		folders: folders,
		cards:   cards,
		logger:  logger,
	}
}

// Create validates and saves a new deck owned by userID. A folder placement,
// if given, must point at a folder the same user owns.
func (s *DeckService) Create(ctx context.Context, userID, name, description, folderID string) (*model.Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.ValidationFailed("name", "deck name is required")
	}
	if len(name) > MaxDeckNameLength {
		return nil, apperror.ValidationFailed("name",
			fmt.Sprintf("deck name must be %d characters or less", MaxDeckNameLength))
	}
	if len(description) > MaxDeckDescriptionLength {
		return nil, apperror.ValidationFailed("description",
			fmt.Sprintf("description must be %d characters or less", MaxDeckDescriptionLength))
	}

	if folderID != "" {
		if err := s.checkFolderOwner(ctx, userID, folderID); err != nil {
			return nil, err
		}
	}

	deck := &model.Deck{
		Name:        name,
		Description: strings.TrimSpace(description),
		UserID:      userID,
		FolderID:    folderID,
	}

	if err := s.repo.CreateDeck(ctx, deck); err != nil {
		s.logger.Error("failed to create deck",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating deck: %w", err)
	}

	s.logger.Info("deck created",
		slog.String("id", deck.ID),
		slog.String("user_id", userID),
		slog.String("name", deck.Name),
	)

	return deck, nil
}

// Get retrieves a deck with its full card list. Only the owner may read it.
func (s *DeckService) Get(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	cards, err := s.repo.ListDeckCards(ctx, deckID)
	if err != nil {
		return nil, fmt.Errorf("loading deck cards: %w", err)
	}
	deck.Cards = cards

	return deck, nil
}

// List returns all of the user's decks, newest first. Card lists are not
// loaded; each entry carries its per-zone counts instead.
func (s *DeckService) List(ctx context.Context, userID string) ([]model.DeckSummary, error) {
	decks, err := s.repo.ListDecksByUser(ctx, userID)
	if err != nil {
		s.logger.Error("failed to list decks",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("listing decks: %w", err)
	}

	summaries := make([]model.DeckSummary, 0, len(decks))
	for _, deck := range decks {
		main, err := s.repo.ZoneCount(ctx, deck.ID, model.ZoneMain)
		if err != nil {
			return nil, fmt.Errorf("counting main zone of deck %s: %w", deck.ID, err)
		}
		side, err := s.repo.ZoneCount(ctx, deck.ID, model.ZoneSideboard)
		if err != nil {
			return nil, fmt.Errorf("counting sideboard of deck %s: %w", deck.ID, err)
		}
		summaries = append(summaries, model.DeckSummary{
			Deck:           deck,
			MainCount:      main,
			SideboardCount: side,
		})
	}

	return summaries, nil
}

// DeckUpdate carries the fields Update may change. Nil pointers mean "leave
// as is"; a non-nil empty FolderID moves the deck out of any folder.
type DeckUpdate struct {
	Name        *string
	Description *string
	FolderID    *string
}

// Update applies a partial update to a deck the user owns.
func (s *DeckService) Update(ctx context.Context, userID, deckID string, update DeckUpdate) (*model.Deck, error) {
	deck, err := s.ownedDeck(ctx, userID, deckID)
	if err != nil {
		return nil, err
	}

	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return nil, apperror.ValidationFailed("name", "deck name is required")
		}
		if len(name) > MaxDeckNameLength {
			return nil, apperror.ValidationFailed("name",
				fmt.Sprintf("deck name must be %d characters or less", MaxDeckNameLength))
		}
		deck.Name = name
	}
	if update.Description != nil {
		if len(*update.Description) > MaxDeckDescriptionLength {
			return nil, apperror.ValidationFailed("description",
				fmt.Sprintf("description must be %d characters or less", MaxDeckDescriptionLength))
		}
		deck.Description = strings.TrimSpace(*update.Description)
	}
	if update.FolderID != nil {
		if *update.FolderID != "" {
			if err := s.checkFolderOwner(ctx, userID, *update.FolderID); err != nil {
				return nil, err
			}
		}
		deck.FolderID = *update.FolderID
	}

	if err := s.repo.UpdateDeck(ctx, deck); err != nil {
		return nil, fmt.Errorf("updating deck: %w", err)
	}

	return deck, nil
}

// Delete removes a deck the user owns, along with its card associations. The
// shared card records stay cached.
func (s *DeckService) Delete(ctx context.Context, userID, deckID string) error {
	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return err
	}

	if err := s.repo.DeleteDeck(ctx, deckID); err != nil {
		return fmt.Errorf("deleting deck: %w", err)
	}

	s.logger.Info("deck deleted",
		slog.String("id", deckID),
		slog.String("user_id", userID),
	)

	return nil
}

// AddCard puts quantity copies of the referenced catalog card into one zone of
// the deck, resolving the card into the local cache first. Adding a card that
// is already in that zone increments its quantity.
func (s *DeckService) AddCard(ctx context.Context, userID, deckID, scryfallID string, zone model.Zone, quantity int) (*model.DeckCard, error) {
	if !zone.Valid() {
		return nil, apperror.ValidationFailed("zone", "zone must be 'main' or 'sideboard'")
	}
	if quantity < 1 {
		return nil, apperror.ValidationFailed("quantity", "quantity must be at least 1")
	}

	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}

	card, err := s.cards.Resolve(ctx, scryfallID)
	if err != nil {
		return nil, err
	}

	deckCard, err := s.repo.AddDeckCard(ctx, deckID, card.ID, zone, quantity)
	if err != nil {
		return nil, fmt.Errorf("adding card to deck: %w", err)
	}
	deckCard.Card = card

	s.logger.Info("card added to deck",
		slog.String("deck_id", deckID),
		slog.String("card_id", card.ID),
		slog.String("zone", string(zone)),
		slog.Int("quantity", deckCard.Quantity),
	)

	return deckCard, nil
}

// SetCardQuantity sets the exact quantity of a card in one zone of the deck.
// Quantity 0 removes the association and returns nil.
func (s *DeckService) SetCardQuantity(ctx context.Context, userID, deckID, cardID string, zone model.Zone, quantity int) (*model.DeckCard, error) {
	if !zone.Valid() {
		return nil, apperror.ValidationFailed("zone", "zone must be 'main' or 'sideboard'")
	}
	if quantity < 0 {
		return nil, apperror.ValidationFailed("quantity", "quantity must not be negative")
	}

	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return nil, err
	}

	deckCard, err := s.repo.SetDeckCardQuantity(ctx, deckID, cardID, zone, quantity)
	if err != nil {
		return nil, fmt.Errorf("setting card quantity: %w", err)
	}

	return deckCard, nil
}

// RemoveCard deletes a card from the deck. An empty zone removes it from both
// the main deck and the sideboard. Removing a card that isn't in the deck is
// a no-op.
func (s *DeckService) RemoveCard(ctx context.Context, userID, deckID, cardID string, zone model.Zone) error {
	if zone != "" && !zone.Valid() {
		return apperror.ValidationFailed("zone", "zone must be 'main' or 'sideboard'")
	}

	if _, err := s.ownedDeck(ctx, userID, deckID); err != nil {
		return err
	}

	removed, err := s.repo.RemoveDeckCard(ctx, deckID, cardID, zone)
	if err != nil {
		return fmt.Errorf("removing card from deck: %w", err)
	}

	if removed > 0 {
		s.logger.Info("card removed from deck",
			slog.String("deck_id", deckID),
			slog.String("card_id", cardID),
		)
	}

	return nil
}

// ownedDeck loads the deck and verifies userID owns it. Decks belonging to
// someone else return ErrForbidden rather than pretending not to exist.
func (s *DeckService) ownedDeck(ctx context.Context, userID, deckID string) (*model.Deck, error) {
	deckID = strings.TrimSpace(deckID)
	if deckID == "" {
		return nil, apperror.ValidationFailed("id", "deck ID is required")
	}

	deck, err := s.repo.GetDeckByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if deck.UserID != userID {
		return nil, apperror.Forbidden("deck belongs to another user")
	}

	return deck, nil
}

func (s *DeckService) checkFolderOwner(ctx context.Context, userID, folderID string) error {
	folder, err := s.folders.GetFolderByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return apperror.ValidationFailed("folderId", "folder does not exist")
		}
		return fmt.Errorf("checking folder: %w", err)
	}
	if folder.UserID != userID {
		return apperror.Forbidden("folder belongs to another user")
	}
	return nil
}
