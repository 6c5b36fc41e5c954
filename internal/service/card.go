// Package service contains the business logic layer: validation, ownership
// enforcement, and orchestration between the repositories and the external
// card catalog. Services accept primitives and return domain models plus
// apperror values; they know nothing about HTTP.
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
	"github.com/sakif/deck-hub/internal/scryfall"
)

const (
	DefaultSearchLimit = 20
	MaxSearchLimit     = 100
)

// CardCatalog is the slice of the external catalog client the card service
// needs. Tests substitute a stub; production wires *scryfall.Client.
type CardCatalog interface {
	GetCard(ctx context.Context, id string) (*scryfall.Card, error)
}

// CardService resolves external catalog references into locally cached card
// records and serves lookups against that cache.
type CardService struct {
	repo    repository.CardRepository
	catalog CardCatalog
	logger  *slog.Logger
}

func NewCardService(repo repository.CardRepository, catalog CardCatalog, logger *slog.Logger) *CardService {
	return &CardService{
		repo:    repo,
		catalog: catalog,
		logger:  logger,
	}
}

// Resolve returns the local card record for a catalog identifier, fetching
// and caching it on first reference.
//
// Cache-aside with race recovery: a local miss triggers one catalog fetch and
// an insert. If two requests race on the same first reference, the
// UNIQUE(scryfall_id) constraint fails the second insert with ErrConflict and
// we re-read the row the winner created. Either way exactly one record exists
// afterwards and both callers get it.
//
// A catalog miss maps to ErrNotFound; any other catalog failure maps to
// ErrUpstream and no partial record is written.
func (s *CardService) Resolve(ctx context.Context, scryfallID string) (*model.Card, error) {
	scryfallID = strings.TrimSpace(scryfallID)
	if scryfallID == "" {
		return nil, apperror.ValidationFailed("scryfallId", "scryfall ID is required")
	}

	card, err := s.repo.GetCardByScryfallID(ctx, scryfallID)
	if err == nil {
		return card, nil
	}
	if !errors.Is(err, apperror.ErrNotFound) {
		return nil, fmt.Errorf("looking up cached card: %w", err)
	}

	fetched, err := s.catalog.GetCard(ctx, scryfallID)
	if err != nil {
		if errors.Is(err, scryfall.ErrNotFound) {
			return nil, apperror.NotFound("card", scryfallID)
		}
		s.logger.Error("card catalog fetch failed",
			slog.String("scryfall_id", scryfallID),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Upstream("card catalog", err)
	}

	card = &model.Card{
		ScryfallID: fetched.ID,
		Name:       fetched.Name,
		ManaCost:   fetched.ManaCost,
		TypeLine:   fetched.TypeLine,
		OracleText: fetched.OracleText,
		ImageURL:   fetched.ImageURL(),
		Colors:     fetched.ColorString(),
	}

	if err := s.repo.CreateCard(ctx, card); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			// Lost the first-reference race; the winner's row is the record.
			return s.repo.GetCardByScryfallID(ctx, scryfallID)
		}
		return nil, fmt.Errorf("caching card %s: %w", scryfallID, err)
	}

	s.logger.Info("card cached",
		slog.String("id", card.ID),
		slog.String("scryfall_id", card.ScryfallID),
		slog.String("name", card.Name),
	)

	return card, nil
}

// GetByID retrieves a locally cached card by its internal ID.
func (s *CardService) GetByID(ctx context.Context, id string) (*model.Card, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "card ID is required")
	}
	return s.repo.GetCardByID(ctx, id)
}

// Search finds locally cached cards whose name contains the query. Only the
// local cache is searched; the catalog is never hit here.
func (s *CardService) Search(ctx context.Context, query string, limit int) ([]model.Card, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.ValidationFailed("q", "search query is required")
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	if limit > MaxSearchLimit {
		limit = MaxSearchLimit
	}

	cards, err := s.repo.SearchCardsByName(ctx, query, limit)
	if err != nil {
		s.logger.Error("card search failed", slog.String("error", err.Error()))
		return nil, fmt.Errorf("searching cards: %w", err)
	}

	return cards, nil
}
