package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
	"github.com/sakif/deck-hub/internal/repository"
)

// compile-time check that *DB implements repository.CardRepository
var _ repository.CardRepository = (*DB)(nil)

const cardColumns = `id, scryfall_id, name, mana_cost, type_line, oracle_text, image_url, colors, created_at, updated_at`

// CreateCard inserts a new card record.
//
// Two requests racing on the first reference to the same external card can
// both reach this insert; the UNIQUE(scryfall_id) constraint makes the loser
// fail with apperror.ErrConflict, which the resolver converts into a fresh
// lookup. No application-level lock is involved.
func (db *DB) CreateCard(ctx context.Context, card *model.Card) error {
	card.ID = xid.New().String()
	now := time.Now()
	card.CreatedAt = now
	card.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cards (`+cardColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		card.ID,
		card.ScryfallID,
		card.Name,
		card.ManaCost,
		card.TypeLine,
		card.OracleText,
		card.ImageURL,
		card.Colors,
		card.CreatedAt,
		card.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("card", fmt.Sprintf("scryfall id %s already cached", card.ScryfallID))
		}
		return fmt.Errorf("sqlite: creating card: %w", err)
	}

	return nil
}

// GetCardByID retrieves a card by its internal ID.
func (db *DB) GetCardByID(ctx context.Context, id string) (*model.Card, error) {
	return db.getCard(ctx, `WHERE id = ?`, id)
}

// GetCardByScryfallID retrieves a card by its external catalog identifier.
func (db *DB) GetCardByScryfallID(ctx context.Context, scryfallID string) (*model.Card, error) {
	return db.getCard(ctx, `WHERE scryfall_id = ?`, scryfallID)
}

func (db *DB) getCard(ctx context.Context, where, arg string) (*model.Card, error) {
	var c model.Card

	err := db.conn.QueryRowContext(ctx,
		`SELECT `+cardColumns+` FROM cards `+where,
		arg,
	).Scan(
		&c.ID,
		&c.ScryfallID,
		&c.Name,
		&c.ManaCost,
		&c.TypeLine,
		&c.OracleText,
		&c.ImageURL,
		&c.Colors,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("card", arg)
		}
		return nil, fmt.Errorf("sqlite: getting card %s: %w", arg, err)
	}

	return &c, nil
}

// SearchCardsByName returns locally cached cards whose name contains the
// query, case-insensitively, capped at limit rows.
func (db *DB) SearchCardsByName(ctx context.Context, query string, limit int) ([]model.Card, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+cardColumns+` FROM cards
		 WHERE name LIKE '%' || ? || '%'
		 ORDER BY name
		 LIMIT ?`,
		query,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: searching cards: %w", err)
	}
	defer rows.Close()

	cards := make([]model.Card, 0, limit)
	for rows.Next() {
		var c model.Card
		if err := rows.Scan(
			&c.ID, &c.ScryfallID, &c.Name, &c.ManaCost, &c.TypeLine,
			&c.OracleText, &c.ImageURL, &c.Colors, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning card row: %w", err)
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cards: %w", err)
	}

	return cards, nil
}
