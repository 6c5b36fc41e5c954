package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/xid"
	"github.com/sakif/deck-hub/internal/apperror"
	"github.com/sakif/deck-hub/internal/model"
)

// ListDeckCards returns a deck's associations joined with their card records,
// main zone first, then alphabetically by card name.
func (db *DB) ListDeckCards(ctx context.Context, deckID string) ([]model.DeckCard, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT dc.id, dc.deck_id, dc.card_id, dc.quantity, dc.zone,
		        c.id, c.scryfall_id, c.name, c.mana_cost, c.type_line,
		        c.oracle_text, c.image_url, c.colors, c.created_at, c.updated_at
		 FROM deck_cards dc
		 JOIN cards c ON c.id = dc.card_id
		 WHERE dc.deck_id = ?
		 ORDER BY dc.zone = 'sideboard', c.name`,
		deckID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing deck cards: %w", err)
	}
	defer rows.Close()

	var deckCards []model.DeckCard
	for rows.Next() {
		var (
			dc model.DeckCard
			c  model.Card
		)
		if err := rows.Scan(
			&dc.ID, &dc.DeckID, &dc.CardID, &dc.Quantity, &dc.Zone,
			&c.ID, &c.ScryfallID, &c.Name, &c.ManaCost, &c.TypeLine,
			&c.OracleText, &c.ImageURL, &c.Colors, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning deck card row: %w", err)
		}
		dc.Card = &c
		deckCards = append(deckCards, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating deck cards: %w", err)
	}

	return deckCards, nil
}

// AddDeckCard increments the (deck, card, zone) association by delta,
// creating it with quantity=delta if it doesn't exist yet.
//
// The ON CONFLICT upsert makes the increment a single atomic statement, so
// concurrent adds from two browser tabs can't lose an update the way a
// read-then-write sequence would.
func (db *DB) AddDeckCard(ctx context.Context, deckID, cardID string, zone model.Zone, delta int) (*model.DeckCard, error) {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO deck_cards (id, deck_id, card_id, quantity, zone)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (deck_id, card_id, zone)
		 DO UPDATE SET quantity = quantity + excluded.quantity`,
		xid.New().String(),
		deckID,
		cardID,
		delta,
		zone,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: adding card %s to deck %s: %w", cardID, deckID, err)
	}

	return db.getDeckCard(ctx, deckID, cardID, zone)
}

// SetDeckCardQuantity upserts the association to the exact quantity.
// Quantity 0 deletes the row and returns nil.
//
// The cardID comes straight from the client here (unlike AddDeckCard, whose
// card was just resolved), so a foreign-key failure means the card record
// doesn't exist and surfaces as ErrNotFound.
func (db *DB) SetDeckCardQuantity(ctx context.Context, deckID, cardID string, zone model.Zone, quantity int) (*model.DeckCard, error) {
	if quantity == 0 {
		_, err := db.conn.ExecContext(ctx,
			`DELETE FROM deck_cards WHERE deck_id = ? AND card_id = ? AND zone = ?`,
			deckID, cardID, zone,
		)
		if err != nil {
			return nil, fmt.Errorf("sqlite: removing card %s from deck %s: %w", cardID, deckID, err)
		}
		return nil, nil
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO deck_cards (id, deck_id, card_id, quantity, zone)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (deck_id, card_id, zone)
		 DO UPDATE SET quantity = excluded.quantity`,
		xid.New().String(),
		deckID,
		cardID,
		quantity,
		zone,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, apperror.NotFound("card", cardID)
		}
		return nil, fmt.Errorf("sqlite: setting quantity for card %s in deck %s: %w", cardID, deckID, err)
	}

	return db.getDeckCard(ctx, deckID, cardID, zone)
}

// RemoveDeckCard deletes the association. An empty zone removes the card from
// every zone of the deck. Removing nothing is a no-op, not an error, so
// repeated removal requests stay idempotent.
func (db *DB) RemoveDeckCard(ctx context.Context, deckID, cardID string, zone model.Zone) (int64, error) {
	var (
		result sql.Result
		err    error
	)

	if zone == "" {
		result, err = db.conn.ExecContext(ctx,
			`DELETE FROM deck_cards WHERE deck_id = ? AND card_id = ?`,
			deckID, cardID,
		)
	} else {
		result, err = db.conn.ExecContext(ctx,
			`DELETE FROM deck_cards WHERE deck_id = ? AND card_id = ? AND zone = ?`,
			deckID, cardID, zone,
		)
	}
	if err != nil {
		return 0, fmt.Errorf("sqlite: removing card %s from deck %s: %w", cardID, deckID, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}

	return removed, nil
}

// ZoneCount sums the quantities of a deck's associations in one zone.
// Always recomputed from the rows — there is no stored counter to drift.
func (db *DB) ZoneCount(ctx context.Context, deckID string, zone model.Zone) (int, error) {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(quantity), 0) FROM deck_cards WHERE deck_id = ? AND zone = ?`,
		deckID, zone,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting %s zone of deck %s: %w", zone, deckID, err)
	}
	return count, nil
}

func (db *DB) getDeckCard(ctx context.Context, deckID, cardID string, zone model.Zone) (*model.DeckCard, error) {
	var dc model.DeckCard
	err := db.conn.QueryRowContext(ctx,
		`SELECT id, deck_id, card_id, quantity, zone
		 FROM deck_cards WHERE deck_id = ? AND card_id = ? AND zone = ?`,
		deckID, cardID, zone,
	).Scan(&dc.ID, &dc.DeckID, &dc.CardID, &dc.Quantity, &dc.Zone)
	if err != nil {
		return nil, fmt.Errorf("sqlite: reading deck card back: %w", err)
	}
	return &dc, nil
}
