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

// compile-time check that *DB implements repository.DeckRepository
var _ repository.DeckRepository = (*DB)(nil)

// CreateDeck inserts a new deck.
func (db *DB) CreateDeck(ctx context.Context, deck *model.Deck) error {
	deck.ID = xid.New().String()
	now := time.Now()
	deck.CreatedAt = now
	deck.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO decks (id, name, description, user_id, folder_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		deck.ID,
		deck.Name,
		deck.Description,
		deck.UserID,
		nullableString(deck.FolderID),
		deck.CreatedAt,
		deck.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating deck: %w", err)
	}

	return nil
}

// GetDeckByID retrieves the deck row without its card associations.
func (db *DB) GetDeckByID(ctx context.Context, id string) (*model.Deck, error) {
	var (
		d        model.Deck
		folderID sql.NullString
	)

	err := db.conn.QueryRowContext(ctx,
		`SELECT id, name, description, user_id, folder_id, created_at, updated_at
		 FROM decks WHERE id = ?`,
		id,
	).Scan(
		&d.ID,
		&d.Name,
		&d.Description,
		&d.UserID,
		&folderID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("deck", id)
		}
		return nil, fmt.Errorf("sqlite: getting deck %s: %w", id, err)
	}

	d.FolderID = folderID.String
	return &d, nil
}

// ListDecksByUser returns all of a user's decks, newest first, without card
// associations.
func (db *DB) ListDecksByUser(ctx context.Context, userID string) ([]model.Deck, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, description, user_id, folder_id, created_at, updated_at
		 FROM decks
		 WHERE user_id = ?
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing decks: %w", err)
	}
	defer rows.Close()

	var decks []model.Deck
	for rows.Next() {
		var (
			d        model.Deck
			folderID sql.NullString
		)
		if err := rows.Scan(
			&d.ID, &d.Name, &d.Description, &d.UserID, &folderID,
			&d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning deck row: %w", err)
		}
		d.FolderID = folderID.String
		decks = append(decks, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating decks: %w", err)
	}

	return decks, nil
}

// UpdateDeck saves name, description, and folder placement.
func (db *DB) UpdateDeck(ctx context.Context, deck *model.Deck) error {
	deck.UpdatedAt = time.Now()

	result, err := db.conn.ExecContext(ctx,
		`UPDATE decks SET name = ?, description = ?, folder_id = ?, updated_at = ?
		 WHERE id = ?`,
		deck.Name,
		deck.Description,
		nullableString(deck.FolderID),
		deck.UpdatedAt,
		deck.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating deck %s: %w", deck.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("deck", deck.ID)
	}

	return nil
}

// DeleteDeck removes a deck. The ON DELETE CASCADE on deck_cards removes its
// associations in the same statement; card records are untouched.
func (db *DB) DeleteDeck(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM decks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting deck %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("deck", id)
	}

	return nil
}

// nullableString maps "" to NULL for optional foreign keys.
func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}
