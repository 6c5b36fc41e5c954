package model

import "time"

// Card is the local cache record of an external catalog entry.
//
// ScryfallID is the catalog's opaque identifier and is UNIQUE in the database.
// That constraint is the single source of truth for "at most one local record
// per external card" — see CardService.Resolve for how the first-reference
// race is resolved against it.
//
// A card is created lazily the first time any deck references it and is never
// refreshed or deleted by deck editing. Many decks may share one Card row.
type Card struct {
	ID         string    `json:"id"`
	ScryfallID string    `json:"scryfallId"`
	Name       string    `json:"name"`
	ManaCost   string    `json:"manaCost"`
	TypeLine   string    `json:"typeLine"`
	OracleText string    `json:"oracleText"`
	ImageURL   string    `json:"imageUrl"`
	Colors     string    `json:"colors"` // comma-separated, e.g. "R" or "W,U"
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Zone identifies which list of a deck a card association belongs to.
type Zone string

const (
	ZoneMain      Zone = "main"
	ZoneSideboard Zone = "sideboard"
)

// Valid reports whether z is one of the known zones.
func (z Zone) Valid() bool {
	return z == ZoneMain || z == ZoneSideboard
}

// DeckCard says "this many copies of this card are in this deck, in this zone".
//
// The store allows at most one row per (deck, card, zone); adding the same
// card to the same zone again increments Quantity instead of inserting a
// duplicate row. Quantity is always >= 1 — a row whose quantity would reach
// zero is deleted instead.
type DeckCard struct {
	ID       string `json:"id"`
	DeckID   string `json:"deckId"`
	CardID   string `json:"cardId"`
	Quantity int    `json:"quantity"`
	Zone     Zone   `json:"zone"`
	Card     *Card  `json:"card,omitempty"` // populated when listing a deck's contents
}
