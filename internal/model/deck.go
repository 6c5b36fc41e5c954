package model

import "time"

// Deck is a named, user-owned collection of card associations, optionally
// scoped to a folder. Deleting a deck cascades to its DeckCard rows; the Card
// records they point at are shared and survive.
type Deck struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	UserID      string     `json:"userId"`
	FolderID    string     `json:"folderId,omitempty"` // empty = not in a folder
	Cards       []DeckCard `json:"cards,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// DeckSummary is a deck as it appears in list responses: the deck row plus
// per-zone counts computed in storage, since list items don't carry card
// lists to derive them from.
type DeckSummary struct {
	Deck
	MainCount      int `json:"mainCount"`
	SideboardCount int `json:"sideboardCount"`
}

// MainCount is the total number of main-deck cards, summed over quantities.
// Counts are always derived from the current associations, never stored.
func (d *Deck) MainCount() int { return d.zoneCount(ZoneMain) }

// SideboardCount is the total number of sideboard cards.
func (d *Deck) SideboardCount() int { return d.zoneCount(ZoneSideboard) }

func (d *Deck) zoneCount(zone Zone) int {
	total := 0
	for _, dc := range d.Cards {
		if dc.Zone == zone {
			total += dc.Quantity
		}
	}
	return total
}
