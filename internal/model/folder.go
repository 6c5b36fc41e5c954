package model

import "time"

// Folder is a named, user-scoped grouping for decks. Folders nest through
// ParentID (empty = top level). A folder's owner never changes and must match
// its parent's owner; re-parenting may never introduce a cycle.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	ParentID  string    `json:"parentId,omitempty"`
	Children  []Folder  `json:"children,omitempty"`
	Decks     []Deck    `json:"decks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
