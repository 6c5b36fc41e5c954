package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/deck-hub/internal/auth"
	"github.com/sakif/deck-hub/internal/model"
	"github.com/sakif/deck-hub/internal/service"
)

// DeckHandler serves deck CRUD and deck composition endpoints. All routes are
// behind RequireAuth, so the user ID is always present in the context.
type DeckHandler struct {
	decks *service.DeckService
}

func NewDeckHandler(decks *service.DeckService) *DeckHandler {
	return &DeckHandler{decks: decks}
}

type createDeckRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=2000"`
	FolderID    string `json:"folderId"`
}

// HandleCreate creates a deck.
//
// HTTP: POST /api/decks
func (h *DeckHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req createDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deck, err := h.decks.Create(r.Context(), userID, req.Name, req.Description, req.FolderID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deck)
}

// HandleList returns the user's decks, newest first, with per-zone counts
// in place of the card lists.
//
// HTTP: GET /api/decks
func (h *DeckHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	decks, err := h.decks.List(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, decks)
}

// HandleGet returns one deck with its full card list.
//
// HTTP: GET /api/decks/{deckID}
func (h *DeckHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	deck, err := h.decks.Get(r.Context(), userID, chi.URLParam(r, "deckID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

type updateDeckRequest struct {
	Name        *string `json:"name" validate:"omitempty,max=100"`
	Description *string `json:"description" validate:"omitempty,max=2000"`
	FolderID    *string `json:"folderId"`
}

// HandleUpdate applies a partial update. Omitted fields are left alone; an
// explicit empty folderId moves the deck out of its folder.
//
// HTTP: PATCH /api/decks/{deckID}
func (h *DeckHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req updateDeckRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deck, err := h.decks.Update(r.Context(), userID, chi.URLParam(r, "deckID"), service.DeckUpdate{
		Name:        req.Name,
		Description: req.Description,
		FolderID:    req.FolderID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, deck)
}

// HandleDelete deletes a deck and its card associations.
//
// HTTP: DELETE /api/decks/{deckID}
func (h *DeckHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	if err := h.decks.Delete(r.Context(), userID, chi.URLParam(r, "deckID")); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type addCardRequest struct {
	ScryfallID string `json:"scryfallId" validate:"required"`
	Zone       string `json:"zone" validate:"required,oneof=main sideboard"`
	Quantity   int    `json:"quantity" validate:"omitempty,gte=1"`
}

// HandleAddCard adds copies of a catalog card to one zone of the deck,
// resolving the card into the local cache first. Quantity defaults to 1.
//
// HTTP: POST /api/decks/{deckID}/cards
func (h *DeckHandler) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req addCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	deckCard, err := h.decks.AddCard(
		r.Context(), userID, chi.URLParam(r, "deckID"),
		req.ScryfallID, model.Zone(req.Zone), req.Quantity,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, deckCard)
}

type setQuantityRequest struct {
	Zone     string `json:"zone" validate:"required,oneof=main sideboard"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

// HandleSetCardQuantity sets the exact quantity of a card in one zone.
// Quantity 0 removes it; the response is then 204.
//
// HTTP: PUT /api/decks/{deckID}/cards/{cardID}
func (h *DeckHandler) HandleSetCardQuantity(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	var req setQuantityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	deckCard, err := h.decks.SetCardQuantity(
		r.Context(), userID, chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"),
		model.Zone(req.Zone), req.Quantity,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	if deckCard == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	writeJSON(w, http.StatusOK, deckCard)
}

// HandleRemoveCard removes a card from the deck. Without a zone query
// parameter the card leaves both the main deck and the sideboard. Removing a
// card that isn't there still returns 204.
//
// HTTP: DELETE /api/decks/{deckID}/cards/{cardID}?zone=main
func (h *DeckHandler) HandleRemoveCard(w http.ResponseWriter, r *http.Request) {
	userID, _ := auth.UserIDFromContext(r.Context())

	zone := model.Zone(r.URL.Query().Get("zone"))

	err := h.decks.RemoveCard(
		r.Context(), userID, chi.URLParam(r, "deckID"), chi.URLParam(r, "cardID"), zone,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
