package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/deck-hub/internal/service"
)

// CardHandler serves card search, lookup, and catalog resolution.
type CardHandler struct {
	cards *service.CardService
}

func NewCardHandler(cards *service.CardService) *CardHandler {
	return &CardHandler{cards: cards}
}

// HandleSearch searches the locally cached cards by name.
//
// HTTP: GET /api/cards?q=bolt&limit=20
func (h *CardHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	cards, err := h.cards.Search(r.Context(), query, limit)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

// HandleGet returns a cached card by internal ID.
//
// HTTP: GET /api/cards/{cardID}
func (h *CardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	card, err := h.cards.GetByID(r.Context(), chi.URLParam(r, "cardID"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}

type fetchCardRequest struct {
	ScryfallID string `json:"scryfallId" validate:"required"`
}

// HandleFetch resolves a catalog card into the local cache and returns the
// record. Safe to call repeatedly — the card is only fetched once.
//
// HTTP: POST /api/cards/fetch
func (h *CardHandler) HandleFetch(w http.ResponseWriter, r *http.Request) {
	var req fetchCardRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	card, err := h.cards.Resolve(r.Context(), req.ScryfallID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, card)
}
