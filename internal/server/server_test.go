package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/deck-hub/internal/config"
	"github.com/sakif/deck-hub/internal/model"
)

// newTestServer wires the full application against an in-memory database and
// a stub card catalog, and returns an httptest front end for it.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	catalog := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/cards/sf-bolt" {
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{
				"id": "sf-bolt",
				"name": "Lightning Bolt",
				"mana_cost": "{R}",
				"type_line": "Instant",
				"oracle_text": "Lightning Bolt deals 3 damage to any target.",
				"colors": ["R"],
				"image_uris": {"normal": "https://cards.example/bolt.jpg"}
			}`)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(catalog.Close)

	cfg := &config.Config{
		Port:            0,
		DBPath:          ":memory:",
		JWTSecret:       "test-secret-at-least-16-chars",
		ScryfallBaseURL: catalog.URL,
	}

	srv, err := New(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON sends a JSON request with an optional bearer token and decodes the
// response body into out (when out is non-nil).
func doJSON(t *testing.T, method, url, token string, body any, out any) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func registerTestUser(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	var result struct {
		Token string `json:"token"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", map[string]string{
		"email":    email,
		"password": "hunter2hunter2",
	}, &result)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, result.Token)
	return result.Token
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPIRequiresAuth(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/decks")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestDeckLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "alice@example.com")

	// Create a deck.
	var deck model.Deck
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/decks", token, map[string]string{
		"name":        "Burn",
		"description": "fast red deck",
	}, &deck)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, deck.ID)

	// Add four Bolts; the card is fetched from the catalog on first reference.
	var dc model.DeckCard
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/decks/"+deck.ID+"/cards", token, map[string]any{
		"scryfallId": "sf-bolt",
		"zone":       "main",
		"quantity":   4,
	}, &dc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 4, dc.Quantity)

	// Add two more: same association, incremented.
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/decks/"+deck.ID+"/cards", token, map[string]any{
		"scryfallId": "sf-bolt",
		"zone":       "main",
		"quantity":   2,
	}, &dc)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, 6, dc.Quantity)

	// Read the deck back with its card list.
	var got model.Deck
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/decks/"+deck.ID, token, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, got.Cards, 1)
	assert.Equal(t, 6, got.MainCount())
	assert.Equal(t, 0, got.SideboardCount())
	require.NotNil(t, got.Cards[0].Card)
	assert.Equal(t, "Lightning Bolt", got.Cards[0].Card.Name)

	// Remove the card; reading again shows an empty deck.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/decks/"+deck.ID+"/cards/"+dc.CardID, token, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/decks/"+deck.ID, token, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, got.Cards)
}

func TestAddCard_UnknownCatalogCard(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "alice@example.com")

	var deck model.Deck
	doJSON(t, http.MethodPost, ts.URL+"/api/decks", token, map[string]string{"name": "Burn"}, &deck)

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/decks/"+deck.ID+"/cards", token, map[string]any{
		"scryfallId": "sf-unknown",
		"zone":       "main",
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSetQuantity_UnknownCard(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "alice@example.com")

	var deck model.Deck
	doJSON(t, http.MethodPost, ts.URL+"/api/decks", token, map[string]string{"name": "Burn"}, &deck)

	// The card ID here never went through resolution, so a quantity update
	// against it must report the missing card, not an internal error.
	resp := doJSON(t, http.MethodPut, ts.URL+"/api/decks/"+deck.ID+"/cards/no-such-card", token, map[string]any{
		"zone":     "main",
		"quantity": 2,
	}, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDeckIsolationBetweenUsers(t *testing.T) {
	ts := newTestServer(t)
	alice := registerTestUser(t, ts, "alice@example.com")
	bob := registerTestUser(t, ts, "bob@example.com")

	var deck model.Deck
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/decks", alice, map[string]string{"name": "Alice's"}, &deck)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/decks/"+deck.ID, bob, nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestFolderCascadeOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	token := registerTestUser(t, ts, "alice@example.com")

	var root, child model.Folder
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/folders", token, map[string]string{"name": "Root"}, &root)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/folders", token, map[string]string{
		"name": "Child", "parentId": root.ID,
	}, &child)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var deck model.Deck
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/decks", token, map[string]string{
		"name": "Inside", "folderId": child.ID,
	}, &deck)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Non-cascade delete of a non-empty folder is refused.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/folders/"+root.ID, token, nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Cascade removes the subtree and re-parents the deck.
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/folders/"+root.ID+"?cascade=true", token, nil, nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	var got model.Deck
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/decks/"+deck.ID, token, nil, &got)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, got.FolderID)
}

func TestLoginOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	registerTestUser(t, ts, "alice@example.com")

	var result struct {
		Token string `json:"token"`
		User  struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter2hunter2",
	}, &result)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "alice@example.com", result.User.Email)

	// /api/me works with the fresh token.
	var me struct {
		Email string `json:"email"`
	}
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/me", result.Token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "alice@example.com", me.Email)
}
