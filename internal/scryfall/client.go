// Package scryfall is a minimal client for the Scryfall card catalog.
//
// The catalog is consumed read-only and is rate limited upstream, so every
// request passes through a token-bucket limiter that keeps us under 10
// requests per second. Calls are single-shot: a failed request surfaces
// immediately to the caller — retry policy belongs to whoever owns the
// user-facing operation, not to this client.
package scryfall

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const (
	rateLimitDelay = 100 * time.Millisecond // 100ms between requests (10 req/sec)
	requestTimeout = 30 * time.Second
)

// ErrNotFound is returned when the catalog has no card for the requested
// identifier. Any other failure (network, timeout, non-404 status) is a
// generic error the caller should treat as "catalog unavailable".
var ErrNotFound = errors.New("scryfall: card not found")

// Client is a rate-limited Scryfall API client.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
	userAgent   string
}

// NewClient creates a client against the given base URL
// (normally https://api.scryfall.com; tests point it at an httptest server).
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		rateLimiter: rate.NewLimiter(rate.Every(rateLimitDelay), 1),
		userAgent:   "deck-hub/1.0",
	}
}

// GetCard retrieves a card by its Scryfall ID.
// Returns ErrNotFound if the catalog has no such card.
func (c *Client) GetCard(ctx context.Context, id string) (*Card, error) {
	var card Card
	if err := c.doRequest(ctx, fmt.Sprintf("%s/cards/%s", c.baseURL, id), &card); err != nil {
		return nil, err
	}
	return &card, nil
}

// doRequest performs a single rate-limited GET and decodes the JSON response
// into result.
func (c *Client) doRequest(ctx context.Context, url string, result any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("scryfall: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("scryfall: creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("scryfall: request failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("scryfall: decoding response: %w", err)
		}
		return nil

	case http.StatusNotFound:
		return ErrNotFound

	default:
		return fmt.Errorf("scryfall: request failed with status %d", resp.StatusCode)
	}
}
