package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"flex_reviews/internal/adapters/observability"
	"flex_reviews/internal/domain"
)

// Client fetches place details (including reviews) from the Google Places
// API. The key travels as a query parameter, not a header, which is why the
// request URL is built per call.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: base,
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

// envelope is the Places API response wrapper. Errors arrive with HTTP 200
// and a non-OK status string.
type envelope struct {
	Status       string              `json:"status"`
	ErrorMessage string              `json:"error_message"`
	Result       domain.PlaceDetails `json:"result"`
}

func (c *Client) PlaceDetails(ctx context.Context, placeID string) (domain.PlaceDetails, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return domain.PlaceDetails{}, err
	}

	u := fmt.Sprintf("%s/details/json?place_id=%s&fields=%s&key=%s",
		c.base,
		url.QueryEscape(placeID),
		url.QueryEscape("name,rating,reviews,user_ratings_total"),
		url.QueryEscape(c.key),
	)

	start := time.Now()
	env, status, err := c.fetch(ctx, u)
	observability.ObserveExternal("places", "/details/json", status, time.Since(start))
	if err != nil {
		return domain.PlaceDetails{}, err
	}

	switch env.Status {
	case "OK":
		return env.Result, nil
	case "ZERO_RESULTS", "NOT_FOUND":
		return domain.PlaceDetails{}, domain.ErrNotFound
	case "REQUEST_DENIED":
		return domain.PlaceDetails{}, fmt.Errorf("%w: %s", domain.ErrForbidden, env.ErrorMessage)
	default:
		return domain.PlaceDetails{}, fmt.Errorf("places status %s: %s", env.Status, env.ErrorMessage)
	}
}

func (c *Client) fetch(ctx context.Context, u string) (envelope, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return envelope{}, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "flex-reviews/1.0")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return envelope{}, 0, ctx.Err()
		}
		return envelope{}, 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return envelope{}, resp.StatusCode, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return envelope{}, resp.StatusCode, err
	}
	return env, resp.StatusCode, nil
}
