// Package spoonacular is the typed client for the Spoonacular recipe API —
// the sole source of recipe data in this app. We persist nothing from it
// except recipe IDs; every page fetches live.
//
// The client is a direct pass-through: no local filtering, ranking, or
// caching of results. What it does own:
//   - the API key (appended to every request, never exposed to the browser)
//   - a rate limiter, because Spoonacular bills by request quota
//   - translation of upstream failures into apperror.ErrUnavailable so the
//     handler layer can render "recipe service unavailable" instead of a
//     generic 500
package spoonacular

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/mkaur/perfect-recipe/internal/apperror"
)

const defaultBaseURL = "https://api.spoonacular.com"

// unavailableMsg is the stable user-facing message for any upstream failure.
const unavailableMsg = "recipe service unavailable"

// Config holds client configuration.
type Config struct {
	BaseURL string        // override in tests with an httptest.Server URL
	APIKey  string        // required against the real API
	Timeout time.Duration // per-request timeout
	// RequestsPerSecond caps outbound calls. The free Spoonacular plan
	// allows bursts but throttles sustained traffic, so we smooth it here
	// rather than burn quota on 402 responses.
	RequestsPerSecond float64
	Burst             int
}

// DefaultConfig returns production defaults.
func DefaultConfig(apiKey string) Config {
	return Config{
		BaseURL:           defaultBaseURL,
		APIKey:            apiKey,
		Timeout:           10 * time.Second,
		RequestsPerSecond: 5,
		Burst:             5,
	}
}

// Client talks to the Spoonacular API over HTTP.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a Client from the given config.
func New(cfg Config, logger *slog.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 5
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 1
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:     logger,
	}
}

// Random fetches n random recipes. The home page shows 12.
func (c *Client) Random(ctx context.Context, n int) ([]RecipeSummary, error) {
	params := url.Values{}
	params.Set("number", strconv.Itoa(n))

	var resp randomResponse
	if err := c.get(ctx, "/recipes/random", params, &resp); err != nil {
		return nil, err
	}
	return resp.Recipes, nil
}

// Search runs a complexSearch with the given filters.
//
// Each non-empty filter field becomes exactly one upstream parameter;
// empty fields are omitted. instructionsRequired is always set so detail
// pages have something to show.
func (c *Client) Search(ctx context.Context, filters SearchFilters) ([]RecipeSummary, error) {
	params := url.Values{}
	params.Set("number", "21")
	params.Set("instructionsRequired", "true")

	setIfPresent := func(key, value string) {
		if value != "" {
			params.Set(key, value)
		}
	}
	setIfPresent("includeIngredients", filters.IncludeIngredients)
	setIfPresent("maxReadyTime", filters.MaxReadyTime)
	setIfPresent("excludeIngredients", filters.ExcludeIngredients)
	setIfPresent("intolerances", filters.Intolerances)
	setIfPresent("diet", filters.Diet)
	setIfPresent("cuisine", filters.Cuisine)
	setIfPresent("type", filters.Type)

	var resp searchResponse
	if err := c.get(ctx, "/recipes/complexSearch", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Details fetches the full record for one recipe.
func (c *Client) Details(ctx context.Context, recipeID int64) (*RecipeDetail, error) {
	var detail RecipeDetail
	path := fmt.Sprintf("/recipes/%d/information", recipeID)
	if err := c.get(ctx, path, url.Values{}, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Similar fetches n recipes similar to the given one. Detail pages show 3.
func (c *Client) Similar(ctx context.Context, recipeID int64, n int) ([]RecipeSummary, error) {
	params := url.Values{}
	params.Set("number", strconv.Itoa(n))

	// The similar endpoint returns a bare JSON array, not an envelope.
	var summaries []RecipeSummary
	path := fmt.Sprintf("/recipes/%d/similar", recipeID)
	if err := c.get(ctx, path, params, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

// get performs one GET against the upstream API and decodes the JSON body
// into out. All failure modes — transport errors, non-200 statuses, decode
// errors — come back wrapped in apperror.ErrUnavailable.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		// context canceled or deadline exceeded while queued
		return fmt.Errorf("spoonacular: waiting for rate limiter: %w", err)
	}

	params.Set("apiKey", c.apiKey)
	fullURL := c.baseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("spoonacular: creating request for %s: %w", path, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("spoonacular request failed",
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return apperror.Unavailable(unavailableMsg, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("spoonacular returned non-OK status",
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return apperror.Unavailable(unavailableMsg,
			fmt.Errorf("upstream status %d for %s", resp.StatusCode, path))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Unavailable(unavailableMsg,
			fmt.Errorf("decoding %s response: %w", path, err))
	}

	return nil
}
