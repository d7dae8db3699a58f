package spoonacular

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mkaur/perfect-recipe/internal/apperror"
)

// newTestClient spins up a fake upstream and returns a Client pointed at it.
// The handler receives every request the client makes, so tests can inspect
// exactly which path and query parameters went over the wire.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	cfg := DefaultConfig("test-api-key")
	cfg.BaseURL = srv.URL
	cfg.RequestsPerSecond = 1000 // don't throttle tests
	cfg.Burst = 1000
	return New(cfg, logger)
}

func TestRandom(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/random", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"recipes":[{"id":1,"title":"Pancakes","image":"p.jpg"},{"id":2,"title":"Waffles","image":"w.jpg"}]}`))
	})

	recipes, err := client.Random(context.Background(), 12)

	assert.NoError(t, err)
	assert.Len(t, recipes, 2)
	assert.Equal(t, int64(1), recipes[0].ID)
	assert.Equal(t, "Pancakes", recipes[0].Title)
	assert.Equal(t, "12", gotQuery.Get("number"))
	assert.Equal(t, "test-api-key", gotQuery.Get("apiKey"))
}

func TestSearchPassesPresentFiltersOnly(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/complexSearch", r.URL.Path)
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[{"id":7,"title":"Pear Salad","image":"s.jpg"}]}`))
	})

	// End-to-end filter scenario: only include-ingredients is set.
	results, err := client.Search(context.Background(), SearchFilters{
		IncludeIngredients: "pears",
	})

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "pears", gotQuery.Get("includeIngredients"))
	assert.Equal(t, "21", gotQuery.Get("number"))
	assert.Equal(t, "true", gotQuery.Get("instructionsRequired"))

	// Empty filters must be absent, not sent as empty-valued params.
	for _, key := range []string{"maxReadyTime", "excludeIngredients", "intolerances", "diet", "cuisine", "type"} {
		assert.False(t, gotQuery.Has(key), "query should not contain %s", key)
	}
}

func TestSearchAllFiltersPresent(t *testing.T) {
	var gotQuery url.Values
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{"results":[]}`))
	})

	_, err := client.Search(context.Background(), SearchFilters{
		IncludeIngredients: "pears",
		MaxReadyTime:       "30",
		ExcludeIngredients: "nuts",
		Intolerances:       "gluten",
		Diet:               "vegetarian",
		Cuisine:            "italian",
		Type:               "salad",
	})

	assert.NoError(t, err)
	assert.Equal(t, "pears", gotQuery.Get("includeIngredients"))
	assert.Equal(t, "30", gotQuery.Get("maxReadyTime"))
	assert.Equal(t, "nuts", gotQuery.Get("excludeIngredients"))
	assert.Equal(t, "gluten", gotQuery.Get("intolerances"))
	assert.Equal(t, "vegetarian", gotQuery.Get("diet"))
	assert.Equal(t, "italian", gotQuery.Get("cuisine"))
	assert.Equal(t, "salad", gotQuery.Get("type"))
}

func TestDetails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/42/information", r.URL.Path)
		w.Write([]byte(`{
			"id": 42,
			"title": "Pear Tart",
			"image": "tart.jpg",
			"readyInMinutes": 45,
			"servings": 8,
			"instructions": "<ol><li>Roll the dough.</li></ol>",
			"extendedIngredients": [{"id":9,"name":"pear","original":"3 ripe pears","amount":3,"unit":""}]
		}`))
	})

	detail, err := client.Details(context.Background(), 42)

	assert.NoError(t, err)
	assert.Equal(t, int64(42), detail.ID)
	assert.Equal(t, "Pear Tart", detail.Title)
	assert.Len(t, detail.Ingredients, 1)
	assert.Equal(t, "3 ripe pears", detail.Ingredients[0].Original)
	assert.Equal(t, "Roll the dough.", detail.PlainInstructions())
}

func TestSimilarDecodesBareArray(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/recipes/42/similar", r.URL.Path)
		assert.Equal(t, "3", r.URL.Query().Get("number"))
		w.Write([]byte(`[{"id":100,"title":"Apple Tart","readyInMinutes":40}]`))
	})

	similar, err := client.Similar(context.Background(), 42, 3)

	assert.NoError(t, err)
	assert.Len(t, similar, 1)
	assert.Equal(t, int64(100), similar[0].ID)
}

func TestUpstreamErrorsWrapUnavailable(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "non-200 status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusPaymentRequired) // quota exhausted
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"recipes": not json`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, tt.handler)
			_, err := client.Random(context.Background(), 12)

			assert.Error(t, err)
			assert.True(t, errors.Is(err, apperror.ErrUnavailable),
				"error should wrap ErrUnavailable, got %v", err)
		})
	}
}

func TestTransportErrorWrapsUnavailable(t *testing.T) {
	// Point the client at a closed server to force a connection error.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	brokenCfg := DefaultConfig("test-api-key")
	brokenCfg.BaseURL = "http://127.0.0.1:1" // nothing listens here
	broken := New(brokenCfg, client.logger)

	_, err := broken.Random(context.Background(), 1)

	assert.Error(t, err)
	assert.True(t, errors.Is(err, apperror.ErrUnavailable))
}
