package places

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/eatsential/eatsential-backend/internal/logger"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}
	t.Cleanup(log.Sync)
	return log
}

func newTestClient(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	t.Setenv("GOOGLE_MAPS_API_KEY", "test-key")
	t.Setenv("GOOGLE_MAPS_BASE_URL", server.URL)

	c, err := NewClient(newTestLogger(t))
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return c
}

func TestSearchParsesResults(t *testing.T) {
	var gotQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"status": "OK",
			"results": [
				{
					"place_id": "ChIJabc",
					"name": "Thai Basil",
					"formatted_address": "5 Oak Ave",
					"rating": 4.4,
					"price_level": 2,
					"types": ["thai_restaurant", "restaurant"],
					"geometry": {"location": {"lat": 35.1, "lng": -78.2}}
				},
				{"place_id": "ChIJdef", "name": "La Piazza"}
			]
		}`))
	})

	results, err := c.Search(context.Background(), "thai", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if gotQuery != "thai restaurant" {
		t.Fatalf("query = %q, want restaurant keyword appended", gotQuery)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	first := results[0]
	if first.PlaceID != "ChIJabc" || first.Name != "Thai Basil" || first.Address != "5 Oak Ave" {
		t.Fatalf("unexpected first result: %+v", first)
	}
	if first.PriceLevel == nil || *first.PriceLevel != 2 {
		t.Fatalf("price level not parsed: %+v", first.PriceLevel)
	}
	if first.Location == nil || first.Location.Lat != 35.1 {
		t.Fatalf("location not parsed: %+v", first.Location)
	}

	second := results[1]
	if second.PriceLevel != nil || second.Rating != nil {
		t.Fatalf("missing optional fields must stay nil: %+v", second)
	}
}

func TestSearchTruncatesToMaxResults(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "OK", "results": [
			{"place_id": "a", "name": "A"},
			{"place_id": "b", "name": "B"},
			{"place_id": "c", "name": "C"}
		]}`))
	})

	results, err := c.Search(context.Background(), "restaurants", 2)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
}

func TestSearchProviderError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid."}`))
	})

	_, err := c.Search(context.Background(), "thai", 10)
	if !errors.Is(err, errs.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

func TestSearchHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Search(context.Background(), "thai", 10)
	if !errors.Is(err, errs.ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}
