package places

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/eatsential/eatsential-backend/internal/logger"
	errs "github.com/eatsential/eatsential-backend/internal/pkg/errors"
)

// Place is the normalized record returned by the place-search collaborator.
// PriceLevel follows the 0-4 scale; nil means the provider did not report one.
type Place struct {
	PlaceID    string    `json:"place_id"`
	Name       string    `json:"name"`
	Address    string    `json:"address,omitempty"`
	Rating     *float64  `json:"rating,omitempty"`
	PriceLevel *int      `json:"price_level,omitempty"`
	Location   *Location `json:"location,omitempty"`
	Types      []string  `json:"types,omitempty"`
}

type Location struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type Client interface {
	// Search runs a text search for restaurants matching the cuisine or
	// query string. Safe to call repeatedly with the same input.
	Search(ctx context.Context, query string, maxResults int) ([]Place, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	lat        float64
	lng        float64
	radius     int
	httpClient *http.Client
}

func NewClient(log *logger.Logger) (Client, error) {
	apiKey := strings.TrimSpace(os.Getenv("GOOGLE_MAPS_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing GOOGLE_MAPS_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("GOOGLE_MAPS_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://maps.googleapis.com"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	lat := 35.7847
	if v := os.Getenv("PLACES_SEARCH_LAT"); v != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			lat = parsed
		}
	}
	lng := -78.6821
	if v := os.Getenv("PLACES_SEARCH_LNG"); v != "" {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			lng = parsed
		}
	}
	radius := 16000
	if v := os.Getenv("PLACES_SEARCH_RADIUS_METERS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			radius = parsed
		}
	}

	timeoutSec := 15
	if v := os.Getenv("PLACES_TIMEOUT_SECONDS"); v != "" {
		if parsed, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && parsed > 0 {
			timeoutSec = parsed
		}
	}

	return &client{
		log:        log.With("client", "PlacesClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		lat:        lat,
		lng:        lng,
		radius:     radius,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}, nil
}

type textSearchResult struct {
	PlaceID          string   `json:"place_id"`
	Name             string   `json:"name"`
	FormattedAddress string   `json:"formatted_address"`
	Rating           *float64 `json:"rating"`
	PriceLevel       *int     `json:"price_level"`
	Types            []string `json:"types"`
	Geometry         struct {
		Location *Location `json:"location"`
	} `json:"geometry"`
}

type textSearchResponse struct {
	Results      []textSearchResult `json:"results"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
}

func (c *client) Search(ctx context.Context, query string, maxResults int) ([]Place, error) {
	q := query
	if !strings.Contains(strings.ToLower(q), "restaurant") {
		q = q + " restaurant"
	}

	params := url.Values{}
	params.Set("query", q)
	params.Set("location", fmt.Sprintf("%f,%f", c.lat, c.lng))
	params.Set("radius", strconv.Itoa(c.radius))
	params.Set("key", c.apiKey)

	endpoint := c.baseURL + "/maps/api/place/textsearch/json?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: place search: %v", errs.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: place search read: %v", errs.ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: place search http %d", errs.ErrUpstreamUnavailable, resp.StatusCode)
	}

	var parsed textSearchResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("%w: place search decode: %v", errs.ErrUpstreamUnavailable, err)
	}
	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: place search: %s", errs.ErrUpstreamUnavailable, parsed.ErrorMessage)
	}

	places := make([]Place, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		places = append(places, Place{
			PlaceID:    r.PlaceID,
			Name:       r.Name,
			Address:    r.FormattedAddress,
			Rating:     r.Rating,
			PriceLevel: r.PriceLevel,
			Location:   r.Geometry.Location,
			Types:      r.Types,
		})
	}
	if maxResults > 0 && len(places) > maxResults {
		places = places[:maxResults]
	}
	return places, nil
}
