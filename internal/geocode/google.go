package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopradar/price-finder-api/internal/observability"
)

const googleBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// GoogleGeocoder queries the Google Maps Geocoding API. It is the structured
// primary provider and is safe for concurrent use.
type GoogleGeocoder struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// GoogleOption configures optional geocoder dependencies.
type GoogleOption func(*GoogleGeocoder)

// WithGoogleBaseURL points the geocoder at a different endpoint, for tests.
func WithGoogleBaseURL(base string) GoogleOption {
	return func(g *GoogleGeocoder) {
		if base != "" {
			g.baseURL = base
		}
	}
}

// WithGoogleHTTPClient overrides the default HTTP client.
func WithGoogleHTTPClient(hc *http.Client) GoogleOption {
	return func(g *GoogleGeocoder) {
		if hc != nil {
			g.httpClient = hc
		}
	}
}

// NewGoogleGeocoder builds a Google Maps geocoder.
func NewGoogleGeocoder(apiKey string, opts ...GoogleOption) *GoogleGeocoder {
	g := &GoogleGeocoder{
		apiKey:  apiKey,
		baseURL: googleBaseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type googleResponse struct {
	Results []struct {
		Geometry struct {
			// Location is a pointer so a payload without a geometry is
			// distinguishable from a store at coordinates (0, 0).
			Location *struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"location"`
		} `json:"geometry"`
		FormattedAddress string `json:"formatted_address"`
	} `json:"results"`
	Status string `json:"status"` // OK, ZERO_RESULTS, ...
}

// Geocode resolves "store, city" to the first candidate's formatted address
// and coordinates. ZERO_RESULTS maps to (nil, nil).
func (g *GoogleGeocoder) Geocode(ctx context.Context, store, city string) (*Hit, error) {
	params := url.Values{}
	params.Set("address", store+", "+city)
	params.Set("key", g.apiKey)
	params.Set("region", "ca")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building geocoding request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	observability.ObserveUpstream("geocode_google", err)
	if err != nil {
		return nil, fmt.Errorf("geocoding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google maps returned status %d", resp.StatusCode)
	}

	var payload googleResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decoding geocoding response: %w", err)
	}

	switch {
	case payload.Status == "ZERO_RESULTS" || len(payload.Results) == 0:
		return nil, nil
	case payload.Status != "OK":
		return nil, fmt.Errorf("google maps status: %s", payload.Status)
	}

	result := payload.Results[0]
	address := strings.TrimSpace(result.FormattedAddress)
	if address == "" {
		return nil, nil
	}

	hit := &Hit{Address: address}
	if loc := result.Geometry.Location; loc != nil {
		hit.Lat = &loc.Lat
		hit.Lng = &loc.Lng
	}
	return hit, nil
}
