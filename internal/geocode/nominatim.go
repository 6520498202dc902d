package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/shopradar/price-finder-api/internal/observability"
)

const (
	nominatimBaseURL = "https://nominatim.openstreetmap.org/search"

	// Nominatim's usage policy caps clients at one request per second.
	// 1.1s of spacing keeps us safely under it.
	nominatimMinInterval = 1100 * time.Millisecond

	nominatimUserAgent = "price-finder-api/1.0 (store locator)"
)

// NominatimGeocoder is the free-text fallback provider. All calls, from any
// goroutine, serialize on a shared limiter so the provider never sees
// concurrent or back-to-back requests from this process.
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NominatimOption configures optional geocoder dependencies.
type NominatimOption func(*NominatimGeocoder)

// WithNominatimBaseURL points the geocoder at a different endpoint, for tests.
func WithNominatimBaseURL(base string) NominatimOption {
	return func(n *NominatimGeocoder) {
		if base != "" {
			n.baseURL = base
		}
	}
}

// WithNominatimLimiter overrides the courtesy limiter, for tests.
func WithNominatimLimiter(l *rate.Limiter) NominatimOption {
	return func(n *NominatimGeocoder) {
		if l != nil {
			n.limiter = l
		}
	}
}

// NewNominatimGeocoder builds the fallback geocoder.
func NewNominatimGeocoder(opts ...NominatimOption) *NominatimGeocoder {
	n := &NominatimGeocoder{
		baseURL:   nominatimBaseURL,
		userAgent: nominatimUserAgent,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		limiter: rate.NewLimiter(rate.Every(nominatimMinInterval), 1),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type nominatimResult struct {
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Geocode resolves "store, city" via free-text search. The best match is the
// first array element; an empty array maps to (nil, nil).
func (n *NominatimGeocoder) Geocode(ctx context.Context, store, city string) (*Hit, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for nominatim slot: %w", err)
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("limit", "1")
	params.Set("q", store+", "+city)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building nominatim request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)

	resp, err := n.httpClient.Do(req)
	observability.ObserveUpstream("geocode_nominatim", err)
	if err != nil {
		return nil, fmt.Errorf("nominatim request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("nominatim returned status %d", resp.StatusCode)
	}

	var results []nominatimResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, fmt.Errorf("decoding nominatim response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]
	if best.DisplayName == "" {
		return nil, nil
	}

	hit := &Hit{Address: best.DisplayName}
	lat, latErr := strconv.ParseFloat(best.Lat, 64)
	lng, lngErr := strconv.ParseFloat(best.Lon, 64)
	if latErr == nil && lngErr == nil {
		hit.Lat = &lat
		hit.Lng = &lng
	}
	return hit, nil
}
