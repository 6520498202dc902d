package shopping

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/shopradar/price-finder-api/internal/cache"
	"github.com/shopradar/price-finder-api/internal/observability"
)

const (
	defaultBaseURL     = "https://serpapi.com"
	defaultHTTPTimeout = 15 * time.Second

	// Fixed market parameters: single-currency CAD results, English labels.
	countryCode  = "ca"
	languageCode = "en"
	resultCount  = "40"

	maxErrorBodyBytes = 4 << 10
)

// Listing is one shopping-provider hit.
type Listing struct {
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	Link           string  `json:"link"`
	Price          string  `json:"price"`
	ExtractedPrice float64 `json:"extracted_price"`
}

type searchResponse struct {
	ShoppingResults []Listing `json:"shopping_results"`
}

// UpstreamError reports a failed call to the shopping provider. Status is 0
// when the request never produced a response.
type UpstreamError struct {
	Status int
	Body   string
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("shopping provider request failed: %v", e.Err)
	}
	return fmt.Sprintf("shopping provider returned status %d: %s", e.Status, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Client queries the shopping-search provider, caching raw result sets per
// (query, city) pair.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	cache      *cache.Cache[[]Listing]
	log        zerolog.Logger
}

// Option configures optional client dependencies.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithBaseURL points the client at a different provider endpoint, mainly for
// tests.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient builds a shopping-search client.
func NewClient(apiKey string, resultCache *cache.Cache[[]Listing], log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		cache:      resultCache,
		log:        log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search returns the provider's listings for the query in the given city.
// Results are cached per (query, city); only successful responses populate
// the cache, so a failed call can be retried immediately.
func (c *Client) Search(ctx context.Context, query, city string) ([]Listing, error) {
	key := query + "|" + city
	if listings, ok := c.cache.Get(key); ok {
		observability.ObserveCache("shopping", true)
		return listings, nil
	}
	observability.ObserveCache("shopping", false)

	params := url.Values{}
	params.Set("engine", "google_shopping")
	params.Set("q", query)
	params.Set("location", city)
	params.Set("gl", countryCode)
	params.Set("hl", languageCode)
	params.Set("num", resultCount)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search.json?"+params.Encode(), nil)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	observability.ObserveUpstream("shopping", err)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, &UpstreamError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &UpstreamError{Status: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}

	c.log.Debug().Str("query", query).Str("city", city).Int("results", len(payload.ShoppingResults)).Msg("shopping search completed")

	c.cache.Set(key, payload.ShoppingResults)
	return payload.ShoppingResults, nil
}

var priceTokenRe = regexp.MustCompile(`[0-9][0-9,]*(?:\.[0-9]+)?`)

// ParsedPrice extracts a positive, finite price. The provider's numeric
// extracted_price field wins; otherwise the display string is parsed with
// currency noise stripped. ok is false when no usable price exists.
func (l Listing) ParsedPrice() (price float64, ok bool) {
	if l.ExtractedPrice > 0 && !math.IsInf(l.ExtractedPrice, 0) {
		return l.ExtractedPrice, true
	}

	token := priceTokenRe.FindString(l.Price)
	if token == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil || v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Label returns the merchant identity for a listing: the source name when
// present, else the host of the product URL.
func (l Listing) Label() string {
	if s := strings.TrimSpace(l.Source); s != "" {
		return s
	}
	u, err := url.Parse(l.Link)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}
