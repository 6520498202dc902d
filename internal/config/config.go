package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// RateLimitConfig indicates how many requests are allowed within a given interval.
type RateLimitConfig struct {
	Requests int
	Interval time.Duration
}

// CacheConfig sizes one of the in-memory caches.
type CacheConfig struct {
	Size int
	TTL  time.Duration
}

// Config aggregates application-wide configuration values.
type Config struct {
	Port             string
	SerpAPIKey       string
	GoogleMapsAPIKey string
	OpenAIAPIKey     string
	DefaultCity      string
	StoreRulesFile   string
	RateLimitSearch  RateLimitConfig
	ShoppingCache    CacheConfig
	GeocodeCache     CacheConfig
	WindowPrice      int
	WindowClosest    int
}

// Load reads configuration from environment variables and applies sane defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8080"),
		SerpAPIKey:       os.Getenv("SERPAPI_KEY"),
		GoogleMapsAPIKey: os.Getenv("GOOGLE_MAPS_API_KEY"),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		DefaultCity:      getEnv("DEFAULT_CITY", "Vancouver, British Columbia, Canada"),
		StoreRulesFile:   os.Getenv("STORE_RULES_FILE"),
		ShoppingCache: CacheConfig{
			Size: parseInt(getEnv("SHOPPING_CACHE_SIZE", "64"), 64),
			TTL:  parseDuration(getEnv("SHOPPING_CACHE_TTL", "10m"), 10*time.Minute),
		},
		GeocodeCache: CacheConfig{
			Size: parseInt(getEnv("GEOCODE_CACHE_SIZE", "512"), 512),
			TTL:  parseDuration(getEnv("GEOCODE_CACHE_TTL", "1h"), time.Hour),
		},
		WindowPrice:   parseInt(getEnv("GEOCODE_WINDOW_PRICE", "2"), 2),
		WindowClosest: parseInt(getEnv("GEOCODE_WINDOW_CLOSEST", "3"), 3),
	}

	if cfg.SerpAPIKey == "" {
		return nil, fmt.Errorf("SERPAPI_KEY is required")
	}

	rl, err := parseRateLimit(getEnv("RATE_LIMIT_SEARCH", "30/min"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_SEARCH value: %w", err)
	}
	cfg.RateLimitSearch = rl

	return cfg, nil
}

func parseRateLimit(value string) (RateLimitConfig, error) {
	parts := strings.Split(value, "/")
	if len(parts) != 2 {
		return RateLimitConfig{}, fmt.Errorf("expected format <requests>/<interval>, got %q", value)
	}

	requests, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || requests <= 0 {
		return RateLimitConfig{}, fmt.Errorf("invalid request count: %v", parts[0])
	}

	unit := strings.ToLower(strings.TrimSpace(parts[1]))
	var interval time.Duration
	switch unit {
	case "s", "sec", "second", "seconds":
		interval = time.Second
	case "m", "min", "minute", "minutes":
		interval = time.Minute
	case "h", "hr", "hour", "hours":
		interval = time.Hour
	default:
		return RateLimitConfig{}, fmt.Errorf("unsupported interval unit: %s", unit)
	}

	return RateLimitConfig{Requests: requests, Interval: interval}, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func parseDuration(input string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(input)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func parseInt(input string, fallback int) int {
	v, err := strconv.Atoi(input)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
