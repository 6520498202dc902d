package geocode

import (
	"context"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shopradar/price-finder-api/internal/cache"
	"github.com/shopradar/price-finder-api/internal/observability"
)

// Resolver turns a window of canonical store names into locations.
type Resolver interface {
	ResolveAll(ctx context.Context, stores []string, city string) []Hit
}

// Lookup runs the cache -> primary -> fallback chain for a single store.
// Provider errors are absorbed here: a failed lookup degrades to the
// placeholder hit, never to a request-level error.
type Lookup struct {
	cache    *cache.Cache[Hit]
	primary  Geocoder // nil when no structured provider is configured
	fallback Geocoder
	log      zerolog.Logger
}

// NewLookup builds the resolution chain. primary may be nil.
func NewLookup(geoCache *cache.Cache[Hit], primary, fallback Geocoder, log zerolog.Logger) *Lookup {
	return &Lookup{
		cache:    geoCache,
		primary:  primary,
		fallback: fallback,
		log:      log,
	}
}

func cacheKey(store, city string) string {
	return strings.ToLower(store) + "|" + strings.ToLower(city)
}

// Resolve returns the location for one store. Placeholder results are cached
// too, so repeated failed lookups stay off the network within the TTL window.
func (l *Lookup) Resolve(ctx context.Context, store, city string) Hit {
	key := cacheKey(store, city)
	if hit, ok := l.cache.Get(key); ok {
		observability.ObserveCache("geocode", true)
		return hit
	}
	observability.ObserveCache("geocode", false)

	if l.primary != nil {
		if hit := l.try(ctx, l.primary, "primary", store, city); hit != nil {
			l.cache.Set(key, *hit)
			return *hit
		}
	}

	if l.fallback != nil {
		if hit := l.try(ctx, l.fallback, "fallback", store, city); hit != nil {
			l.cache.Set(key, *hit)
			return *hit
		}
	}

	placeholder := Hit{Address: PlaceholderAddress}
	l.cache.Set(key, placeholder)
	return placeholder
}

func (l *Lookup) try(ctx context.Context, g Geocoder, name, store, city string) *Hit {
	hit, err := g.Geocode(ctx, store, city)
	if err != nil {
		l.log.Warn().Err(err).Str("provider", name).Str("store", store).Msg("geocode lookup failed")
		return nil
	}
	if hit == nil || hit.Address == "" {
		return nil
	}
	return hit
}

// HasPrimary reports whether a structured provider is configured, which
// decides the window strategy.
func (l *Lookup) HasPrimary() bool {
	return l.primary != nil
}

// NewResolver picks the window strategy once per configuration: fan out when
// the primary provider is available, otherwise pace every lookup through the
// fallback's limiter, one at a time.
func NewResolver(l *Lookup) Resolver {
	if l.HasPrimary() {
		return &ConcurrentResolver{lookup: l}
	}
	return &SerializedResolver{lookup: l}
}

// ConcurrentResolver resolves the whole window in parallel, one goroutine per
// store. Entries that individually fall back to the rate-limited provider
// still serialize among themselves on its shared limiter.
type ConcurrentResolver struct {
	lookup *Lookup
}

// ResolveAll resolves every store concurrently; hits come back in input order.
func (r *ConcurrentResolver) ResolveAll(ctx context.Context, stores []string, city string) []Hit {
	hits := make([]Hit, len(stores))

	var wg sync.WaitGroup
	for i, store := range stores {
		wg.Add(1)
		go func(i int, store string) {
			defer wg.Done()
			hits[i] = r.lookup.Resolve(ctx, store, city)
		}(i, store)
	}
	wg.Wait()

	return hits
}

// SerializedResolver resolves the window strictly in sequence, respecting the
// fallback provider's mandatory inter-request delay.
type SerializedResolver struct {
	lookup *Lookup
}

// ResolveAll resolves stores one at a time in input order.
func (r *SerializedResolver) ResolveAll(ctx context.Context, stores []string, city string) []Hit {
	hits := make([]Hit, len(stores))
	for i, store := range stores {
		hits[i] = r.lookup.Resolve(ctx, store, city)
	}
	return hits
}
