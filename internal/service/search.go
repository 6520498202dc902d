package service

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"github.com/shopradar/price-finder-api/internal/dto"
	"github.com/shopradar/price-finder-api/internal/geo"
	"github.com/shopradar/price-finder-api/internal/geocode"
	"github.com/shopradar/price-finder-api/internal/shopping"
	"github.com/shopradar/price-finder-api/internal/store"
)

// ShoppingSearcher abstracts the shopping provider for testing.
type ShoppingSearcher interface {
	Search(ctx context.Context, query, city string) ([]shopping.Listing, error)
}

// WindowConfig sizes the geocoding candidate window per ranking mode, as a
// multiple of the requested limit. Distance ranking needs the larger pool
// because price order is a poor proxy for proximity.
type WindowConfig struct {
	Price   int
	Closest int
}

// DefaultWindows returns the standard window multipliers.
func DefaultWindows() WindowConfig {
	return WindowConfig{Price: 2, Closest: 3}
}

// SearchService runs the aggregation pipeline: shopping query, normalization
// and online-only filtering, cheapest-per-store dedup, geocoding and ranking.
type SearchService struct {
	shopping   ShoppingSearcher
	resolver   geocode.Resolver
	normalizer *store.Normalizer
	windows    WindowConfig
	log        zerolog.Logger
}

// NewSearchService wires the pipeline components.
func NewSearchService(searcher ShoppingSearcher, resolver geocode.Resolver, normalizer *store.Normalizer, windows WindowConfig, log zerolog.Logger) *SearchService {
	if windows.Price < 1 {
		windows.Price = DefaultWindows().Price
	}
	if windows.Closest < 1 {
		windows.Closest = DefaultWindows().Closest
	}
	return &SearchService{
		shopping:   searcher,
		resolver:   resolver,
		normalizer: normalizer,
		windows:    windows,
		log:        log,
	}
}

// Search executes the pipeline for one validated request. A shopping-provider
// failure is returned to the caller; geocode failures only degrade individual
// rows.
func (s *SearchService) Search(ctx context.Context, params dto.SearchParams) ([]dto.PriceRow, error) {
	listings, err := s.shopping.Search(ctx, params.Query, params.City)
	if err != nil {
		return nil, err
	}

	rows := make([]store.Row, 0, len(listings))
	for _, l := range listings {
		price, ok := l.ParsedPrice()
		if !ok {
			continue
		}
		label := l.Label()
		if label == "" {
			continue
		}
		canonical := s.normalizer.Normalize(label)
		if s.normalizer.IsOnlineOnly(label, canonical) {
			continue
		}
		rows = append(rows, store.Row{Store: canonical, Price: price})
	}

	rows = store.DedupeCheapest(rows)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Price < rows[j].Price })

	closestMode := params.Sort == dto.SortClosest && params.Lat != nil && params.Lng != nil

	multiplier := s.windows.Price
	if closestMode {
		multiplier = s.windows.Closest
	}
	window := params.Top * multiplier
	if window > len(rows) {
		window = len(rows)
	}
	candidates := rows[:window]

	names := make([]string, len(candidates))
	for i, r := range candidates {
		names[i] = r.Store
	}
	hits := s.resolver.ResolveAll(ctx, names, params.City)

	out := make([]dto.PriceRow, len(candidates))
	for i, r := range candidates {
		out[i] = dto.PriceRow{
			Store:    r.Store,
			Price:    r.Price,
			Location: hits[i].Address,
			Lat:      hits[i].Lat,
			Lng:      hits[i].Lng,
		}
	}

	if closestMode {
		s.rankByDistance(out, geo.Point{Lat: *params.Lat, Lng: *params.Lng})
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	}

	if len(out) > params.Top {
		out = out[:params.Top]
	}

	s.log.Debug().
		Str("query", params.Query).
		Str("city", params.City).
		Bool("closest", closestMode).
		Int("rows", len(out)).
		Msg("search pipeline completed")

	return out, nil
}

// rankByDistance sorts rows by distance from the shopper. Rows without
// coordinates rank last with ascending price as the tiebreaker, and carry no
// distance in the response.
func (s *SearchService) rankByDistance(rows []dto.PriceRow, origin geo.Point) {
	distances := make([]float64, len(rows))
	for i := range rows {
		if rows[i].Lat == nil || rows[i].Lng == nil {
			distances[i] = math.Inf(1)
			continue
		}
		d := geo.DistanceKm(origin, geo.Point{Lat: *rows[i].Lat, Lng: *rows[i].Lng})
		distances[i] = d
		rows[i].DistanceKm = &distances[i]
	}

	type ranked struct {
		row  dto.PriceRow
		dist float64
	}
	tmp := make([]ranked, len(rows))
	for i := range rows {
		tmp[i] = ranked{row: rows[i], dist: distances[i]}
	}
	sort.SliceStable(tmp, func(i, j int) bool {
		if tmp[i].dist != tmp[j].dist {
			return tmp[i].dist < tmp[j].dist
		}
		if math.IsInf(tmp[i].dist, 1) {
			return tmp[i].row.Price < tmp[j].row.Price
		}
		return false
	})
	for i := range tmp {
		rows[i] = tmp[i].row
	}
}
