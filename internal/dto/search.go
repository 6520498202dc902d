package dto

// Sort modes for the price search.
const (
	SortPrice   = "price"
	SortClosest = "closest"
)

// Bounds and defaults for the result limit.
const (
	TopDefault = 5
	TopMin     = 1
	TopMax     = 20
)

// SearchParams is the validated input for a price search. Lat and Lng are
// both set or both nil.
type SearchParams struct {
	Query string
	City  string
	Top   int
	Lat   *float64
	Lng   *float64
	Sort  string
}

// PriceRow is one store in the ranked response. DistanceKm is only present in
// closest mode for stores with resolved coordinates.
type PriceRow struct {
	Store      string   `json:"store"`
	Price      float64  `json:"price"`
	Location   string   `json:"location"`
	Lat        *float64 `json:"lat,omitempty"`
	Lng        *float64 `json:"lng,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
}
