package geocode

import "context"

// PlaceholderAddress marks stores no provider could locate.
const PlaceholderAddress = "Address not found"

// Hit is one resolved store location. Coordinates are optional: nil pointers
// mean the provider produced an address without a usable geometry, or the
// lookup failed entirely.
type Hit struct {
	Address string   `json:"address"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
}

// HasCoords reports whether both coordinates are present.
func (h Hit) HasCoords() bool {
	return h.Lat != nil && h.Lng != nil
}

// Geocoder resolves a free-text "store, city" pair to a location.
// A nil Hit with a nil error means the provider had no match.
type Geocoder interface {
	Geocode(ctx context.Context, store, city string) (*Hit, error)
}
