package geo

import (
	"math"
	"testing"
)

func TestDistanceKm(t *testing.T) {
	vancouver := Point{Lat: 49.2827, Lng: -123.1207}
	toronto := Point{Lat: 43.6532, Lng: -79.3832}

	t.Run("identical points", func(t *testing.T) {
		if d := DistanceKm(vancouver, vancouver); d != 0 {
			t.Fatalf("expected 0 for identical points, got %f", d)
		}
	})

	t.Run("known distance", func(t *testing.T) {
		d := DistanceKm(vancouver, toronto)
		if d < 3300 || d > 3400 {
			t.Fatalf("Vancouver-Toronto should be ~3350 km, got %f", d)
		}
	})

	t.Run("symmetric", func(t *testing.T) {
		ab := DistanceKm(vancouver, toronto)
		ba := DistanceKm(toronto, vancouver)
		if math.Abs(ab-ba) > 1e-9 {
			t.Fatalf("distance not symmetric: %f vs %f", ab, ba)
		}
	})

	t.Run("one degree of latitude", func(t *testing.T) {
		d := DistanceKm(Point{Lat: 49, Lng: -123}, Point{Lat: 50, Lng: -123})
		if math.Abs(d-111.19) > 0.5 {
			t.Fatalf("one degree of latitude should be ~111.19 km, got %f", d)
		}
	})
}
