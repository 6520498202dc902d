package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

// fastLimiter removes the courtesy delay so tests stay quick.
func fastLimiter() *rate.Limiter {
	return rate.NewLimiter(rate.Inf, 1)
}

func TestNominatimGeocode(t *testing.T) {
	t.Run("best match is first element", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "json", r.URL.Query().Get("format"))
			require.Equal(t, "1", r.URL.Query().Get("limit"))
			require.Equal(t, "Walmart, Vancouver", r.URL.Query().Get("q"))
			require.NotEmpty(t, r.Header.Get("User-Agent"))
			w.Write([]byte(`[{"display_name": "Walmart, Grandview Hwy, Vancouver, BC, Canada", "lat": "49.2606", "lon": "-123.0331"}]`))
		}))
		defer srv.Close()

		g := NewNominatimGeocoder(WithNominatimBaseURL(srv.URL), WithNominatimLimiter(fastLimiter()))
		hit, err := g.Geocode(context.Background(), "Walmart", "Vancouver")
		require.NoError(t, err)
		require.NotNil(t, hit)
		require.Equal(t, "Walmart, Grandview Hwy, Vancouver, BC, Canada", hit.Address)
		require.True(t, hit.HasCoords())
	})

	t.Run("empty array", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[]`))
		}))
		defer srv.Close()

		g := NewNominatimGeocoder(WithNominatimBaseURL(srv.URL), WithNominatimLimiter(fastLimiter()))
		hit, err := g.Geocode(context.Background(), "Nowhere Mart", "Vancouver")
		require.NoError(t, err)
		require.Nil(t, hit)
	})

	t.Run("unparseable coordinates keep the address", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`[{"display_name": "Somewhere", "lat": "", "lon": ""}]`))
		}))
		defer srv.Close()

		g := NewNominatimGeocoder(WithNominatimBaseURL(srv.URL), WithNominatimLimiter(fastLimiter()))
		hit, err := g.Geocode(context.Background(), "Somewhere", "Vancouver")
		require.NoError(t, err)
		require.NotNil(t, hit)
		require.Equal(t, "Somewhere", hit.Address)
		require.False(t, hit.HasCoords())
	})
}

func TestNominatimSerializesRequests(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	// A real (but short) limiter: the second call must wait for a slot.
	interval := 50 * time.Millisecond
	g := NewNominatimGeocoder(
		WithNominatimBaseURL(srv.URL),
		WithNominatimLimiter(rate.NewLimiter(rate.Every(interval), 1)),
	)

	start := time.Now()
	_, err := g.Geocode(context.Background(), "A", "Vancouver")
	require.NoError(t, err)
	_, err = g.Geocode(context.Background(), "B", "Vancouver")
	require.NoError(t, err)

	require.GreaterOrEqual(t, time.Since(start), interval)
	require.EqualValues(t, 2, calls.Load())
}

func TestNominatimWaitRespectsContext(t *testing.T) {
	g := NewNominatimGeocoder(
		WithNominatimLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)),
	)
	// Drain the single burst token.
	require.True(t, g.limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.Geocode(ctx, "A", "Vancouver")
	require.Error(t, err)
}
