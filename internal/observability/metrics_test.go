package observability

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func requestCount(method, path, status string) float64 {
	return testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues(method, path, status))
}

func runMiddleware(t *testing.T, path string, next echo.HandlerFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	return Middleware()(next)(c)
}

func TestMiddlewareRecordsStatus(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		before := requestCount("GET", "/ok", "200")
		err := runMiddleware(t, "/ok", func(c echo.Context) error {
			return c.NoContent(http.StatusOK)
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := requestCount("GET", "/ok", "200"); got != before+1 {
			t.Fatalf("expected 200 counter to increment, got %f -> %f", before, got)
		}
	})

	t.Run("http error not yet handled", func(t *testing.T) {
		before := requestCount("GET", "/missing", "404")
		err := runMiddleware(t, "/missing", func(c echo.Context) error {
			return echo.ErrNotFound
		})
		if err == nil {
			t.Fatal("expected error to propagate")
		}
		if got := requestCount("GET", "/missing", "404"); got != before+1 {
			t.Fatalf("expected 404 counter to increment, got %f -> %f", before, got)
		}
		if got := requestCount("GET", "/missing", "200"); got != 0 {
			t.Fatalf("error response must not be counted as 200, got %f", got)
		}
	})

	t.Run("plain error counts as 500", func(t *testing.T) {
		before := requestCount("GET", "/boom", "500")
		err := runMiddleware(t, "/boom", func(c echo.Context) error {
			return errors.New("boom")
		})
		if err == nil {
			t.Fatal("expected error to propagate")
		}
		if got := requestCount("GET", "/boom", "500"); got != before+1 {
			t.Fatalf("expected 500 counter to increment, got %f -> %f", before, got)
		}
	})

	t.Run("wrapped http error", func(t *testing.T) {
		before := requestCount("GET", "/wrapped", "429")
		err := runMiddleware(t, "/wrapped", func(c echo.Context) error {
			return fmt.Errorf("limited: %w", echo.NewHTTPError(http.StatusTooManyRequests))
		})
		if err == nil {
			t.Fatal("expected error to propagate")
		}
		if got := requestCount("GET", "/wrapped", "429"); got != before+1 {
			t.Fatalf("expected 429 counter to increment, got %f -> %f", before, got)
		}
	})
}
