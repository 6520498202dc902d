package router

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shopradar/price-finder-api/internal/config"
	"github.com/shopradar/price-finder-api/internal/handler"
	middlewarepkg "github.com/shopradar/price-finder-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router. Identify may be nil
// when no identification key is configured.
type Handlers struct {
	Search   *handler.SearchHandler
	Identify *handler.IdentifyHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, handlers Handlers) {
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]bool{"ok": true})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/prices/search", handlers.Search.Search, middlewarepkg.RateLimit(cfg.RateLimitSearch))

	if handlers.Identify != nil {
		v1.POST("/identify", handlers.Identify.Identify, middlewarepkg.RateLimit(cfg.RateLimitSearch))
	}
}
