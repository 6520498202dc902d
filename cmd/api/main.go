package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	"github.com/shopradar/price-finder-api/internal/cache"
	"github.com/shopradar/price-finder-api/internal/config"
	"github.com/shopradar/price-finder-api/internal/geocode"
	"github.com/shopradar/price-finder-api/internal/handler"
	"github.com/shopradar/price-finder-api/internal/identify"
	middlewarepkg "github.com/shopradar/price-finder-api/internal/middleware"
	"github.com/shopradar/price-finder-api/internal/observability"
	"github.com/shopradar/price-finder-api/internal/router"
	"github.com/shopradar/price-finder-api/internal/service"
	"github.com/shopradar/price-finder-api/internal/shopping"
	"github.com/shopradar/price-finder-api/internal/store"
)

func main() {
	log := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	rules, err := store.LoadRules(cfg.StoreRulesFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load store rules")
	}
	normalizer, err := store.NewNormalizer(rules)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to compile store rules")
	}

	observability.Register()

	shoppingCache := cache.New[[]shopping.Listing](cfg.ShoppingCache.Size, cfg.ShoppingCache.TTL)
	geoCache := cache.New[geocode.Hit](cfg.GeocodeCache.Size, cfg.GeocodeCache.TTL)

	shoppingClient := shopping.NewClient(cfg.SerpAPIKey, shoppingCache, log)

	var primary geocode.Geocoder
	if cfg.GoogleMapsAPIKey != "" {
		primary = geocode.NewGoogleGeocoder(cfg.GoogleMapsAPIKey)
	} else {
		log.Warn().Msg("GOOGLE_MAPS_API_KEY not set, geocoding serialized through fallback provider only")
	}
	lookup := geocode.NewLookup(geoCache, primary, geocode.NewNominatimGeocoder(), log)
	resolver := geocode.NewResolver(lookup)

	searchService := service.NewSearchService(
		shoppingClient,
		resolver,
		normalizer,
		service.WindowConfig{Price: cfg.WindowPrice, Closest: cfg.WindowClosest},
		log,
	)

	handlers := router.Handlers{
		Search: handler.NewSearchHandler(searchService, cfg.DefaultCity),
	}
	if cfg.OpenAIAPIKey != "" {
		handlers.Identify = handler.NewIdentifyHandler(identify.NewClient(cfg.OpenAIAPIKey))
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, /v1/identify disabled")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging(log))
	e.Use(observability.Middleware())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
