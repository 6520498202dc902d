package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopradar/price-finder-api/internal/dto"
	"github.com/shopradar/price-finder-api/internal/shopping"
)

// PriceSearcher runs the aggregation pipeline for one validated request.
type PriceSearcher interface {
	Search(ctx context.Context, params dto.SearchParams) ([]dto.PriceRow, error)
}

// SearchHandler exposes the price search endpoint.
type SearchHandler struct {
	service     PriceSearcher
	defaultCity string
}

// NewSearchHandler creates a new handler instance.
func NewSearchHandler(service PriceSearcher, defaultCity string) *SearchHandler {
	return &SearchHandler{service: service, defaultCity: defaultCity}
}

// Search handles GET /v1/prices/search requests. The response body is a bare
// JSON array of rows; errors use the shared envelope.
func (h *SearchHandler) Search(c echo.Context) error {
	params, fieldErrs := h.parseParams(c)
	if len(fieldErrs) > 0 {
		return ValidationError(c, fieldErrs)
	}

	rows, err := h.service.Search(c.Request().Context(), params)
	if err != nil {
		var ue *shopping.UpstreamError
		if errors.As(err, &ue) {
			detail := ue.Body
			if detail == "" && ue.Err != nil {
				detail = ue.Err.Error()
			}
			return ErrorDetail(c, http.StatusInternalServerError, "shopping provider error", detail)
		}
		return Error(c, http.StatusInternalServerError, "search failed")
	}

	if rows == nil {
		rows = []dto.PriceRow{}
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *SearchHandler) parseParams(c echo.Context) (dto.SearchParams, map[string]string) {
	fieldErrs := map[string]string{}

	params := dto.SearchParams{
		Query: strings.TrimSpace(c.QueryParam("q")),
		City:  strings.TrimSpace(c.QueryParam("city")),
		Top:   dto.TopDefault,
		Sort:  dto.SortPrice,
	}

	if params.Query == "" {
		fieldErrs["q"] = "q is required"
	}
	if params.City == "" {
		params.City = h.defaultCity
	}

	if topStr := strings.TrimSpace(c.QueryParam("top")); topStr != "" {
		top, err := strconv.Atoi(topStr)
		switch {
		case err != nil:
			fieldErrs["top"] = "top must be an integer"
		case top < dto.TopMin || top > dto.TopMax:
			fieldErrs["top"] = "top must be between 1 and 20"
		default:
			params.Top = top
		}
	}

	if sortStr := strings.TrimSpace(c.QueryParam("sort")); sortStr != "" {
		if sortStr != dto.SortPrice && sortStr != dto.SortClosest {
			fieldErrs["sort"] = "sort must be price or closest"
		} else {
			params.Sort = sortStr
		}
	}

	params.Lat = parseCoord(c.QueryParam("lat"), "lat", fieldErrs)
	params.Lng = parseCoord(c.QueryParam("lng"), "lng", fieldErrs)

	// Coordinates only make sense as a pair.
	if params.Lat != nil && params.Lng == nil && fieldErrs["lng"] == "" {
		fieldErrs["lng"] = "lng is required when lat is set"
	}
	if params.Lng != nil && params.Lat == nil && fieldErrs["lat"] == "" {
		fieldErrs["lat"] = "lat is required when lng is set"
	}

	return params, fieldErrs
}

func parseCoord(raw, field string, fieldErrs map[string]string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		fieldErrs[field] = field + " must be a finite number"
		return nil
	}
	return &v
}
