package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/shopradar/price-finder-api/internal/dto"
	"github.com/shopradar/price-finder-api/internal/identify"
)

// ProductIdentifier abstracts the vision identification service.
type ProductIdentifier interface {
	Identify(ctx context.Context, imageURL string) (*dto.IdentifyResponse, error)
}

// IdentifyHandler forwards product photos to the identification service.
type IdentifyHandler struct {
	client ProductIdentifier
}

// NewIdentifyHandler creates a new handler instance.
func NewIdentifyHandler(client ProductIdentifier) *IdentifyHandler {
	return &IdentifyHandler{client: client}
}

// Identify handles POST /v1/identify requests.
func (h *IdentifyHandler) Identify(c echo.Context) error {
	var req dto.IdentifyRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.ImageBase64 = strings.TrimSpace(req.ImageBase64)

	var imageURL string
	switch {
	case req.ImageURL != "":
		imageURL = req.ImageURL
	case req.ImageBase64 != "":
		imageURL = identify.DataURL(req.ImageBase64)
	default:
		return Error(c, http.StatusBadRequest, "image_url or image_base64 is required")
	}

	result, err := h.client.Identify(c.Request().Context(), imageURL)
	if err != nil {
		return Error(c, http.StatusBadGateway, err.Error())
	}

	return Success(c, http.StatusOK, "product identified", result)
}
