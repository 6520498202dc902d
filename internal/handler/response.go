package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse describes the standard envelope returned for non-array
// responses and errors.
type APIResponse struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Detail  string            `json:"detail,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
	Data    any               `json:"data,omitempty"`
}

// Success sends a successful response using the shared envelope format.
func Success(c echo.Context, status int, message string, data any) error {
	if status == 0 {
		status = http.StatusOK
	}
	return c.JSON(status, APIResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	})
}

// Error sends an error response using the shared envelope format.
func Error(c echo.Context, status int, message string) error {
	return ErrorDetail(c, status, message, "")
}

// ErrorDetail sends an error response carrying an extra diagnostic string,
// typically an upstream provider's status and body.
func ErrorDetail(c echo.Context, status int, message, detail string) error {
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return c.JSON(status, APIResponse{
		Status:  "error",
		Message: message,
		Detail:  detail,
	})
}

// ValidationError reports malformed input with a per-field breakdown.
func ValidationError(c echo.Context, fields map[string]string) error {
	return c.JSON(http.StatusBadRequest, APIResponse{
		Status:  "error",
		Message: "invalid query parameters",
		Errors:  fields,
	})
}
