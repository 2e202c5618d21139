package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// ProblemDetails is an RFC 7807 error body
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError points at one rejected request field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const errorTypeBase = "https://hoa-manager.dev/errors/"

// Error types
const (
	ErrorTypeValidation    = errorTypeBase + "validation"
	ErrorTypeNotFound      = errorTypeBase + "not-found"
	ErrorTypeConflict      = errorTypeBase + "conflict"
	ErrorTypeUnprocessable = errorTypeBase + "unprocessable"
	ErrorTypeInternal      = errorTypeBase + "internal"
)

// problem writes a ProblemDetails body whose title is the standard status text
func problem(c echo.Context, status int, errorType, detail string, fields []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    http.StatusText(status),
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   fields,
	})
}

// NewValidationError responds 400 with optional per-field errors
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, detail, errors)
}

// NewNotFoundError responds 404
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, detail, nil)
}

// NewConflictError responds 409
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, detail, nil)
}

// NewUnprocessableError responds 422 for a well-formed request that cannot be carried out
func NewUnprocessableError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnprocessableEntity, ErrorTypeUnprocessable, detail, nil)
}

// NewInternalError responds 500
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, detail, nil)
}
