package handler

import (
	"errors"
	"strings"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// fieldError binds a validation sentinel to the request field it describes
type fieldError struct {
	err   error
	field string
}

var reportFieldErrors = []fieldError{
	{domain.ErrInvalidReportKind, "templateName"},
	{domain.ErrInvalidYear, "year"},
	{domain.ErrInvalidMonth, "month"},
	{domain.ErrInvalidQuarter, "quarter"},
	{domain.ErrInvalidRecipient, "recipients"},
	{domain.ErrNameRequired, "name"},
	{domain.ErrNameTooLong, "name"},
}

var billFieldErrors = []fieldError{
	{domain.ErrTitleRequired, "title"},
	{domain.ErrNameTooLong, "title"},
	{domain.ErrVendorRequired, "vendorName"},
	{domain.ErrInvalidAmount, "amount"},
	{domain.ErrInvalidFrequency, "frequency"},
	{domain.ErrInvalidDueDay, "dueDay"},
	{domain.ErrInvalidStatus, "status"},
}

// validationMessage strips the shared "invalid input: " prefix
func validationMessage(err error) string {
	return strings.TrimPrefix(err.Error(), domain.ErrInvalidInput.Error()+": ")
}

func toValidationErrors(err error, fields []fieldError) []ValidationError {
	for _, fe := range fields {
		if errors.Is(err, fe.err) {
			return []ValidationError{{Field: fe.field, Message: validationMessage(fe.err)}}
		}
	}
	return nil
}

// handleServiceError maps domain errors onto problem responses
func handleServiceError(c echo.Context, err error, fields []fieldError, action string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, validationMessage(err), toValidationErrors(err, fields))
	case errors.Is(err, domain.ErrReportNotFound):
		return NewNotFoundError(c, "Report not found")
	case errors.Is(err, domain.ErrGenerationNotFound):
		return NewNotFoundError(c, "Report generation not found")
	case errors.Is(err, domain.ErrArtifactNotFound):
		return NewNotFoundError(c, "Report file not found")
	case errors.Is(err, domain.ErrBillNotFound):
		return NewNotFoundError(c, "Recurring bill not found")
	case errors.Is(err, domain.ErrReportInactive):
		return NewConflictError(c, "Report is inactive")
	case errors.Is(err, domain.ErrNoRecipients):
		return NewUnprocessableError(c, "No recipients found")
	case errors.Is(err, domain.ErrArtifactWrite):
		log.Error().Err(err).Str("action", action).Msg("Failed to store report artifact")
		return NewInternalError(c, "Failed to store report file")
	}

	log.Error().Err(err).Str("action", action).Msg("Request failed")
	return NewInternalError(c, "Failed to "+action)
}
