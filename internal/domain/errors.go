package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrNotFound      = errors.New("resource not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrInternalError = errors.New("internal error")

	ErrInvalidReportKind = fmt.Errorf("%w: unsupported report kind", ErrInvalidInput)
	ErrInvalidYear       = fmt.Errorf("%w: year must be between %d and %d", ErrInvalidInput, MinReportYear, MaxReportYear)
	ErrInvalidMonth      = fmt.Errorf("%w: month must be between 1 and 12", ErrInvalidInput)
	ErrInvalidQuarter    = fmt.Errorf("%w: quarter must be between 1 and 4", ErrInvalidInput)
	ErrInvalidFormat     = fmt.Errorf("%w: unsupported report format", ErrInvalidInput)

	ErrReportNotFound     = errors.New("report not found")
	ErrReportInactive     = errors.New("report is inactive")
	ErrGenerationNotFound = errors.New("report generation not found")
	ErrArtifactNotFound   = errors.New("report artifact not found")
	ErrArtifactWrite      = errors.New("failed to write report artifact")
	ErrNoRecipients       = errors.New("no recipients found")
	ErrInvalidRecipient   = fmt.Errorf("%w: invalid e-mail address", ErrInvalidInput)

	ErrBillNotFound     = errors.New("recurring bill not found")
	ErrTitleRequired    = fmt.Errorf("%w: title is required", ErrInvalidInput)
	ErrNameRequired     = fmt.Errorf("%w: name is required", ErrInvalidInput)
	ErrNameTooLong      = fmt.Errorf("%w: name exceeds maximum length", ErrInvalidInput)
	ErrVendorRequired   = fmt.Errorf("%w: vendor name is required", ErrInvalidInput)
	ErrInvalidAmount    = fmt.Errorf("%w: amount must be greater than zero", ErrInvalidInput)
	ErrInvalidFrequency = fmt.Errorf("%w: frequency must be Monthly, Quarterly, Yearly or Biannual", ErrInvalidInput)
	ErrInvalidDueDay    = fmt.Errorf("%w: due day must be between 1 and 31", ErrInvalidInput)
	ErrInvalidStatus    = fmt.Errorf("%w: unsupported status", ErrInvalidInput)
)

// Validation constants
const (
	MaxNameLength = 200
	MinReportYear = 2000
	MaxReportYear = 2100
)

// QueryError reports a failed read against one data source. The aggregation
// layer treats it as an empty row set for that source.
type QueryError struct {
	Source  string
	Missing bool // the backing table does not exist
	Err     error
}

func (e *QueryError) Error() string {
	if e.Missing {
		return fmt.Sprintf("query %s: table missing: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("query %s: %v", e.Source, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}
