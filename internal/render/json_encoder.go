package render

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
)

const (
	jsonStatusOK    = "ok"
	jsonStatusEmpty = "empty"
)

// JSONReport is the JSON artifact layout. Decimals serialize as strings, so
// amounts survive a round trip exactly.
type JSONReport struct {
	Organization string          `json:"organization"`
	Title        string          `json:"title"`
	Status       string          `json:"status"`
	Message      string          `json:"message,omitempty"`
	GeneratedAt  time.Time       `json:"generatedAt"`
	Summary      *domain.Summary `json:"summary"`
}

// JSONEncoder writes reports as indented JSON
type JSONEncoder struct{}

func (e *JSONEncoder) Format() domain.ReportFormat { return domain.ReportFormatJSON }

func (e *JSONEncoder) ContentType() string { return "application/json" }

func (e *JSONEncoder) Encode(w io.Writer, doc *Document) error {
	report := JSONReport{
		Organization: doc.Organization,
		Title:        doc.Title,
		Status:       jsonStatusOK,
		GeneratedAt:  doc.GeneratedAt.UTC(),
		Summary:      doc.Summary,
	}
	if doc.Placeholder() {
		report.Status = jsonStatusEmpty
		report.Message = insufficientDataMessage(doc.Summary)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func insufficientDataMessage(summary *domain.Summary) string {
	return fmt.Sprintf("Insufficient data to generate this report for %s.", summary.PeriodLabel)
}
