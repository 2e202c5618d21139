package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ReportKind identifies which aggregation and layout a report uses
type ReportKind string

const (
	ReportKindFinancialMonthly      ReportKind = "financial_monthly"
	ReportKindTransparencyMonthly   ReportKind = "transparency_monthly"
	ReportKindTransparencyQuarterly ReportKind = "transparency_quarterly"
	ReportKindAnnualComparative     ReportKind = "annual_comparative"
)

// AllReportKinds lists the supported kinds in display order
var AllReportKinds = []ReportKind{
	ReportKindFinancialMonthly,
	ReportKindTransparencyMonthly,
	ReportKindTransparencyQuarterly,
	ReportKindAnnualComparative,
}

func (k ReportKind) IsValid() bool {
	switch k {
	case ReportKindFinancialMonthly, ReportKindTransparencyMonthly,
		ReportKindTransparencyQuarterly, ReportKindAnnualComparative:
		return true
	}
	return false
}

// IsMonthly reports whether the kind covers a single calendar month
func (k ReportKind) IsMonthly() bool {
	return k == ReportKindFinancialMonthly || k == ReportKindTransparencyMonthly
}

// IsTransparency reports whether the kind carries staff and maintenance figures
func (k ReportKind) IsTransparency() bool {
	return k == ReportKindTransparencyMonthly || k == ReportKindTransparencyQuarterly
}

// Title returns the human readable report title
func (k ReportKind) Title() string {
	switch k {
	case ReportKindFinancialMonthly:
		return "Monthly Financial Report"
	case ReportKindTransparencyMonthly:
		return "Monthly Transparency Report"
	case ReportKindTransparencyQuarterly:
		return "Quarterly Transparency Report"
	case ReportKindAnnualComparative:
		return "Annual Comparative Report"
	}
	return string(k)
}

const (
	// CategoryOther is the bucket for expenses without an explicit category
	CategoryOther = "Other"
	// CategoryNoExpenses is the placeholder bucket used when no expense was recorded
	CategoryNoExpenses = "No expenses recorded"
	// AnnualSeriesYears is the number of years covered by the annual comparative report
	AnnualSeriesYears = 5
)

// ReportRequest selects a report kind and period. Month and Quarter are
// optional and default to the current calendar month or quarter.
type ReportRequest struct {
	Kind    ReportKind
	Year    int
	Month   *int
	Quarter *int
}

// Period is an inclusive calendar date range
type Period struct {
	Start time.Time
	End   time.Time
	Label string
}

// CategoryAmount is one row of the expense breakdown
type CategoryAmount struct {
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage decimal.Decimal `json:"percentage"`
}

// YearSummary is one entry of the annual comparative series
type YearSummary struct {
	Year    int             `json:"year"`
	Revenue decimal.Decimal `json:"revenue"`
	Expense decimal.Decimal `json:"expense"`
	Balance decimal.Decimal `json:"balance"`
}

// Summary is the flat numeric result of aggregating one report period
type Summary struct {
	Kind        ReportKind `json:"kind"`
	Year        int        `json:"year"`
	Month       int        `json:"month,omitempty"`
	Quarter     int        `json:"quarter,omitempty"`
	PeriodLabel string     `json:"periodLabel"`
	PeriodStart time.Time  `json:"periodStart"`
	PeriodEnd   time.Time  `json:"periodEnd"`

	TotalRevenue        decimal.Decimal  `json:"totalRevenue"`
	TotalInvoices       decimal.Decimal  `json:"totalInvoices"`
	TotalRecurringBills decimal.Decimal  `json:"totalRecurringBills"`
	TotalExpense        decimal.Decimal  `json:"totalExpense"`
	Balance             decimal.Decimal  `json:"balance"`
	Categories          []CategoryAmount `json:"categories"`

	ResidentCount        int64           `json:"residentCount"`
	VendorCount          int64           `json:"vendorCount"`
	PaymentCount         int             `json:"paymentCount"`
	InvoiceCount         int             `json:"invoiceCount"`
	RecurringBillCount   int             `json:"recurringBillCount"`
	MaintenanceCount     int             `json:"maintenanceCount"`
	ActiveAssociateCount int             `json:"activeAssociateCount"`
	Payroll              decimal.Decimal `json:"payroll"`
	CostPerUnit          decimal.Decimal `json:"costPerUnit"`

	Years []YearSummary `json:"years,omitempty"`

	// Empty is set when no amount-bearing source produced rows
	Empty           bool     `json:"empty"`
	DegradedSources []string `json:"degradedSources,omitempty"`
}

// DateRange bounds a store query. End is exclusive.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Data source names used in QueryError and Summary.DegradedSources
const (
	SourcePayments    = "payments"
	SourceInvoices    = "invoices"
	SourceBills       = "recurring_bills"
	SourceAssociates  = "associates"
	SourceMaintenance = "maintenance_requests"
	SourceResidents   = "residents"
	SourceVendors     = "vendors"
)

// ReportDataSource is the read-only view of the store used by the aggregation engine.
// Failed reads return *QueryError.
type ReportDataSource interface {
	ListPayments(ctx context.Context, r DateRange) ([]Payment, error)
	ListInvoices(ctx context.Context, r DateRange) ([]Invoice, error)
	ListActiveBills(ctx context.Context) ([]RecurringBill, error)
	ListActiveAssociates(ctx context.Context) ([]Associate, error)
	ListMaintenanceRequests(ctx context.Context, r DateRange) ([]MaintenanceRequest, error)
	CountResidents(ctx context.Context) (int64, error)
	CountVendors(ctx context.Context) (int64, error)
}

// ReportFormat names an artifact encoding
type ReportFormat string

const (
	ReportFormatPDF  ReportFormat = "pdf"
	ReportFormatJSON ReportFormat = "json"
)

func (f ReportFormat) IsValid() bool {
	return f == ReportFormatPDF || f == ReportFormatJSON
}

// Artifact is the handle of a persisted rendered report
type Artifact struct {
	Filename    string       `json:"filename"`
	Filepath    string       `json:"filepath"`
	Size        int64        `json:"size"`
	Format      ReportFormat `json:"format"`
	ContentType string       `json:"contentType"`
	Placeholder bool         `json:"placeholder"`
}

// ReportTemplate describes a report kind for clients building a request
type ReportTemplate struct {
	Name        ReportKind `json:"name"`
	DisplayName string     `json:"displayName"`
	Description string     `json:"description"`
	Category    string     `json:"category"`
	Parameters  []string   `json:"parameters"`
}
