package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type BillFrequency string

const (
	BillFrequencyMonthly   BillFrequency = "Monthly"
	BillFrequencyQuarterly BillFrequency = "Quarterly"
	BillFrequencyYearly    BillFrequency = "Yearly"
	BillFrequencyBiannual  BillFrequency = "Biannual"
)

// monthsPerCycle maps a billing frequency to the number of months one payment covers
var monthsPerCycle = map[BillFrequency]int64{
	BillFrequencyMonthly:   1,
	BillFrequencyQuarterly: 3,
	BillFrequencyYearly:    12,
	BillFrequencyBiannual:  6,
}

// IsValid reports whether f is one of the supported frequencies
func (f BillFrequency) IsValid() bool {
	_, ok := monthsPerCycle[f]
	return ok
}

// MonthsPerCycle returns the month count of one billing cycle, or 0 for an unknown frequency
func (f BillFrequency) MonthsPerCycle() int64 {
	return monthsPerCycle[f]
}

type BillStatus string

const (
	BillStatusActive    BillStatus = "active"
	BillStatusInactive  BillStatus = "inactive"
	BillStatusCancelled BillStatus = "cancelled"
)

func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusActive, BillStatusInactive, BillStatusCancelled:
		return true
	}
	return false
}

// RecurringBill is a standing obligation such as insurance or utilities
type RecurringBill struct {
	ID            int64           `json:"id"`
	Title         string          `json:"title"`
	Description   *string         `json:"description,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	VendorName    string          `json:"vendorName"`
	Category      string          `json:"category"`
	Frequency     BillFrequency   `json:"frequency"`
	DueDay        int32           `json:"dueDay"`
	Status        BillStatus      `json:"status"`
	AutoPay       bool            `json:"autoPay"`
	PaymentMethod *string         `json:"paymentMethod,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	UpdatedAt     time.Time       `json:"updatedAt"`
}

// MonthlyEquivalent normalizes the bill amount to one month of cash flow.
// Unknown frequencies contribute zero.
func (b *RecurringBill) MonthlyEquivalent() decimal.Decimal {
	months := b.Frequency.MonthsPerCycle()
	if months == 0 {
		return decimal.Zero
	}
	return b.Amount.Div(decimal.NewFromInt(months))
}

// PeriodCost returns the share of the bill falling in a period of the given
// number of months. The amount is scaled before dividing so whole cycles stay exact.
func (b *RecurringBill) PeriodCost(months int64) decimal.Decimal {
	cycle := b.Frequency.MonthsPerCycle()
	if cycle == 0 || months <= 0 {
		return decimal.Zero
	}
	return b.Amount.Mul(decimal.NewFromInt(months)).Div(decimal.NewFromInt(cycle))
}

// CategoryKey returns the bucket this bill is reported under
func (b *RecurringBill) CategoryKey() string {
	return CategoryKey(&b.Category)
}

// CategoryKey trims an optional category label and falls back to CategoryOther
func CategoryKey(category *string) string {
	if category == nil {
		return CategoryOther
	}
	if trimmed := strings.TrimSpace(*category); trimmed != "" {
		return trimmed
	}
	return CategoryOther
}

type BillRepository interface {
	Create(ctx context.Context, bill *RecurringBill) (*RecurringBill, error)
	GetByID(ctx context.Context, id int64) (*RecurringBill, error)
	List(ctx context.Context, status *BillStatus) ([]*RecurringBill, error)
	Update(ctx context.Context, bill *RecurringBill) (*RecurringBill, error)
	Delete(ctx context.Context, id int64) error
}
