package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment is incoming revenue from a resident (dues, fines, assessments)
type Payment struct {
	ID          int64           `json:"id"`
	ResidentID  int64           `json:"residentId"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"paymentType"`
	PaymentDate time.Time       `json:"paymentDate"`
	Status      string          `json:"status"`
}

// Invoice is a discrete vendor expense
type Invoice struct {
	ID          int64           `json:"id"`
	VendorID    int64           `json:"vendorId"`
	Amount      decimal.Decimal `json:"amount"`
	Category    *string         `json:"category,omitempty"`
	InvoiceDate time.Time       `json:"invoiceDate"`
	Status      string          `json:"status"`
}

// CategoryKey returns the bucket this invoice is reported under
func (i *Invoice) CategoryKey() string {
	return CategoryKey(i.Category)
}

const AssociateStatusActive = "Active"

// Associate is a staff member on the HOA payroll
type Associate struct {
	ID            int64            `json:"id"`
	Name          string           `json:"name"`
	MonthlySalary *decimal.Decimal `json:"monthlySalary,omitempty"`
	Status        string           `json:"status"`
}

// Salary returns the monthly salary, zero when unset
func (a *Associate) Salary() decimal.Decimal {
	if a.MonthlySalary == nil {
		return decimal.Zero
	}
	return *a.MonthlySalary
}

// MaintenanceRequest is only counted by reports
type MaintenanceRequest struct {
	ID        int64     `json:"id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
