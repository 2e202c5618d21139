package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestRecurringBill_MonthlyEquivalent(t *testing.T) {
	tests := []struct {
		name      string
		frequency BillFrequency
		amount    string
		expected  string
	}{
		{"monthly keeps amount", BillFrequencyMonthly, "300", "300"},
		{"quarterly divides by three", BillFrequencyQuarterly, "300", "100"},
		{"yearly divides by twelve", BillFrequencyYearly, "1200", "100"},
		{"biannual divides by six", BillFrequencyBiannual, "600", "100"},
		{"unknown frequency contributes zero", BillFrequency("Weekly"), "500", "0"},
		{"empty frequency contributes zero", BillFrequency(""), "500", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := RecurringBill{Amount: decimal.RequireFromString(tt.amount), Frequency: tt.frequency}
			got := bill.MonthlyEquivalent()
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestRecurringBill_MonthlyEquivalentKeepsFractions(t *testing.T) {
	bill := RecurringBill{Amount: decimal.NewFromInt(100), Frequency: BillFrequencyQuarterly}
	assert.Equal(t, "33.33", bill.MonthlyEquivalent().StringFixed(2))
}

func TestRecurringBill_PeriodCost(t *testing.T) {
	tests := []struct {
		name      string
		frequency BillFrequency
		amount    string
		months    int64
		expected  string
	}{
		{"quarterly bill over a quarter", BillFrequencyQuarterly, "100", 3, "100"},
		{"biannual bill over a quarter", BillFrequencyBiannual, "100", 3, "50"},
		{"yearly bill over a quarter", BillFrequencyYearly, "1200", 3, "300"},
		{"monthly bill over a quarter", BillFrequencyMonthly, "300", 3, "900"},
		{"monthly bill over a month", BillFrequencyMonthly, "300", 1, "300"},
		{"unknown frequency", BillFrequency("Weekly"), "100", 3, "0"},
		{"zero months", BillFrequencyMonthly, "100", 0, "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bill := RecurringBill{Amount: decimal.RequireFromString(tt.amount), Frequency: tt.frequency}
			got := bill.PeriodCost(tt.months)
			assert.True(t, got.Equal(decimal.RequireFromString(tt.expected)), "got %s", got)
		})
	}
}

func TestBillFrequency_IsValid(t *testing.T) {
	assert.True(t, BillFrequencyMonthly.IsValid())
	assert.True(t, BillFrequencyBiannual.IsValid())
	assert.False(t, BillFrequency("monthly").IsValid())
	assert.False(t, BillFrequency("").IsValid())
}

func TestCategoryKey(t *testing.T) {
	blank := "   "
	padded := "  Utilities "
	empty := ""

	assert.Equal(t, CategoryOther, CategoryKey(nil))
	assert.Equal(t, CategoryOther, CategoryKey(&blank))
	assert.Equal(t, CategoryOther, CategoryKey(&empty))
	assert.Equal(t, "Utilities", CategoryKey(&padded))

	inv := Invoice{}
	assert.Equal(t, CategoryOther, inv.CategoryKey())

	bill := RecurringBill{Category: "Insurance"}
	assert.Equal(t, "Insurance", bill.CategoryKey())
}

func TestAssociate_Salary(t *testing.T) {
	salary := decimal.NewFromInt(2500)
	assert.True(t, (&Associate{}).Salary().IsZero())
	assert.True(t, (&Associate{MonthlySalary: &salary}).Salary().Equal(salary))
}
