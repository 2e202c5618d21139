package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/service"
	"github.com/hoa-manager/hoa-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

func setupBillHandler() (*BillHandler, *testutil.MockBillRepository) {
	billRepo := testutil.NewMockBillRepository()
	handler := NewBillHandler(service.NewBillService(billRepo))
	handler.now = func() time.Time { return time.Date(2025, time.February, 20, 9, 0, 0, 0, time.UTC) }
	return handler, billRepo
}

func TestCreateBill_Success(t *testing.T) {
	handler, _ := setupBillHandler()

	c, rec := newJSONContext(http.MethodPost, "/api/v1/bills",
		`{"title": "Landscaping", "amount": "1350", "vendorName": "Green Acres", "category": "Landscaping", "frequency": "Quarterly", "dueDay": 31}`)

	if err := handler.CreateBill(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	var response BillResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if response.Amount != "1350.00" {
		t.Errorf("Expected amount '1350.00', got %s", response.Amount)
	}
	if response.MonthlyEquivalent != "450.00" {
		t.Errorf("Expected monthly equivalent '450.00', got %s", response.MonthlyEquivalent)
	}
	if response.Status != "active" {
		t.Errorf("Expected default status 'active', got %s", response.Status)
	}
	if response.NextDueDate != "2025-02-28" {
		t.Errorf("Expected next due date clamped to 2025-02-28, got %s", response.NextDueDate)
	}
}

func TestCreateBill_ValidationErrors(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad amount", `{"title": "T", "amount": "abc", "vendorName": "V", "frequency": "Monthly"}`, "amount"},
		{"zero amount", `{"title": "T", "amount": "0", "vendorName": "V", "frequency": "Monthly"}`, "amount"},
		{"missing title", `{"amount": "10", "vendorName": "V", "frequency": "Monthly"}`, "title"},
		{"missing vendor", `{"title": "T", "amount": "10", "frequency": "Monthly"}`, "vendorName"},
		{"bad frequency", `{"title": "T", "amount": "10", "vendorName": "V", "frequency": "Weekly"}`, "frequency"},
		{"bad due day", `{"title": "T", "amount": "10", "vendorName": "V", "frequency": "Monthly", "dueDay": 40}`, "dueDay"},
		{"bad status", `{"title": "T", "amount": "10", "vendorName": "V", "frequency": "Monthly", "status": "paused"}`, "status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler, repo := setupBillHandler()
			c, rec := newJSONContext(http.MethodPost, "/api/v1/bills", tt.body)

			if err := handler.CreateBill(c); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("Expected status 400, got %d", rec.Code)
			}

			problem := decodeProblem(t, rec)
			if len(problem.Errors) != 1 || problem.Errors[0].Field != tt.field {
				t.Errorf("Expected field error on %s, got %+v", tt.field, problem.Errors)
			}
			if len(repo.Bills) != 0 {
				t.Error("Expected no bill to be stored")
			}
		})
	}
}

func TestGetBills_StatusFilter(t *testing.T) {
	handler, repo := setupBillHandler()
	repo.AddBill(&domain.RecurringBill{ID: 1, Title: "Water", Amount: decimal.NewFromInt(90), Frequency: domain.BillFrequencyMonthly, DueDay: 10, Status: domain.BillStatusActive})
	repo.AddBill(&domain.RecurringBill{ID: 2, Title: "Old", Amount: decimal.NewFromInt(50), Frequency: domain.BillFrequencyMonthly, DueDay: 1, Status: domain.BillStatusCancelled})

	c, rec := newJSONContext(http.MethodGet, "/api/v1/bills?status=active", "")
	if err := handler.GetBills(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}

	var response BillListResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(response.Data) != 1 || response.Data[0].Title != "Water" {
		t.Fatalf("Expected only the active bill, got %+v", response.Data)
	}
	if response.Data[0].NextDueDate != "2025-03-10" {
		t.Errorf("Expected next due date 2025-03-10, got %s", response.Data[0].NextDueDate)
	}

	c, rec = newJSONContext(http.MethodGet, "/api/v1/bills?status=paused", "")
	if err := handler.GetBills(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400 for unknown status, got %d", rec.Code)
	}
}

func TestUpdateBill_NotFound(t *testing.T) {
	handler, _ := setupBillHandler()

	c, rec := newJSONContext(http.MethodPut, "/api/v1/bills/7",
		`{"title": "T", "amount": "10", "vendorName": "V", "frequency": "Monthly"}`)
	c.SetParamNames("id")
	c.SetParamValues("7")

	if err := handler.UpdateBill(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", rec.Code)
	}
}

func TestDeleteBill_Success(t *testing.T) {
	handler, repo := setupBillHandler()
	repo.AddBill(&domain.RecurringBill{ID: 3, Title: "Water"})

	c, rec := newJSONContext(http.MethodDelete, "/api/v1/bills/3", "")
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := handler.DeleteBill(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("Expected status 204, got %d", rec.Code)
	}
	if _, ok := repo.Bills[3]; ok {
		t.Error("Expected bill to be removed")
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name   string
		dueDay int32
		now    time.Time
		want   string
	}{
		{"later this month", 25, time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC), "2025-03-25"},
		{"today", 10, time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC), "2025-03-10"},
		{"rolls to next month", 5, time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), "2025-04-05"},
		{"rolls over year end", 5, time.Date(2025, time.December, 20, 0, 0, 0, 0, time.UTC), "2026-01-05"},
		{"clamps short month", 31, time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC), "2025-04-30"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := nextDueDate(tt.dueDay, tt.now).Format("2006-01-02")
			if got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}
