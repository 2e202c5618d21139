package handler

import (
	"net/http"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/service"
	"github.com/hoa-manager/hoa-backend/internal/util"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BillHandler handles recurring bill HTTP requests
type BillHandler struct {
	billService *service.BillService
	now         func() time.Time
}

// NewBillHandler creates a new BillHandler
func NewBillHandler(billService *service.BillService) *BillHandler {
	return &BillHandler{
		billService: billService,
		now:         time.Now,
	}
}

// BillRequest represents the create and update recurring bill request body
type BillRequest struct {
	Title         string  `json:"title"`
	Description   *string `json:"description,omitempty"`
	Amount        string  `json:"amount"`
	VendorName    string  `json:"vendorName"`
	Category      string  `json:"category"`
	Frequency     string  `json:"frequency"`
	DueDay        int32   `json:"dueDay"`
	Status        string  `json:"status"`
	AutoPay       bool    `json:"autoPay"`
	PaymentMethod *string `json:"paymentMethod,omitempty"`
	Notes         *string `json:"notes,omitempty"`
}

// BillResponse represents a recurring bill in API responses
type BillResponse struct {
	ID                int64   `json:"id"`
	Title             string  `json:"title"`
	Description       *string `json:"description,omitempty"`
	Amount            string  `json:"amount"`
	MonthlyEquivalent string  `json:"monthlyEquivalent"`
	VendorName        string  `json:"vendorName"`
	Category          string  `json:"category"`
	Frequency         string  `json:"frequency"`
	DueDay            int32   `json:"dueDay"`
	NextDueDate       string  `json:"nextDueDate"`
	Status            string  `json:"status"`
	AutoPay           bool    `json:"autoPay"`
	PaymentMethod     *string `json:"paymentMethod,omitempty"`
	Notes             *string `json:"notes,omitempty"`
	CreatedAt         string  `json:"createdAt"`
	UpdatedAt         string  `json:"updatedAt"`
}

// BillListResponse represents the list response
type BillListResponse struct {
	Data []BillResponse `json:"data"`
}

// parseBillRequest binds the body and converts it to service input
func (h *BillHandler) parseBillRequest(c echo.Context) (service.BillInput, error) {
	var req BillRequest
	if err := c.Bind(&req); err != nil {
		return service.BillInput{}, NewValidationError(c, "Invalid request body", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return service.BillInput{}, NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	return service.BillInput{
		Title:         req.Title,
		Description:   req.Description,
		Amount:        amount,
		VendorName:    req.VendorName,
		Category:      req.Category,
		Frequency:     domain.BillFrequency(req.Frequency),
		DueDay:        req.DueDay,
		Status:        domain.BillStatus(req.Status),
		AutoPay:       req.AutoPay,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	}, nil
}

// CreateBill handles POST /api/v1/bills
// @Summary Create a recurring bill
// @Tags Recurring Bills
// @Accept json
// @Produce json
// @Param bill body BillRequest true "Bill data"
// @Success 201 {object} BillResponse
// @Failure 400 {object} ProblemDetails
// @Router /bills [post]
func (h *BillHandler) CreateBill(c echo.Context) error {
	input, errResp := h.parseBillRequest(c)
	if errResp != nil {
		return errResp
	}

	bill, err := h.billService.CreateBill(c.Request().Context(), input)
	if err != nil {
		return handleServiceError(c, err, billFieldErrors, "create recurring bill")
	}

	log.Info().Int64("bill_id", bill.ID).Str("title", bill.Title).Msg("Recurring bill created")

	return c.JSON(http.StatusCreated, h.toBillResponse(bill))
}

// GetBills handles GET /api/v1/bills
// @Summary List recurring bills
// @Description Returns bills, optionally filtered by status
// @Tags Recurring Bills
// @Produce json
// @Param status query string false "Bill status"
// @Success 200 {object} BillListResponse
// @Failure 400 {object} ProblemDetails
// @Router /bills [get]
func (h *BillHandler) GetBills(c echo.Context) error {
	var status *domain.BillStatus
	if raw := c.QueryParam("status"); raw != "" {
		s := domain.BillStatus(raw)
		status = &s
	}

	bills, err := h.billService.ListBills(c.Request().Context(), status)
	if err != nil {
		return handleServiceError(c, err, billFieldErrors, "get recurring bills")
	}

	response := make([]BillResponse, len(bills))
	for i, bill := range bills {
		response[i] = h.toBillResponse(bill)
	}

	return c.JSON(http.StatusOK, BillListResponse{Data: response})
}

// GetBill handles GET /api/v1/bills/:id
// @Summary Get a recurring bill
// @Tags Recurring Bills
// @Produce json
// @Param id path int true "Bill ID"
// @Success 200 {object} BillResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /bills/{id} [get]
func (h *BillHandler) GetBill(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid bill ID", nil)
	}

	bill, err := h.billService.GetBill(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, nil, "get recurring bill")
	}

	return c.JSON(http.StatusOK, h.toBillResponse(bill))
}

// UpdateBill handles PUT /api/v1/bills/:id
// @Summary Update a recurring bill
// @Tags Recurring Bills
// @Accept json
// @Produce json
// @Param id path int true "Bill ID"
// @Param bill body BillRequest true "Bill data"
// @Success 200 {object} BillResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /bills/{id} [put]
func (h *BillHandler) UpdateBill(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid bill ID", nil)
	}

	input, errResp := h.parseBillRequest(c)
	if errResp != nil {
		return errResp
	}

	bill, err := h.billService.UpdateBill(c.Request().Context(), id, input)
	if err != nil {
		return handleServiceError(c, err, billFieldErrors, "update recurring bill")
	}

	return c.JSON(http.StatusOK, h.toBillResponse(bill))
}

// DeleteBill handles DELETE /api/v1/bills/:id
// @Summary Delete a recurring bill
// @Tags Recurring Bills
// @Produce json
// @Param id path int true "Bill ID"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /bills/{id} [delete]
func (h *BillHandler) DeleteBill(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid bill ID", nil)
	}

	if err := h.billService.DeleteBill(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, nil, "delete recurring bill")
	}

	log.Info().Int64("bill_id", id).Msg("Recurring bill deleted")

	return c.NoContent(http.StatusNoContent)
}

// nextDueDate returns the next calendar occurrence of the bill's due day, today included
func nextDueDate(dueDay int32, now time.Time) time.Time {
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	due := util.CalculateActualDate(today.Year(), today.Month(), int(dueDay))
	if due.Before(today) {
		next := time.Date(today.Year(), today.Month()+1, 1, 0, 0, 0, 0, time.UTC)
		due = util.CalculateActualDate(next.Year(), next.Month(), int(dueDay))
	}
	return due
}

func (h *BillHandler) toBillResponse(bill *domain.RecurringBill) BillResponse {
	return BillResponse{
		ID:                bill.ID,
		Title:             bill.Title,
		Description:       bill.Description,
		Amount:            bill.Amount.StringFixed(2),
		MonthlyEquivalent: bill.MonthlyEquivalent().StringFixed(2),
		VendorName:        bill.VendorName,
		Category:          bill.Category,
		Frequency:         string(bill.Frequency),
		DueDay:            bill.DueDay,
		NextDueDate:       nextDueDate(bill.DueDay, h.now()).Format("2006-01-02"),
		Status:            string(bill.Status),
		AutoPay:           bill.AutoPay,
		PaymentMethod:     bill.PaymentMethod,
		Notes:             bill.Notes,
		CreatedAt:         bill.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         bill.UpdatedAt.Format(time.RFC3339),
	}
}
