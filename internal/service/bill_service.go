package service

import (
	"context"
	"strings"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/websocket"
	"github.com/shopspring/decimal"
)

// BillService handles recurring bill business logic
type BillService struct {
	billRepo       domain.BillRepository
	eventPublisher websocket.EventPublisher
}

// NewBillService creates a new BillService
func NewBillService(billRepo domain.BillRepository) *BillService {
	return &BillService{billRepo: billRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *BillService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *BillService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// BillInput holds the input for creating or updating a recurring bill
type BillInput struct {
	Title         string
	Description   *string
	Amount        decimal.Decimal
	VendorName    string
	Category      string
	Frequency     domain.BillFrequency
	DueDay        int32
	Status        domain.BillStatus
	AutoPay       bool
	PaymentMethod *string
	Notes         *string
}

// validate normalizes the input and applies defaults
func (in *BillInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return domain.ErrTitleRequired
	}
	if len(in.Title) > domain.MaxNameLength {
		return domain.ErrNameTooLong
	}

	in.VendorName = strings.TrimSpace(in.VendorName)
	if in.VendorName == "" {
		return domain.ErrVendorRequired
	}

	if in.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ErrInvalidAmount
	}
	if !in.Frequency.IsValid() {
		return domain.ErrInvalidFrequency
	}

	if in.DueDay == 0 {
		in.DueDay = 1
	}
	if in.DueDay < 1 || in.DueDay > 31 {
		return domain.ErrInvalidDueDay
	}

	if in.Status == "" {
		in.Status = domain.BillStatusActive
	}
	if !in.Status.IsValid() {
		return domain.ErrInvalidStatus
	}

	in.Category = strings.TrimSpace(in.Category)
	if in.Category == "" {
		in.Category = domain.CategoryOther
	}
	return nil
}

func (in *BillInput) apply(bill *domain.RecurringBill) {
	bill.Title = in.Title
	bill.Description = in.Description
	bill.Amount = in.Amount
	bill.VendorName = in.VendorName
	bill.Category = in.Category
	bill.Frequency = in.Frequency
	bill.DueDay = in.DueDay
	bill.Status = in.Status
	bill.AutoPay = in.AutoPay
	bill.PaymentMethod = in.PaymentMethod
	bill.Notes = in.Notes
}

// CreateBill creates a new recurring bill
func (s *BillService) CreateBill(ctx context.Context, input BillInput) (*domain.RecurringBill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	bill := &domain.RecurringBill{}
	input.apply(bill)

	created, err := s.billRepo.Create(ctx, bill)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.BillCreated(created))
	return created, nil
}

// ListBills returns bills, optionally filtered by status
func (s *BillService) ListBills(ctx context.Context, status *domain.BillStatus) ([]*domain.RecurringBill, error) {
	if status != nil && !status.IsValid() {
		return nil, domain.ErrInvalidStatus
	}
	return s.billRepo.List(ctx, status)
}

// GetBill retrieves a bill by ID
func (s *BillService) GetBill(ctx context.Context, id int64) (*domain.RecurringBill, error) {
	return s.billRepo.GetByID(ctx, id)
}

// UpdateBill replaces the editable fields of a bill
func (s *BillService) UpdateBill(ctx context.Context, id int64, input BillInput) (*domain.RecurringBill, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	existing, err := s.billRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(existing)

	updated, err := s.billRepo.Update(ctx, existing)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.BillUpdated(updated))
	return updated, nil
}

// DeleteBill removes a bill
func (s *BillService) DeleteBill(ctx context.Context, id int64) error {
	if err := s.billRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishEvent(websocket.BillDeleted(map[string]int64{"id": id}))
	return nil
}
