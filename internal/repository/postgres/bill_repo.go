package postgres

import (
	"context"
	"fmt"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const billColumns = `id, title, description, amount, vendor_name, category, frequency,
	due_day, status, auto_pay, payment_method, notes, created_at, updated_at`

// rowScanner is satisfied by pgx.Row and pgx.CollectableRow
type rowScanner interface {
	Scan(dest ...any) error
}

func scanBill(row rowScanner) (*domain.RecurringBill, error) {
	var b domain.RecurringBill
	var amount pgtype.Numeric
	var category pgtype.Text
	var frequency, status string
	err := row.Scan(
		&b.ID, &b.Title, &b.Description, &amount, &b.VendorName, &category, &frequency,
		&b.DueDay, &status, &b.AutoPay, &b.PaymentMethod, &b.Notes, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	b.Amount = pgNumericToDecimal(amount)
	b.Category = category.String
	b.Frequency = domain.BillFrequency(frequency)
	b.Status = domain.BillStatus(status)
	return &b, nil
}

// BillRepository implements domain.BillRepository using PostgreSQL
type BillRepository struct {
	pool *pgxpool.Pool
}

// NewBillRepository creates a new BillRepository
func NewBillRepository(pool *pgxpool.Pool) *BillRepository {
	return &BillRepository{pool: pool}
}

// Create inserts a new recurring bill
func (r *BillRepository) Create(ctx context.Context, bill *domain.RecurringBill) (*domain.RecurringBill, error) {
	amount, err := decimalToPgNumeric(bill.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO recurring_bills
			(title, description, amount, vendor_name, category, frequency, due_day, status, auto_pay, payment_method, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+billColumns,
		bill.Title, bill.Description, amount, bill.VendorName, bill.Category, string(bill.Frequency),
		bill.DueDay, string(bill.Status), bill.AutoPay, bill.PaymentMethod, bill.Notes,
	)
	created, err := scanBill(row)
	if err != nil {
		return nil, fmt.Errorf("create recurring bill: %w", err)
	}
	return created, nil
}

// GetByID retrieves a recurring bill by ID
func (r *BillRepository) GetByID(ctx context.Context, id int64) (*domain.RecurringBill, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+billColumns+` FROM recurring_bills WHERE id = $1`, id)
	bill, err := scanBill(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBillNotFound
		}
		return nil, err
	}
	return bill, nil
}

// List returns recurring bills, optionally filtered by status
func (r *BillRepository) List(ctx context.Context, status *domain.BillStatus) ([]*domain.RecurringBill, error) {
	var rows pgx.Rows
	var err error
	if status != nil {
		rows, err = r.pool.Query(ctx, `SELECT `+billColumns+` FROM recurring_bills WHERE LOWER(status) = $1 ORDER BY id`, string(*status))
	} else {
		rows, err = r.pool.Query(ctx, `SELECT `+billColumns+` FROM recurring_bills ORDER BY id`)
	}
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.RecurringBill, error) {
		return scanBill(row)
	})
}

// Update replaces the mutable fields of a recurring bill
func (r *BillRepository) Update(ctx context.Context, bill *domain.RecurringBill) (*domain.RecurringBill, error) {
	amount, err := decimalToPgNumeric(bill.Amount)
	if err != nil {
		return nil, err
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE recurring_bills SET
			title = $2, description = $3, amount = $4, vendor_name = $5, category = $6,
			frequency = $7, due_day = $8, status = $9, auto_pay = $10, payment_method = $11,
			notes = $12, updated_at = NOW()
		WHERE id = $1
		RETURNING `+billColumns,
		bill.ID, bill.Title, bill.Description, amount, bill.VendorName, bill.Category,
		string(bill.Frequency), bill.DueDay, string(bill.Status), bill.AutoPay, bill.PaymentMethod, bill.Notes,
	)
	updated, err := scanBill(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBillNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a recurring bill
func (r *BillRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM recurring_bills WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrBillNotFound
	}
	return nil
}
