package postgres

import (
	"context"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ReportSource implements domain.ReportDataSource and domain.ResidentDirectory using PostgreSQL
type ReportSource struct {
	pool *pgxpool.Pool
}

// NewReportSource creates a new ReportSource
func NewReportSource(pool *pgxpool.Pool) *ReportSource {
	return &ReportSource{pool: pool}
}

// ListPayments returns payments dated within [r.From, r.To)
func (s *ReportSource) ListPayments(ctx context.Context, r domain.DateRange) ([]domain.Payment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, resident_id, amount, payment_type, payment_date, status
		FROM payments
		WHERE payment_date >= $1 AND payment_date < $2
		ORDER BY payment_date, id`, r.From, r.To)
	if err != nil {
		return nil, queryError(domain.SourcePayments, err)
	}

	payments, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Payment, error) {
		var p domain.Payment
		var amount pgtype.Numeric
		var paymentType, status pgtype.Text
		if err := row.Scan(&p.ID, &p.ResidentID, &amount, &paymentType, &p.PaymentDate, &status); err != nil {
			return p, err
		}
		p.Amount = pgNumericToDecimal(amount)
		p.PaymentType = paymentType.String
		p.Status = status.String
		return p, nil
	})
	if err != nil {
		return nil, queryError(domain.SourcePayments, err)
	}
	return payments, nil
}

// ListInvoices returns invoices dated within [r.From, r.To)
func (s *ReportSource) ListInvoices(ctx context.Context, r domain.DateRange) ([]domain.Invoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, vendor_id, amount, category, invoice_date, status
		FROM invoices
		WHERE invoice_date >= $1 AND invoice_date < $2
		ORDER BY invoice_date, id`, r.From, r.To)
	if err != nil {
		return nil, queryError(domain.SourceInvoices, err)
	}

	invoices, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Invoice, error) {
		var inv domain.Invoice
		var amount pgtype.Numeric
		var status pgtype.Text
		if err := row.Scan(&inv.ID, &inv.VendorID, &amount, &inv.Category, &inv.InvoiceDate, &status); err != nil {
			return inv, err
		}
		inv.Amount = pgNumericToDecimal(amount)
		inv.Status = status.String
		return inv, nil
	})
	if err != nil {
		return nil, queryError(domain.SourceInvoices, err)
	}
	return invoices, nil
}

// ListActiveBills returns every active recurring bill. Bills are not date filtered.
func (s *ReportSource) ListActiveBills(ctx context.Context) ([]domain.RecurringBill, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+billColumns+`
		FROM recurring_bills
		WHERE LOWER(status) = 'active'
		ORDER BY id`)
	if err != nil {
		return nil, queryError(domain.SourceBills, err)
	}

	bills, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RecurringBill, error) {
		b, err := scanBill(row)
		if err != nil {
			return domain.RecurringBill{}, err
		}
		return *b, nil
	})
	if err != nil {
		return nil, queryError(domain.SourceBills, err)
	}
	return bills, nil
}

// ListActiveAssociates returns associates whose status is Active
func (s *ReportSource) ListActiveAssociates(ctx context.Context) ([]domain.Associate, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, monthly_salary, status
		FROM associates
		WHERE status = $1
		ORDER BY id`, domain.AssociateStatusActive)
	if err != nil {
		return nil, queryError(domain.SourceAssociates, err)
	}

	associates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Associate, error) {
		var a domain.Associate
		var salary pgtype.Numeric
		if err := row.Scan(&a.ID, &a.Name, &salary, &a.Status); err != nil {
			return a, err
		}
		a.MonthlySalary = pgNumericToDecimalPtr(salary)
		return a, nil
	})
	if err != nil {
		return nil, queryError(domain.SourceAssociates, err)
	}
	return associates, nil
}

// ListMaintenanceRequests returns requests created within [r.From, r.To)
func (s *ReportSource) ListMaintenanceRequests(ctx context.Context, r domain.DateRange) ([]domain.MaintenanceRequest, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, status, created_at
		FROM maintenance_requests
		WHERE created_at >= $1 AND created_at < $2
		ORDER BY created_at, id`, r.From, r.To)
	if err != nil {
		return nil, queryError(domain.SourceMaintenance, err)
	}

	requests, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.MaintenanceRequest, error) {
		var m domain.MaintenanceRequest
		var status pgtype.Text
		var createdAt time.Time
		if err := row.Scan(&m.ID, &status, &createdAt); err != nil {
			return m, err
		}
		m.Status = status.String
		m.CreatedAt = createdAt
		return m, nil
	})
	if err != nil {
		return nil, queryError(domain.SourceMaintenance, err)
	}
	return requests, nil
}

// CountResidents returns the number of residents
func (s *ReportSource) CountResidents(ctx context.Context) (int64, error) {
	return s.count(ctx, domain.SourceResidents, `SELECT COUNT(*) FROM residents`)
}

// CountVendors returns the number of vendors
func (s *ReportSource) CountVendors(ctx context.Context) (int64, error) {
	return s.count(ctx, domain.SourceVendors, `SELECT COUNT(*) FROM vendors`)
}

func (s *ReportSource) count(ctx context.Context, source, query string) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, queryError(source, err)
	}
	return n, nil
}

// ListResidentEmails returns the distinct non-empty resident e-mail addresses
func (s *ReportSource) ListResidentEmails(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT TRIM(email)
		FROM residents
		WHERE email IS NOT NULL AND TRIM(email) <> ''
		ORDER BY 1`)
	if err != nil {
		return nil, queryError(domain.SourceResidents, err)
	}
	emails, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, queryError(domain.SourceResidents, err)
	}
	return emails, nil
}
