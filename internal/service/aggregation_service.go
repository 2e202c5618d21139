package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/util"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const percentUnits = 10000

var tenThousand = decimal.NewFromInt(percentUnits)

// AggregationService turns store rows for a report period into a domain.Summary
type AggregationService struct {
	source domain.ReportDataSource
	logger zerolog.Logger
	now    func() time.Time
}

// NewAggregationService creates a new AggregationService
func NewAggregationService(source domain.ReportDataSource, logger zerolog.Logger) *AggregationService {
	return &AggregationService{
		source: source,
		logger: logger.With().Str("component", "aggregation").Logger(),
		now:    time.Now,
	}
}

// SetClock overrides the clock used to default month and quarter
func (s *AggregationService) SetClock(now func() time.Time) {
	s.now = now
}

// reportPeriod is a validated request with defaults applied
type reportPeriod struct {
	kind    domain.ReportKind
	year    int
	month   int
	quarter int
	months  int64
	domain.Period
}

// ResolvePeriod validates a request and computes its calendar bounds
func (s *AggregationService) ResolvePeriod(req domain.ReportRequest) (domain.Period, error) {
	p, err := s.resolve(req)
	if err != nil {
		return domain.Period{}, err
	}
	return p.Period, nil
}

func (s *AggregationService) resolve(req domain.ReportRequest) (*reportPeriod, error) {
	if !req.Kind.IsValid() {
		return nil, domain.ErrInvalidReportKind
	}
	if req.Year < domain.MinReportYear || req.Year > domain.MaxReportYear {
		return nil, domain.ErrInvalidYear
	}

	now := s.now()
	p := &reportPeriod{kind: req.Kind, year: req.Year}

	switch {
	case req.Kind.IsMonthly():
		p.month = int(now.Month())
		if req.Month != nil {
			p.month = *req.Month
		}
		if p.month < 1 || p.month > 12 {
			return nil, domain.ErrInvalidMonth
		}
		p.months = 1
		p.Start, p.End = util.MonthRange(p.year, p.month)
		p.Label = util.MonthLabel(p.year, p.month)
	case req.Kind == domain.ReportKindTransparencyQuarterly:
		p.quarter = util.QuarterOf(now.Month())
		if req.Quarter != nil {
			p.quarter = *req.Quarter
		}
		if p.quarter < 1 || p.quarter > 4 {
			return nil, domain.ErrInvalidQuarter
		}
		p.months = 3
		p.Start, p.End = util.QuarterRange(p.year, p.quarter)
		p.Label = util.QuarterLabel(p.year, p.quarter)
	default:
		p.months = 12
		p.Start, p.End = util.YearRange(p.year)
		p.Label = util.YearSpanLabel(p.year-domain.AnnualSeriesYears+1, p.year)
	}

	return p, nil
}

// Aggregate reads every source the report kind needs and computes the summary.
// Only a malformed request is an error; failed reads degrade to empty rows.
func (s *AggregationService) Aggregate(ctx context.Context, req domain.ReportRequest) (*domain.Summary, error) {
	p, err := s.resolve(req)
	if err != nil {
		return nil, err
	}

	summary := &domain.Summary{
		Kind:        p.kind,
		Year:        p.year,
		Month:       p.month,
		Quarter:     p.quarter,
		PeriodLabel: p.Label,
		PeriodStart: p.Start,
		PeriodEnd:   p.End,
	}

	reads := &sourceReads{logger: s.logger, kind: p.kind}
	if p.kind == domain.ReportKindAnnualComparative {
		s.aggregateAnnual(ctx, reads, summary)
	} else {
		s.aggregatePeriod(ctx, reads, p, summary)
	}
	summary.DegradedSources = reads.degraded

	s.logger.Debug().
		Str("kind", string(p.kind)).
		Str("period", p.Label).
		Bool("empty", summary.Empty).
		Strs("degraded", reads.degraded).
		Msg("Report aggregated")

	return summary, nil
}

func (s *AggregationService) aggregatePeriod(ctx context.Context, reads *sourceReads, p *reportPeriod, summary *domain.Summary) {
	r := domain.DateRange{From: p.Start, To: util.NextDay(p.End)}

	payments, err := s.source.ListPayments(ctx, r)
	payments = readRows(reads, domain.SourcePayments, payments, err)
	invoices, err := s.source.ListInvoices(ctx, r)
	invoices = readRows(reads, domain.SourceInvoices, invoices, err)
	bills, err := s.source.ListActiveBills(ctx)
	bills = readRows(reads, domain.SourceBills, bills, err)

	summary.TotalRevenue = sumPayments(payments)
	summary.PaymentCount = len(payments)
	summary.InvoiceCount = len(invoices)
	summary.RecurringBillCount = len(bills)

	buckets := newCategoryBuckets()
	for i := range invoices {
		summary.TotalInvoices = summary.TotalInvoices.Add(invoices[i].Amount)
		buckets.add(invoices[i].CategoryKey(), invoices[i].Amount)
	}
	for i := range bills {
		cost := bills[i].PeriodCost(p.months)
		summary.TotalRecurringBills = summary.TotalRecurringBills.Add(cost)
		buckets.add(bills[i].CategoryKey(), cost)
	}

	summary.TotalExpense = summary.TotalInvoices.Add(summary.TotalRecurringBills)
	summary.Balance = summary.TotalRevenue.Sub(summary.TotalExpense)
	summary.Categories = buckets.rows(summary.TotalExpense)
	summary.Empty = len(payments) == 0 && len(invoices) == 0 && len(bills) == 0

	if p.kind == domain.ReportKindFinancialMonthly {
		residents, err := s.source.CountResidents(ctx)
		summary.ResidentCount = readCount(reads, domain.SourceResidents, residents, err)
		vendors, err := s.source.CountVendors(ctx)
		summary.VendorCount = readCount(reads, domain.SourceVendors, vendors, err)
		if summary.ResidentCount > 0 {
			summary.CostPerUnit = summary.TotalExpense.
				Div(decimal.NewFromInt(summary.ResidentCount)).
				Round(2)
		}
	}

	if p.kind.IsTransparency() {
		requests, err := s.source.ListMaintenanceRequests(ctx, r)
		requests = readRows(reads, domain.SourceMaintenance, requests, err)
		associates, err := s.source.ListActiveAssociates(ctx)
		associates = readRows(reads, domain.SourceAssociates, associates, err)
		summary.MaintenanceCount = len(requests)
		summary.ActiveAssociateCount = len(associates)
		for i := range associates {
			summary.Payroll = summary.Payroll.Add(associates[i].Salary())
		}
	}
}

// aggregateAnnual builds the five-year revenue/expense series. Recurring bills
// are excluded because their history is not tracked.
func (s *AggregationService) aggregateAnnual(ctx context.Context, reads *sourceReads, summary *domain.Summary) {
	first := summary.Year - domain.AnnualSeriesYears + 1
	summary.Years = make([]domain.YearSummary, 0, domain.AnnualSeriesYears)
	summary.Empty = true

	buckets := newCategoryBuckets()
	for year := first; year <= summary.Year; year++ {
		start, end := util.YearRange(year)
		r := domain.DateRange{From: start, To: util.NextDay(end)}

		payments, err := s.source.ListPayments(ctx, r)
		payments = readRows(reads, domain.SourcePayments, payments, err)
		invoices, err := s.source.ListInvoices(ctx, r)
		invoices = readRows(reads, domain.SourceInvoices, invoices, err)

		entry := domain.YearSummary{Year: year, Revenue: sumPayments(payments)}
		for i := range invoices {
			entry.Expense = entry.Expense.Add(invoices[i].Amount)
			if year == summary.Year {
				buckets.add(invoices[i].CategoryKey(), invoices[i].Amount)
			}
		}
		entry.Balance = entry.Revenue.Sub(entry.Expense)
		summary.Years = append(summary.Years, entry)

		if len(payments) > 0 || len(invoices) > 0 {
			summary.Empty = false
		}
		if year == summary.Year {
			summary.TotalRevenue = entry.Revenue
			summary.TotalInvoices = entry.Expense
			summary.TotalExpense = entry.Expense
			summary.Balance = entry.Balance
			summary.PaymentCount = len(payments)
			summary.InvoiceCount = len(invoices)
		}
	}

	summary.Categories = buckets.rows(summary.TotalExpense)
}

func sumPayments(payments []domain.Payment) decimal.Decimal {
	total := decimal.Zero
	for i := range payments {
		total = total.Add(payments[i].Amount)
	}
	return total
}

// sourceReads records which sources degraded during one aggregation
type sourceReads struct {
	logger   zerolog.Logger
	kind     domain.ReportKind
	degraded []string
}

func (r *sourceReads) degrade(source string, err error) {
	event := r.logger.Warn().Err(err).Str("source", source).Str("kind", string(r.kind))
	var qerr *domain.QueryError
	if errors.As(err, &qerr) && qerr.Missing {
		event = event.Bool("table_missing", true)
	}
	event.Msg("Report data source unavailable, treating as empty")

	for _, s := range r.degraded {
		if s == source {
			return
		}
	}
	r.degraded = append(r.degraded, source)
}

// readRows is the single place a failed source read becomes an empty row set
func readRows[T any](r *sourceReads, source string, rows []T, err error) []T {
	if err != nil {
		r.degrade(source, err)
		return nil
	}
	return rows
}

func readCount(r *sourceReads, source string, n int64, err error) int64 {
	if err != nil {
		r.degrade(source, err)
		return 0
	}
	return n
}

// categoryBuckets accumulates expense amounts per category key
type categoryBuckets struct {
	amounts map[string]decimal.Decimal
}

func newCategoryBuckets() *categoryBuckets {
	return &categoryBuckets{amounts: make(map[string]decimal.Decimal)}
}

func (b *categoryBuckets) add(key string, amount decimal.Decimal) {
	b.amounts[key] = b.amounts[key].Add(amount)
}

// rows returns the breakdown ordered by amount descending then name. It is
// never empty: without expenses it holds the single placeholder bucket.
func (b *categoryBuckets) rows(total decimal.Decimal) []domain.CategoryAmount {
	if len(b.amounts) == 0 {
		return []domain.CategoryAmount{{
			Name:       domain.CategoryNoExpenses,
			Amount:     decimal.Zero,
			Percentage: decimal.Zero,
		}}
	}

	rows := make([]domain.CategoryAmount, 0, len(b.amounts))
	for name, amount := range b.amounts {
		rows = append(rows, domain.CategoryAmount{Name: name, Amount: amount, Percentage: decimal.Zero})
	}
	sort.Slice(rows, func(i, j int) bool {
		if c := rows[i].Amount.Cmp(rows[j].Amount); c != 0 {
			return c > 0
		}
		return rows[i].Name < rows[j].Name
	})
	if total.IsPositive() {
		assignPercentages(rows, total)
	}
	return rows
}

// assignPercentages sets two-decimal shares that add up to exactly 100.00.
// Each share is truncated to hundredths of a percent and the missing
// hundredths go to the rows with the largest truncated remainders.
func assignPercentages(rows []domain.CategoryAmount, total decimal.Decimal) {
	units := make([]int64, len(rows))
	remainders := make([]decimal.Decimal, len(rows))
	var assigned int64
	for i := range rows {
		raw := rows[i].Amount.Mul(tenThousand).Div(total)
		floor := raw.Floor()
		units[i] = floor.IntPart()
		remainders[i] = raw.Sub(floor)
		assigned += units[i]
	}

	order := make([]int, len(rows))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return remainders[order[a]].GreaterThan(remainders[order[b]])
	})
	for k := 0; k < len(order) && assigned < percentUnits; k++ {
		units[order[k]]++
		assigned++
	}

	for i := range rows {
		rows[i].Percentage = decimal.New(units[i], -2)
	}
}
