package postgres

import (
	"context"
	"fmt"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const generationColumns = `id, report_id, kind, generated_at, generated_by, period_start, period_end,
	file_name, file_path, file_size, format, placeholder, email_sent, email_sent_at,
	email_recipients_count, email_error, status`

func scanGeneration(row rowScanner) (*domain.ReportGeneration, error) {
	var g domain.ReportGeneration
	var kind, format, status string
	err := row.Scan(
		&g.ID, &g.ReportID, &kind, &g.GeneratedAt, &g.GeneratedBy, &g.PeriodStart, &g.PeriodEnd,
		&g.FileName, &g.FilePath, &g.FileSize, &format, &g.Placeholder, &g.EmailSent, &g.EmailSentAt,
		&g.EmailRecipientsCount, &g.EmailError, &status,
	)
	if err != nil {
		return nil, err
	}
	g.Kind = domain.ReportKind(kind)
	g.Format = domain.ReportFormat(format)
	g.Status = domain.GenerationStatus(status)
	return &g, nil
}

// ReportGenerationRepository implements domain.ReportGenerationRepository using PostgreSQL
type ReportGenerationRepository struct {
	pool *pgxpool.Pool
}

// NewReportGenerationRepository creates a new ReportGenerationRepository
func NewReportGenerationRepository(pool *pgxpool.Pool) *ReportGenerationRepository {
	return &ReportGenerationRepository{pool: pool}
}

// Create inserts a generation record
func (r *ReportGenerationRepository) Create(ctx context.Context, gen *domain.ReportGeneration) (*domain.ReportGeneration, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO report_generations
			(report_id, kind, generated_at, generated_by, period_start, period_end,
			 file_name, file_path, file_size, format, placeholder, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+generationColumns,
		gen.ReportID, string(gen.Kind), gen.GeneratedAt, gen.GeneratedBy, gen.PeriodStart, gen.PeriodEnd,
		gen.FileName, gen.FilePath, gen.FileSize, string(gen.Format), gen.Placeholder, string(gen.Status),
	)
	created, err := scanGeneration(row)
	if err != nil {
		return nil, fmt.Errorf("create report generation: %w", err)
	}
	return created, nil
}

// GetByID retrieves a generation record
func (r *ReportGenerationRepository) GetByID(ctx context.Context, id int64) (*domain.ReportGeneration, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+generationColumns+` FROM report_generations WHERE id = $1`, id)
	gen, err := scanGeneration(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrGenerationNotFound
		}
		return nil, err
	}
	return gen, nil
}

// List returns generations newest first
func (r *ReportGenerationRepository) List(ctx context.Context, limit, offset int32) ([]*domain.ReportGeneration, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+generationColumns+`
		FROM report_generations
		ORDER BY generated_at DESC, id DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ReportGeneration, error) {
		return scanGeneration(row)
	})
}

// Count returns the total number of generations
func (r *ReportGenerationRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM report_generations`).Scan(&n)
	return n, err
}

// CountEmailed returns the number of generations whose e-mail was sent
func (r *ReportGenerationRepository) CountEmailed(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM report_generations WHERE email_sent`).Scan(&n)
	return n, err
}

// RecordEmailOutcome appends the e-mail outcome. No other column is touched.
func (r *ReportGenerationRepository) RecordEmailOutcome(ctx context.Context, id int64, outcome domain.EmailOutcome) (*domain.ReportGeneration, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE report_generations SET
			email_sent = $2, email_sent_at = $3, email_recipients_count = $4,
			email_error = $5, status = $6
		WHERE id = $1
		RETURNING `+generationColumns,
		id, outcome.Sent, outcome.SentAt, outcome.RecipientsCount, outcome.Error, string(outcome.Status),
	)
	gen, err := scanGeneration(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrGenerationNotFound
		}
		return nil, err
	}
	return gen, nil
}
