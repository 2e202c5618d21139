package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reportColumns = `id, name, type, category, description, template_name, parameters,
	is_scheduled, schedule_frequency, schedule_day, last_generated, next_generation,
	email_enabled, email_recipients, email_subject_template, email_body_template,
	is_active, created_at, updated_at`

func scanReportDefinition(row rowScanner) (*domain.ReportDefinition, error) {
	var d domain.ReportDefinition
	var template string
	err := row.Scan(
		&d.ID, &d.Name, &d.Type, &d.Category, &d.Description, &template, &d.Parameters,
		&d.IsScheduled, &d.ScheduleFrequency, &d.ScheduleDay, &d.LastGenerated, &d.NextGeneration,
		&d.EmailEnabled, &d.EmailRecipients, &d.EmailSubjectTemplate, &d.EmailBodyTemplate,
		&d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	d.TemplateName = domain.ReportKind(template)
	if d.Parameters == nil {
		d.Parameters = map[string]any{}
	}
	if d.EmailRecipients == nil {
		d.EmailRecipients = []string{}
	}
	return &d, nil
}

// ReportDefinitionRepository implements domain.ReportDefinitionRepository using PostgreSQL
type ReportDefinitionRepository struct {
	pool *pgxpool.Pool
}

// NewReportDefinitionRepository creates a new ReportDefinitionRepository
func NewReportDefinitionRepository(pool *pgxpool.Pool) *ReportDefinitionRepository {
	return &ReportDefinitionRepository{pool: pool}
}

// Create inserts a new report definition
func (r *ReportDefinitionRepository) Create(ctx context.Context, def *domain.ReportDefinition) (*domain.ReportDefinition, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reports
			(name, type, category, description, template_name, parameters, is_scheduled,
			 schedule_frequency, schedule_day, next_generation, email_enabled, email_recipients,
			 email_subject_template, email_body_template, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, TRUE)
		RETURNING `+reportColumns,
		def.Name, def.Type, def.Category, def.Description, string(def.TemplateName), def.Parameters,
		def.IsScheduled, def.ScheduleFrequency, def.ScheduleDay, def.NextGeneration, def.EmailEnabled,
		def.EmailRecipients, def.EmailSubjectTemplate, def.EmailBodyTemplate,
	)
	created, err := scanReportDefinition(row)
	if err != nil {
		return nil, fmt.Errorf("create report definition: %w", err)
	}
	return created, nil
}

// GetByID retrieves a report definition by ID, including inactive ones
func (r *ReportDefinitionRepository) GetByID(ctx context.Context, id int64) (*domain.ReportDefinition, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+reportColumns+` FROM reports WHERE id = $1`, id)
	def, err := scanReportDefinition(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return def, nil
}

// ListActive returns all active report definitions
func (r *ReportDefinitionRepository) ListActive(ctx context.Context) ([]*domain.ReportDefinition, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+reportColumns+` FROM reports WHERE is_active ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (*domain.ReportDefinition, error) {
		return scanReportDefinition(row)
	})
}

// Update replaces the configurable fields of a report definition
func (r *ReportDefinitionRepository) Update(ctx context.Context, def *domain.ReportDefinition) (*domain.ReportDefinition, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE reports SET
			name = $2, type = $3, category = $4, description = $5, template_name = $6,
			parameters = $7, is_scheduled = $8, schedule_frequency = $9, schedule_day = $10,
			next_generation = $11, email_enabled = $12, email_recipients = $13,
			email_subject_template = $14, email_body_template = $15, updated_at = NOW()
		WHERE id = $1
		RETURNING `+reportColumns,
		def.ID, def.Name, def.Type, def.Category, def.Description, string(def.TemplateName),
		def.Parameters, def.IsScheduled, def.ScheduleFrequency, def.ScheduleDay,
		def.NextGeneration, def.EmailEnabled, def.EmailRecipients,
		def.EmailSubjectTemplate, def.EmailBodyTemplate,
	)
	updated, err := scanReportDefinition(row)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrReportNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Deactivate soft-deletes a report definition
func (r *ReportDefinitionRepository) Deactivate(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE reports SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

// MarkGenerated stores the time of the latest generation
func (r *ReportDefinitionRepository) MarkGenerated(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx, `UPDATE reports SET last_generated = $2 WHERE id = $1`, id, at)
	return err
}

// CountActive returns the number of active definitions
func (r *ReportDefinitionRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE is_active`).Scan(&n)
	return n, err
}

// CountScheduled returns the number of active definitions flagged as scheduled
func (r *ReportDefinitionRepository) CountScheduled(ctx context.Context) (int64, error) {
	var n int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports WHERE is_active AND is_scheduled`).Scan(&n)
	return n, err
}
