package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net/mail"
	"strings"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/repository/storage"
	"github.com/hoa-manager/hoa-backend/internal/websocket"
	"github.com/rs/zerolog"
)

const (
	defaultGeneratedBy    = "system"
	recentGenerationLimit = 10
	downloadURLExpiry     = 15 * time.Minute
)

// ArtifactRenderer renders a summary into a stored artifact
type ArtifactRenderer interface {
	Render(ctx context.Context, summary *domain.Summary) (*domain.Artifact, error)
}

// GenerateInput selects the period of a render. Kind is only read by QuickGenerate;
// definition renders use the definition's template.
type GenerateInput struct {
	Kind        domain.ReportKind
	Year        int
	Month       *int
	Quarter     *int
	GeneratedBy string
}

// GenerateResult is the outcome of one render
type GenerateResult struct {
	Generation   *domain.ReportGeneration   `json:"generation"`
	Summary      *domain.Summary            `json:"summary"`
	Distribution *domain.DistributionResult `json:"distribution,omitempty"`
}

// ArtifactDownload is either a presigned URL or an open artifact stream
type ArtifactDownload struct {
	Generation  *domain.ReportGeneration
	URL         string
	Body        io.ReadCloser
	ContentType string
}

// ReportService orchestrates aggregation, rendering, history and distribution
type ReportService struct {
	aggregator     *AggregationService
	renderer       ArtifactRenderer
	store          storage.ArtifactStore
	definitionRepo domain.ReportDefinitionRepository
	generationRepo domain.ReportGenerationRepository
	residents      domain.ResidentDirectory
	distributor    domain.Distributor
	eventPublisher websocket.EventPublisher
	logger         zerolog.Logger
	now            func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	aggregator *AggregationService,
	renderer ArtifactRenderer,
	store storage.ArtifactStore,
	definitionRepo domain.ReportDefinitionRepository,
	generationRepo domain.ReportGenerationRepository,
	residents domain.ResidentDirectory,
	distributor domain.Distributor,
	logger zerolog.Logger,
) *ReportService {
	return &ReportService{
		aggregator:     aggregator,
		renderer:       renderer,
		store:          store,
		definitionRepo: definitionRepo,
		generationRepo: generationRepo,
		residents:      residents,
		distributor:    distributor,
		logger:         logger.With().Str("component", "reports").Logger(),
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ReportService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the clock used for generation timestamps and default years
func (s *ReportService) SetClock(now func() time.Time) {
	s.now = now
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *ReportService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// QuickGenerate renders an ad-hoc report that is not tied to a saved definition
func (s *ReportService) QuickGenerate(ctx context.Context, input GenerateInput) (*GenerateResult, error) {
	req := domain.ReportRequest{
		Kind:    input.Kind,
		Year:    s.yearOrCurrent(input.Year),
		Month:   input.Month,
		Quarter: input.Quarter,
	}
	gen, summary, err := s.generate(ctx, domain.AdHocReportID, req, input.GeneratedBy)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{Generation: gen, Summary: summary}, nil
}

// GenerateForDefinition renders a saved report and e-mails it when the definition asks for it
func (s *ReportService) GenerateForDefinition(ctx context.Context, reportID int64, input GenerateInput) (*GenerateResult, error) {
	def, err := s.definitionRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !def.IsActive {
		return nil, domain.ErrReportInactive
	}

	req := domain.ReportRequest{
		Kind:    def.TemplateName,
		Year:    input.Year,
		Month:   input.Month,
		Quarter: input.Quarter,
	}
	if req.Year == 0 {
		if y := paramInt(def.Parameters, "year"); y != nil {
			req.Year = *y
		}
	}
	req.Year = s.yearOrCurrent(req.Year)
	if req.Month == nil {
		req.Month = paramInt(def.Parameters, "month")
	}
	if req.Quarter == nil {
		req.Quarter = paramInt(def.Parameters, "quarter")
	}

	gen, summary, err := s.generate(ctx, def.ID, req, input.GeneratedBy)
	if err != nil {
		return nil, err
	}
	result := &GenerateResult{Generation: gen, Summary: summary}

	if err := s.definitionRepo.MarkGenerated(ctx, def.ID, gen.GeneratedAt); err != nil {
		s.logger.Warn().Err(err).Int64("report_id", def.ID).Msg("Failed to update last generated time")
	}

	if def.EmailEnabled && len(def.EmailRecipients) > 0 {
		recipients, err := normalizeRecipients(def.EmailRecipients)
		if err != nil {
			s.logger.Warn().Err(err).Int64("report_id", def.ID).Msg("Skipping invalid saved recipients")
			recipients = validRecipients(def.EmailRecipients)
		}
		if len(recipients) > 0 {
			updated, dist, err := s.distribute(ctx, gen, recipients)
			if err != nil {
				return nil, err
			}
			result.Generation = updated
			result.Distribution = dist
		}
	}

	return result, nil
}

// generate aggregates, renders and records one generation. A render failure
// leaves no generation record behind.
func (s *ReportService) generate(ctx context.Context, reportID int64, req domain.ReportRequest, generatedBy string) (*domain.ReportGeneration, *domain.Summary, error) {
	summary, err := s.aggregator.Aggregate(ctx, req)
	if err != nil {
		return nil, nil, err
	}

	artifact, err := s.renderer.Render(ctx, summary)
	if err != nil {
		s.logger.Error().Err(err).Str("kind", string(req.Kind)).Msg("Report render failed")
		return nil, nil, err
	}

	if strings.TrimSpace(generatedBy) == "" {
		generatedBy = defaultGeneratedBy
	}
	gen, err := s.generationRepo.Create(ctx, &domain.ReportGeneration{
		ReportID:    reportID,
		Kind:        summary.Kind,
		GeneratedAt: s.now(),
		GeneratedBy: strings.TrimSpace(generatedBy),
		PeriodStart: summary.PeriodStart,
		PeriodEnd:   summary.PeriodEnd,
		FileName:    artifact.Filename,
		FilePath:    artifact.Filepath,
		FileSize:    artifact.Size,
		Format:      artifact.Format,
		Placeholder: artifact.Placeholder,
		Status:      domain.GenerationStatusGenerated,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record report generation: %w", err)
	}

	s.logger.Info().
		Int64("generation_id", gen.ID).
		Int64("report_id", reportID).
		Str("kind", string(gen.Kind)).
		Str("file_name", gen.FileName).
		Bool("placeholder", gen.Placeholder).
		Msg("Report generated")
	s.publishEvent(websocket.ReportGenerationCreated(gen))

	return gen, summary, nil
}

// SendEmail distributes an existing generation. Explicit recipients are trimmed and
// deduplicated; an empty list falls back to every resident e-mail on file.
func (s *ReportService) SendEmail(ctx context.Context, generationID int64, recipients []string) (*domain.ReportGeneration, *domain.DistributionResult, error) {
	gen, err := s.generationRepo.GetByID(ctx, generationID)
	if err != nil {
		return nil, nil, err
	}

	list, err := normalizeRecipients(recipients)
	if err != nil {
		return nil, nil, err
	}
	if len(list) == 0 {
		emails, err := s.residents.ListResidentEmails(ctx)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Failed to load resident e-mails")
		}
		list = validRecipients(emails)
	}
	if len(list) == 0 {
		return nil, nil, domain.ErrNoRecipients
	}

	return s.distribute(ctx, gen, list)
}

func (s *ReportService) distribute(ctx context.Context, gen *domain.ReportGeneration, recipients []string) (*domain.ReportGeneration, *domain.DistributionResult, error) {
	result := s.distributor.Send(ctx, gen, recipients)

	updated, err := s.generationRepo.RecordEmailOutcome(ctx, gen.ID, domain.OutcomeFromResult(result, s.now()))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to record e-mail outcome: %w", err)
	}

	var event *zerolog.Event
	if result.Success {
		event = s.logger.Info()
	} else {
		event = s.logger.Warn().Str("error", result.Error)
	}
	event.
		Int64("generation_id", gen.ID).
		Int("sent", result.SentCount).
		Int("total", result.TotalRecipients).
		Msg("Report e-mail processed")

	if result.Success {
		s.publishEvent(websocket.ReportGenerationSent(updated))
	} else {
		s.publishEvent(websocket.ReportGenerationFailed(updated))
	}
	return updated, &result, nil
}

// ListGenerations returns one page of generation history, newest first
func (s *ReportService) ListGenerations(ctx context.Context, page, pageSize int32) (*domain.PaginatedGenerations, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	total, err := s.generationRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.generationRepo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*domain.ReportGeneration{}
	}

	return &domain.PaginatedGenerations{
		Data:       items,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: int32(math.Ceil(float64(total) / float64(pageSize))),
	}, nil
}

// GetGeneration retrieves one generation record
func (s *ReportService) GetGeneration(ctx context.Context, id int64) (*domain.ReportGeneration, error) {
	return s.generationRepo.GetByID(ctx, id)
}

// Download resolves the artifact of a generation. Stores that sign URLs return a
// link; the rest return an open stream the caller must close.
func (s *ReportService) Download(ctx context.Context, generationID int64) (*ArtifactDownload, error) {
	gen, err := s.generationRepo.GetByID(ctx, generationID)
	if err != nil {
		return nil, err
	}
	download := &ArtifactDownload{Generation: gen, ContentType: contentTypeFor(gen.Format)}

	if signer, ok := s.store.(storage.URLSigner); ok {
		if _, err := s.store.Stat(ctx, gen.FileName); err != nil {
			return nil, err
		}
		url, err := signer.PresignedURL(ctx, gen.FileName, downloadURLExpiry)
		if err != nil {
			return nil, err
		}
		download.URL = url
		return download, nil
	}

	body, err := s.store.Open(ctx, gen.FileName)
	if err != nil {
		if errors.Is(err, domain.ErrArtifactNotFound) {
			s.logger.Warn().Int64("generation_id", gen.ID).Str("file_name", gen.FileName).Msg("Report artifact missing")
		}
		return nil, err
	}
	download.Body = body
	return download, nil
}

// Dashboard summarizes report activity
func (s *ReportService) Dashboard(ctx context.Context) (*domain.ReportDashboard, error) {
	active, err := s.definitionRepo.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.definitionRepo.CountScheduled(ctx)
	if err != nil {
		return nil, err
	}
	emailed, err := s.generationRepo.CountEmailed(ctx)
	if err != nil {
		return nil, err
	}
	recent, err := s.generationRepo.List(ctx, recentGenerationLimit, 0)
	if err != nil {
		return nil, err
	}
	if recent == nil {
		recent = []*domain.ReportGeneration{}
	}

	return &domain.ReportDashboard{
		TotalReports:      active,
		ScheduledReports:  scheduled,
		TotalEmailsSent:   emailed,
		RecentGenerations: recent,
	}, nil
}

// Templates lists the report kinds a client can request
func (s *ReportService) Templates() []domain.ReportTemplate {
	templates := make([]domain.ReportTemplate, 0, len(domain.AllReportKinds))
	for _, kind := range domain.AllReportKinds {
		t := domain.ReportTemplate{Name: kind, DisplayName: kind.Title()}
		switch {
		case kind == domain.ReportKindFinancialMonthly:
			t.Category = "financial"
			t.Description = "Revenue, expenses by category, balance and cost per unit for one month"
			t.Parameters = []string{"year", "month"}
		case kind == domain.ReportKindTransparencyMonthly:
			t.Category = "transparency"
			t.Description = "Monthly finances with maintenance activity and staff payroll"
			t.Parameters = []string{"year", "month"}
		case kind == domain.ReportKindTransparencyQuarterly:
			t.Category = "transparency"
			t.Description = "Quarterly finances with maintenance activity and staff payroll"
			t.Parameters = []string{"year", "quarter"}
		default:
			t.Category = "financial"
			t.Description = "Five-year revenue and expense comparison ending at the given year"
			t.Parameters = []string{"year"}
		}
		templates = append(templates, t)
	}
	return templates
}

func (s *ReportService) yearOrCurrent(year int) int {
	if year == 0 {
		return s.now().Year()
	}
	return year
}

func contentTypeFor(format domain.ReportFormat) string {
	if format == domain.ReportFormatJSON {
		return "application/json"
	}
	return "application/pdf"
}

// paramInt reads an integer parameter from a decoded JSON object
func paramInt(params map[string]any, key string) *int {
	switch v := params[key].(type) {
	case float64:
		i := int(v)
		return &i
	case int:
		return &v
	case int32:
		i := int(v)
		return &i
	case int64:
		i := int(v)
		return &i
	}
	return nil
}

// normalizeRecipients trims and deduplicates addresses, case-insensitively.
// Any malformed address fails the whole list.
func normalizeRecipients(recipients []string) ([]string, error) {
	seen := make(map[string]bool, len(recipients))
	out := make([]string, 0, len(recipients))
	for _, r := range recipients {
		addr := strings.TrimSpace(r)
		if addr == "" {
			continue
		}
		if _, err := mail.ParseAddress(addr); err != nil {
			return nil, fmt.Errorf("%w: %q", domain.ErrInvalidRecipient, addr)
		}
		key := strings.ToLower(addr)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out, nil
}

// validRecipients is normalizeRecipients that drops malformed addresses instead of failing
func validRecipients(recipients []string) []string {
	kept := make([]string, 0, len(recipients))
	for _, r := range recipients {
		if _, err := mail.ParseAddress(strings.TrimSpace(r)); err == nil {
			kept = append(kept, r)
		}
	}
	out, _ := normalizeRecipients(kept)
	return out
}
