package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/render"
	"github.com/hoa-manager/hoa-backend/internal/testutil"
	"github.com/hoa-manager/hoa-backend/internal/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var reportNow = time.Date(2025, time.April, 2, 8, 15, 0, 0, time.UTC)

type recordingPublisher struct {
	mu     sync.Mutex
	events []websocket.Event
}

func (p *recordingPublisher) Publish(event websocket.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type reportFixture struct {
	service     *ReportService
	source      *testutil.MockReportDataSource
	store       *testutil.MockArtifactStore
	definitions *testutil.MockReportDefinitionRepository
	generations *testutil.MockReportGenerationRepository
	residents   *testutil.MockResidentDirectory
	distributor *testutil.MockDistributor
	publisher   *recordingPublisher
}

func setupReportServiceTest(t *testing.T) *reportFixture {
	t.Helper()
	clock := func() time.Time { return reportNow }

	f := &reportFixture{
		source:      testutil.NewMockReportDataSource(),
		store:       testutil.NewMockArtifactStore(),
		definitions: testutil.NewMockReportDefinitionRepository(),
		generations: testutil.NewMockReportGenerationRepository(),
		residents:   &testutil.MockResidentDirectory{},
		distributor: &testutil.MockDistributor{},
		publisher:   &recordingPublisher{},
	}

	aggregator := NewAggregationService(f.source, zerolog.Nop())
	aggregator.SetClock(clock)

	enc, err := render.NewEncoder(domain.ReportFormatJSON)
	require.NoError(t, err)
	renderer := render.NewRenderer(enc, f.store, render.Options{Organization: "Maple Grove HOA"}, zerolog.Nop())
	renderer.SetClock(clock)

	f.service = NewReportService(aggregator, renderer, f.store, f.definitions, f.generations, f.residents, f.distributor, zerolog.Nop())
	f.service.SetClock(clock)
	f.service.SetEventPublisher(f.publisher)
	return f
}

func (f *reportFixture) seedMarch() {
	seedMarch2025(f.source)
}

func TestQuickGenerate_Success(t *testing.T) {
	f := setupReportServiceTest(t)
	f.seedMarch()

	result, err := f.service.QuickGenerate(context.Background(), GenerateInput{
		Kind:        domain.ReportKindFinancialMonthly,
		Year:        2025,
		Month:       intPtr(3),
		GeneratedBy: "  treasurer ",
	})
	require.NoError(t, err)

	gen := result.Generation
	assert.Equal(t, int64(1), gen.ID)
	assert.Equal(t, domain.AdHocReportID, gen.ReportID)
	assert.Equal(t, domain.ReportKindFinancialMonthly, gen.Kind)
	assert.Equal(t, "treasurer", gen.GeneratedBy)
	assert.Equal(t, domain.GenerationStatusGenerated, gen.Status)
	assert.Equal(t, "financial_monthly_20250402_081500.json", gen.FileName)
	assert.Equal(t, domain.ReportFormatJSON, gen.Format)
	assert.False(t, gen.Placeholder)
	assert.False(t, gen.EmailSent)
	assert.True(t, gen.PeriodStart.Equal(date(2025, time.March, 1)))
	assert.True(t, gen.PeriodEnd.Equal(date(2025, time.March, 31)))
	assert.Equal(t, int64(len(f.store.Objects[gen.FileName])), gen.FileSize)

	assert.True(t, result.Summary.TotalRevenue.Equal(dec("1500")))
	assert.Nil(t, result.Distribution)
	assert.Equal(t, []string{"report_generation.created"}, f.publisher.types())
}

func TestQuickGenerate_DefaultsGeneratedByAndYear(t *testing.T) {
	f := setupReportServiceTest(t)

	result, err := f.service.QuickGenerate(context.Background(), GenerateInput{
		Kind: domain.ReportKindAnnualComparative,
	})
	require.NoError(t, err)
	assert.Equal(t, "system", result.Generation.GeneratedBy)
	assert.Equal(t, 2025, result.Summary.Year)
	assert.Equal(t, "2021-2025", result.Summary.PeriodLabel)
}

func TestQuickGenerate_EmptyPeriodProducesPlaceholder(t *testing.T) {
	f := setupReportServiceTest(t)
	f.source.Fail(domain.SourcePayments, true)

	result, err := f.service.QuickGenerate(context.Background(), GenerateInput{
		Kind: domain.ReportKindTransparencyQuarterly, Year: 2025, Quarter: intPtr(1),
	})
	require.NoError(t, err)

	gen := result.Generation
	assert.True(t, gen.Placeholder)
	assert.Equal(t, domain.GenerationStatusGenerated, gen.Status)
	assert.Equal(t, "transparency_quarterly_empty_20250402_081500.json", gen.FileName)
	assert.Contains(t, string(f.store.Objects[gen.FileName]), "Insufficient data to generate this report for Q1 2025.")
	assert.Equal(t, []string{domain.SourcePayments}, result.Summary.DegradedSources)
}

func TestQuickGenerate_InvalidRequest(t *testing.T) {
	f := setupReportServiceTest(t)

	_, err := f.service.QuickGenerate(context.Background(), GenerateInput{
		Kind: domain.ReportKindFinancialMonthly, Year: 2025, Month: intPtr(13),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidMonth)
	assert.Empty(t, f.generations.Generations)
	assert.Empty(t, f.store.Objects)
}

func TestQuickGenerate_ArtifactWriteFailureLeavesNoRecord(t *testing.T) {
	f := setupReportServiceTest(t)
	f.seedMarch()
	f.store.PutErr = errors.New("read-only file system")

	result, err := f.service.QuickGenerate(context.Background(), GenerateInput{
		Kind: domain.ReportKindFinancialMonthly, Year: 2025, Month: intPtr(3),
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrArtifactWrite)
	assert.Empty(t, f.generations.Generations)
	assert.Empty(t, f.publisher.types())
}

func TestGenerateForDefinition_EmailsConfiguredRecipients(t *testing.T) {
	f := setupReportServiceTest(t)
	f.seedMarch()
	f.definitions.AddDefinition(&domain.ReportDefinition{
		ID:              4,
		Name:            "Board packet",
		TemplateName:    domain.ReportKindFinancialMonthly,
		Parameters:      map[string]any{"month": float64(3)},
		EmailEnabled:    true,
		EmailRecipients: []string{"board@x.test", " Board@x.test ", "treasurer@x.test"},
		IsActive:        true,
	})

	result, err := f.service.GenerateForDefinition(context.Background(), 4, GenerateInput{Year: 2025})
	require.NoError(t, err)

	assert.Equal(t, int64(4), result.Generation.ReportID)
	assert.Equal(t, 3, result.Summary.Month)
	require.NotNil(t, result.Distribution)
	assert.Equal(t, 2, result.Distribution.SentCount)
	assert.Equal(t, [][]string{{"board@x.test", "treasurer@x.test"}}, f.distributor.Sent)

	assert.True(t, result.Generation.EmailSent)
	assert.Equal(t, domain.GenerationStatusSent, result.Generation.Status)
	assert.Equal(t, 2, result.Generation.EmailRecipientsCount)
	require.NotNil(t, result.Generation.EmailSentAt)
	assert.True(t, reportNow.Equal(*result.Generation.EmailSentAt))

	require.NotNil(t, f.definitions.Definitions[4].LastGenerated)
	assert.True(t, reportNow.Equal(*f.definitions.Definitions[4].LastGenerated))
	assert.Equal(t, []string{"report_generation.created", "report_generation.sent"}, f.publisher.types())
}

func TestGenerateForDefinition_ExplicitPeriodOverridesParameters(t *testing.T) {
	f := setupReportServiceTest(t)
	f.definitions.AddDefinition(&domain.ReportDefinition{
		ID:           1,
		Name:         "Quarterly transparency",
		TemplateName: domain.ReportKindTransparencyQuarterly,
		Parameters:   map[string]any{"year": float64(2024), "quarter": float64(2)},
		IsActive:     true,
	})

	result, err := f.service.GenerateForDefinition(context.Background(), 1, GenerateInput{Quarter: intPtr(4)})
	require.NoError(t, err)
	assert.Equal(t, 2024, result.Summary.Year)
	assert.Equal(t, 4, result.Summary.Quarter)
	assert.Nil(t, result.Distribution)
	assert.Empty(t, f.distributor.Sent)
}

func TestGenerateForDefinition_NotFoundAndInactive(t *testing.T) {
	f := setupReportServiceTest(t)
	f.definitions.AddDefinition(&domain.ReportDefinition{
		ID: 2, Name: "Old", TemplateName: domain.ReportKindFinancialMonthly, IsActive: false,
	})

	_, err := f.service.GenerateForDefinition(context.Background(), 99, GenerateInput{Year: 2025})
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	_, err = f.service.GenerateForDefinition(context.Background(), 2, GenerateInput{Year: 2025})
	assert.ErrorIs(t, err, domain.ErrReportInactive)
}

func TestSendEmail_ExplicitRecipients(t *testing.T) {
	f := setupReportServiceTest(t)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 7, FileName: "a.json", Status: domain.GenerationStatusGenerated})

	gen, result, err := f.service.SendEmail(context.Background(), 7, []string{" a@x.test", "", "b@x.test", "A@X.test"})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"a@x.test", "b@x.test"}}, f.distributor.Sent)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalRecipients)
	assert.True(t, gen.EmailSent)
	assert.Equal(t, domain.GenerationStatusSent, gen.Status)
	assert.Nil(t, gen.EmailError)
}

func TestSendEmail_FallsBackToResidents(t *testing.T) {
	f := setupReportServiceTest(t)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 7, FileName: "a.json"})
	f.residents.Emails = []string{"r1@x.test", "not-an-address", "r2@x.test", "r1@x.test"}

	_, result, err := f.service.SendEmail(context.Background(), 7, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"r1@x.test", "r2@x.test"}}, f.distributor.Sent)
	assert.Equal(t, 2, result.SentCount)
}

func TestSendEmail_NoRecipients(t *testing.T) {
	f := setupReportServiceTest(t)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 7, FileName: "a.json", Status: domain.GenerationStatusGenerated})
	f.residents.Err = errors.New("relation \"residents\" does not exist")

	_, _, err := f.service.SendEmail(context.Background(), 7, []string{"  "})
	assert.ErrorIs(t, err, domain.ErrNoRecipients)
	assert.Empty(t, f.distributor.Sent)
	assert.Equal(t, domain.GenerationStatusGenerated, f.generations.Generations[7].Status)
}

func TestSendEmail_InvalidRecipient(t *testing.T) {
	f := setupReportServiceTest(t)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 7, FileName: "a.json"})

	_, _, err := f.service.SendEmail(context.Background(), 7, []string{"ok@x.test", "broken@"})
	assert.ErrorIs(t, err, domain.ErrInvalidRecipient)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Empty(t, f.distributor.Sent)
}

func TestSendEmail_GenerationNotFound(t *testing.T) {
	f := setupReportServiceTest(t)

	_, _, err := f.service.SendEmail(context.Background(), 404, []string{"a@x.test"})
	assert.ErrorIs(t, err, domain.ErrGenerationNotFound)
}

func TestSendEmail_DistributionFailureIsRecorded(t *testing.T) {
	f := setupReportServiceTest(t)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 7, FileName: "a.json", Status: domain.GenerationStatusGenerated})
	f.distributor.Result = &domain.DistributionResult{
		Success: false, SentCount: 1, TotalRecipients: 2, Error: "b@x.test: 550 mailbox unavailable",
	}

	gen, result, err := f.service.SendEmail(context.Background(), 7, []string{"a@x.test", "b@x.test"})
	require.NoError(t, err)
	assert.False(t, result.Success)

	assert.False(t, gen.EmailSent)
	assert.Nil(t, gen.EmailSentAt)
	assert.Equal(t, 1, gen.EmailRecipientsCount)
	require.NotNil(t, gen.EmailError)
	assert.Contains(t, *gen.EmailError, "550")
	assert.Equal(t, domain.GenerationStatusFailed, gen.Status)
	assert.Equal(t, "a.json", gen.FileName)
	assert.Equal(t, []string{"report_generation.failed"}, f.publisher.types())
}

func TestListGenerations_Pagination(t *testing.T) {
	f := setupReportServiceTest(t)
	for i := int64(1); i <= 25; i++ {
		f.generations.AddGeneration(&domain.ReportGeneration{
			ID:          i,
			GeneratedAt: reportNow.Add(time.Duration(i) * time.Minute),
		})
	}

	page, err := f.service.ListGenerations(context.Background(), 2, 10)
	require.NoError(t, err)
	assert.Equal(t, int32(2), page.Page)
	assert.Equal(t, int32(10), page.PageSize)
	assert.Equal(t, int64(25), page.TotalItems)
	assert.Equal(t, int32(3), page.TotalPages)
	require.Len(t, page.Data, 10)
	assert.Equal(t, int64(15), page.Data[0].ID)

	page, err = f.service.ListGenerations(context.Background(), 0, 500)
	require.NoError(t, err)
	assert.Equal(t, int32(1), page.Page)
	assert.Equal(t, int32(domain.MaxPageSize), page.PageSize)
	assert.Len(t, page.Data, 25)
	assert.Equal(t, int64(25), page.Data[0].ID)
}

func TestListGenerations_Empty(t *testing.T) {
	f := setupReportServiceTest(t)

	page, err := f.service.ListGenerations(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.NotNil(t, page.Data)
	assert.Empty(t, page.Data)
	assert.Equal(t, int32(domain.DefaultPageSize), page.PageSize)
	assert.Equal(t, int32(0), page.TotalPages)
}

func TestDownload_StreamsArtifact(t *testing.T) {
	f := setupReportServiceTest(t)
	f.seedMarch()

	result, err := f.service.QuickGenerate(context.Background(), GenerateInput{
		Kind: domain.ReportKindFinancialMonthly, Year: 2025, Month: intPtr(3),
	})
	require.NoError(t, err)

	download, err := f.service.Download(context.Background(), result.Generation.ID)
	require.NoError(t, err)
	defer download.Body.Close()

	assert.Empty(t, download.URL)
	assert.Equal(t, "application/json", download.ContentType)
	content, err := io.ReadAll(download.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(content), `"organization": "Maple Grove HOA"`))
}

type signingStore struct {
	*testutil.MockArtifactStore
}

func (s signingStore) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	return "https://reports.example.test/" + key + "?expires=" + expiry.String(), nil
}

func TestDownload_PresignedURL(t *testing.T) {
	f := setupReportServiceTest(t)
	f.service.store = signingStore{f.store}
	_, err := f.store.Put(context.Background(), "a.pdf", strings.NewReader("%PDF-1.3"), -1, "application/pdf")
	require.NoError(t, err)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 3, FileName: "a.pdf", Format: domain.ReportFormatPDF})

	download, err := f.service.Download(context.Background(), 3)
	require.NoError(t, err)
	assert.Nil(t, download.Body)
	assert.Equal(t, "https://reports.example.test/a.pdf?expires=15m0s", download.URL)
	assert.Equal(t, "application/pdf", download.ContentType)
}

func TestDownload_MissingArtifact(t *testing.T) {
	f := setupReportServiceTest(t)
	f.generations.AddGeneration(&domain.ReportGeneration{ID: 3, FileName: "gone.json"})

	_, err := f.service.Download(context.Background(), 3)
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)

	_, err = f.service.Download(context.Background(), 4)
	assert.ErrorIs(t, err, domain.ErrGenerationNotFound)
}

func TestDashboard(t *testing.T) {
	f := setupReportServiceTest(t)
	f.definitions.AddDefinition(&domain.ReportDefinition{ID: 1, IsActive: true, IsScheduled: true})
	f.definitions.AddDefinition(&domain.ReportDefinition{ID: 2, IsActive: true})
	f.definitions.AddDefinition(&domain.ReportDefinition{ID: 3, IsActive: false, IsScheduled: true})
	for i := int64(1); i <= 12; i++ {
		f.generations.AddGeneration(&domain.ReportGeneration{
			ID:          i,
			GeneratedAt: reportNow.Add(time.Duration(i) * time.Hour),
			EmailSent:   i%3 == 0,
		})
	}

	dash, err := f.service.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), dash.TotalReports)
	assert.Equal(t, int64(1), dash.ScheduledReports)
	assert.Equal(t, int64(4), dash.TotalEmailsSent)
	require.Len(t, dash.RecentGenerations, 10)
	assert.Equal(t, int64(12), dash.RecentGenerations[0].ID)
}

func TestTemplates(t *testing.T) {
	f := setupReportServiceTest(t)

	templates := f.service.Templates()
	require.Len(t, templates, 4)
	for i, kind := range domain.AllReportKinds {
		assert.Equal(t, kind, templates[i].Name)
		assert.NotEmpty(t, templates[i].DisplayName)
		assert.Contains(t, templates[i].Parameters, "year")
	}
	assert.Equal(t, []string{"year", "quarter"}, templates[2].Parameters)
	assert.Equal(t, "transparency", templates[1].Category)
}
