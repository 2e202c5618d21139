package service

import (
	"context"
	"testing"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupReportDefinitionServiceTest() (*ReportDefinitionService, *testutil.MockReportDefinitionRepository, *recordingPublisher) {
	repo := testutil.NewMockReportDefinitionRepository()
	service := NewReportDefinitionService(repo)
	publisher := &recordingPublisher{}
	service.SetEventPublisher(publisher)
	return service, repo, publisher
}

func TestCreateDefinition_AppliesDefaults(t *testing.T) {
	service, _, publisher := setupReportDefinitionServiceTest()

	def, err := service.CreateDefinition(context.Background(), ReportDefinitionInput{
		Name:            "  Monthly board report ",
		TemplateName:    domain.ReportKindTransparencyMonthly,
		EmailEnabled:    true,
		EmailRecipients: []string{"board@x.test", "BOARD@x.test", " "},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), def.ID)
	assert.Equal(t, "Monthly board report", def.Name)
	assert.Equal(t, "transparency_monthly", def.Type)
	assert.Equal(t, "transparency", def.Category)
	assert.Equal(t, map[string]any{}, def.Parameters)
	assert.Equal(t, []string{"board@x.test"}, def.EmailRecipients)
	assert.True(t, def.IsActive)
	assert.Equal(t, []string{"report.created"}, publisher.types())
}

func TestCreateDefinition_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input ReportDefinitionInput
		want  error
	}{
		{"missing name", ReportDefinitionInput{TemplateName: domain.ReportKindFinancialMonthly}, domain.ErrNameRequired},
		{"unknown template", ReportDefinitionInput{Name: "X", TemplateName: "profit_and_loss"}, domain.ErrInvalidReportKind},
		{"bad recipient", ReportDefinitionInput{
			Name: "X", TemplateName: domain.ReportKindFinancialMonthly, EmailRecipients: []string{"nobody"},
		}, domain.ErrInvalidRecipient},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, repo, _ := setupReportDefinitionServiceTest()
			_, err := service.CreateDefinition(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
			assert.Empty(t, repo.Definitions)
		})
	}
}

func TestListDefinitions_OnlyActive(t *testing.T) {
	service, repo, _ := setupReportDefinitionServiceTest()
	repo.AddDefinition(&domain.ReportDefinition{ID: 1, Name: "A", IsActive: true})
	repo.AddDefinition(&domain.ReportDefinition{ID: 2, Name: "B", IsActive: false})

	defs, err := service.ListDefinitions(context.Background())
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, "A", defs[0].Name)
}

func TestGetDefinition_InactiveIsNotFound(t *testing.T) {
	service, repo, _ := setupReportDefinitionServiceTest()
	repo.AddDefinition(&domain.ReportDefinition{ID: 2, Name: "B", IsActive: false})

	_, err := service.GetDefinition(context.Background(), 2)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestUpdateDefinition(t *testing.T) {
	service, repo, publisher := setupReportDefinitionServiceTest()
	repo.AddDefinition(&domain.ReportDefinition{
		ID: 1, Name: "Old", TemplateName: domain.ReportKindFinancialMonthly, IsActive: true,
	})

	def, err := service.UpdateDefinition(context.Background(), 1, ReportDefinitionInput{
		Name:         "Annual review",
		TemplateName: domain.ReportKindAnnualComparative,
		Parameters:   map[string]any{"year": float64(2024)},
		IsScheduled:  true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Annual review", def.Name)
	assert.Equal(t, domain.ReportKindAnnualComparative, def.TemplateName)
	assert.Equal(t, "financial", def.Category)
	assert.True(t, def.IsScheduled)
	assert.True(t, def.IsActive)
	assert.Equal(t, []string{"report.updated"}, publisher.types())

	_, err = service.UpdateDefinition(context.Background(), 42, ReportDefinitionInput{
		Name: "X", TemplateName: domain.ReportKindFinancialMonthly,
	})
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestDeactivateDefinition(t *testing.T) {
	service, repo, publisher := setupReportDefinitionServiceTest()
	repo.AddDefinition(&domain.ReportDefinition{ID: 1, Name: "A", IsActive: true})

	require.NoError(t, service.DeactivateDefinition(context.Background(), 1))
	assert.False(t, repo.Definitions[1].IsActive)
	assert.Equal(t, []string{"report.deleted"}, publisher.types())

	err := service.DeactivateDefinition(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}
