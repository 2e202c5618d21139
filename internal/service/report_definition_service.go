package service

import (
	"context"
	"strings"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/websocket"
)

// ReportDefinitionService manages saved report configurations
type ReportDefinitionService struct {
	definitionRepo domain.ReportDefinitionRepository
	eventPublisher websocket.EventPublisher
}

// NewReportDefinitionService creates a new ReportDefinitionService
func NewReportDefinitionService(definitionRepo domain.ReportDefinitionRepository) *ReportDefinitionService {
	return &ReportDefinitionService{definitionRepo: definitionRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ReportDefinitionService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ReportDefinitionService) publishEvent(event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(event)
	}
}

// ReportDefinitionInput holds the editable fields of a definition
type ReportDefinitionInput struct {
	Name                 string
	Type                 string
	Category             string
	Description          *string
	TemplateName         domain.ReportKind
	Parameters           map[string]any
	IsScheduled          bool
	ScheduleFrequency    *string
	ScheduleDay          *int32
	EmailEnabled         bool
	EmailRecipients      []string
	EmailSubjectTemplate *string
	EmailBodyTemplate    *string
}

func (in *ReportDefinitionInput) validate() error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return domain.ErrNameRequired
	}
	if len(in.Name) > domain.MaxNameLength {
		return domain.ErrNameTooLong
	}
	if !in.TemplateName.IsValid() {
		return domain.ErrInvalidReportKind
	}

	recipients, err := normalizeRecipients(in.EmailRecipients)
	if err != nil {
		return err
	}
	in.EmailRecipients = recipients

	if in.Parameters == nil {
		in.Parameters = map[string]any{}
	}
	if strings.TrimSpace(in.Type) == "" {
		in.Type = string(in.TemplateName)
	}
	if strings.TrimSpace(in.Category) == "" {
		if in.TemplateName.IsTransparency() {
			in.Category = "transparency"
		} else {
			in.Category = "financial"
		}
	}
	return nil
}

func (in *ReportDefinitionInput) apply(def *domain.ReportDefinition) {
	def.Name = in.Name
	def.Type = strings.TrimSpace(in.Type)
	def.Category = strings.TrimSpace(in.Category)
	def.Description = in.Description
	def.TemplateName = in.TemplateName
	def.Parameters = in.Parameters
	def.IsScheduled = in.IsScheduled
	def.ScheduleFrequency = in.ScheduleFrequency
	def.ScheduleDay = in.ScheduleDay
	def.EmailEnabled = in.EmailEnabled
	def.EmailRecipients = in.EmailRecipients
	def.EmailSubjectTemplate = in.EmailSubjectTemplate
	def.EmailBodyTemplate = in.EmailBodyTemplate
}

// CreateDefinition validates and stores a new active definition
func (s *ReportDefinitionService) CreateDefinition(ctx context.Context, input ReportDefinitionInput) (*domain.ReportDefinition, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	def := &domain.ReportDefinition{IsActive: true}
	input.apply(def)

	created, err := s.definitionRepo.Create(ctx, def)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.ReportCreated(created))
	return created, nil
}

// ListDefinitions returns every active definition
func (s *ReportDefinitionService) ListDefinitions(ctx context.Context) ([]*domain.ReportDefinition, error) {
	return s.definitionRepo.ListActive(ctx)
}

// GetDefinition retrieves an active definition
func (s *ReportDefinitionService) GetDefinition(ctx context.Context, id int64) (*domain.ReportDefinition, error) {
	def, err := s.definitionRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !def.IsActive {
		return nil, domain.ErrReportNotFound
	}
	return def, nil
}

// UpdateDefinition replaces the editable fields of an active definition
func (s *ReportDefinitionService) UpdateDefinition(ctx context.Context, id int64, input ReportDefinitionInput) (*domain.ReportDefinition, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}

	def, err := s.GetDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	input.apply(def)

	updated, err := s.definitionRepo.Update(ctx, def)
	if err != nil {
		return nil, err
	}
	s.publishEvent(websocket.ReportUpdated(updated))
	return updated, nil
}

// DeactivateDefinition soft-deletes a definition. Its generations are kept.
func (s *ReportDefinitionService) DeactivateDefinition(ctx context.Context, id int64) error {
	if _, err := s.GetDefinition(ctx, id); err != nil {
		return err
	}
	if err := s.definitionRepo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.publishEvent(websocket.ReportDeleted(map[string]int64{"id": id}))
	return nil
}
