package domain

import (
	"context"
	"time"
)

// ReportDefinition is a saved report configuration. The scheduling fields are
// descriptive metadata only; nothing in this service acts on them.
type ReportDefinition struct {
	ID                   int64          `json:"id"`
	Name                 string         `json:"name"`
	Type                 string         `json:"type"`
	Category             string         `json:"category"`
	Description          *string        `json:"description,omitempty"`
	TemplateName         ReportKind     `json:"templateName"`
	Parameters           map[string]any `json:"parameters"`
	IsScheduled          bool           `json:"isScheduled"`
	ScheduleFrequency    *string        `json:"scheduleFrequency,omitempty"`
	ScheduleDay          *int32         `json:"scheduleDay,omitempty"`
	LastGenerated        *time.Time     `json:"lastGenerated,omitempty"`
	NextGeneration       *time.Time     `json:"nextGeneration,omitempty"`
	EmailEnabled         bool           `json:"emailEnabled"`
	EmailRecipients      []string       `json:"emailRecipients"`
	EmailSubjectTemplate *string        `json:"emailSubjectTemplate,omitempty"`
	EmailBodyTemplate    *string        `json:"emailBodyTemplate,omitempty"`
	IsActive             bool           `json:"isActive"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`
}

type ReportDefinitionRepository interface {
	Create(ctx context.Context, def *ReportDefinition) (*ReportDefinition, error)
	GetByID(ctx context.Context, id int64) (*ReportDefinition, error)
	ListActive(ctx context.Context) ([]*ReportDefinition, error)
	Update(ctx context.Context, def *ReportDefinition) (*ReportDefinition, error)
	Deactivate(ctx context.Context, id int64) error
	MarkGenerated(ctx context.Context, id int64, at time.Time) error
	CountActive(ctx context.Context) (int64, error)
	CountScheduled(ctx context.Context) (int64, error)
}
