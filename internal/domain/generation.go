package domain

import (
	"context"
	"time"
)

type GenerationStatus string

const (
	GenerationStatusGenerated GenerationStatus = "generated"
	GenerationStatusSent      GenerationStatus = "sent"
	GenerationStatusFailed    GenerationStatus = "failed"
)

// AdHocReportID marks generations that were not produced from a saved definition
const AdHocReportID int64 = 0

// ReportGeneration records one render. After creation only the e-mail outcome changes.
type ReportGeneration struct {
	ID                   int64            `json:"id"`
	ReportID             int64            `json:"reportId"`
	Kind                 ReportKind       `json:"kind"`
	GeneratedAt          time.Time        `json:"generatedAt"`
	GeneratedBy          string           `json:"generatedBy"`
	PeriodStart          time.Time        `json:"periodStart"`
	PeriodEnd            time.Time        `json:"periodEnd"`
	FileName             string           `json:"fileName"`
	FilePath             string           `json:"filePath"`
	FileSize             int64            `json:"fileSize"`
	Format               ReportFormat     `json:"format"`
	Placeholder          bool             `json:"placeholder"`
	EmailSent            bool             `json:"emailSent"`
	EmailSentAt          *time.Time       `json:"emailSentAt,omitempty"`
	EmailRecipientsCount int              `json:"emailRecipientsCount"`
	EmailError           *string          `json:"emailError,omitempty"`
	Status               GenerationStatus `json:"status"`
}

// Pagination defaults for generation history
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginatedGenerations is one page of generation history, newest first
type PaginatedGenerations struct {
	Data       []*ReportGeneration `json:"data"`
	Page       int32               `json:"page"`
	PageSize   int32               `json:"pageSize"`
	TotalItems int64               `json:"totalItems"`
	TotalPages int32               `json:"totalPages"`
}

// DistributionResult is the outcome of sending one generation to a recipient list
type DistributionResult struct {
	Success         bool   `json:"success"`
	SentCount       int    `json:"sentCount"`
	TotalRecipients int    `json:"totalRecipients"`
	Error           string `json:"error,omitempty"`
}

// EmailOutcome is the only mutable part of a ReportGeneration
type EmailOutcome struct {
	Sent            bool
	SentAt          *time.Time
	RecipientsCount int
	Error           *string
	Status          GenerationStatus
}

// OutcomeFromResult converts a distribution result into the fields persisted on the generation
func OutcomeFromResult(result DistributionResult, at time.Time) EmailOutcome {
	outcome := EmailOutcome{
		Sent:            result.Success,
		RecipientsCount: result.SentCount,
		Status:          GenerationStatusFailed,
	}
	if result.Success {
		outcome.SentAt = &at
		outcome.Status = GenerationStatusSent
	}
	if result.Error != "" {
		msg := result.Error
		outcome.Error = &msg
	}
	return outcome
}

type ReportGenerationRepository interface {
	Create(ctx context.Context, gen *ReportGeneration) (*ReportGeneration, error)
	GetByID(ctx context.Context, id int64) (*ReportGeneration, error)
	List(ctx context.Context, limit, offset int32) ([]*ReportGeneration, error)
	Count(ctx context.Context) (int64, error)
	CountEmailed(ctx context.Context) (int64, error)
	RecordEmailOutcome(ctx context.Context, id int64, outcome EmailOutcome) (*ReportGeneration, error)
}

// ResidentDirectory supplies fallback e-mail recipients
type ResidentDirectory interface {
	ListResidentEmails(ctx context.Context) ([]string, error)
}

// ReportDashboard summarizes report activity
type ReportDashboard struct {
	TotalReports      int64               `json:"totalReports"`
	ScheduledReports  int64               `json:"scheduledReports"`
	TotalEmailsSent   int64               `json:"totalEmailsSent"`
	RecentGenerations []*ReportGeneration `json:"recentGenerations"`
}

// Distributor delivers a rendered report to a recipient list. An empty list
// succeeds with zero sent; SentCount never exceeds TotalRecipients.
type Distributor interface {
	Send(ctx context.Context, gen *ReportGeneration, recipients []string) DistributionResult
}
