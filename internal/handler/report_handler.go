package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/hoa-manager/hoa-backend/internal/domain"
	"github.com/hoa-manager/hoa-backend/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler handles report definition, generation and distribution requests
type ReportHandler struct {
	reportService     *service.ReportService
	definitionService *service.ReportDefinitionService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService, definitionService *service.ReportDefinitionService) *ReportHandler {
	return &ReportHandler{
		reportService:     reportService,
		definitionService: definitionService,
	}
}

// ReportDefinitionRequest is the create and update body of a saved report
type ReportDefinitionRequest struct {
	Name                 string         `json:"name"`
	Type                 string         `json:"type"`
	Category             string         `json:"category"`
	Description          *string        `json:"description,omitempty"`
	TemplateName         string         `json:"templateName"`
	Parameters           map[string]any `json:"parameters,omitempty"`
	IsScheduled          bool           `json:"isScheduled"`
	ScheduleFrequency    *string        `json:"scheduleFrequency,omitempty"`
	ScheduleDay          *int32         `json:"scheduleDay,omitempty"`
	EmailEnabled         bool           `json:"emailEnabled"`
	EmailRecipients      []string       `json:"emailRecipients,omitempty"`
	EmailSubjectTemplate *string        `json:"emailSubjectTemplate,omitempty"`
	EmailBodyTemplate    *string        `json:"emailBodyTemplate,omitempty"`
}

func (r ReportDefinitionRequest) toInput() service.ReportDefinitionInput {
	return service.ReportDefinitionInput{
		Name:                 r.Name,
		Type:                 r.Type,
		Category:             r.Category,
		Description:          r.Description,
		TemplateName:         domain.ReportKind(r.TemplateName),
		Parameters:           r.Parameters,
		IsScheduled:          r.IsScheduled,
		ScheduleFrequency:    r.ScheduleFrequency,
		ScheduleDay:          r.ScheduleDay,
		EmailEnabled:         r.EmailEnabled,
		EmailRecipients:      r.EmailRecipients,
		EmailSubjectTemplate: r.EmailSubjectTemplate,
		EmailBodyTemplate:    r.EmailBodyTemplate,
	}
}

// GenerateRequest selects the period of a saved report render
type GenerateRequest struct {
	Year        int    `json:"year"`
	Month       *int   `json:"month,omitempty"`
	Quarter     *int   `json:"quarter,omitempty"`
	GeneratedBy string `json:"generatedBy"`
}

// QuickGenerateRequest renders a report kind without a saved definition
type QuickGenerateRequest struct {
	TemplateName string `json:"templateName"`
	Year         int    `json:"year"`
	Month        *int   `json:"month,omitempty"`
	Quarter      *int   `json:"quarter,omitempty"`
	GeneratedBy  string `json:"generatedBy"`
}

// SendEmailRequest distributes an existing generation
type SendEmailRequest struct {
	GenerationID int64    `json:"generationId"`
	Recipients   []string `json:"recipients"`
}

// SendEmailResponse carries the updated generation and the distribution outcome
type SendEmailResponse struct {
	Generation   *domain.ReportGeneration   `json:"generation"`
	Distribution *domain.DistributionResult `json:"distribution"`
}

// ReportListResponse represents the list response
type ReportListResponse struct {
	Data []*domain.ReportDefinition `json:"data"`
}

// TemplateListResponse represents the template list response
type TemplateListResponse struct {
	Data []domain.ReportTemplate `json:"data"`
}

// CreateReport handles POST /api/v1/reports
// @Summary Create a report definition
// @Description Saves a report configuration for later generation
// @Tags Reports
// @Accept json
// @Produce json
// @Param report body ReportDefinitionRequest true "Report definition"
// @Success 201 {object} domain.ReportDefinition
// @Failure 400 {object} ProblemDetails
// @Router /reports [post]
func (h *ReportHandler) CreateReport(c echo.Context) error {
	var req ReportDefinitionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	def, err := h.definitionService.CreateDefinition(c.Request().Context(), req.toInput())
	if err != nil {
		return handleServiceError(c, err, reportFieldErrors, "create report")
	}

	log.Info().Int64("report_id", def.ID).Str("template", string(def.TemplateName)).Msg("Report created")

	return c.JSON(http.StatusCreated, def)
}

// GetReports handles GET /api/v1/reports
// @Summary List report definitions
// @Description Returns every active report definition
// @Tags Reports
// @Produce json
// @Success 200 {object} ReportListResponse
// @Router /reports [get]
func (h *ReportHandler) GetReports(c echo.Context) error {
	defs, err := h.definitionService.ListDefinitions(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, nil, "get reports")
	}
	if defs == nil {
		defs = []*domain.ReportDefinition{}
	}

	return c.JSON(http.StatusOK, ReportListResponse{Data: defs})
}

// GetReport handles GET /api/v1/reports/:id
// @Summary Get a report definition
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 200 {object} domain.ReportDefinition
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports/{id} [get]
func (h *ReportHandler) GetReport(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid report ID", nil)
	}

	def, err := h.definitionService.GetDefinition(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, nil, "get report")
	}

	return c.JSON(http.StatusOK, def)
}

// UpdateReport handles PUT /api/v1/reports/:id
// @Summary Update a report definition
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param report body ReportDefinitionRequest true "Report definition"
// @Success 200 {object} domain.ReportDefinition
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports/{id} [put]
func (h *ReportHandler) UpdateReport(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid report ID", nil)
	}

	var req ReportDefinitionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	def, err := h.definitionService.UpdateDefinition(c.Request().Context(), id, req.toInput())
	if err != nil {
		return handleServiceError(c, err, reportFieldErrors, "update report")
	}

	return c.JSON(http.StatusOK, def)
}

// DeleteReport handles DELETE /api/v1/reports/:id
// @Summary Deactivate a report definition
// @Description Soft-deletes the definition; its generations are kept
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Success 204
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports/{id} [delete]
func (h *ReportHandler) DeleteReport(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid report ID", nil)
	}

	if err := h.definitionService.DeactivateDefinition(c.Request().Context(), id); err != nil {
		return handleServiceError(c, err, nil, "delete report")
	}

	log.Info().Int64("report_id", id).Msg("Report deactivated")

	return c.NoContent(http.StatusNoContent)
}

// GenerateReport handles POST /api/v1/reports/:id/generate
// @Summary Generate a saved report
// @Description Renders the definition for the requested period and e-mails it when enabled
// @Tags Reports
// @Accept json
// @Produce json
// @Param id path int true "Report ID"
// @Param request body GenerateRequest true "Period"
// @Success 201 {object} service.GenerateResult
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/{id}/generate [post]
func (h *ReportHandler) GenerateReport(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid report ID", nil)
	}

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	result, err := h.reportService.GenerateForDefinition(c.Request().Context(), id, service.GenerateInput{
		Year:        req.Year,
		Month:       req.Month,
		Quarter:     req.Quarter,
		GeneratedBy: req.GeneratedBy,
	})
	if err != nil {
		return handleServiceError(c, err, reportFieldErrors, "generate report")
	}

	return c.JSON(http.StatusCreated, result)
}

// QuickGenerate handles POST /api/v1/reports/quick-generate
// @Summary Quick-generate a report
// @Description Renders a report kind without a saved definition
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body QuickGenerateRequest true "Report kind and period"
// @Success 201 {object} service.GenerateResult
// @Failure 400 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/quick-generate [post]
func (h *ReportHandler) QuickGenerate(c echo.Context) error {
	var req QuickGenerateRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.TemplateName == "" {
		return NewValidationError(c, "Template name is required", []ValidationError{
			{Field: "templateName", Message: "Required"},
		})
	}

	result, err := h.reportService.QuickGenerate(c.Request().Context(), service.GenerateInput{
		Kind:        domain.ReportKind(req.TemplateName),
		Year:        req.Year,
		Month:       req.Month,
		Quarter:     req.Quarter,
		GeneratedBy: req.GeneratedBy,
	})
	if err != nil {
		return handleServiceError(c, err, reportFieldErrors, "generate report")
	}

	return c.JSON(http.StatusCreated, result)
}

// SendEmail handles POST /api/v1/reports/send-email
// @Summary E-mail a generated report
// @Description Sends an existing artifact, falling back to resident addresses
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body SendEmailRequest true "Generation and recipients"
// @Success 200 {object} SendEmailResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 422 {object} ProblemDetails
// @Failure 429 {object} ProblemDetails
// @Router /reports/send-email [post]
func (h *ReportHandler) SendEmail(c echo.Context) error {
	var req SendEmailRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if req.GenerationID <= 0 {
		return NewValidationError(c, "Generation ID is required", []ValidationError{
			{Field: "generationId", Message: "Must be a positive integer"},
		})
	}

	gen, dist, err := h.reportService.SendEmail(c.Request().Context(), req.GenerationID, req.Recipients)
	if err != nil {
		return handleServiceError(c, err, reportFieldErrors, "send report e-mail")
	}

	return c.JSON(http.StatusOK, SendEmailResponse{Generation: gen, Distribution: dist})
}

// GetGenerations handles GET /api/v1/reports/generations
// @Summary List report generations
// @Tags Report Generations
// @Produce json
// @Param page query int false "Page number"
// @Param perPage query int false "Items per page"
// @Success 200 {object} domain.PaginatedGenerations
// @Failure 400 {object} ProblemDetails
// @Router /reports/generations [get]
func (h *ReportHandler) GetGenerations(c echo.Context) error {
	page, err := queryInt32(c, "page", 1)
	if err != nil {
		return NewValidationError(c, "Invalid page", []ValidationError{
			{Field: "page", Message: "Must be a positive integer"},
		})
	}
	perPage, err := queryInt32(c, "perPage", domain.DefaultPageSize)
	if err != nil {
		return NewValidationError(c, "Invalid page size", []ValidationError{
			{Field: "perPage", Message: "Must be a positive integer"},
		})
	}

	result, err := h.reportService.ListGenerations(c.Request().Context(), page, perPage)
	if err != nil {
		return handleServiceError(c, err, nil, "get report generations")
	}

	return c.JSON(http.StatusOK, result)
}

// GetGeneration handles GET /api/v1/reports/generations/:id
// @Summary Get a report generation
// @Tags Report Generations
// @Produce json
// @Param id path int true "Generation ID"
// @Success 200 {object} domain.ReportGeneration
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports/generations/{id} [get]
func (h *ReportHandler) GetGeneration(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid generation ID", nil)
	}

	gen, err := h.reportService.GetGeneration(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, nil, "get report generation")
	}

	return c.JSON(http.StatusOK, gen)
}

// Download handles GET /api/v1/reports/download/:id. Object stores answer with a
// redirect to a presigned URL; local files are streamed.
// @Summary Download a report artifact
// @Description Redirects to a presigned URL for object stores, otherwise streams the file
// @Tags Report Generations
// @Produce octet-stream
// @Param id path int true "Generation ID"
// @Success 200 {file} file
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /reports/download/{id} [get]
func (h *ReportHandler) Download(c echo.Context) error {
	id, err := parseID(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid generation ID", nil)
	}

	download, err := h.reportService.Download(c.Request().Context(), id)
	if err != nil {
		return handleServiceError(c, err, nil, "download report")
	}

	if download.URL != "" {
		return c.Redirect(http.StatusFound, download.URL)
	}
	defer download.Body.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", download.Generation.FileName))
	return c.Stream(http.StatusOK, download.ContentType, download.Body)
}

// GetTemplates handles GET /api/v1/reports/templates
// @Summary List report templates
// @Tags Reports
// @Produce json
// @Success 200 {object} TemplateListResponse
// @Router /reports/templates [get]
func (h *ReportHandler) GetTemplates(c echo.Context) error {
	return c.JSON(http.StatusOK, TemplateListResponse{Data: h.reportService.Templates()})
}

// GetDashboard handles GET /api/v1/reports/dashboard
// @Summary Get the report dashboard
// @Description Returns report counts and the most recent generations
// @Tags Reports
// @Produce json
// @Success 200 {object} domain.ReportDashboard
// @Router /reports/dashboard [get]
func (h *ReportHandler) GetDashboard(c echo.Context) error {
	dashboard, err := h.reportService.Dashboard(c.Request().Context())
	if err != nil {
		return handleServiceError(c, err, nil, "get report dashboard")
	}

	return c.JSON(http.StatusOK, dashboard)
}

func parseID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, c.Param(name))
	}
	return id, nil
}

func queryInt32(c echo.Context, name string, fallback int32) (int32, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return int32(v), nil
}
