package testutil

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/hoa-manager/hoa-backend/internal/domain"
)

// MockReportDataSource is a mock implementation of domain.ReportDataSource.
// Date-ranged lists filter rows by the half-open range like the SQL store does.
type MockReportDataSource struct {
	Payments    []domain.Payment
	Invoices    []domain.Invoice
	Bills       []domain.RecurringBill
	Associates  []domain.Associate
	Maintenance []domain.MaintenanceRequest
	Residents   int64
	Vendors     int64

	// Errs makes the named source fail with the given error
	Errs map[string]error
	// Calls counts reads per source
	Calls map[string]int
}

// NewMockReportDataSource creates a new MockReportDataSource
func NewMockReportDataSource() *MockReportDataSource {
	return &MockReportDataSource{
		Errs:  make(map[string]error),
		Calls: make(map[string]int),
	}
}

// Fail makes every read of source return a QueryError
func (m *MockReportDataSource) Fail(source string, missing bool) {
	m.Errs[source] = &domain.QueryError{Source: source, Missing: missing, Err: errors.New("mock query failure")}
}

func (m *MockReportDataSource) read(source string) error {
	m.Calls[source]++
	return m.Errs[source]
}

func inRange(t time.Time, r domain.DateRange) bool {
	return !t.Before(r.From) && t.Before(r.To)
}

// ListPayments returns payments dated inside r
func (m *MockReportDataSource) ListPayments(ctx context.Context, r domain.DateRange) ([]domain.Payment, error) {
	if err := m.read(domain.SourcePayments); err != nil {
		return nil, err
	}
	var out []domain.Payment
	for _, p := range m.Payments {
		if inRange(p.PaymentDate, r) {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListInvoices returns invoices dated inside r
func (m *MockReportDataSource) ListInvoices(ctx context.Context, r domain.DateRange) ([]domain.Invoice, error) {
	if err := m.read(domain.SourceInvoices); err != nil {
		return nil, err
	}
	var out []domain.Invoice
	for _, inv := range m.Invoices {
		if inRange(inv.InvoiceDate, r) {
			out = append(out, inv)
		}
	}
	return out, nil
}

// ListActiveBills returns bills with active status
func (m *MockReportDataSource) ListActiveBills(ctx context.Context) ([]domain.RecurringBill, error) {
	if err := m.read(domain.SourceBills); err != nil {
		return nil, err
	}
	var out []domain.RecurringBill
	for _, b := range m.Bills {
		if b.Status == domain.BillStatusActive {
			out = append(out, b)
		}
	}
	return out, nil
}

// ListActiveAssociates returns associates with Active status
func (m *MockReportDataSource) ListActiveAssociates(ctx context.Context) ([]domain.Associate, error) {
	if err := m.read(domain.SourceAssociates); err != nil {
		return nil, err
	}
	var out []domain.Associate
	for _, a := range m.Associates {
		if a.Status == domain.AssociateStatusActive {
			out = append(out, a)
		}
	}
	return out, nil
}

// ListMaintenanceRequests returns requests created inside r
func (m *MockReportDataSource) ListMaintenanceRequests(ctx context.Context, r domain.DateRange) ([]domain.MaintenanceRequest, error) {
	if err := m.read(domain.SourceMaintenance); err != nil {
		return nil, err
	}
	var out []domain.MaintenanceRequest
	for _, req := range m.Maintenance {
		if inRange(req.CreatedAt, r) {
			out = append(out, req)
		}
	}
	return out, nil
}

// CountResidents returns the configured resident count
func (m *MockReportDataSource) CountResidents(ctx context.Context) (int64, error) {
	if err := m.read(domain.SourceResidents); err != nil {
		return 0, err
	}
	return m.Residents, nil
}

// CountVendors returns the configured vendor count
func (m *MockReportDataSource) CountVendors(ctx context.Context) (int64, error) {
	if err := m.read(domain.SourceVendors); err != nil {
		return 0, err
	}
	return m.Vendors, nil
}

// MockResidentDirectory is a mock implementation of domain.ResidentDirectory
type MockResidentDirectory struct {
	Emails []string
	Err    error
}

// ListResidentEmails returns the configured addresses
func (m *MockResidentDirectory) ListResidentEmails(ctx context.Context) ([]string, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Emails, nil
}

// MockBillRepository is a mock implementation of domain.BillRepository
type MockBillRepository struct {
	Bills  map[int64]*domain.RecurringBill
	NextID int64
}

// NewMockBillRepository creates a new MockBillRepository
func NewMockBillRepository() *MockBillRepository {
	return &MockBillRepository{
		Bills:  make(map[int64]*domain.RecurringBill),
		NextID: 1,
	}
}

// Create stores a bill and assigns its ID
func (m *MockBillRepository) Create(ctx context.Context, bill *domain.RecurringBill) (*domain.RecurringBill, error) {
	bill.ID = m.NextID
	m.NextID++
	now := time.Now()
	bill.CreatedAt = now
	bill.UpdatedAt = now
	m.Bills[bill.ID] = bill
	return bill, nil
}

// GetByID retrieves a bill by ID
func (m *MockBillRepository) GetByID(ctx context.Context, id int64) (*domain.RecurringBill, error) {
	if bill, ok := m.Bills[id]; ok {
		return bill, nil
	}
	return nil, domain.ErrBillNotFound
}

// List returns bills ordered by ID, optionally filtered by status
func (m *MockBillRepository) List(ctx context.Context, status *domain.BillStatus) ([]*domain.RecurringBill, error) {
	out := make([]*domain.RecurringBill, 0, len(m.Bills))
	for _, b := range m.Bills {
		if status != nil && b.Status != *status {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces an existing bill
func (m *MockBillRepository) Update(ctx context.Context, bill *domain.RecurringBill) (*domain.RecurringBill, error) {
	existing, ok := m.Bills[bill.ID]
	if !ok {
		return nil, domain.ErrBillNotFound
	}
	bill.CreatedAt = existing.CreatedAt
	bill.UpdatedAt = time.Now()
	m.Bills[bill.ID] = bill
	return bill, nil
}

// Delete removes a bill
func (m *MockBillRepository) Delete(ctx context.Context, id int64) error {
	if _, ok := m.Bills[id]; !ok {
		return domain.ErrBillNotFound
	}
	delete(m.Bills, id)
	return nil
}

// AddBill adds a bill to the mock repository (helper for tests)
func (m *MockBillRepository) AddBill(bill *domain.RecurringBill) {
	m.Bills[bill.ID] = bill
	if bill.ID >= m.NextID {
		m.NextID = bill.ID + 1
	}
}

// MockReportDefinitionRepository is a mock implementation of domain.ReportDefinitionRepository
type MockReportDefinitionRepository struct {
	Definitions map[int64]*domain.ReportDefinition
	NextID      int64
}

// NewMockReportDefinitionRepository creates a new MockReportDefinitionRepository
func NewMockReportDefinitionRepository() *MockReportDefinitionRepository {
	return &MockReportDefinitionRepository{
		Definitions: make(map[int64]*domain.ReportDefinition),
		NextID:      1,
	}
}

// Create stores a definition and assigns its ID
func (m *MockReportDefinitionRepository) Create(ctx context.Context, def *domain.ReportDefinition) (*domain.ReportDefinition, error) {
	def.ID = m.NextID
	m.NextID++
	now := time.Now()
	def.CreatedAt = now
	def.UpdatedAt = now
	def.IsActive = true
	m.Definitions[def.ID] = def
	return def, nil
}

// GetByID retrieves a definition by ID, active or not
func (m *MockReportDefinitionRepository) GetByID(ctx context.Context, id int64) (*domain.ReportDefinition, error) {
	if def, ok := m.Definitions[id]; ok {
		return def, nil
	}
	return nil, domain.ErrReportNotFound
}

// ListActive returns active definitions ordered by ID
func (m *MockReportDefinitionRepository) ListActive(ctx context.Context) ([]*domain.ReportDefinition, error) {
	out := make([]*domain.ReportDefinition, 0, len(m.Definitions))
	for _, d := range m.Definitions {
		if d.IsActive {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Update replaces an existing definition
func (m *MockReportDefinitionRepository) Update(ctx context.Context, def *domain.ReportDefinition) (*domain.ReportDefinition, error) {
	if _, ok := m.Definitions[def.ID]; !ok {
		return nil, domain.ErrReportNotFound
	}
	def.UpdatedAt = time.Now()
	m.Definitions[def.ID] = def
	return def, nil
}

// Deactivate clears the active flag
func (m *MockReportDefinitionRepository) Deactivate(ctx context.Context, id int64) error {
	def, ok := m.Definitions[id]
	if !ok {
		return domain.ErrReportNotFound
	}
	def.IsActive = false
	return nil
}

// MarkGenerated records the last generation time
func (m *MockReportDefinitionRepository) MarkGenerated(ctx context.Context, id int64, at time.Time) error {
	def, ok := m.Definitions[id]
	if !ok {
		return domain.ErrReportNotFound
	}
	def.LastGenerated = &at
	return nil
}

// CountActive counts active definitions
func (m *MockReportDefinitionRepository) CountActive(ctx context.Context) (int64, error) {
	var n int64
	for _, d := range m.Definitions {
		if d.IsActive {
			n++
		}
	}
	return n, nil
}

// CountScheduled counts active scheduled definitions
func (m *MockReportDefinitionRepository) CountScheduled(ctx context.Context) (int64, error) {
	var n int64
	for _, d := range m.Definitions {
		if d.IsActive && d.IsScheduled {
			n++
		}
	}
	return n, nil
}

// AddDefinition adds a definition to the mock repository (helper for tests)
func (m *MockReportDefinitionRepository) AddDefinition(def *domain.ReportDefinition) {
	m.Definitions[def.ID] = def
	if def.ID >= m.NextID {
		m.NextID = def.ID + 1
	}
}

// MockReportGenerationRepository is a mock implementation of domain.ReportGenerationRepository
type MockReportGenerationRepository struct {
	Generations map[int64]*domain.ReportGeneration
	NextID      int64
	CreateErr   error
}

// NewMockReportGenerationRepository creates a new MockReportGenerationRepository
func NewMockReportGenerationRepository() *MockReportGenerationRepository {
	return &MockReportGenerationRepository{
		Generations: make(map[int64]*domain.ReportGeneration),
		NextID:      1,
	}
}

// Create stores a generation and assigns its ID
func (m *MockReportGenerationRepository) Create(ctx context.Context, gen *domain.ReportGeneration) (*domain.ReportGeneration, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	gen.ID = m.NextID
	m.NextID++
	m.Generations[gen.ID] = gen
	return gen, nil
}

// GetByID retrieves a generation by ID
func (m *MockReportGenerationRepository) GetByID(ctx context.Context, id int64) (*domain.ReportGeneration, error) {
	if gen, ok := m.Generations[id]; ok {
		return gen, nil
	}
	return nil, domain.ErrGenerationNotFound
}

// List returns generations newest first
func (m *MockReportGenerationRepository) List(ctx context.Context, limit, offset int32) ([]*domain.ReportGeneration, error) {
	all := make([]*domain.ReportGeneration, 0, len(m.Generations))
	for _, g := range m.Generations {
		all = append(all, g)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].GeneratedAt.Equal(all[j].GeneratedAt) {
			return all[i].GeneratedAt.After(all[j].GeneratedAt)
		}
		return all[i].ID > all[j].ID
	})

	start := int(offset)
	if start > len(all) {
		start = len(all)
	}
	end := start + int(limit)
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// Count counts generations
func (m *MockReportGenerationRepository) Count(ctx context.Context) (int64, error) {
	return int64(len(m.Generations)), nil
}

// CountEmailed counts generations whose e-mail was sent
func (m *MockReportGenerationRepository) CountEmailed(ctx context.Context) (int64, error) {
	var n int64
	for _, g := range m.Generations {
		if g.EmailSent {
			n++
		}
	}
	return n, nil
}

// RecordEmailOutcome updates only the e-mail fields of a generation
func (m *MockReportGenerationRepository) RecordEmailOutcome(ctx context.Context, id int64, outcome domain.EmailOutcome) (*domain.ReportGeneration, error) {
	gen, ok := m.Generations[id]
	if !ok {
		return nil, domain.ErrGenerationNotFound
	}
	gen.EmailSent = outcome.Sent
	gen.EmailSentAt = outcome.SentAt
	gen.EmailRecipientsCount = outcome.RecipientsCount
	gen.EmailError = outcome.Error
	gen.Status = outcome.Status
	return gen, nil
}

// AddGeneration adds a generation to the mock repository (helper for tests)
func (m *MockReportGenerationRepository) AddGeneration(gen *domain.ReportGeneration) {
	m.Generations[gen.ID] = gen
	if gen.ID >= m.NextID {
		m.NextID = gen.ID + 1
	}
}

// MockArtifactStore is an in-memory implementation of storage.ArtifactStore
type MockArtifactStore struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	PutErr       error
}

// NewMockArtifactStore creates a new MockArtifactStore
func NewMockArtifactStore() *MockArtifactStore {
	return &MockArtifactStore{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
	}
}

// Put stores the content and returns a mem:// location
func (m *MockArtifactStore) Put(ctx context.Context, key string, data io.Reader, size int64, contentType string) (string, error) {
	if m.PutErr != nil {
		return "", m.PutErr
	}
	b, err := io.ReadAll(data)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[key] = b
	m.ContentTypes[key] = contentType
	return "mem://" + key, nil
}

// Open returns a reader over the stored content
func (m *MockArtifactStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Objects[key]
	if !ok {
		return nil, domain.ErrArtifactNotFound
	}
	return io.NopCloser(bytes.NewReader(b)), nil
}

// Stat returns the stored size
func (m *MockArtifactStore) Stat(ctx context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.Objects[key]
	if !ok {
		return 0, domain.ErrArtifactNotFound
	}
	return int64(len(b)), nil
}

// MockDistributor is a mock implementation of domain.Distributor
type MockDistributor struct {
	Result *domain.DistributionResult
	Sent   [][]string
}

// Send records the recipients and returns Result, or full success when unset
func (m *MockDistributor) Send(ctx context.Context, gen *domain.ReportGeneration, recipients []string) domain.DistributionResult {
	m.Sent = append(m.Sent, recipients)
	if m.Result != nil {
		return *m.Result
	}
	return domain.DistributionResult{
		Success:         true,
		SentCount:       len(recipients),
		TotalRecipients: len(recipients),
	}
}
