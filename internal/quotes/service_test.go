package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elvenwooddev-web/designquote/internal/catalog/products"
	"github.com/elvenwooddev-web/designquote/internal/catalog/shared"
	"github.com/elvenwooddev-web/designquote/internal/clients"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
	"github.com/elvenwooddev-web/designquote/internal/quotes/pricing"
	"github.com/elvenwooddev-web/designquote/internal/quotes/workflow"
	"github.com/elvenwooddev-web/designquote/internal/templates"
)

// ============================================================================
// MOCK REPOSITORY
// ============================================================================

type mockRepository struct {
	quotes    map[int64]*Quote
	lines     map[int64][]LineItem
	revisions map[int64][]Revision
	nextID    int64
	seq       int64

	txError       error
	revisionError error
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		quotes:    make(map[int64]*Quote),
		lines:     make(map[int64][]LineItem),
		revisions: make(map[int64][]Revision),
		nextID:    1,
	}
}

func (m *mockRepository) WithTx(ctx context.Context, fn func(context.Context, Repository) error) error {
	if m.txError != nil {
		return m.txError
	}
	return fn(ctx, m)
}

func (m *mockRepository) Get(_ context.Context, id int64) (*Quote, error) {
	q, ok := m.quotes[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *q
	cp.Lines = append([]LineItem(nil), m.lines[id]...)
	return &cp, nil
}

func (m *mockRepository) List(_ context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error) {
	var result []QuoteWithClient
	for _, q := range m.quotes {
		if req.Status != nil && q.Status != *req.Status {
			continue
		}
		if req.ClientID != nil && q.ClientID != *req.ClientID {
			continue
		}
		result = append(result, QuoteWithClient{Quote: *q, ClientName: "Acme Interiors"})
	}
	return result, len(result), nil
}

func (m *mockRepository) Create(_ context.Context, q Quote) (int64, error) {
	id := m.nextID
	m.nextID++
	q.ID = id
	q.CreatedAt = time.Now()
	m.quotes[id] = &q
	return id, nil
}

func (m *mockRepository) Update(_ context.Context, id int64, updates map[string]interface{}) error {
	q, ok := m.quotes[id]
	if !ok {
		return httpx.ErrNotFound
	}
	if v, ok := updates["discount_mode"]; ok {
		q.DiscountMode = v.(pricing.DiscountMode)
	}
	if v, ok := updates["overall_discount_percent"]; ok {
		q.OverallDiscountPercent = v.(float64)
	}
	if v, ok := updates["tax_rate_percent"]; ok {
		q.TaxRatePercent = v.(float64)
	}
	if v, ok := updates["subtotal"]; ok {
		q.Subtotal = v.(float64)
	}
	if v, ok := updates["discount_amount"]; ok {
		q.DiscountAmount = v.(float64)
	}
	if v, ok := updates["taxable_amount"]; ok {
		q.TaxableAmount = v.(float64)
	}
	if v, ok := updates["tax"]; ok {
		q.Tax = v.(float64)
	}
	if v, ok := updates["grand_total"]; ok {
		q.GrandTotal = v.(float64)
	}
	if v, ok := updates["notes"]; ok {
		if notes, ok := v.(*string); ok {
			q.Notes = notes
		}
	}
	return nil
}

func (m *mockRepository) InsertLine(_ context.Context, line LineItem) (int64, error) {
	line.ID = int64(len(m.lines[line.QuoteID]) + 1)
	m.lines[line.QuoteID] = append(m.lines[line.QuoteID], line)
	return line.ID, nil
}

func (m *mockRepository) DeleteLines(_ context.Context, quoteID int64) error {
	delete(m.lines, quoteID)
	return nil
}

func (m *mockRepository) Delete(_ context.Context, id int64) error {
	if _, ok := m.quotes[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(m.quotes, id)
	delete(m.lines, id)
	return nil
}

func (m *mockRepository) UpdateWorkflow(_ context.Context, q *Quote) error {
	stored, ok := m.quotes[q.ID]
	if !ok {
		return httpx.ErrNotFound
	}
	stored.Status = q.Status
	stored.Version = q.Version
	stored.ApprovedBy = q.ApprovedBy
	stored.ApprovedAt = q.ApprovedAt
	stored.RejectedBy = q.RejectedBy
	stored.RejectedAt = q.RejectedAt
	return nil
}

func (m *mockRepository) AppendRevision(_ context.Context, rev Revision) error {
	if m.revisionError != nil {
		return m.revisionError
	}
	m.revisions[rev.QuoteID] = append(m.revisions[rev.QuoteID], rev)
	return nil
}

func (m *mockRepository) ListRevisions(_ context.Context, quoteID int64) ([]Revision, error) {
	return m.revisions[quoteID], nil
}

func (m *mockRepository) GenerateNumber(_ context.Context, date time.Time) (string, error) {
	m.seq++
	return fmt.Sprintf("Q-%s-%04d", date.Format("0601"), m.seq), nil
}

// ============================================================================
// MOCK CATALOG DEPENDENCIES
// ============================================================================

type mockClientRepo struct {
	clients map[int64]clients.Client
}

func (m *mockClientRepo) List(_ context.Context, _ clients.ListClientsRequest) ([]clients.Client, int, error) {
	return nil, 0, nil
}

func (m *mockClientRepo) Get(_ context.Context, id int64) (clients.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return clients.Client{}, httpx.ErrNotFound
	}
	return c, nil
}

func (m *mockClientRepo) Create(_ context.Context, c clients.Client) (clients.Client, error) {
	return c, nil
}
func (m *mockClientRepo) Update(_ context.Context, _ int64, _ clients.Client) error { return nil }
func (m *mockClientRepo) Delete(_ context.Context, _ int64) error                   { return nil }

type mockProductRepo struct {
	products map[int64]products.ProductWithDetails
}

func (m *mockProductRepo) List(_ context.Context, _ shared.ListFilters) ([]products.ProductWithDetails, int, error) {
	return nil, 0, nil
}

func (m *mockProductRepo) Get(_ context.Context, id int64) (products.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return products.Product{}, httpx.ErrNotFound
	}
	return p.Product, nil
}

func (m *mockProductRepo) GetWithDetails(_ context.Context, id int64) (products.ProductWithDetails, error) {
	p, ok := m.products[id]
	if !ok {
		return products.ProductWithDetails{}, httpx.ErrNotFound
	}
	return p, nil
}

func (m *mockProductRepo) Create(_ context.Context, p products.Product) (products.Product, error) {
	return p, nil
}
func (m *mockProductRepo) Update(_ context.Context, _ int64, _ products.Product) error { return nil }
func (m *mockProductRepo) Delete(_ context.Context, _ int64) error                     { return nil }

type mockTemplateRepo struct{}

func (mockTemplateRepo) List(_ context.Context) ([]templates.Template, error) { return nil, nil }
func (mockTemplateRepo) Get(_ context.Context, id int64) (templates.Template, error) {
	return templates.Template{ID: id, Name: "Clean", PageSize: "A4", AccentColor: "#1f2937"}, nil
}
func (mockTemplateRepo) GetDefault(_ context.Context) (templates.Template, error) {
	return templates.Template{}, httpx.ErrNotFound
}
func (mockTemplateRepo) Create(_ context.Context, t templates.Template) (templates.Template, error) {
	return t, nil
}
func (mockTemplateRepo) Update(_ context.Context, _ int64, _ templates.Template) error { return nil }
func (mockTemplateRepo) Delete(_ context.Context, _ int64) error                       { return nil }
func (mockTemplateRepo) SetDefault(_ context.Context, _ int64) error                   { return nil }

type mockRenderer struct {
	err error
}

func (m *mockRenderer) Render(_ context.Context, _ *Quote, _ clients.Client, _ templates.Template) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

// ============================================================================
// FIXTURES
// ============================================================================

func newTestService(repo *mockRepository) *Service {
	clientRepo := &mockClientRepo{clients: map[int64]clients.Client{
		1: {ID: 1, Name: "Acme Interiors", Email: "billing@acme.test", IsActive: true},
	}}
	productRepo := &mockProductRepo{products: map[int64]products.ProductWithDetails{
		10: {
			Product:      products.Product{ID: 10, Name: "Oak Shelf", CategoryID: 1, UnitID: 1, Rate: 100, IsActive: true},
			CategoryName: "Carpentry",
			UnitCode:     "pcs",
		},
		20: {
			Product:      products.Product{ID: 20, Name: "Wall Paint", CategoryID: 2, UnitID: 2, Rate: 45, IsActive: true},
			CategoryName: "Finishing",
			UnitCode:     "ltr",
		},
		30: {
			Product:      products.Product{ID: 30, Name: "Retired Lamp", CategoryID: 2, UnitID: 1, Rate: 10, IsActive: false},
			CategoryName: "Finishing",
			UnitCode:     "pcs",
		},
	}}
	return NewService(repo, clientRepo, productRepo,
		templates.NewService(mockTemplateRepo{}), &mockRenderer{}, slog.Default())
}

func testActor() workflow.Actor {
	return workflow.Actor{ID: 7, Email: "designer@studio.test", Name: "Dana"}
}

func createDraft(t *testing.T, svc *Service) *Quote {
	t.Helper()
	quote, err := svc.Create(context.Background(), CreateQuoteRequest{
		ClientID:       1,
		DiscountMode:   pricing.DiscountModeLineItem,
		TaxRatePercent: 18,
		Lines: []CreateLineItemReq{
			{ProductID: 10, Quantity: 2, Rate: 125, DiscountPercent: 20},
			{ProductID: 20, Quantity: 1, Rate: 45},
		},
	}, testActor())
	require.NoError(t, err)
	return quote
}

// ============================================================================
// TESTS
// ============================================================================

func TestCreateQuote(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	quote := createDraft(t, svc)

	assert.Equal(t, workflow.StatusDraft, quote.Status)
	assert.Equal(t, 0, quote.Version)
	assert.NotEmpty(t, quote.QuoteNumber)
	require.Len(t, quote.Lines, 2)
	assert.Equal(t, "Oak Shelf", quote.Lines[0].Name)
	assert.Equal(t, "Carpentry", quote.Lines[0].CategoryName)
	assert.Equal(t, "pcs", quote.Lines[0].UnitCode)

	// 2*125 less 20% = 200, plus 45.
	assert.InDelta(t, 245.0, quote.Subtotal, 0.001)
	assert.InDelta(t, 44.1, quote.Tax, 0.001)
	assert.InDelta(t, 289.1, quote.GrandTotal, 0.001)
}

func TestCreateQuoteDefaultsRateFromCatalog(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	quote, err := svc.Create(context.Background(), CreateQuoteRequest{
		ClientID:     1,
		DiscountMode: pricing.DiscountModeLineItem,
		Lines: []CreateLineItemReq{
			{ProductID: 10, Quantity: 3},
		},
	}, testActor())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, quote.Lines[0].Rate, 0.001)
	assert.InDelta(t, 300.0, quote.Subtotal, 0.001)
}

func TestCreateQuoteUnknownClient(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateQuoteRequest{
		ClientID:     99,
		DiscountMode: pricing.DiscountModeLineItem,
		Lines:        []CreateLineItemReq{{ProductID: 10, Quantity: 1}},
	}, testActor())
	assert.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateQuoteInactiveProduct(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateQuoteRequest{
		ClientID:     1,
		DiscountMode: pricing.DiscountModeLineItem,
		Lines:        []CreateLineItemReq{{ProductID: 30, Quantity: 1}},
	}, testActor())
	require.ErrorIs(t, err, httpx.ErrValidation)
	assert.Contains(t, err.Error(), "inactive")
}

func TestUpdateQuoteRecomputesTotals(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	mode := pricing.DiscountModeBoth
	overall := 10.0
	updated, err := svc.Update(context.Background(), quote.ID, UpdateQuoteRequest{
		DiscountMode:           &mode,
		OverallDiscountPercent: &overall,
	})
	require.NoError(t, err)

	// Line discounts keep subtotal at 245; 10% overall on top.
	assert.InDelta(t, 245.0, updated.Subtotal, 0.001)
	assert.InDelta(t, 24.5, updated.DiscountAmount, 0.001)
	assert.InDelta(t, 220.5, updated.TaxableAmount, 0.001)
	assert.InDelta(t, 39.69, updated.Tax, 0.001)
	assert.InDelta(t, 260.19, updated.GrandTotal, 0.001)
}

func TestUpdateNonDraftRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	_, err := svc.Transition(context.Background(), quote.ID, workflow.EventSubmit, testActor(), "")
	require.NoError(t, err)

	notes := "too late"
	_, err = svc.Update(context.Background(), quote.ID, UpdateQuoteRequest{Notes: &notes})
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestDeleteNonDraftRejected(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	_, err := svc.Transition(context.Background(), quote.ID, workflow.EventSubmit, testActor(), "")
	require.NoError(t, err)

	err = svc.Delete(context.Background(), quote.ID)
	assert.ErrorIs(t, err, httpx.ErrConflict)
}

func TestSubmitQuote(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	updated, err := svc.Transition(context.Background(), quote.ID, workflow.EventSubmit, testActor(), "please review")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingApproval, updated.Status)

	revisions, err := svc.ListRevisions(context.Background(), quote.ID)
	require.NoError(t, err)
	require.Len(t, revisions, 1)
	assert.Equal(t, "please review", revisions[0].Notes)
	assert.Equal(t, int64(7), revisions[0].ChangedBy)
}

func TestApproveQuote(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	_, err := svc.Transition(context.Background(), quote.ID, workflow.EventSubmit, testActor(), "")
	require.NoError(t, err)

	approver := workflow.Actor{ID: 8, Email: "lead@studio.test", Name: "Lee"}
	updated, err := svc.Transition(context.Background(), quote.ID, workflow.EventApprove, approver, "")
	require.NoError(t, err)

	assert.Equal(t, workflow.StatusSent, updated.Status)
	require.NotNil(t, updated.ApprovedBy)
	assert.Equal(t, int64(8), *updated.ApprovedBy)
	assert.NotNil(t, updated.ApprovedAt)
}

func TestInvalidTransition(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	_, err := svc.Transition(context.Background(), quote.ID, workflow.EventAccept, testActor(), "")
	assert.ErrorIs(t, err, workflow.ErrInvalidTransition)

	// Failed transitions leave the quote untouched.
	stored, err := svc.Get(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusDraft, stored.Status)
}

func TestExportBumpsVersion(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	exported, pdf, err := svc.Export(context.Background(), quote.ID, testActor(), "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusSent, exported.Status)
	assert.Equal(t, 1, exported.Version)
	assert.NotEmpty(t, pdf)

	again, _, err := svc.Export(context.Background(), quote.ID, testActor(), "")
	require.NoError(t, err)
	assert.Equal(t, 2, again.Version)

	revisions, err := svc.ListRevisions(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Len(t, revisions, 2)
}

func TestRevisionFailureKeepsStatus(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	repo.revisionError = errors.New("revisions table unavailable")
	updated, err := svc.Transition(context.Background(), quote.ID, workflow.EventSubmit, testActor(), "")
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingApproval, updated.Status)

	stored, err := svc.Get(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.StatusPendingApproval, stored.Status)

	revisions, err := svc.ListRevisions(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Empty(t, revisions)
}

func TestRenderPDFNotApproved(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	_, _, err := svc.RenderPDF(context.Background(), quote.ID)
	require.ErrorIs(t, err, workflow.ErrNotApproved)
	assert.Contains(t, err.Error(), string(workflow.StatusDraft))

	_, err = svc.Transition(context.Background(), quote.ID, workflow.EventSubmit, testActor(), "")
	require.NoError(t, err)
	_, _, err = svc.RenderPDF(context.Background(), quote.ID)
	require.ErrorIs(t, err, workflow.ErrNotApproved)
	assert.Contains(t, err.Error(), string(workflow.StatusPendingApproval))
}

func TestRenderPDFAfterExport(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)
	quote := createDraft(t, svc)

	_, _, err := svc.Export(context.Background(), quote.ID, testActor(), "")
	require.NoError(t, err)

	stored, pdf, err := svc.RenderPDF(context.Background(), quote.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.Version)
	assert.NotEmpty(t, pdf)
}

func TestPreview(t *testing.T) {
	svc := newTestService(newMockRepository())

	totals := svc.Preview(PreviewRequest{
		DiscountMode:           pricing.DiscountModeOverall,
		OverallDiscountPercent: 10,
		TaxRatePercent:         18,
		Lines: []PreviewLineReq{
			{Name: "Custom Desk", Quantity: 1, Rate: 1000, CategoryID: 1, CategoryName: "Carpentry"},
		},
	})
	assert.InDelta(t, 1000.0, totals.Subtotal, 0.001)
	assert.InDelta(t, 100.0, totals.DiscountAmount, 0.001)
	assert.InDelta(t, 900.0, totals.TaxableAmount, 0.001)
	assert.InDelta(t, 1062.0, totals.GrandTotal, 0.001)
}

func TestListQuotesFiltersByStatus(t *testing.T) {
	repo := newMockRepository()
	svc := newTestService(repo)

	first := createDraft(t, svc)
	createDraft(t, svc)
	_, err := svc.Transition(context.Background(), first.ID, workflow.EventSubmit, testActor(), "")
	require.NoError(t, err)

	pending := workflow.StatusPendingApproval
	result, total, err := svc.List(context.Background(), ListQuotesRequest{Status: &pending})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, result, 1)
	assert.Equal(t, first.ID, result[0].ID)
}
