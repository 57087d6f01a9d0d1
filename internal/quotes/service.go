package quotes

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/elvenwooddev-web/designquote/internal/catalog/products"
	"github.com/elvenwooddev-web/designquote/internal/clients"
	"github.com/elvenwooddev-web/designquote/internal/platform/httpx"
	"github.com/elvenwooddev-web/designquote/internal/quotes/pricing"
	"github.com/elvenwooddev-web/designquote/internal/quotes/workflow"
	"github.com/elvenwooddev-web/designquote/internal/templates"
)

// Renderer produces the finalized PDF artifact for an exportable quote.
type Renderer interface {
	Render(ctx context.Context, quote *Quote, client clients.Client, tpl templates.Template) ([]byte, error)
}

type Service struct {
	repo      Repository
	clients   clients.Repository
	products  products.Repository
	templates *templates.Service
	renderer  Renderer
	logger    *slog.Logger
}

func NewService(repo Repository, clientRepo clients.Repository, productRepo products.Repository,
	templateSvc *templates.Service, renderer Renderer, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		clients:   clientRepo,
		products:  productRepo,
		templates: templateSvc,
		renderer:  renderer,
		logger:    logger,
	}
}

func (s *Service) Get(ctx context.Context, id int64) (*Quote, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, req ListQuotesRequest) ([]QuoteWithClient, int, error) {
	if req.Limit <= 0 || req.Limit > 100 {
		req.Limit = 25
	}
	if req.Offset < 0 {
		req.Offset = 0
	}
	return s.repo.List(ctx, req)
}

func (s *Service) ListRevisions(ctx context.Context, quoteID int64) ([]Revision, error) {
	if _, err := s.repo.Get(ctx, quoteID); err != nil {
		return nil, err
	}
	return s.repo.ListRevisions(ctx, quoteID)
}

// Preview runs the calculator over an unsaved body. Nothing is persisted.
func (s *Service) Preview(req PreviewRequest) pricing.QuoteTotals {
	items := make([]pricing.LineItem, 0, len(req.Lines))
	for _, l := range req.Lines {
		items = append(items, pricing.LineItem{
			Name:            l.Name,
			Quantity:        l.Quantity,
			Rate:            l.Rate,
			DiscountPercent: l.DiscountPercent,
			CategoryID:      l.CategoryID,
			CategoryName:    l.CategoryName,
		})
	}
	return pricing.ComputeTotals(items, req.DiscountMode, req.OverallDiscountPercent, req.TaxRatePercent)
}

func (s *Service) Create(ctx context.Context, req CreateQuoteRequest, actor workflow.Actor) (*Quote, error) {
	if _, err := s.clients.Get(ctx, req.ClientID); err != nil {
		return nil, fmt.Errorf("%w: client %d", httpx.ErrValidation, req.ClientID)
	}
	if req.TemplateID != nil {
		if _, err := s.templates.Get(ctx, *req.TemplateID); err != nil {
			return nil, fmt.Errorf("%w: template %d", httpx.ErrValidation, *req.TemplateID)
		}
	}

	lines, err := s.resolveLines(ctx, req.Lines)
	if err != nil {
		return nil, err
	}

	quote := Quote{
		ClientID:               req.ClientID,
		TemplateID:             req.TemplateID,
		Status:                 workflow.StatusDraft,
		Version:                0,
		DiscountMode:           req.DiscountMode,
		OverallDiscountPercent: req.OverallDiscountPercent,
		TaxRatePercent:         req.TaxRatePercent,
		Notes:                  req.Notes,
		CreatedBy:              actor.ID,
	}
	applyTotals(&quote, lines)

	var id int64
	err = s.repo.WithTx(ctx, func(ctx context.Context, txRepo Repository) error {
		number, err := txRepo.GenerateNumber(ctx, time.Now())
		if err != nil {
			return fmt.Errorf("generate quote number: %w", err)
		}
		quote.QuoteNumber = number

		id, err = txRepo.Create(ctx, quote)
		if err != nil {
			return err
		}
		for i := range lines {
			lines[i].QuoteID = id
			if _, err := txRepo.InsertLine(ctx, lines[i]); err != nil {
				return fmt.Errorf("insert line %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

// Update patches a DRAFT quote. Any content change recomputes totals; quotes
// past DRAFT are immutable apart from workflow transitions.
func (s *Service) Update(ctx context.Context, id int64, req UpdateQuoteRequest) (*Quote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if quote.Status != workflow.StatusDraft {
		return nil, fmt.Errorf("%w: quote is %s, only drafts can be edited", httpx.ErrConflict, quote.Status)
	}

	if req.TemplateID != nil {
		if _, err := s.templates.Get(ctx, *req.TemplateID); err != nil {
			return nil, fmt.Errorf("%w: template %d", httpx.ErrValidation, *req.TemplateID)
		}
		quote.TemplateID = req.TemplateID
	}
	if req.DiscountMode != nil {
		quote.DiscountMode = *req.DiscountMode
	}
	if req.OverallDiscountPercent != nil {
		quote.OverallDiscountPercent = *req.OverallDiscountPercent
	}
	if req.TaxRatePercent != nil {
		quote.TaxRatePercent = *req.TaxRatePercent
	}
	if req.Notes != nil {
		quote.Notes = req.Notes
	}

	lines := quote.Lines
	if req.Lines != nil {
		lines, err = s.resolveLines(ctx, *req.Lines)
		if err != nil {
			return nil, err
		}
	}
	applyTotals(quote, lines)

	updates := map[string]interface{}{
		"template_id":              quote.TemplateID,
		"discount_mode":            quote.DiscountMode,
		"overall_discount_percent": quote.OverallDiscountPercent,
		"tax_rate_percent":         quote.TaxRatePercent,
		"notes":                    quote.Notes,
		"subtotal":                 quote.Subtotal,
		"discount_amount":          quote.DiscountAmount,
		"taxable_amount":           quote.TaxableAmount,
		"tax":                      quote.Tax,
		"grand_total":              quote.GrandTotal,
	}

	err = s.repo.WithTx(ctx, func(ctx context.Context, txRepo Repository) error {
		if err := txRepo.Update(ctx, id, updates); err != nil {
			return err
		}
		if req.Lines == nil {
			return nil
		}
		if err := txRepo.DeleteLines(ctx, id); err != nil {
			return err
		}
		for i := range lines {
			lines[i].QuoteID = id
			if _, err := txRepo.InsertLine(ctx, lines[i]); err != nil {
				return fmt.Errorf("insert line %d: %w", i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if quote.Status != workflow.StatusDraft {
		return fmt.Errorf("%w: quote is %s, only drafts can be deleted", httpx.ErrConflict, quote.Status)
	}
	return s.repo.Delete(ctx, id)
}

// Transition applies a workflow event and persists the result. The revision
// record is best effort: a failure to append it is logged at WARN and does
// not undo the already-committed status change.
func (s *Service) Transition(ctx context.Context, id int64, event workflow.Event, actor workflow.Actor, notes string) (*Quote, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, rev, err := workflow.Transition(quote.workflowView(), event, actor, notes, time.Now())
	if err != nil {
		return nil, err
	}
	quote.applyWorkflow(next)

	if err := s.repo.UpdateWorkflow(ctx, quote); err != nil {
		return nil, err
	}

	if err := s.repo.AppendRevision(ctx, Revision{
		ID:        rev.ID,
		QuoteID:   rev.QuoteID,
		Version:   rev.Version,
		Status:    rev.Status,
		ChangedBy: rev.ChangedBy,
		Notes:     rev.Notes,
		CreatedAt: rev.CreatedAt,
	}); err != nil {
		s.logger.Warn("revision append failed",
			slog.Int64("quote_id", id),
			slog.String("event", string(event)),
			slog.String("error", err.Error()))
	}

	return quote, nil
}

// Export transitions the quote through the export event and renders the PDF
// for the resulting version.
func (s *Service) Export(ctx context.Context, id int64, actor workflow.Actor, notes string) (*Quote, []byte, error) {
	quote, err := s.Transition(ctx, id, workflow.EventExport, actor, notes)
	if err != nil {
		return nil, nil, err
	}
	pdf, err := s.render(ctx, quote)
	if err != nil {
		return nil, nil, err
	}
	return quote, pdf, nil
}

// RenderPDF re-renders the artifact for an already exportable quote without
// changing its status or version.
func (s *Service) RenderPDF(ctx context.Context, id int64) (*Quote, []byte, error) {
	quote, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := workflow.EnsureExportable(quote.Status); err != nil {
		return nil, nil, err
	}
	pdf, err := s.render(ctx, quote)
	if err != nil {
		return nil, nil, err
	}
	return quote, pdf, nil
}

func (s *Service) render(ctx context.Context, quote *Quote) ([]byte, error) {
	client, err := s.clients.Get(ctx, quote.ClientID)
	if err != nil {
		return nil, fmt.Errorf("load client: %w", err)
	}
	tpl, err := s.templates.Resolve(ctx, quote.TemplateID)
	if err != nil {
		return nil, fmt.Errorf("resolve template: %w", err)
	}
	pdf, err := s.renderer.Render(ctx, quote, client, tpl)
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return pdf, nil
}

// resolveLines snapshots catalog data onto each requested line so the quote
// stays stable when products are later renamed or repriced.
func (s *Service) resolveLines(ctx context.Context, reqs []CreateLineItemReq) ([]LineItem, error) {
	lines := make([]LineItem, 0, len(reqs))
	for i, lr := range reqs {
		product, err := s.products.GetWithDetails(ctx, lr.ProductID)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d", httpx.ErrValidation, lr.ProductID)
		}
		if !product.IsActive {
			return nil, fmt.Errorf("%w: product %q is inactive", httpx.ErrValidation, product.Name)
		}

		rate := lr.Rate
		if rate == 0 {
			rate = product.Rate
		}
		order := lr.LineOrder
		if order == 0 {
			order = i
		}
		line := LineItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Description:     lr.Description,
			CategoryID:      product.CategoryID,
			CategoryName:    product.CategoryName,
			UnitCode:        product.UnitCode,
			Quantity:        lr.Quantity,
			Rate:            rate,
			DiscountPercent: lr.DiscountPercent,
			LineOrder:       order,
		}
		line.LineTotal = pricing.Round2(pricing.LineTotal(pricing.LineItem{
			Quantity:        line.Quantity,
			Rate:            line.Rate,
			DiscountPercent: line.DiscountPercent,
		}))
		lines = append(lines, line)
	}
	return lines, nil
}

func applyTotals(q *Quote, lines []LineItem) {
	totals := pricing.ComputeTotals(pricingItems(lines), q.DiscountMode, q.OverallDiscountPercent, q.TaxRatePercent)
	q.Subtotal = totals.Subtotal
	q.DiscountAmount = totals.DiscountAmount
	q.TaxableAmount = totals.TaxableAmount
	q.Tax = totals.Tax
	q.GrandTotal = totals.GrandTotal
	q.Lines = lines
}
