package quotes

import (
	"time"

	"github.com/google/uuid"

	"github.com/elvenwooddev-web/designquote/internal/quotes/pricing"
	"github.com/elvenwooddev-web/designquote/internal/quotes/workflow"
)

// Quote is the aggregate root of a quotation document.
type Quote struct {
	ID                     int64                `json:"id"`
	QuoteNumber            string               `json:"quote_number"`
	ClientID               int64                `json:"client_id"`
	TemplateID             *int64               `json:"template_id,omitempty"`
	Status                 workflow.Status      `json:"status"`
	Version                int                  `json:"version"`
	DiscountMode           pricing.DiscountMode `json:"discount_mode"`
	OverallDiscountPercent float64              `json:"overall_discount_percent"`
	TaxRatePercent         float64              `json:"tax_rate_percent"`
	Subtotal               float64              `json:"subtotal"`
	DiscountAmount         float64              `json:"discount_amount"`
	TaxableAmount          float64              `json:"taxable_amount"`
	Tax                    float64              `json:"tax"`
	GrandTotal             float64              `json:"grand_total"`
	Notes                  *string              `json:"notes,omitempty"`
	CreatedBy              int64                `json:"created_by"`
	ApprovedBy             *int64               `json:"approved_by,omitempty"`
	ApprovedAt             *time.Time           `json:"approved_at,omitempty"`
	RejectedBy             *int64               `json:"rejected_by,omitempty"`
	RejectedAt             *time.Time           `json:"rejected_at,omitempty"`
	CreatedAt              time.Time            `json:"created_at"`
	UpdatedAt              time.Time            `json:"updated_at"`
	Lines                  []LineItem           `json:"lines,omitempty"`
}

// LineItem is one persisted row of a quotation.
type LineItem struct {
	ID              int64     `json:"id"`
	QuoteID         int64     `json:"quote_id"`
	ProductID       int64     `json:"product_id"`
	Name            string    `json:"name"`
	Description     *string   `json:"description,omitempty"`
	CategoryID      int64     `json:"category_id"`
	CategoryName    string    `json:"category_name"`
	UnitCode        string    `json:"unit_code"`
	Quantity        float64   `json:"quantity"`
	Rate            float64   `json:"rate"`
	DiscountPercent float64   `json:"discount_percent"`
	LineTotal       float64   `json:"line_total"`
	LineOrder       int       `json:"line_order"`
	CreatedAt       time.Time `json:"created_at"`
}

// Revision is an append-only audit record of a status-changing event.
type Revision struct {
	ID        uuid.UUID       `json:"id"`
	QuoteID   int64           `json:"quote_id"`
	Version   int             `json:"version"`
	Status    workflow.Status `json:"status"`
	ChangedBy int64           `json:"changed_by"`
	Notes     string          `json:"notes"`
	CreatedAt time.Time       `json:"created_at"`
}

// QuoteWithClient carries the joined client name for list views.
type QuoteWithClient struct {
	Quote
	ClientName string `json:"client_name"`
}

// workflowView projects the aggregate onto the slice the state machine needs.
func (q *Quote) workflowView() workflow.Quote {
	return workflow.Quote{
		ID:         q.ID,
		Status:     q.Status,
		Version:    q.Version,
		ApprovedBy: q.ApprovedBy,
		ApprovedAt: q.ApprovedAt,
		RejectedBy: q.RejectedBy,
		RejectedAt: q.RejectedAt,
	}
}

// applyWorkflow copies the state machine result back onto the aggregate.
func (q *Quote) applyWorkflow(w workflow.Quote) {
	q.Status = w.Status
	q.Version = w.Version
	q.ApprovedBy = w.ApprovedBy
	q.ApprovedAt = w.ApprovedAt
	q.RejectedBy = w.RejectedBy
	q.RejectedAt = w.RejectedAt
}

// pricingItems converts persisted lines into calculator inputs.
func pricingItems(lines []LineItem) []pricing.LineItem {
	items := make([]pricing.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, pricing.LineItem{
			Name:            l.Name,
			Quantity:        l.Quantity,
			Rate:            l.Rate,
			DiscountPercent: l.DiscountPercent,
			CategoryID:      l.CategoryID,
			CategoryName:    l.CategoryName,
		})
	}
	return items
}
