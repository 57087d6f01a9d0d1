package quotes

import (
	"time"

	"github.com/elvenwooddev-web/designquote/internal/quotes/pricing"
	"github.com/elvenwooddev-web/designquote/internal/quotes/workflow"
)

// CreateQuoteRequest is the JSON body for creating a draft quotation.
type CreateQuoteRequest struct {
	ClientID               int64                `json:"client_id" validate:"required,gt=0"`
	TemplateID             *int64               `json:"template_id,omitempty" validate:"omitempty,gt=0"`
	DiscountMode           pricing.DiscountMode `json:"discount_mode" validate:"required,oneof=LINE_ITEM OVERALL BOTH"`
	OverallDiscountPercent float64              `json:"overall_discount_percent" validate:"gte=0,lte=100"`
	TaxRatePercent         float64              `json:"tax_rate_percent" validate:"gte=0,lte=100"`
	Notes                  *string              `json:"notes,omitempty"`
	Lines                  []CreateLineItemReq  `json:"lines" validate:"required,min=1,dive"`
}

// CreateLineItemReq is one line of a create or update body.
type CreateLineItemReq struct {
	ProductID       int64   `json:"product_id" validate:"required,gt=0"`
	Description     *string `json:"description,omitempty"`
	Quantity        float64 `json:"quantity" validate:"required,gt=0"`
	Rate            float64 `json:"rate" validate:"gte=0"`
	DiscountPercent float64 `json:"discount_percent" validate:"gte=0,lte=100"`
	LineOrder       int     `json:"line_order" validate:"gte=0"`
}

// UpdateQuoteRequest updates a DRAFT quotation. When Lines is present the
// existing lines are replaced wholesale and totals recomputed.
type UpdateQuoteRequest struct {
	TemplateID             *int64                `json:"template_id,omitempty" validate:"omitempty,gt=0"`
	DiscountMode           *pricing.DiscountMode `json:"discount_mode,omitempty" validate:"omitempty,oneof=LINE_ITEM OVERALL BOTH"`
	OverallDiscountPercent *float64              `json:"overall_discount_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	TaxRatePercent         *float64              `json:"tax_rate_percent,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes                  *string               `json:"notes,omitempty"`
	Lines                  *[]CreateLineItemReq  `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// PreviewRequest computes totals without touching persisted state.
type PreviewRequest struct {
	DiscountMode           pricing.DiscountMode `json:"discount_mode" validate:"required,oneof=LINE_ITEM OVERALL BOTH"`
	OverallDiscountPercent float64              `json:"overall_discount_percent" validate:"gte=0,lte=100"`
	TaxRatePercent         float64              `json:"tax_rate_percent" validate:"gte=0,lte=100"`
	Lines                  []PreviewLineReq     `json:"lines"`
}

// PreviewLineReq is a calculator input line; category name is optional and
// only used for the contribution labels.
type PreviewLineReq struct {
	Name            string  `json:"name"`
	Quantity        float64 `json:"quantity"`
	Rate            float64 `json:"rate"`
	DiscountPercent float64 `json:"discount_percent"`
	CategoryID      int64   `json:"category_id"`
	CategoryName    string  `json:"category_name"`
}

// TransitionRequest carries optional notes for a workflow action.
type TransitionRequest struct {
	Notes string `json:"notes,omitempty" validate:"max=2000"`
}

// ListQuotesRequest filters the quote list.
type ListQuotesRequest struct {
	ClientID *int64
	Status   *workflow.Status
	DateFrom *time.Time
	DateTo   *time.Time
	Limit    int
	Offset   int
}
