// Package pricing derives quotation totals from line items. All functions are
// pure: no I/O, no shared state, identical inputs always yield identical
// outputs, so handlers may call them on every keystroke for live previews.
package pricing

import "math"

// DiscountMode controls how discounts combine across a quotation.
type DiscountMode string

const (
	// DiscountModeLineItem applies each line's own discount only.
	DiscountModeLineItem DiscountMode = "LINE_ITEM"
	// DiscountModeOverall applies a single discount to the summed subtotal.
	DiscountModeOverall DiscountMode = "OVERALL"
	// DiscountModeBoth applies line discounts first, then the overall discount.
	DiscountModeBoth DiscountMode = "BOTH"
)

// Valid reports whether the mode is one of the known discount modes.
func (m DiscountMode) Valid() bool {
	switch m {
	case DiscountModeLineItem, DiscountModeOverall, DiscountModeBoth:
		return true
	}
	return false
}

// LineItem is one priced row of a quotation.
type LineItem struct {
	Name            string
	Quantity        float64
	Rate            float64
	DiscountPercent float64
	CategoryID      int64
	CategoryName    string
}

// CategoryContribution is the summed line total for one product category.
type CategoryContribution struct {
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name"`
	Total        float64 `json:"total"`
}

// QuoteTotals is the derived pricing summary for a quotation.
type QuoteTotals struct {
	Subtotal              float64                `json:"subtotal"`
	DiscountAmount        float64                `json:"discount_amount"`
	TaxableAmount         float64                `json:"taxable_amount"`
	Tax                   float64                `json:"tax"`
	GrandTotal            float64                `json:"grand_total"`
	CategoryContributions []CategoryContribution `json:"category_contributions"`
}

// LineTotal computes quantity * rate * (1 - discount/100) for one item.
// The line discount is a property of the item itself and applies in every
// discount mode. Malformed inputs (NaN, negative quantity or rate) are
// clamped to zero; the result is never negative.
func LineTotal(item LineItem) float64 {
	qty := clampNonNegative(item.Quantity)
	rate := clampNonNegative(item.Rate)
	disc := clampPercent(item.DiscountPercent)
	return qty * rate * (1 - disc/100)
}

// ComputeTotals derives QuoteTotals from the given line items. Percentages
// outside [0,100] are not rejected here (validation is a caller concern) but
// are clamped so no intermediate or final amount goes negative. Amounts are
// accumulated in full precision and only the output fields are rounded to two
// decimal places, half-up (away from zero).
func ComputeTotals(items []LineItem, mode DiscountMode, overallDiscountPercent, taxRatePercent float64) QuoteTotals {
	var subtotal float64

	order := make([]int64, 0, len(items))
	byCategory := make(map[int64]*CategoryContribution, len(items))

	for _, item := range items {
		lineTotal := LineTotal(item)
		subtotal += lineTotal

		contrib, ok := byCategory[item.CategoryID]
		if !ok {
			contrib = &CategoryContribution{CategoryID: item.CategoryID, CategoryName: item.CategoryName}
			byCategory[item.CategoryID] = contrib
			order = append(order, item.CategoryID)
		}
		contrib.Total += lineTotal
	}

	var discountAmount float64
	if mode == DiscountModeOverall || mode == DiscountModeBoth {
		discountAmount = subtotal * clampNonNegative(overallDiscountPercent) / 100
	}

	taxableAmount := subtotal - discountAmount
	if taxableAmount < 0 {
		taxableAmount = 0
	}

	tax := taxableAmount * clampNonNegative(taxRatePercent) / 100
	grandTotal := taxableAmount + tax

	contributions := make([]CategoryContribution, 0, len(order))
	for _, id := range order {
		c := byCategory[id]
		contributions = append(contributions, CategoryContribution{
			CategoryID:   c.CategoryID,
			CategoryName: c.CategoryName,
			Total:        Round2(c.Total),
		})
	}

	return QuoteTotals{
		Subtotal:              Round2(subtotal),
		DiscountAmount:        Round2(discountAmount),
		TaxableAmount:         Round2(taxableAmount),
		Tax:                   Round2(tax),
		GrandTotal:            Round2(grandTotal),
		CategoryContributions: contributions,
	}
}

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Round(v*100) / 100
}

func clampNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}

func clampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
