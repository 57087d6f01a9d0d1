package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineTotal(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
		want float64
	}{
		{
			name: "no discount",
			item: LineItem{Quantity: 2, Rate: 100},
			want: 200,
		},
		{
			name: "ten percent discount",
			item: LineItem{Quantity: 1, Rate: 50, DiscountPercent: 10},
			want: 45,
		},
		{
			name: "full discount yields zero",
			item: LineItem{Quantity: 3, Rate: 99.99, DiscountPercent: 100},
			want: 0,
		},
		{
			name: "discount above hundred clamps at zero",
			item: LineItem{Quantity: 1, Rate: 100, DiscountPercent: 150},
			want: 0,
		},
		{
			name: "negative quantity clamps to zero",
			item: LineItem{Quantity: -4, Rate: 100},
			want: 0,
		},
		{
			name: "negative rate clamps to zero",
			item: LineItem{Quantity: 4, Rate: -100},
			want: 0,
		},
		{
			name: "NaN quantity clamps to zero",
			item: LineItem{Quantity: math.NaN(), Rate: 100},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LineTotal(tt.item)
			assert.InDelta(t, tt.want, got, 1e-9)
			assert.False(t, math.IsNaN(got))
			assert.GreaterOrEqual(t, got, 0.0)
		})
	}
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, DiscountModeLineItem, 0, 0)
	assert.Zero(t, totals.Subtotal)
	assert.Zero(t, totals.DiscountAmount)
	assert.Zero(t, totals.TaxableAmount)
	assert.Zero(t, totals.Tax)
	assert.Zero(t, totals.GrandTotal)
	assert.Empty(t, totals.CategoryContributions)
}

func TestComputeTotalsOverallDiscountWithTax(t *testing.T) {
	items := []LineItem{
		{Name: "Panel", Quantity: 2, Rate: 100, DiscountPercent: 0, CategoryID: 1, CategoryName: "A"},
		{Name: "Cable", Quantity: 1, Rate: 50, DiscountPercent: 10, CategoryID: 2, CategoryName: "B"},
	}

	totals := ComputeTotals(items, DiscountModeOverall, 10, 18)

	assert.InDelta(t, 245.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 24.5, totals.DiscountAmount, 1e-9)
	assert.InDelta(t, 220.5, totals.TaxableAmount, 1e-9)
	assert.InDelta(t, 39.69, totals.Tax, 1e-9)
	assert.InDelta(t, 260.19, totals.GrandTotal, 1e-9)

	require.Len(t, totals.CategoryContributions, 2)
	assert.Equal(t, "A", totals.CategoryContributions[0].CategoryName)
	assert.InDelta(t, 200.0, totals.CategoryContributions[0].Total, 1e-9)
	assert.Equal(t, "B", totals.CategoryContributions[1].CategoryName)
	assert.InDelta(t, 45.0, totals.CategoryContributions[1].Total, 1e-9)
}

// Line discounts apply in every mode; LINE_ITEM mode merely skips the overall
// discount. This pins current behavior pending product-owner clarification.
func TestComputeTotalsLineItemModeIgnoresOverallDiscount(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, Rate: 100, DiscountPercent: 20, CategoryID: 1, CategoryName: "A"},
	}

	totals := ComputeTotals(items, DiscountModeLineItem, 50, 0)

	assert.InDelta(t, 80.0, totals.Subtotal, 1e-9)
	assert.Zero(t, totals.DiscountAmount)
	assert.InDelta(t, 80.0, totals.GrandTotal, 1e-9)
}

func TestComputeTotalsBothModeStacksDiscounts(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, Rate: 100, DiscountPercent: 10, CategoryID: 1, CategoryName: "A"},
	}

	totals := ComputeTotals(items, DiscountModeBoth, 10, 0)

	// 100 -> 90 after line discount -> 81 after overall discount.
	assert.InDelta(t, 90.0, totals.Subtotal, 1e-9)
	assert.InDelta(t, 9.0, totals.DiscountAmount, 1e-9)
	assert.InDelta(t, 81.0, totals.TaxableAmount, 1e-9)
	assert.InDelta(t, 81.0, totals.GrandTotal, 1e-9)
}

func TestComputeTotalsClampsExcessiveOverallDiscount(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, Rate: 100, CategoryID: 1, CategoryName: "A"},
	}

	totals := ComputeTotals(items, DiscountModeOverall, 150, 18)

	assert.Zero(t, totals.TaxableAmount)
	assert.Zero(t, totals.Tax)
	assert.Zero(t, totals.GrandTotal)
}

func TestComputeTotalsCategoryOrderIsFirstSeen(t *testing.T) {
	items := []LineItem{
		{Quantity: 1, Rate: 10, CategoryID: 7, CategoryName: "Lighting"},
		{Quantity: 1, Rate: 20, CategoryID: 3, CategoryName: "Wiring"},
		{Quantity: 1, Rate: 30, CategoryID: 7, CategoryName: "Lighting"},
	}

	totals := ComputeTotals(items, DiscountModeLineItem, 0, 0)

	require.Len(t, totals.CategoryContributions, 2)
	assert.Equal(t, int64(7), totals.CategoryContributions[0].CategoryID)
	assert.InDelta(t, 40.0, totals.CategoryContributions[0].Total, 1e-9)
	assert.Equal(t, int64(3), totals.CategoryContributions[1].CategoryID)
	assert.InDelta(t, 20.0, totals.CategoryContributions[1].Total, 1e-9)
}

func TestComputeTotalsIsDeterministic(t *testing.T) {
	items := []LineItem{
		{Quantity: 3, Rate: 19.99, DiscountPercent: 5, CategoryID: 1, CategoryName: "A"},
		{Quantity: 1.5, Rate: 7.25, CategoryID: 2, CategoryName: "B"},
	}

	first := ComputeTotals(items, DiscountModeBoth, 12.5, 18)
	second := ComputeTotals(items, DiscountModeBoth, 12.5, 18)

	assert.Equal(t, first, second)
}

func TestRound2HalfUp(t *testing.T) {
	assert.Equal(t, 0.13, Round2(0.125))
	assert.Equal(t, -0.13, Round2(-0.125))
	assert.Equal(t, 39.69, Round2(39.69))
	assert.Equal(t, 0.0, Round2(math.NaN()))
}

func TestDiscountModeValid(t *testing.T) {
	assert.True(t, DiscountModeLineItem.Valid())
	assert.True(t, DiscountModeOverall.Valid())
	assert.True(t, DiscountModeBoth.Valid())
	assert.False(t, DiscountMode("PERCENT").Valid())
	assert.False(t, DiscountMode("").Valid())
}
