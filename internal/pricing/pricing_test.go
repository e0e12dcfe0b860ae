package pricing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLineAmount(t *testing.T) {
	require.InDelta(t, 200.0, LineAmount(2, 100), 0.0001)
	require.InDelta(t, 12.5, LineAmount(2.5, 5), 0.0001)
	require.Zero(t, LineAmount(0, 100))
}

func TestLineAmountCoercesInvalidInput(t *testing.T) {
	require.Zero(t, LineAmount(math.NaN(), 100))
	require.Zero(t, LineAmount(2, math.Inf(1)))
	require.Zero(t, LineAmount(-3, 100))
	require.Zero(t, LineAmount(3, -100))
}

func TestComputeTotalsEmpty(t *testing.T) {
	totals := ComputeTotals(nil, 0, DiscountAmount, DefaultTaxRate)
	require.Zero(t, totals.Subtotal)
	require.Zero(t, totals.DiscountAmount)
	require.Zero(t, totals.TaxAmount)
	require.Zero(t, totals.TotalAmount)
}

func TestComputeTotalsScenario(t *testing.T) {
	// 2×100 + 1×250 + 5×20 = 550; flat discount 50 => 500; 18% tax => 90; total 590.
	items := []LineInput{
		{Quantity: 2, Rate: 100},
		{Quantity: 1, Rate: 250},
		{Quantity: 5, Rate: 20},
	}
	totals := ComputeTotals(items, 50, DiscountAmount, 18)
	require.InDelta(t, 550.0, totals.Subtotal, 0.0001)
	require.InDelta(t, 50.0, totals.DiscountAmount, 0.0001)
	require.InDelta(t, 90.0, totals.TaxAmount, 0.0001)
	require.InDelta(t, 590.0, totals.TotalAmount, 0.0001)
}

func TestPercentageEqualsFlatDiscount(t *testing.T) {
	items := []LineInput{
		{Quantity: 4, Rate: 150},
		{Quantity: 2, Rate: 200},
	}
	// subtotal 1000; 10% == flat 100
	byPercent := ComputeTotals(items, 10, DiscountPercent, 18)
	byAmount := ComputeTotals(items, 100, DiscountAmount, 18)
	require.Equal(t, byAmount, byPercent)
	require.InDelta(t, 100.0, byPercent.DiscountAmount, 0.0001)
	require.InDelta(t, 162.0, byPercent.TaxAmount, 0.0001)
	require.InDelta(t, 1062.0, byPercent.TotalAmount, 0.0001)
}

func TestDiscountExceedingSubtotalClampsToZero(t *testing.T) {
	items := []LineInput{{Quantity: 1, Rate: 100}}

	totals := ComputeTotals(items, 500, DiscountAmount, 18)
	require.InDelta(t, 100.0, totals.Subtotal, 0.0001)
	require.InDelta(t, 100.0, totals.DiscountAmount, 0.0001)
	require.Zero(t, totals.TaxAmount)
	require.Zero(t, totals.TotalAmount)

	totals = ComputeTotals(items, 250, DiscountPercent, 18)
	require.InDelta(t, 100.0, totals.DiscountAmount, 0.0001)
	require.Zero(t, totals.TotalAmount)
}

func TestRemovingLineShiftsSubtotalExactly(t *testing.T) {
	items := []LineInput{
		{Quantity: 3, Rate: 10.10},
		{Quantity: 7, Rate: 0.07},
		{Quantity: 1, Rate: 99.99},
	}
	full := ComputeTotals(items, 0, DiscountAmount, 0)
	removed := ComputeTotals(items[:2], 0, DiscountAmount, 0)
	require.InDelta(t, LineAmount(1, 99.99), full.Subtotal-removed.Subtotal, 1e-9)
}

func TestComputeTotalsIdempotent(t *testing.T) {
	items := []LineInput{
		{Quantity: 3.33, Rate: 9.99},
		{Quantity: 0.1, Rate: 0.2},
	}
	first := ComputeTotals(items, 7.5, DiscountPercent, 18)
	second := ComputeTotals(items, 7.5, DiscountPercent, 18)
	require.Equal(t, first, second)
}

func TestPartiallyFilledRowDoesNotCorruptTotals(t *testing.T) {
	items := []LineInput{
		{Quantity: 2, Rate: 100},
		{Quantity: math.NaN(), Rate: 50}, // row still being typed in
	}
	totals := ComputeTotals(items, 0, DiscountAmount, 18)
	require.InDelta(t, 200.0, totals.Subtotal, 0.0001)
	require.InDelta(t, 236.0, totals.TotalAmount, 0.0001)
}
