// Package pricing computes line amounts and document totals for quotations,
// orders, invoices and the POS cart. Every caller feeds its current lines and
// discount/tax configuration through ComputeTotals after each mutation; stored
// totals are never edited directly.
package pricing

import (
	"math"

	"github.com/shopspring/decimal"
)

// DiscountType selects how the document discount value is interpreted.
type DiscountType string

const (
	// DiscountAmount treats the discount value as a flat currency amount.
	DiscountAmount DiscountType = "amount"
	// DiscountPercent treats the discount value as a percentage of the subtotal.
	DiscountPercent DiscountType = "percentage"
)

// DefaultTaxRate is the regional default tax percentage applied when a
// document does not specify its own rate.
const DefaultTaxRate = 18.0

// LineInput is the pricing view of one document or cart line.
type LineInput struct {
	Quantity float64
	Rate     float64
}

// Totals aggregates the derived document amounts.
type Totals struct {
	Subtotal       float64 `json:"subtotal"`
	DiscountAmount float64 `json:"discount_amount"`
	TaxAmount      float64 `json:"tax_amount"`
	TotalAmount    float64 `json:"total_amount"`
}

var hundred = decimal.NewFromInt(100)

// LineAmount returns quantity × rate. Partially filled rows arrive with NaN or
// negative values from coerced form input; they count as zero instead of
// poisoning the document totals.
func LineAmount(quantity, rate float64) float64 {
	amount, _ := lineAmount(quantity, rate).Float64()
	return amount
}

// ComputeTotals derives subtotal, discount, tax and grand total from the
// current lines. The discount never pushes the taxable base below zero, and the
// reported discount amount is the applied (clamped) amount. The computation is
// a pure function of its inputs: calling it twice yields identical results.
func ComputeTotals(items []LineInput, discount float64, discountType DiscountType, taxRate float64) Totals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(lineAmount(item.Quantity, item.Rate))
	}

	discountAmount := sanitize(discount)
	if discountType == DiscountPercent {
		discountAmount = subtotal.Mul(sanitize(discount)).Div(hundred)
	}
	if discountAmount.GreaterThan(subtotal) {
		discountAmount = subtotal
	}

	discounted := subtotal.Sub(discountAmount)
	taxAmount := discounted.Mul(sanitize(taxRate)).Div(hundred)
	total := discounted.Add(taxAmount)

	return Totals{
		Subtotal:       toFloat(subtotal),
		DiscountAmount: toFloat(discountAmount),
		TaxAmount:      toFloat(taxAmount),
		TotalAmount:    toFloat(total),
	}
}

func lineAmount(quantity, rate float64) decimal.Decimal {
	return sanitize(quantity).Mul(sanitize(rate))
}

// sanitize coerces missing or malformed numeric input to zero. Quantities,
// rates, discounts and tax rates are all non-negative by contract.
func sanitize(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
