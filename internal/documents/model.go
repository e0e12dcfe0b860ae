// Package documents implements the quotation, order and invoice engine. The
// source system repeated the same form logic for every document type; here a
// single DocType-parameterised module owns persistence and totals so the five
// surfaces cannot drift apart.
package documents

import (
	"time"

	"github.com/meridian-erp/meridian-erp/internal/parties"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

// DocType identifies one of the five document surfaces.
type DocType string

const (
	TypeQuotation       DocType = "QUOTATION"
	TypeSalesOrder      DocType = "SALES_ORDER"
	TypeSalesInvoice    DocType = "SALES_INVOICE"
	TypePurchaseOrder   DocType = "PURCHASE_ORDER"
	TypePurchaseInvoice DocType = "PURCHASE_INVOICE"
)

// Prefix returns the doc number prefix for the type.
func (t DocType) Prefix() string {
	switch t {
	case TypeQuotation:
		return "QTN"
	case TypeSalesOrder:
		return "SO"
	case TypeSalesInvoice:
		return "SINV"
	case TypePurchaseOrder:
		return "PO"
	case TypePurchaseInvoice:
		return "PINV"
	}
	return "DOC"
}

// PartyKind returns which party master the type references.
func (t DocType) PartyKind() parties.Kind {
	switch t {
	case TypePurchaseOrder, TypePurchaseInvoice:
		return parties.KindSupplier
	default:
		return parties.KindCustomer
	}
}

// Valid reports whether t is a known document type.
func (t DocType) Valid() bool {
	switch t {
	case TypeQuotation, TypeSalesOrder, TypeSalesInvoice, TypePurchaseOrder, TypePurchaseInvoice:
		return true
	}
	return false
}

// Status is the document lifecycle state.
type Status string

const (
	StatusDraft     Status = "DRAFT"
	StatusSubmitted Status = "SUBMITTED"
	StatusCancelled Status = "CANCELLED"
)

// Document is one quotation, order or invoice with its derived totals.
type Document struct {
	ID                 int64                `json:"id"`
	DocNumber          string               `json:"doc_number"`
	Type               DocType              `json:"type"`
	PartyID            int64                `json:"party_id"`
	PartyName          string               `json:"party_name,omitempty"`
	DocDate            time.Time            `json:"doc_date"`
	Status             Status               `json:"status"`
	DiscountType       pricing.DiscountType `json:"discount_type"`
	DiscountValue      float64              `json:"discount_value"`
	Subtotal           float64              `json:"subtotal"`
	DiscountAmount     float64              `json:"discount_amount"`
	TaxRate            float64              `json:"tax_rate"`
	TaxAmount          float64              `json:"tax_amount"`
	TotalAmount        float64              `json:"total_amount"`
	Notes              *string              `json:"notes,omitempty"`
	CreatedBy          int64                `json:"created_by"`
	CancelledBy        *int64               `json:"cancelled_by,omitempty"`
	CancelledAt        *time.Time           `json:"cancelled_at,omitempty"`
	CancellationReason *string              `json:"cancellation_reason,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
	UpdatedAt          time.Time            `json:"updated_at"`
	Lines              []Line               `json:"lines,omitempty"`
}

// Line is one document row. Amount is always derived from quantity × rate by
// the pricing package; it is written to the wire for the backend's convenience
// but never read back as authoritative.
type Line struct {
	ID         int64   `json:"id"`
	DocumentID int64   `json:"document_id"`
	ItemID     int64   `json:"item_id"`
	ItemName   string  `json:"item_name"`
	Quantity   float64 `json:"quantity"`
	Rate       float64 `json:"rate"`
	Amount     float64 `json:"amount"`
	LineOrder  int     `json:"line_order"`
}

// lineInputs adapts document lines for the totals calculator.
func lineInputs(lines []Line) []pricing.LineInput {
	inputs := make([]pricing.LineInput, 0, len(lines))
	for _, line := range lines {
		inputs = append(inputs, pricing.LineInput{Quantity: line.Quantity, Rate: line.Rate})
	}
	return inputs
}
