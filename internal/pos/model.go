package pos

import (
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

// CartState tracks where a terminal's cart sits in the sale flow.
type CartState string

const (
	StateEmpty              CartState = "EMPTY"
	StateActive             CartState = "ACTIVE"
	StateCheckoutInProgress CartState = "CHECKOUT_IN_PROGRESS"
)

// CartLine is one scanned or picked item. Amount is derived from quantity and
// rate and refreshed on every mutation.
type CartLine struct {
	ItemID   int64   `json:"item_id"`
	ItemName string  `json:"item_name"`
	Barcode  *string `json:"barcode,omitempty"`
	Quantity float64 `json:"quantity"`
	Rate     float64 `json:"rate"`
	Amount   float64 `json:"amount"`
}

// PaymentMethod is how the sale is settled.
type PaymentMethod string

const (
	PayCash PaymentMethod = "cash"
	PayCard PaymentMethod = "card"
	PayUPI  PaymentMethod = "upi"
)

// Payment captures the settlement of a checkout.
type Payment struct {
	Method         PaymentMethod `json:"method" validate:"required,oneof=cash card upi"`
	AmountTendered float64       `json:"amount_tendered" validate:"gte=0"`
}

// Receipt is returned after a completed checkout.
type Receipt struct {
	TransactionID  string         `json:"transaction_id"`
	InvoiceID      int64          `json:"invoice_id"`
	DocNumber      string         `json:"doc_number"`
	Totals         pricing.Totals `json:"totals"`
	Method         PaymentMethod  `json:"method"`
	AmountTendered float64        `json:"amount_tendered"`
	ChangeDue      float64        `json:"change_due"`
}

// CartView is the wire snapshot of a cart: lines plus totals recomputed from
// them on every read.
type CartView struct {
	TransactionID string               `json:"transaction_id"`
	TerminalID    string               `json:"terminal_id"`
	State         CartState            `json:"state"`
	Lines         []CartLine           `json:"lines"`
	DiscountType  pricing.DiscountType `json:"discount_type"`
	DiscountValue float64              `json:"discount_value"`
	TaxRate       float64              `json:"tax_rate"`
	Totals        pricing.Totals       `json:"totals"`
}
