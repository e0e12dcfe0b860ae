package documents

import "time"

// CreateLineReq is one requested line. Rate is optional: when omitted the
// catalog price is used (0 when the item has none); when present it wins, so a
// client that wants to keep a manually edited rate across an item change must
// resend it explicitly.
type CreateLineReq struct {
	ItemID   int64    `json:"item_id" validate:"required,gt=0"`
	Quantity float64  `json:"quantity" validate:"gte=0"`
	Rate     *float64 `json:"rate,omitempty" validate:"omitempty,gte=0"`
}

// CreateDocumentRequest creates a document of the handler's type. Totals are
// never accepted from the wire; they are recomputed from lines and the
// discount/tax configuration.
type CreateDocumentRequest struct {
	PartyID       int64           `json:"party_id" validate:"required,gt=0"`
	DocDate       time.Time       `json:"doc_date" validate:"required"`
	DiscountType  string          `json:"discount_type,omitempty" validate:"omitempty,oneof=amount percentage"`
	DiscountValue float64         `json:"discount_value" validate:"gte=0"`
	TaxRate       *float64        `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes         *string         `json:"notes,omitempty"`
	Lines         []CreateLineReq `json:"lines" validate:"required,min=1,dive"`
}

// UpdateDocumentRequest patches a DRAFT document. Providing Lines replaces the
// whole line set.
type UpdateDocumentRequest struct {
	DocDate       *time.Time       `json:"doc_date,omitempty"`
	DiscountType  *string          `json:"discount_type,omitempty" validate:"omitempty,oneof=amount percentage"`
	DiscountValue *float64         `json:"discount_value,omitempty" validate:"omitempty,gte=0"`
	TaxRate       *float64         `json:"tax_rate,omitempty" validate:"omitempty,gte=0,lte=100"`
	Notes         *string          `json:"notes,omitempty"`
	Lines         *[]CreateLineReq `json:"lines,omitempty" validate:"omitempty,min=1,dive"`
}

// ListDocumentsRequest filters a document listing.
type ListDocumentsRequest struct {
	Type     DocType
	PartyID  *int64
	Status   *Status
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PerPage  int
}
