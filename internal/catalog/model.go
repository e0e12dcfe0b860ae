package catalog

import "time"

// Item is one catalog record selectable on document lines and scannable at the POS.
type Item struct {
	ID        int64     `json:"id"`
	Code      string    `json:"code"`
	Barcode   *string   `json:"barcode,omitempty"`
	Name      string    `json:"name"`
	Price     float64   `json:"price"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
