// Package parties holds the customer and supplier masters. Both share one
// schema and repository; documents validate that the referenced party kind
// matches the document side (sales vs purchasing).
package parties

import "time"

// Kind distinguishes customers from suppliers.
type Kind string

const (
	KindCustomer Kind = "CUSTOMER"
	KindSupplier Kind = "SUPPLIER"
)

// Party is one customer or supplier record.
type Party struct {
	ID        int64     `json:"id"`
	Kind      Kind      `json:"kind"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	Phone     *string   `json:"phone,omitempty"`
	Address   *string   `json:"address,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
