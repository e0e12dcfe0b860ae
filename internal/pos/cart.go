package pos

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

// Cart is the server-owned cart for one terminal. All mutations go through the
// service, which serializes them per cart.
type Cart struct {
	mu sync.Mutex

	TransactionID string               `json:"transaction_id"`
	TerminalID    string               `json:"terminal_id"`
	State         CartState            `json:"state"`
	Lines         []CartLine           `json:"lines"`
	DiscountType  pricing.DiscountType `json:"discount_type"`
	DiscountValue float64              `json:"discount_value"`
	TaxRate       float64              `json:"tax_rate"`
}

func newCart(terminalID string) *Cart {
	return &Cart{
		TransactionID: uuid.NewString(),
		TerminalID:    terminalID,
		State:         StateEmpty,
		DiscountType:  pricing.DiscountAmount,
		TaxRate:       pricing.DefaultTaxRate,
	}
}

// addLine merges quantity into an existing line for the same item or appends a
// new one. First line moves the cart to ACTIVE.
func (c *Cart) addLine(line CartLine) error {
	if c.State == StateCheckoutInProgress {
		return fmt.Errorf("pos: cart is in checkout: %w", httpx.ErrConflict)
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID == line.ItemID {
			c.Lines[i].Quantity += line.Quantity
			c.Lines[i].Amount = pricing.LineAmount(c.Lines[i].Quantity, c.Lines[i].Rate)
			return nil
		}
	}
	line.Amount = pricing.LineAmount(line.Quantity, line.Rate)
	c.Lines = append(c.Lines, line)
	c.State = StateActive
	return nil
}

// setQuantity updates a line; a quantity of zero or less removes it. Removing
// the last line collapses the cart back to EMPTY.
func (c *Cart) setQuantity(itemID int64, quantity float64) error {
	if c.State == StateCheckoutInProgress {
		return fmt.Errorf("pos: cart is in checkout: %w", httpx.ErrConflict)
	}
	for i := range c.Lines {
		if c.Lines[i].ItemID != itemID {
			continue
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		} else {
			c.Lines[i].Quantity = quantity
			c.Lines[i].Amount = pricing.LineAmount(quantity, c.Lines[i].Rate)
		}
		if len(c.Lines) == 0 {
			c.State = StateEmpty
		}
		return nil
	}
	return fmt.Errorf("pos: item %d is not in the cart: %w", itemID, httpx.ErrNotFound)
}

func (c *Cart) removeLine(itemID int64) error {
	return c.setQuantity(itemID, 0)
}

// reset clears the cart under a fresh transaction id.
func (c *Cart) reset() {
	c.TransactionID = uuid.NewString()
	c.State = StateEmpty
	c.Lines = nil
	c.DiscountType = pricing.DiscountAmount
	c.DiscountValue = 0
	c.TaxRate = pricing.DefaultTaxRate
}

func (c *Cart) beginCheckout() error {
	switch c.State {
	case StateEmpty:
		return fmt.Errorf("pos: cannot check out an empty cart: %w", httpx.ErrValidation)
	case StateCheckoutInProgress:
		return fmt.Errorf("pos: checkout already in progress: %w", httpx.ErrConflict)
	}
	c.State = StateCheckoutInProgress
	return nil
}

func (c *Cart) cancelCheckout() error {
	if c.State != StateCheckoutInProgress {
		return fmt.Errorf("pos: no checkout in progress: %w", httpx.ErrConflict)
	}
	c.State = StateActive
	return nil
}

// totals recomputes from current lines; nothing cached.
func (c *Cart) totals() pricing.Totals {
	inputs := make([]pricing.LineInput, 0, len(c.Lines))
	for _, line := range c.Lines {
		inputs = append(inputs, pricing.LineInput{Quantity: line.Quantity, Rate: line.Rate})
	}
	return pricing.ComputeTotals(inputs, c.DiscountValue, c.DiscountType, c.TaxRate)
}

func (c *Cart) view() CartView {
	lines := append([]CartLine(nil), c.Lines...)
	return CartView{
		TransactionID: c.TransactionID,
		TerminalID:    c.TerminalID,
		State:         c.State,
		Lines:         lines,
		DiscountType:  c.DiscountType,
		DiscountValue: c.DiscountValue,
		TaxRate:       c.TaxRate,
		Totals:        c.totals(),
	}
}
