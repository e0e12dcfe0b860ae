package pos

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/catalog"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ItemLookup resolves catalog items for scans and manual picks.
type ItemLookup interface {
	LookupBarcode(ctx context.Context, code string) (catalog.Item, error)
	Get(ctx context.Context, id int64) (catalog.Item, error)
}

// InvoiceCreator persists the completed sale as a sales invoice.
type InvoiceCreator interface {
	Create(ctx context.Context, docType documents.DocType, req documents.CreateDocumentRequest, createdBy int64) (*documents.Document, error)
}

type Service struct {
	logger   *slog.Logger
	store    *Store
	held     *HeldStore
	items    ItemLookup
	invoices InvoiceCreator

	// walkInPartyID is the customer recorded on POS invoices when no customer
	// is attached to the sale.
	walkInPartyID int64
}

func NewService(logger *slog.Logger, store *Store, held *HeldStore, items ItemLookup, invoices InvoiceCreator, walkInPartyID int64) *Service {
	return &Service{
		logger:        logger,
		store:         store,
		held:          held,
		items:         items,
		invoices:      invoices,
		walkInPartyID: walkInPartyID,
	}
}

// Cart returns the current snapshot for a terminal.
func (s *Service) Cart(terminalID string) CartView {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()
	return cart.view()
}

// AddItemByBarcode resolves the scan first and only then touches the cart, so
// an unknown barcode leaves it exactly as it was.
func (s *Service) AddItemByBarcode(ctx context.Context, terminalID, barcode string, quantity float64) (CartView, error) {
	item, err := s.items.LookupBarcode(ctx, barcode)
	if err != nil {
		return CartView{}, err
	}
	return s.addItem(terminalID, item, quantity)
}

// AddItem adds by catalog item id, for the manual pick list.
func (s *Service) AddItem(ctx context.Context, terminalID string, itemID int64, quantity float64) (CartView, error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return CartView{}, err
	}
	return s.addItem(terminalID, item, quantity)
}

func (s *Service) addItem(terminalID string, item catalog.Item, quantity float64) (CartView, error) {
	if quantity <= 0 {
		quantity = 1
	}
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	err := cart.addLine(CartLine{
		ItemID:   item.ID,
		ItemName: item.Name,
		Barcode:  item.Barcode,
		Quantity: quantity,
		Rate:     item.Price,
	})
	if err != nil {
		return CartView{}, err
	}
	return cart.view(), nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(terminalID string, itemID int64, quantity float64) (CartView, error) {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if err := cart.setQuantity(itemID, quantity); err != nil {
		return CartView{}, err
	}
	return cart.view(), nil
}

func (s *Service) RemoveItem(terminalID string, itemID int64) (CartView, error) {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if err := cart.removeLine(itemID); err != nil {
		return CartView{}, err
	}
	return cart.view(), nil
}

// SetDiscount applies a cart-level discount. Clamping against the subtotal
// happens in the totals computation, not here.
func (s *Service) SetDiscount(terminalID string, discountType pricing.DiscountType, value float64) (CartView, error) {
	if discountType != pricing.DiscountAmount && discountType != pricing.DiscountPercent {
		return CartView{}, fmt.Errorf("pos: unknown discount type %q: %w", discountType, httpx.ErrValidation)
	}
	if value < 0 {
		return CartView{}, fmt.Errorf("pos: discount must not be negative: %w", httpx.ErrValidation)
	}

	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if cart.State == StateCheckoutInProgress {
		return CartView{}, fmt.Errorf("pos: cart is in checkout: %w", httpx.ErrConflict)
	}
	cart.DiscountType = discountType
	cart.DiscountValue = value
	return cart.view(), nil
}

// Void abandons the sale and starts over under a new transaction id.
func (s *Service) Void(terminalID string) CartView {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	cart.reset()
	return cart.view()
}

// Hold parks the cart in Redis and resets the terminal for the next customer.
func (s *Service) Hold(ctx context.Context, terminalID string) (string, error) {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if cart.State != StateActive {
		return "", fmt.Errorf("pos: only an active cart can be held: %w", httpx.ErrConflict)
	}

	holdID, err := s.held.Save(ctx, cart)
	if err != nil {
		return "", err
	}
	cart.reset()
	return holdID, nil
}

// Resume loads a held cart onto the terminal. The terminal's cart must be
// empty so a sale in progress is never silently discarded.
func (s *Service) Resume(ctx context.Context, terminalID, holdID string) (CartView, error) {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if cart.State != StateEmpty {
		return CartView{}, fmt.Errorf("pos: terminal has a sale in progress: %w", httpx.ErrConflict)
	}

	held, err := s.held.Take(ctx, holdID)
	if err != nil {
		return CartView{}, err
	}

	cart.TransactionID = held.TransactionID
	cart.Lines = held.Lines
	cart.DiscountType = held.DiscountType
	cart.DiscountValue = held.DiscountValue
	cart.TaxRate = held.TaxRate
	cart.State = StateActive
	if len(cart.Lines) == 0 {
		cart.State = StateEmpty
	}
	return cart.view(), nil
}

// BeginCheckout locks the cart for payment. An empty cart is rejected here
// without involving the document service at all.
func (s *Service) BeginCheckout(terminalID string) (CartView, error) {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if err := cart.beginCheckout(); err != nil {
		return CartView{}, err
	}
	return cart.view(), nil
}

// CancelCheckout returns the cart to ACTIVE with all lines intact.
func (s *Service) CancelCheckout(terminalID string) (CartView, error) {
	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if err := cart.cancelCheckout(); err != nil {
		return CartView{}, err
	}
	return cart.view(), nil
}

// CompleteCheckout validates the payment, writes the sales invoice and only
// then clears the cart. A failed save leaves the cart in CHECKOUT_IN_PROGRESS
// so the cashier can retry without re-ringing the sale.
func (s *Service) CompleteCheckout(ctx context.Context, terminalID string, payment Payment, cashierID int64) (*Receipt, error) {
	if err := shared.Validate(payment); err != nil {
		return nil, err
	}

	cart := s.store.Get(terminalID)
	cart.mu.Lock()
	defer cart.mu.Unlock()

	if cart.State != StateCheckoutInProgress {
		return nil, fmt.Errorf("pos: no checkout in progress: %w", httpx.ErrConflict)
	}

	totals := cart.totals()
	tendered := payment.AmountTendered
	change := 0.0
	switch payment.Method {
	case PayCash:
		if tendered+0.0001 < totals.TotalAmount {
			return nil, fmt.Errorf("pos: tendered %s is less than total %s: %w",
				pricing.FormatINR(tendered), pricing.FormatINR(totals.TotalAmount), httpx.ErrValidation)
		}
		change = tendered - totals.TotalAmount
	default:
		// Electronic payments settle the exact total.
		tendered = totals.TotalAmount
	}

	req := documents.CreateDocumentRequest{
		PartyID:       s.walkInPartyID,
		DocDate:       time.Now(),
		DiscountType:  string(cart.DiscountType),
		DiscountValue: cart.DiscountValue,
		TaxRate:       &cart.TaxRate,
		Lines:         make([]documents.CreateLineReq, 0, len(cart.Lines)),
	}
	for _, line := range cart.Lines {
		rate := line.Rate
		req.Lines = append(req.Lines, documents.CreateLineReq{
			ItemID:   line.ItemID,
			Quantity: line.Quantity,
			Rate:     &rate,
		})
	}

	invoice, err := s.invoices.Create(ctx, documents.TypeSalesInvoice, req, cashierID)
	if err != nil {
		s.logger.Error("pos checkout save failed",
			slog.Any("error", err),
			slog.String("terminal", terminalID),
			slog.String("transaction", cart.TransactionID))
		return nil, fmt.Errorf("save sale: %w", err)
	}

	receipt := &Receipt{
		TransactionID:  cart.TransactionID,
		InvoiceID:      invoice.ID,
		DocNumber:      invoice.DocNumber,
		Totals:         totals,
		Method:         payment.Method,
		AmountTendered: tendered,
		ChangeDue:      change,
	}

	s.logger.Info("pos sale completed",
		slog.String("terminal", terminalID),
		slog.String("doc_number", invoice.DocNumber),
		slog.String("total", pricing.FormatINR(totals.TotalAmount)))

	cart.reset()
	return receipt, nil
}
