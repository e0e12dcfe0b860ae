package pos

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/catalog"
	"github.com/meridian-erp/meridian-erp/internal/documents"
	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/pricing"
)

type fakeItems struct {
	byID      map[int64]catalog.Item
	byBarcode map[string]catalog.Item
}

func (f *fakeItems) Get(ctx context.Context, id int64) (catalog.Item, error) {
	item, ok := f.byID[id]
	if !ok {
		return catalog.Item{}, fmt.Errorf("catalog: item %d: %w", id, httpx.ErrNotFound)
	}
	return item, nil
}

func (f *fakeItems) LookupBarcode(ctx context.Context, code string) (catalog.Item, error) {
	item, ok := f.byBarcode[code]
	if !ok {
		return catalog.Item{}, fmt.Errorf("catalog: barcode %q: %w", code, httpx.ErrNotFound)
	}
	return item, nil
}

type fakeInvoices struct {
	calls   int
	fail    bool
	lastReq documents.CreateDocumentRequest
}

func (f *fakeInvoices) Create(ctx context.Context, docType documents.DocType, req documents.CreateDocumentRequest, createdBy int64) (*documents.Document, error) {
	f.calls++
	f.lastReq = req
	if f.fail {
		return nil, fmt.Errorf("documents: create: connection refused")
	}
	return &documents.Document{ID: 101, DocNumber: "SINV-2608-0042", Type: docType}, nil
}

func strPtr(s string) *string { return &s }

func newTestService(t *testing.T) (*Service, *fakeInvoices) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	items := &fakeItems{
		byID: map[int64]catalog.Item{
			10: {ID: 10, Name: "Ball Pen", Price: 100, Barcode: strPtr("890100")},
			11: {ID: 11, Name: "Notepad", Price: 250},
		},
		byBarcode: map[string]catalog.Item{
			"890100": {ID: 10, Name: "Ball Pen", Price: 100, Barcode: strPtr("890100")},
		},
	}
	invoices := &fakeInvoices{}
	svc := NewService(
		slog.New(slog.DiscardHandler),
		NewStore(),
		NewHeldStore(client, time.Hour),
		items, invoices, 1,
	)
	return svc, invoices
}

func TestFirstAddActivatesCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	require.Equal(t, StateEmpty, svc.Cart("till-1").State)

	view, err := svc.AddItemByBarcode(ctx, "till-1", "890100", 2)
	require.NoError(t, err)
	require.Equal(t, StateActive, view.State)
	require.Len(t, view.Lines, 1)
	require.InDelta(t, 200.0, view.Lines[0].Amount, 0.0001)
}

func TestAddMergesQuantity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 1)
	require.NoError(t, err)
	view, err := svc.AddItemByBarcode(ctx, "till-1", "890100", 2)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	require.InDelta(t, 3.0, view.Lines[0].Quantity, 0.0001)
	require.InDelta(t, 300.0, view.Lines[0].Amount, 0.0001)
}

func TestBarcodeMissLeavesCartUntouched(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 1)
	require.NoError(t, err)
	before := svc.Cart("till-1")

	_, err = svc.AddItemByBarcode(ctx, "till-1", "no-such-code", 1)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	after := svc.Cart("till-1")
	require.Equal(t, before, after)
}

func TestZeroQuantityRemovesLine(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2)
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "till-1", 11, 1)
	require.NoError(t, err)

	view, err := svc.UpdateQuantity("till-1", 10, 0)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, int64(11), view.Lines[0].ItemID)
	require.Equal(t, StateActive, view.State)
}

func TestRemovingLastLineEmptiesCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 1)
	require.NoError(t, err)

	view, err := svc.RemoveItem("till-1", 10)
	require.NoError(t, err)
	require.Equal(t, StateEmpty, view.State)
	require.Empty(t, view.Lines)
}

func TestSummaryRecomputedFromLines(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2) // 200
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, "till-1", 11, 1) // 250
	require.NoError(t, err)

	view, err := svc.SetDiscount("till-1", pricing.DiscountAmount, 50)
	require.NoError(t, err)
	require.InDelta(t, 450.0, view.Totals.Subtotal, 0.0001)
	require.InDelta(t, 50.0, view.Totals.DiscountAmount, 0.0001)
	require.InDelta(t, 72.0, view.Totals.TaxAmount, 0.0001)
	require.InDelta(t, 472.0, view.Totals.TotalAmount, 0.0001)
}

func TestEmptyCartCheckoutRejectedLocally(t *testing.T) {
	svc, invoices := newTestService(t)

	_, err := svc.BeginCheckout("till-1")
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, invoices.calls, "empty cart must never reach the document service")
	require.Equal(t, StateEmpty, svc.Cart("till-1").State)
}

func TestCancelCheckoutKeepsCart(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2)
	require.NoError(t, err)

	view, err := svc.BeginCheckout("till-1")
	require.NoError(t, err)
	require.Equal(t, StateCheckoutInProgress, view.State)

	_, err = svc.AddItem(ctx, "till-1", 11, 1)
	require.ErrorIs(t, err, httpx.ErrConflict, "cart locked during checkout")

	view, err = svc.CancelCheckout("till-1")
	require.NoError(t, err)
	require.Equal(t, StateActive, view.State)
	require.Len(t, view.Lines, 1)
}

func TestCompleteCheckoutCash(t *testing.T) {
	svc, invoices := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2) // total 236.00 with 18% tax
	require.NoError(t, err)
	before := svc.Cart("till-1")

	_, err = svc.BeginCheckout("till-1")
	require.NoError(t, err)

	receipt, err := svc.CompleteCheckout(ctx, "till-1", Payment{Method: PayCash, AmountTendered: 250}, 7)
	require.NoError(t, err)
	require.Equal(t, 1, invoices.calls)
	require.Equal(t, "SINV-2608-0042", receipt.DocNumber)
	require.InDelta(t, 236.0, receipt.Totals.TotalAmount, 0.0001)
	require.InDelta(t, 14.0, receipt.ChangeDue, 0.0001)
	require.Equal(t, before.TransactionID, receipt.TransactionID)

	// Invoice lines carry the cart's rates explicitly.
	require.Len(t, invoices.lastReq.Lines, 1)
	require.NotNil(t, invoices.lastReq.Lines[0].Rate)
	require.InDelta(t, 100.0, *invoices.lastReq.Lines[0].Rate, 0.0001)

	after := svc.Cart("till-1")
	require.Equal(t, StateEmpty, after.State)
	require.NotEqual(t, before.TransactionID, after.TransactionID, "completed sale gets a fresh transaction id")
}

func TestCompleteCheckoutInsufficientCash(t *testing.T) {
	svc, invoices := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2)
	require.NoError(t, err)
	_, err = svc.BeginCheckout("till-1")
	require.NoError(t, err)

	_, err = svc.CompleteCheckout(ctx, "till-1", Payment{Method: PayCash, AmountTendered: 100}, 7)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Zero(t, invoices.calls, "short payment must not create an invoice")
	require.Equal(t, StateCheckoutInProgress, svc.Cart("till-1").State)
}

func TestCompleteCheckoutSaveFailureKeepsCart(t *testing.T) {
	svc, invoices := newTestService(t)
	invoices.fail = true
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2)
	require.NoError(t, err)
	_, err = svc.BeginCheckout("till-1")
	require.NoError(t, err)

	_, err = svc.CompleteCheckout(ctx, "till-1", Payment{Method: PayCash, AmountTendered: 500}, 7)
	require.Error(t, err)

	view := svc.Cart("till-1")
	require.Equal(t, StateCheckoutInProgress, view.State, "failed save leaves the checkout open for retry")
	require.Len(t, view.Lines, 1)

	invoices.fail = false
	receipt, err := svc.CompleteCheckout(ctx, "till-1", Payment{Method: PayCash, AmountTendered: 500}, 7)
	require.NoError(t, err)
	require.NotNil(t, receipt)
	require.Equal(t, StateEmpty, svc.Cart("till-1").State)
}

func TestVoidResetsTransactionID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 1)
	require.NoError(t, err)
	before := svc.Cart("till-1")

	view := svc.Void("till-1")
	require.Equal(t, StateEmpty, view.State)
	require.Empty(t, view.Lines)
	require.NotEqual(t, before.TransactionID, view.TransactionID)
}

func TestHoldAndResume(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 2)
	require.NoError(t, err)
	held := svc.Cart("till-1")

	holdID, err := svc.Hold(ctx, "till-1")
	require.NoError(t, err)
	require.Equal(t, StateEmpty, svc.Cart("till-1").State, "terminal freed for the next customer")

	// Resume on another terminal.
	view, err := svc.Resume(ctx, "till-2", holdID)
	require.NoError(t, err)
	require.Equal(t, StateActive, view.State)
	require.Equal(t, held.TransactionID, view.TransactionID)
	require.Len(t, view.Lines, 1)

	_, err = svc.Resume(ctx, "till-1", holdID)
	require.ErrorIs(t, err, httpx.ErrNotFound, "a hold can only be resumed once")
}

func TestResumeRejectedOnBusyTerminal(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "till-1", 10, 1)
	require.NoError(t, err)
	holdID, err := svc.Hold(ctx, "till-1")
	require.NoError(t, err)

	_, err = svc.AddItem(ctx, "till-1", 11, 1)
	require.NoError(t, err)

	_, err = svc.Resume(ctx, "till-1", holdID)
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestHoldRequiresActiveCart(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Hold(context.Background(), "till-1")
	require.ErrorIs(t, err, httpx.ErrConflict)
}
