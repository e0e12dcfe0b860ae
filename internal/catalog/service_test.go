package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type memoryRepo struct {
	items       map[int64]Item
	byBarcode   map[string]int64
	nextID      int64
	barcodeHits atomic.Int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: make(map[int64]Item), byBarcode: make(map[string]int64)}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	var result []Item
	for _, item := range r.items {
		result = append(result, item)
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Item, error) {
	item, ok := r.items[id]
	if !ok {
		return Item{}, fmt.Errorf("catalog: item %d: %w", id, httpx.ErrNotFound)
	}
	return item, nil
}

func (r *memoryRepo) GetByBarcode(ctx context.Context, barcode string) (Item, error) {
	r.barcodeHits.Add(1)
	id, ok := r.byBarcode[barcode]
	if !ok {
		return Item{}, fmt.Errorf("catalog: barcode %s: %w", barcode, httpx.ErrNotFound)
	}
	return r.items[id], nil
}

func (r *memoryRepo) Create(ctx context.Context, item Item) (Item, error) {
	if item.Barcode != nil {
		if _, exists := r.byBarcode[*item.Barcode]; exists {
			return Item{}, fmt.Errorf("catalog: code or barcode already in use: %w", httpx.ErrDuplicate)
		}
	}
	r.nextID++
	item.ID = r.nextID
	r.items[item.ID] = item
	if item.Barcode != nil {
		r.byBarcode[*item.Barcode] = item.ID
	}
	return item, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, item Item) error {
	existing, ok := r.items[id]
	if !ok {
		return fmt.Errorf("catalog: item %d: %w", id, httpx.ErrNotFound)
	}
	if existing.Barcode != nil {
		delete(r.byBarcode, *existing.Barcode)
	}
	item.ID = id
	r.items[id] = item
	if item.Barcode != nil {
		r.byBarcode[*item.Barcode] = id
	}
	return nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	delete(r.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func TestCreateValidation(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.Create(context.Background(), ItemForm{Name: "No code"})
	require.Error(t, err)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), ItemForm{Code: "SKU-1", Name: "Pen", Price: -4})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateDuplicateBarcode(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, ItemForm{Code: "SKU-1", Name: "Pen", Price: 10, Barcode: strPtr("890100100001")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, ItemForm{Code: "SKU-2", Name: "Pencil", Price: 5, Barcode: strPtr("890100100001")})
	require.ErrorIs(t, err, httpx.ErrDuplicate)
}

func TestLookupBarcodeMiss(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)

	_, err := svc.LookupBarcode(context.Background(), "000000")
	require.ErrorIs(t, err, httpx.ErrNotFound)

	_, err = svc.LookupBarcode(context.Background(), "  ")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestBarcodeLookupCaching(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	lookup := NewBarcodeLookup(repo, client, 30*time.Second)
	svc := NewService(repo, lookup)
	ctx := context.Background()

	created, err := svc.Create(ctx, ItemForm{Code: "SKU-1", Name: "Pen", Price: 10, Barcode: strPtr("890100100001"), IsActive: true})
	require.NoError(t, err)

	first, err := svc.LookupBarcode(ctx, "890100100001")
	require.NoError(t, err)
	require.Equal(t, created.ID, first.ID)

	second, err := svc.LookupBarcode(ctx, "890100100001")
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Equal(t, int64(1), repo.barcodeHits.Load(), "second lookup should come from cache")
}

func TestUpdateInvalidatesBarcodeCache(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	lookup := NewBarcodeLookup(repo, client, 30*time.Second)
	svc := NewService(repo, lookup)
	ctx := context.Background()

	created, err := svc.Create(ctx, ItemForm{Code: "SKU-1", Name: "Pen", Price: 10, Barcode: strPtr("890100100001"), IsActive: true})
	require.NoError(t, err)

	_, err = svc.LookupBarcode(ctx, "890100100001")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, ItemForm{Code: "SKU-1", Name: "Pen", Price: 12, Barcode: strPtr("890100100001"), IsActive: true})
	require.NoError(t, err)

	updated, err := svc.LookupBarcode(ctx, "890100100001")
	require.NoError(t, err)
	require.InDelta(t, 12.0, updated.Price, 0.0001)
}

func TestUpdateInvalidatesReplacedBarcode(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemoryRepo()
	lookup := NewBarcodeLookup(repo, client, 30*time.Second)
	svc := NewService(repo, lookup)
	ctx := context.Background()

	created, err := svc.Create(ctx, ItemForm{Code: "SKU-1", Name: "Pen", Price: 10, Barcode: strPtr("890100100001"), IsActive: true})
	require.NoError(t, err)

	// Prime the cache with the original barcode.
	_, err = svc.LookupBarcode(ctx, "890100100001")
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, ItemForm{Code: "SKU-1", Name: "Pen", Price: 10, Barcode: strPtr("890100100002"), IsActive: true})
	require.NoError(t, err)

	_, err = svc.LookupBarcode(ctx, "890100100001")
	require.ErrorIs(t, err, httpx.ErrNotFound, "retired barcode must stop resolving")

	found, err := svc.LookupBarcode(ctx, "890100100002")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestLookupMissIsNotFatal(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	_, err := svc.LookupBarcode(context.Background(), "missing")
	require.True(t, errors.Is(err, httpx.ErrNotFound))
	require.Empty(t, repo.items)
}
