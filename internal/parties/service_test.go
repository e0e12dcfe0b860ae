package parties

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
)

type memoryRepo struct {
	records map[int64]Party
	nextID  int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{records: make(map[int64]Party)}
}

func (r *memoryRepo) List(ctx context.Context, filters ListFilters) ([]Party, int, error) {
	var result []Party
	for _, party := range r.records {
		if party.Kind == filters.Kind {
			result = append(result, party)
		}
	}
	return result, len(result), nil
}

func (r *memoryRepo) Get(ctx context.Context, id int64) (Party, error) {
	party, ok := r.records[id]
	if !ok {
		return Party{}, fmt.Errorf("parties: party %d: %w", id, httpx.ErrNotFound)
	}
	return party, nil
}

func (r *memoryRepo) Create(ctx context.Context, party Party) (Party, error) {
	r.nextID++
	party.ID = r.nextID
	r.records[party.ID] = party
	return party, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, party Party) error {
	existing, ok := r.records[id]
	if !ok {
		return fmt.Errorf("parties: party %d: %w", id, httpx.ErrNotFound)
	}
	party.ID = id
	party.Kind = existing.Kind
	r.records[id] = party
	return nil
}

func TestCreateTrimsAndStores(t *testing.T) {
	svc := NewService(newMemoryRepo())

	party, err := svc.Create(context.Background(), KindCustomer, PartyForm{
		Code:     "  CUST-1 ",
		Name:     " Acme Traders ",
		IsActive: true,
	})
	require.NoError(t, err)
	require.Equal(t, "CUST-1", party.Code)
	require.Equal(t, "Acme Traders", party.Name)
	require.Equal(t, KindCustomer, party.Kind)
}

func TestCreateValidatesForm(t *testing.T) {
	svc := NewService(newMemoryRepo())

	_, err := svc.Create(context.Background(), KindCustomer, PartyForm{Name: "No Code"})
	require.ErrorIs(t, err, httpx.ErrValidation)

	bad := "not-an-email"
	_, err = svc.Create(context.Background(), KindCustomer, PartyForm{
		Code: "C-1", Name: "Bad Email", Email: &bad,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetEnforcesKind(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	customer, err := svc.Create(ctx, KindCustomer, PartyForm{Code: "C-1", Name: "Acme", IsActive: true})
	require.NoError(t, err)

	// A customer id requested through the supplier surface looks like a miss.
	_, err = svc.Get(ctx, KindSupplier, customer.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)

	got, err := svc.Get(ctx, KindCustomer, customer.ID)
	require.NoError(t, err)
	require.Equal(t, customer.ID, got.ID)
}

func TestUpdateKeepsKind(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	ctx := context.Background()

	supplier, err := svc.Create(ctx, KindSupplier, PartyForm{Code: "S-1", Name: "Bulk Supplies", IsActive: true})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, KindSupplier, supplier.ID, PartyForm{Code: "S-1", Name: "Bulk Supplies Pvt Ltd", IsActive: true})
	require.NoError(t, err)
	require.Equal(t, "Bulk Supplies Pvt Ltd", updated.Name)
	require.Equal(t, KindSupplier, updated.Kind)

	_, err = svc.Update(ctx, KindCustomer, supplier.ID, PartyForm{Code: "S-1", Name: "Wrong Surface"})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}
