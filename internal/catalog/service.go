package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type Service struct {
	repo   Repository
	lookup *BarcodeLookup
}

func NewService(repo Repository, lookup *BarcodeLookup) *Service {
	return &Service{repo: repo, lookup: lookup}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Item, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("catalog: invalid item id: %w", httpx.ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// LookupBarcode resolves a scanned barcode to an active item. A miss is
// reported as not-found and must not mutate any caller state.
func (s *Service) LookupBarcode(ctx context.Context, barcode string) (Item, error) {
	barcode = strings.TrimSpace(barcode)
	if barcode == "" {
		return Item{}, fmt.Errorf("catalog: empty barcode: %w", httpx.ErrValidation)
	}
	if s.lookup != nil {
		return s.lookup.Get(ctx, barcode)
	}
	return s.repo.GetByBarcode(ctx, barcode)
}

func (s *Service) Create(ctx context.Context, form ItemForm) (Item, error) {
	if err := shared.Validate(form); err != nil {
		return Item{}, err
	}
	return s.repo.Create(ctx, itemFromForm(form))
}

func (s *Service) Update(ctx context.Context, id int64, form ItemForm) (Item, error) {
	if id <= 0 {
		return Item{}, fmt.Errorf("catalog: invalid item id: %w", httpx.ErrValidation)
	}
	if err := shared.Validate(form); err != nil {
		return Item{}, err
	}
	existing, err := s.repo.Get(ctx, id)
	if err != nil {
		return Item{}, err
	}
	item := itemFromForm(form)
	if err := s.repo.Update(ctx, id, item); err != nil {
		return Item{}, err
	}
	if s.lookup != nil {
		// A replaced barcode must stop resolving immediately, so both the
		// previous and the new code are dropped from the cache.
		s.lookup.Invalidate(ctx, existing.Barcode)
		s.lookup.Invalidate(ctx, item.Barcode)
	}
	return s.repo.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("catalog: invalid item id: %w", httpx.ErrValidation)
	}
	item, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	if s.lookup != nil {
		s.lookup.Invalidate(ctx, item.Barcode)
	}
	return nil
}

func itemFromForm(form ItemForm) Item {
	item := Item{
		Code:     strings.TrimSpace(form.Code),
		Name:     strings.TrimSpace(form.Name),
		Price:    form.Price,
		IsActive: form.IsActive,
	}
	if form.Barcode != nil {
		barcode := strings.TrimSpace(*form.Barcode)
		if barcode != "" {
			item.Barcode = &barcode
		}
	}
	return item
}
