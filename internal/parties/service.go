package parties

import (
	"context"
	"fmt"
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/platform/httpx"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filters ListFilters) ([]Party, int, error) {
	return s.repo.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, kind Kind, id int64) (Party, error) {
	if id <= 0 {
		return Party{}, fmt.Errorf("parties: invalid id: %w", httpx.ErrValidation)
	}
	party, err := s.repo.Get(ctx, id)
	if err != nil {
		return Party{}, err
	}
	if party.Kind != kind {
		return Party{}, fmt.Errorf("parties: party %d is not a %s: %w", id, strings.ToLower(string(kind)), httpx.ErrNotFound)
	}
	return party, nil
}

func (s *Service) Create(ctx context.Context, kind Kind, form PartyForm) (Party, error) {
	if err := shared.Validate(form); err != nil {
		return Party{}, err
	}
	return s.repo.Create(ctx, partyFromForm(kind, form))
}

func (s *Service) Update(ctx context.Context, kind Kind, id int64, form PartyForm) (Party, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return Party{}, err
	}
	if err := shared.Validate(form); err != nil {
		return Party{}, err
	}
	if err := s.repo.Update(ctx, id, partyFromForm(kind, form)); err != nil {
		return Party{}, err
	}
	return s.repo.Get(ctx, id)
}

func partyFromForm(kind Kind, form PartyForm) Party {
	return Party{
		Kind:     kind,
		Code:     strings.TrimSpace(form.Code),
		Name:     strings.TrimSpace(form.Name),
		Email:    form.Email,
		Phone:    form.Phone,
		Address:  form.Address,
		IsActive: form.IsActive,
	}
}
