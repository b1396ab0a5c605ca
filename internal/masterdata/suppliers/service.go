package suppliers

import (
	"context"
	"strings"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/validation"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type Service struct {
	repo      Repository
	validator *validation.Validator
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New()}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	items, total, err := s.repo.List(ctx, filters.Normalize())
	return items, total, errs.Infra("suppliers: list", err)
}

func (s *Service) Get(ctx context.Context, id int64) (Supplier, error) {
	if id <= 0 {
		return Supplier{}, errs.NewValidationError("id", "invalid supplier ID")
	}
	supplier, err := s.repo.Get(ctx, id)
	return supplier, errs.Infra("suppliers: get", err)
}

func (s *Service) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	supplier = normalize(supplier)
	if err := s.validator.Struct(supplier); err != nil {
		return Supplier{}, err
	}
	created, err := s.repo.Create(ctx, supplier)
	return created, errs.Infra("suppliers: create", err)
}

func (s *Service) Update(ctx context.Context, id int64, supplier Supplier) error {
	if id <= 0 {
		return errs.NewValidationError("id", "invalid supplier ID")
	}
	supplier = normalize(supplier)
	if err := s.validator.Struct(supplier); err != nil {
		return err
	}
	return errs.Infra("suppliers: update", s.repo.Update(ctx, id, supplier))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errs.NewValidationError("id", "invalid supplier ID")
	}
	return errs.Infra("suppliers: delete", s.repo.Delete(ctx, id))
}

func normalize(s Supplier) Supplier {
	s.Name = strings.TrimSpace(s.Name)
	s.ContactPerson = strings.TrimSpace(s.ContactPerson)
	s.Phone = strings.TrimSpace(s.Phone)
	s.Email = strings.ToLower(strings.TrimSpace(s.Email))
	return s
}
