package categories

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

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	items, total, err := s.repo.List(ctx, filters.Normalize())
	return items, total, errs.Infra("categories: list", err)
}

func (s *Service) Get(ctx context.Context, id int64) (Category, error) {
	if id <= 0 {
		return Category{}, errs.NewValidationError("id", "invalid category ID")
	}
	c, err := s.repo.Get(ctx, id)
	return c, errs.Infra("categories: get", err)
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	category = normalize(category)
	if err := s.validator.Struct(category); err != nil {
		return Category{}, err
	}
	c, err := s.repo.Create(ctx, category)
	return c, errs.Infra("categories: create", err)
}

func (s *Service) Update(ctx context.Context, id int64, category Category) error {
	if id <= 0 {
		return errs.NewValidationError("id", "invalid category ID")
	}
	category = normalize(category)
	if err := s.validator.Struct(category); err != nil {
		return err
	}
	return errs.Infra("categories: update", s.repo.Update(ctx, id, category))
}

// Delete removes the category; products referencing it keep existing without one.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errs.NewValidationError("id", "invalid category ID")
	}
	return errs.Infra("categories: delete", s.repo.Delete(ctx, id))
}

func normalize(c Category) Category {
	c.Name = strings.TrimSpace(c.Name)
	c.Description = strings.TrimSpace(c.Description)
	return c
}
