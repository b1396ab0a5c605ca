package products

import (
	"context"
	"strings"
	"time"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/validation"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type Service struct {
	repo      Repository
	validator *validation.Validator
	now       func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, validator: validation.New(), now: time.Now}
}

func (s *Service) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters.Search = strings.TrimSpace(filters.Search)
	items, total, err := s.repo.List(ctx, filters.Normalize())
	return items, total, errs.Infra("products: list", err)
}

// NewProducts lists products created within NewProductWindow, newest first.
func (s *Service) NewProducts(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	filters.CreatedSince = since(s.now())
	filters.SortBy = "created_date"
	filters.SortDir = "desc"
	return s.List(ctx, filters)
}

func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	if id <= 0 {
		return Product{}, errs.NewValidationError("id", "invalid product ID")
	}
	p, err := s.repo.Get(ctx, id)
	return p, errs.Infra("products: get", err)
}

func (s *Service) Create(ctx context.Context, form ProductForm) (Product, error) {
	form = normalize(form)
	if err := s.validator.Struct(form); err != nil {
		return Product{}, err
	}
	p, err := s.repo.Create(ctx, form)
	return p, errs.Infra("products: create", err)
}

func (s *Service) Update(ctx context.Context, id int64, form ProductForm) error {
	if id <= 0 {
		return errs.NewValidationError("id", "invalid product ID")
	}
	form = normalize(form)
	if err := s.validator.Struct(form); err != nil {
		return err
	}
	return errs.Infra("products: update", s.repo.Update(ctx, id, form))
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return errs.NewValidationError("id", "invalid product ID")
	}
	return errs.Infra("products: delete", s.repo.Delete(ctx, id))
}

func normalize(form ProductForm) ProductForm {
	form.Name = strings.TrimSpace(form.Name)
	form.Description = strings.TrimSpace(form.Description)
	form.Price = form.Price.Round(2)
	return form
}
