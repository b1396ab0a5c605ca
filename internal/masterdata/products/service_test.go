package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type memoryRepo struct {
	lastFilters shared.ListFilters
	created     []ProductForm
}

func (m *memoryRepo) List(_ context.Context, f shared.ListFilters) ([]Product, int, error) {
	m.lastFilters = f
	return nil, 0, nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Product, error) {
	return Product{}, &errs.NotFoundError{Entity: "product", ID: id}
}

func (m *memoryRepo) Create(_ context.Context, form ProductForm) (Product, error) {
	m.created = append(m.created, form)
	return Product{ID: int64(len(m.created)), Name: form.Name, Price: form.Price, Quantity: form.Quantity}, nil
}

func (m *memoryRepo) Update(context.Context, int64, ProductForm) error {
	return errors.New("update not expected")
}

func (m *memoryRepo) Delete(context.Context, int64) error { return nil }

func TestCreateValidatesProductFields(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)

	_, err := svc.Create(context.Background(), ProductForm{
		Name:     "",
		Price:    decimal.Zero,
		Quantity: -1,
	})
	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "price")
	require.Contains(t, verr.Fields, "quantity")
	require.Empty(t, repo.created)
}

func TestCreateRoundsPrice(t *testing.T) {
	repo := &memoryRepo{}
	p, err := NewService(repo).Create(context.Background(), ProductForm{
		Name:  " Widget ",
		Price: decimal.RequireFromString("4.999"),
	})
	require.NoError(t, err)
	require.Equal(t, "Widget", p.Name)
	require.Equal(t, "5", p.Price.String())
}

func TestNewProductsUsesThirtyDayWindow(t *testing.T) {
	repo := &memoryRepo{}
	svc := NewService(repo)
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	_, _, err := svc.NewProducts(context.Background(), shared.ListFilters{Search: "bolt"})
	require.NoError(t, err)
	require.NotNil(t, repo.lastFilters.CreatedSince)
	require.Equal(t, time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), *repo.lastFilters.CreatedSince)
	require.Equal(t, "created_date", repo.lastFilters.SortBy)
	require.Equal(t, "DESC", repo.lastFilters.Direction())
	require.Equal(t, "bolt", repo.lastFilters.Search)
}

func TestGetMissingProduct(t *testing.T) {
	_, err := NewService(&memoryRepo{}).Get(context.Background(), 3)
	require.ErrorIs(t, err, errs.ErrNotFound)
}
