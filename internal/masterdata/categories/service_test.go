package categories

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type memoryRepo struct {
	items  map[int64]Category
	nextID int64
	fail   error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{items: map[int64]Category{}}
}

func (m *memoryRepo) List(context.Context, shared.ListFilters) ([]Category, int, error) {
	if m.fail != nil {
		return nil, 0, m.fail
	}
	out := make([]Category, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Category, error) {
	c, ok := m.items[id]
	if !ok {
		return Category{}, &errs.NotFoundError{Entity: "category", ID: id}
	}
	return c, nil
}

func (m *memoryRepo) Create(_ context.Context, c Category) (Category, error) {
	for _, existing := range m.items {
		if existing.Name == c.Name {
			return Category{}, &errs.DuplicateError{Entity: "category", Field: "name", Value: c.Name}
		}
	}
	m.nextID++
	c.ID = m.nextID
	m.items[c.ID] = c
	return c, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, c Category) error {
	if _, ok := m.items[id]; !ok {
		return &errs.NotFoundError{Entity: "category", ID: id}
	}
	c.ID = id
	m.items[id] = c
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return &errs.NotFoundError{Entity: "category", ID: id}
	}
	delete(m.items, id)
	return nil
}

func TestCreateTrimsAndStores(t *testing.T) {
	svc := NewService(newMemoryRepo())
	c, err := svc.Create(context.Background(), Category{Name: "  Hardware "})
	require.NoError(t, err)
	require.Equal(t, int64(1), c.ID)
	require.Equal(t, "Hardware", c.Name)
}

func TestCreateRejectsBlankAndDuplicateNames(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Create(ctx, Category{Name: "   "})
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = svc.Create(ctx, Category{Name: "Tools"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Category{Name: "Tools"})
	require.ErrorIs(t, err, errs.ErrDuplicate)
}

func TestGetAndDeleteMissing(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()

	_, err := svc.Get(ctx, 0)
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = svc.Get(ctx, 42)
	require.ErrorIs(t, err, errs.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, 42), errs.ErrNotFound)
}

func TestListWrapsStorageFailures(t *testing.T) {
	repo := newMemoryRepo()
	repo.fail = errors.New("connection reset")
	_, _, err := NewService(repo).List(context.Background(), shared.ListFilters{})
	require.ErrorIs(t, err, errs.ErrInfrastructure)
}
