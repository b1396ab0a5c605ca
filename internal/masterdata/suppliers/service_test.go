package suppliers

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type memoryRepo struct {
	items   map[int64]Supplier
	nextID  int64
	updated []Supplier
}

func newMemoryRepo() *memoryRepo { return &memoryRepo{items: map[int64]Supplier{}} }

func (m *memoryRepo) List(_ context.Context, f shared.ListFilters) ([]Supplier, int, error) {
	if f.Search == "boom" {
		return nil, 0, errors.New("driver: bad connection")
	}
	var out []Supplier
	for _, s := range m.items {
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *memoryRepo) Get(_ context.Context, id int64) (Supplier, error) {
	s, ok := m.items[id]
	if !ok {
		return Supplier{}, &errs.NotFoundError{Entity: "supplier", ID: id}
	}
	return s, nil
}

func (m *memoryRepo) Create(_ context.Context, s Supplier) (Supplier, error) {
	for _, existing := range m.items {
		if existing.Name == s.Name {
			return Supplier{}, &errs.DuplicateError{Entity: "supplier", Field: "name", Value: s.Name}
		}
	}
	m.nextID++
	s.ID = m.nextID
	m.items[s.ID] = s
	return s, nil
}

func (m *memoryRepo) Update(_ context.Context, id int64, s Supplier) error {
	if _, ok := m.items[id]; !ok {
		return &errs.NotFoundError{Entity: "supplier", ID: id}
	}
	s.ID = id
	m.items[id] = s
	m.updated = append(m.updated, s)
	return nil
}

func (m *memoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return &errs.NotFoundError{Entity: "supplier", ID: id}
	}
	delete(m.items, id)
	return nil
}

func TestCreateValidatesContactDetails(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, err := svc.Create(context.Background(), Supplier{Name: "Acme", Phone: "call me", Email: "nope"})
	require.ErrorIs(t, err, errs.ErrValidation)

	var verr *errs.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "phone")
	require.Contains(t, verr.Fields, "email")
}

func TestCreateNormalizesInput(t *testing.T) {
	svc := NewService(newMemoryRepo())
	s, err := svc.Create(context.Background(), Supplier{
		Name:          " Acme ",
		ContactPerson: "Wile E. Coyote",
		Phone:         "+1 555 0100",
		Email:         " Orders@Acme.COM ",
	})
	require.NoError(t, err)
	require.Equal(t, "Acme", s.Name)
	require.Equal(t, "orders@acme.com", s.Email)
}

func TestCreateDuplicateName(t *testing.T) {
	svc := NewService(newMemoryRepo())
	ctx := context.Background()
	_, err := svc.Create(ctx, Supplier{Name: "Acme"})
	require.NoError(t, err)
	_, err = svc.Create(ctx, Supplier{Name: "Acme"})
	require.ErrorIs(t, err, errs.ErrDuplicate)
	require.NotErrorIs(t, err, errs.ErrDuplicateInvoice)
}

func TestUpdateMissingSupplier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo)
	require.ErrorIs(t, svc.Update(context.Background(), 7, Supplier{Name: "Ghost"}), errs.ErrNotFound)
	require.ErrorIs(t, svc.Update(context.Background(), -1, Supplier{Name: "Ghost"}), errs.ErrValidation)
	require.Empty(t, repo.updated)
}

func TestListClassifiesFailures(t *testing.T) {
	svc := NewService(newMemoryRepo())
	_, _, err := svc.List(context.Background(), shared.ListFilters{Search: " boom "})
	require.ErrorIs(t, err, errs.ErrInfrastructure)
}
