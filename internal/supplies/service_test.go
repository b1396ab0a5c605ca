package supplies

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/inventory"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// memoryStore commits a transaction's writes only when the callback succeeds.
type memoryStore struct {
	mu         sync.Mutex
	quantities map[int64]int
	suppliers  map[int64]bool
	supplies   map[int64]Supply
	nextID     int64
	txCount    int
}

type memoryTx struct {
	store      *memoryStore
	quantities map[int64]int
	supplies   map[int64]Supply
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		quantities: map[int64]int{},
		suppliers:  map[int64]bool{},
		supplies:   map[int64]Supply{},
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++
	tx := &memoryTx{store: m, quantities: map[int64]int{}, supplies: map[int64]Supply{}}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	for id, qty := range tx.quantities {
		m.quantities[id] = qty
	}
	for id, s := range tx.supplies {
		m.supplies[id] = s
	}
	return nil
}

func (m *memoryStore) Get(_ context.Context, id int64) (Supply, error) {
	s, ok := m.supplies[id]
	if !ok {
		return Supply{}, &shared.NotFoundError{Entity: "supply", ID: id}
	}
	return s, nil
}

func (m *memoryStore) List(context.Context, ListFilter) ([]Supply, error) { return nil, nil }

func (m *memoryStore) Delete(_ context.Context, id int64) error {
	delete(m.supplies, id)
	return nil
}

func (m *memoryStore) InvoiceExists(_ context.Context, invoice string) (bool, error) {
	for _, s := range m.supplies {
		if s.InvoiceNumber == invoice {
			return true, nil
		}
	}
	return false, nil
}

func (tx *memoryTx) GetQuantityForUpdate(_ context.Context, productID int64) (int, error) {
	if qty, ok := tx.quantities[productID]; ok {
		return qty, nil
	}
	qty, ok := tx.store.quantities[productID]
	if !ok {
		return 0, inventory.ErrProductNotFound
	}
	return qty, nil
}

func (tx *memoryTx) SetQuantity(_ context.Context, productID int64, quantity int) error {
	tx.quantities[productID] = quantity
	return nil
}

func (tx *memoryTx) InsertSupply(ctx context.Context, header Header, total decimal.Decimal) (int64, error) {
	if exists, _ := tx.store.InvoiceExists(ctx, header.InvoiceNumber); exists {
		return 0, &shared.DuplicateError{Entity: "supply", Field: "invoice_number", Value: header.InvoiceNumber}
	}
	if header.SupplierID != nil && !tx.store.suppliers[*header.SupplierID] {
		return 0, &shared.NotFoundError{Entity: "supplier", ID: *header.SupplierID}
	}
	tx.store.nextID++
	id := tx.store.nextID
	tx.supplies[id] = Supply{
		ID:            id,
		SupplierID:    header.SupplierID,
		InvoiceNumber: header.InvoiceNumber,
		DeliveryDate:  header.DeliveryDate,
		Status:        header.Status,
		TotalAmount:   total,
		CreatedBy:     header.CreatedBy,
	}
	return id, nil
}

func (tx *memoryTx) InsertItems(_ context.Context, supplyID int64, items []ItemInput) error {
	s := tx.supplies[supplyID]
	for _, item := range items {
		if _, ok := tx.store.quantities[item.ProductID]; !ok {
			return &shared.NotFoundError{Entity: "product", ID: item.ProductID}
		}
		s.Items = append(s.Items, Item{
			SupplyID:   supplyID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.LineTotal(),
		})
	}
	tx.supplies[supplyID] = s
	return nil
}

func (tx *memoryTx) GetStatusForUpdate(_ context.Context, supplyID int64) (string, error) {
	if s, ok := tx.supplies[supplyID]; ok {
		return s.Status, nil
	}
	s, ok := tx.store.supplies[supplyID]
	if !ok {
		return "", ErrSupplyNotFound
	}
	return s.Status, nil
}

func (tx *memoryTx) UpdateStatus(_ context.Context, supplyID int64, status string) error {
	s, ok := tx.store.supplies[supplyID]
	if !ok {
		return ErrSupplyNotFound
	}
	s.Status = status
	tx.supplies[supplyID] = s
	return nil
}

type supplyCounter struct{ created int }

func (c *supplyCounter) SupplyCreated() { c.created++ }

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func header(invoice string, supplierID int64) Header {
	return Header{
		SupplierID:    &supplierID,
		InvoiceNumber: invoice,
		DeliveryDate:  time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC),
		CreatedBy:     1,
	}
}

func TestCreateSupplyReceivesStock(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[100] = 10
	counter := &supplyCounter{}
	svc := NewService(store, nil, counter)

	id, err := svc.CreateSupply(context.Background(), header("INV-1", 7), []ItemInput{
		{ProductID: 100, Quantity: 4, UnitPrice: price("5.00")},
	})
	require.NoError(t, err)

	supply := store.supplies[id]
	require.Equal(t, StatusPending, supply.Status)
	require.Equal(t, "20.00", supply.TotalAmount.StringFixed(2))
	require.Len(t, supply.Items, 1)
	require.Equal(t, 14, store.quantities[100])
	require.Equal(t, 1, counter.created)
}

func TestCreateSupplyFoldsRepeatedProducts(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[1] = 0
	store.quantities[2] = 5
	svc := NewService(store, nil, nil)

	id, err := svc.CreateSupply(context.Background(), header("INV-2", 7), []ItemInput{
		{ProductID: 2, Quantity: 1, UnitPrice: price("1.10")},
		{ProductID: 1, Quantity: 3, UnitPrice: price("2.00")},
		{ProductID: 2, Quantity: 2, UnitPrice: price("1.20")},
	})
	require.NoError(t, err)
	require.Equal(t, 3, store.quantities[1])
	require.Equal(t, 8, store.quantities[2])
	require.Equal(t, "9.50", store.supplies[id].TotalAmount.StringFixed(2))
}

func TestCreateSupplyIsAtomic(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[1] = 1
	store.quantities[2] = 2
	store.quantities[4] = 4
	svc := NewService(store, nil, nil)

	_, err := svc.CreateSupply(context.Background(), header("INV-3", 7), []ItemInput{
		{ProductID: 1, Quantity: 1, UnitPrice: price("1")},
		{ProductID: 2, Quantity: 1, UnitPrice: price("1")},
		{ProductID: 3, Quantity: 1, UnitPrice: price("1")},
		{ProductID: 4, Quantity: 1, UnitPrice: price("1")},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Empty(t, store.supplies)
	require.Equal(t, map[int64]int{1: 1, 2: 2, 4: 4}, store.quantities)
}

func TestCreateSupplyValidation(t *testing.T) {
	store := newMemoryStore()
	svc := NewService(store, nil, nil)

	_, err := svc.CreateSupply(context.Background(), header("INV-4", 7), nil)
	require.ErrorIs(t, err, shared.ErrValidation)

	_, err = svc.CreateSupply(context.Background(), Header{InvoiceNumber: "  "}, []ItemInput{
		{ProductID: 1, Quantity: 0, UnitPrice: decimal.Zero},
	})
	var verr *shared.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Contains(t, verr.Fields, "invoice_number")
	require.Contains(t, verr.Fields, "delivery_date")
	require.Contains(t, verr.Fields, "created_by")
	require.Contains(t, verr.Fields, "items[0].quantity")
	require.Contains(t, verr.Fields, "items[0].unit_price")

	require.Zero(t, store.txCount)
}

func TestCreateSupplyDuplicateInvoice(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[1] = 0
	svc := NewService(store, nil, nil)
	items := []ItemInput{{ProductID: 1, Quantity: 2, UnitPrice: price("3")}}

	_, err := svc.CreateSupply(context.Background(), header("INV-5", 7), items)
	require.NoError(t, err)
	_, err = svc.CreateSupply(context.Background(), header("INV-5", 7), items)
	require.ErrorIs(t, err, shared.ErrDuplicateInvoice)
	require.Equal(t, 2, store.quantities[1])
}

func TestCreateSupplyUnknownSupplier(t *testing.T) {
	store := newMemoryStore()
	store.quantities[1] = 0
	_, err := NewService(store, nil, nil).CreateSupply(context.Background(), header("INV-6", 99), []ItemInput{
		{ProductID: 1, Quantity: 1, UnitPrice: price("1")},
	})
	require.ErrorIs(t, err, shared.ErrNotFound)
	require.Equal(t, 0, store.quantities[1])
}

func TestRequestTransition(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[1] = 0
	svc := NewService(store, nil, nil)
	ctx := context.Background()

	id, err := svc.CreateSupply(ctx, header("INV-7", 7), []ItemInput{{ProductID: 1, Quantity: 1, UnitPrice: price("1")}})
	require.NoError(t, err)

	require.NoError(t, svc.RequestTransition(ctx, id, "Delivered"))
	require.Equal(t, StatusDelivered, store.supplies[id].Status)

	require.ErrorIs(t, svc.RequestTransition(ctx, id, StatusCancelled), shared.ErrInvalidTransition)
	require.ErrorIs(t, svc.RequestTransition(ctx, id, StatusDelivered), shared.ErrNoChange)
	require.Equal(t, StatusDelivered, store.supplies[id].Status)

	require.ErrorIs(t, svc.RequestTransition(ctx, 404, StatusDelivered), shared.ErrNotFound)
}

func TestListRejectsInvertedRange(t *testing.T) {
	from := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)
	_, err := NewService(newMemoryStore(), nil, nil).List(context.Background(), ListFilter{From: &from, To: &to})
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestCreateSupplyRejectsFractionsOfACent(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[1] = 0
	svc := NewService(store, nil, nil)

	for _, raw := range []string{"0.004", "0.005", "1.999"} {
		_, err := svc.CreateSupply(context.Background(), header("INV-C", 7), []ItemInput{
			{ProductID: 1, Quantity: 3, UnitPrice: price(raw)},
		})
		var verr *shared.ValidationError
		require.True(t, errors.As(err, &verr), raw)
		require.Contains(t, verr.Fields, "items[0].unit_price", raw)
	}
	require.Zero(t, store.txCount)
	require.Equal(t, 0, store.quantities[1])
}

func TestTotalMatchesStoredLines(t *testing.T) {
	store := newMemoryStore()
	store.suppliers[7] = true
	store.quantities[1] = 0
	store.quantities[2] = 0
	svc := NewService(store, nil, nil)

	id, err := svc.CreateSupply(context.Background(), header("INV-T", 7), []ItemInput{
		{ProductID: 1, Quantity: 3, UnitPrice: price("0.01")},
		{ProductID: 2, Quantity: 7, UnitPrice: price("19.99")},
	})
	require.NoError(t, err)

	supply := store.supplies[id]
	sum := decimal.Zero
	for _, item := range supply.Items {
		sum = sum.Add(item.TotalPrice)
	}
	require.True(t, sum.Equal(supply.TotalAmount), "lines %s total %s", sum, supply.TotalAmount)
	require.Equal(t, "139.96", supply.TotalAmount.StringFixed(2))
}
