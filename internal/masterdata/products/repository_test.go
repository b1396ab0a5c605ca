package products_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/productmanage/internal/masterdata/products"
	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/db/dbtest"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
	_ "github.com/odyssey-erp/productmanage/testing"
)

func TestPostgresProductLifecycle(t *testing.T) {
	pool := dbtest.Postgres(t)
	seed := dbtest.SeedBasics(t, pool)
	svc := products.NewService(products.NewRepository(pool))
	ctx := context.Background()

	created, err := svc.Create(ctx, products.ProductForm{
		Name:        "Hex bolt",
		CategoryID:  &seed.CategoryID,
		Price:       decimal.RequireFromString("0.35"),
		Quantity:    100,
		Description: "M8 zinc plated",
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Hardware", got.CategoryName)
	require.True(t, got.Price.Equal(decimal.RequireFromString("0.35")))

	items, total, err := svc.List(ctx, shared.ListFilters{Search: "zinc"})
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Equal(t, created.ID, items[0].ID)

	fresh, _, err := svc.NewProducts(ctx, shared.ListFilters{})
	require.NoError(t, err)
	require.Len(t, fresh, 1)

	_, err = pool.Exec(ctx, `UPDATE products SET created_date = NOW() - INTERVAL '31 days' WHERE id = $1`, created.ID)
	require.NoError(t, err)
	fresh, _, err = svc.NewProducts(ctx, shared.ListFilters{})
	require.NoError(t, err)
	require.Empty(t, fresh)
}

func TestPostgresProductUnknownCategory(t *testing.T) {
	pool := dbtest.Postgres(t)
	svc := products.NewService(products.NewRepository(pool))
	missing := int64(404)

	_, err := svc.Create(context.Background(), products.ProductForm{
		Name:       "Orphan",
		CategoryID: &missing,
		Price:      decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, errs.ErrNotFound)
}

func TestPostgresProductReferencedBySupplyCannotBeDeleted(t *testing.T) {
	pool := dbtest.Postgres(t)
	seed := dbtest.SeedBasics(t, pool)
	productID := dbtest.InsertProduct(t, pool, "Widget", 1, "2.00")
	ctx := context.Background()

	var supplyID int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO supplies (supplier_id, invoice_number, delivery_date, created_by)
		 VALUES ($1, 'INV-REF', CURRENT_DATE, $2) RETURNING id`, seed.SupplierID, seed.AdminID).Scan(&supplyID))
	_, err := pool.Exec(ctx,
		`INSERT INTO supply_items (supply_id, product_id, quantity, unit_price) VALUES ($1, $2, 1, 2.00)`, supplyID, productID)
	require.NoError(t, err)

	svc := products.NewService(products.NewRepository(pool))
	require.ErrorIs(t, svc.Delete(ctx, productID), errs.ErrValidation)
	require.Equal(t, 1, dbtest.Count(t, pool, "products"))
}
