package legacy_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/productmanage/internal/legacy"
	"github.com/odyssey-erp/productmanage/internal/platform/db/dbtest"
)

func snapshot(t *testing.T) legacy.Snapshot {
	t.Helper()
	category := int64(3)
	supplier := int64(7)
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	snap, err := legacy.Prepare(legacy.Snapshot{
		Roles: []legacy.Role{{Code: "Admin", DisplayName: "Administrator"}},
		Users: []legacy.User{
			{ID: 10, Username: "admin", Password: "admin", FullName: "Admin", Role: "admin", IsActive: true, CreatedAt: day},
		},
		Categories: []legacy.Category{{ID: category, Name: "Tools"}},
		Suppliers:  []legacy.Supplier{{ID: supplier, Name: "Acme"}},
		Products: []legacy.Product{
			{ID: 20, Name: "Hammer", CategoryID: &category, Price: decimal.RequireFromString("12.50"), Quantity: 4, CreatedDate: day},
		},
		Supplies: []legacy.Supply{
			{ID: 30, SupplierID: &supplier, InvoiceNumber: "INV-1", DeliveryDate: day, Status: "Delivered",
				TotalAmount: decimal.RequireFromString("25.00"), CreatedBy: 10},
		},
		SupplyItems: []legacy.SupplyItem{
			{ID: 40, SupplyID: 30, ProductID: 20, Quantity: 2, UnitPrice: decimal.RequireFromString("12.50")},
		},
		Operations: []legacy.Operation{
			{ID: 50, Date: day, Type: "Expense", Amount: decimal.RequireFromString("25.00"), RecordedBy: 10},
		},
	}, bcrypt.MinCost)
	require.NoError(t, err)
	return snap
}

func TestImportKeepsIDsAndAdvancesSequences(t *testing.T) {
	pool := dbtest.Postgres(t)
	ctx := context.Background()

	stats, err := legacy.NewImporter(pool, nil).Import(ctx, snapshot(t))
	require.NoError(t, err)
	require.Equal(t, 1, stats["products"])
	require.Equal(t, 1, stats["supply_items"])

	var name, hash string
	require.NoError(t, pool.QueryRow(ctx, `SELECT name FROM products WHERE id = 20`).Scan(&name))
	require.Equal(t, "Hammer", name)
	require.NoError(t, pool.QueryRow(ctx, `SELECT password FROM users WHERE id = 10`).Scan(&hash))
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("admin")))

	var next int64
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO products (name, price) VALUES ('Saw', 3) RETURNING id`).Scan(&next))
	require.Equal(t, int64(21), next)
	require.Equal(t, 3, dbtest.Count(t, pool, "roles"))
}

func TestImportRefusesPopulatedTarget(t *testing.T) {
	pool := dbtest.Postgres(t)
	dbtest.SeedBasics(t, pool)

	_, err := legacy.NewImporter(pool, nil).Import(context.Background(), snapshot(t))
	require.ErrorIs(t, err, legacy.ErrTargetNotEmpty)
	require.Equal(t, 0, dbtest.Count(t, pool, "products"))
}

func TestImportRollsBackOnConstraintFailure(t *testing.T) {
	pool := dbtest.Postgres(t)
	snap := snapshot(t)
	snap.SupplyItems[0].ProductID = 999

	_, err := legacy.NewImporter(pool, nil).Import(context.Background(), snap)
	require.Error(t, err)
	require.Equal(t, 0, dbtest.Count(t, pool, "users"))
}
