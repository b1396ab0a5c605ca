// Package dbtest starts a throwaway PostgreSQL container with the schema applied.
package dbtest

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
)

const image = "postgres:16-alpine"

// Postgres returns a migrated pool backed by a fresh container. The test is skipped
// under -short or when no container runtime is reachable.
func Postgres(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("postgres container skipped in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx, image,
		tcpostgres.WithDatabase("productmanage_test"),
		tcpostgres.WithUsername("productmanage"),
		tcpostgres.WithPassword("productmanage"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := db.New(ctx, dsn, db.PoolOptions{MaxConns: 16})
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	migrator, err := db.NewMigrator(pool, logger)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	return pool
}

// Seed holds ids created by SeedBasics.
type Seed struct {
	AdminID    int64
	SupplierID int64
	CategoryID int64
}

// SeedBasics inserts an admin user, a supplier named Acme and a category.
func SeedBasics(t *testing.T, pool *pgxpool.Pool) Seed {
	t.Helper()
	ctx := context.Background()
	var seed Seed
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO users (username, password, full_name, role) VALUES ('admin', 'x', 'Administrator', 'admin') RETURNING id`).
		Scan(&seed.AdminID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, contact_person) VALUES ('Acme', 'Wile E.') RETURNING id`).
		Scan(&seed.SupplierID))
	require.NoError(t, pool.QueryRow(ctx,
		`INSERT INTO categories (name) VALUES ('Hardware') RETURNING id`).
		Scan(&seed.CategoryID))
	return seed
}

// InsertProduct inserts a product with the given quantity and price.
func InsertProduct(t *testing.T, pool *pgxpool.Pool, name string, quantity int, price string) int64 {
	t.Helper()
	var id int64
	require.NoError(t, pool.QueryRow(context.Background(),
		`INSERT INTO products (name, price, quantity) VALUES ($1, $2::numeric, $3) RETURNING id`, name, price, quantity).
		Scan(&id))
	return id
}

// Quantity reads a product quantity directly.
func Quantity(t *testing.T, pool *pgxpool.Pool, productID int64) int {
	t.Helper()
	var qty int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&qty))
	return qty
}

// Count returns SELECT COUNT(*) for table.
func Count(t *testing.T, pool *pgxpool.Pool, table string) int {
	t.Helper()
	var n int
	require.NoError(t, pool.QueryRow(context.Background(), `SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}
