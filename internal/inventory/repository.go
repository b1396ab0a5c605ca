package inventory

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
)

// ErrProductNotFound indicates the product row does not exist.
var ErrProductNotFound = errors.New("inventory: product not found")

// TxRepository exposes the stock operations that must run inside one transaction.
type TxRepository interface {
	// GetQuantityForUpdate reads the quantity and locks the product row until commit.
	GetQuantityForUpdate(ctx context.Context, productID int64) (int, error)
	SetQuantity(ctx context.Context, productID int64, quantity int) error
}

// RepositoryPort opens units of work for the ledger.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
}

// Repository persists stock levels in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx executes the callback inside a transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil || r.pool == nil {
		return errors.New("inventory repository not initialised")
	}
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, NewTxRepository(tx))
	})
}

// NewTxRepository binds the stock statements to an open transaction so other
// modules can adjust stock inside their own unit of work.
func NewTxRepository(tx pgx.Tx) TxRepository {
	return &txRepository{tx: tx}
}

type txRepository struct {
	tx pgx.Tx
}

func (r *txRepository) GetQuantityForUpdate(ctx context.Context, productID int64) (int, error) {
	var qty int
	err := r.tx.QueryRow(ctx, `SELECT quantity FROM products WHERE id = $1 FOR UPDATE`, productID).Scan(&qty)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, ErrProductNotFound
		}
		return 0, err
	}
	return qty, nil
}

func (r *txRepository) SetQuantity(ctx context.Context, productID int64, quantity int) error {
	tag, err := r.tx.Exec(ctx, `UPDATE products SET quantity = $2 WHERE id = $1`, productID, quantity)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

var _ RepositoryPort = (*Repository)(nil)
