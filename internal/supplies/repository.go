package supplies

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/productmanage/internal/inventory"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// ErrSupplyNotFound indicates the supply row does not exist.
var ErrSupplyNotFound = errors.New("supplies: supply not found")

// TxRepository is the unit of work used by the coordinator. Stock operations run on
// the same transaction as the supply writes.
type TxRepository interface {
	inventory.TxRepository
	InsertSupply(ctx context.Context, header Header, total decimal.Decimal) (int64, error)
	InsertItems(ctx context.Context, supplyID int64, items []ItemInput) error
	GetStatusForUpdate(ctx context.Context, supplyID int64) (string, error)
	UpdateStatus(ctx context.Context, supplyID int64, status string) error
}

// RepositoryPort groups transactional and read access.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	Get(ctx context.Context, id int64) (Supply, error)
	List(ctx context.Context, filter ListFilter) ([]Supply, error)
	Delete(ctx context.Context, id int64) error
	InvoiceExists(ctx context.Context, invoice string) (bool, error)
}

// Repository stores supplies in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// WithTx runs fn inside one transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepository{TxRepository: inventory.NewTxRepository(tx), tx: tx})
	})
}

const selectSupplies = `SELECT s.id, s.supplier_id, COALESCE(sup.name, ''), s.invoice_number, s.delivery_date,
       s.status, s.total_amount, s.created_by, COALESCE(u.full_name, '')
FROM supplies s
LEFT JOIN suppliers sup ON sup.id = s.supplier_id
LEFT JOIN users u ON u.id = s.created_by`

// Get loads a supply with supplier and creator names and its items.
func (r *Repository) Get(ctx context.Context, id int64) (Supply, error) {
	s, err := scanSupply(r.pool.QueryRow(ctx, selectSupplies+` WHERE s.id = $1`, id))
	if db.IsNoRows(err) {
		return Supply{}, &shared.NotFoundError{Entity: "supply", ID: id}
	}
	if err != nil {
		return Supply{}, err
	}

	rows, err := r.pool.Query(ctx, `SELECT i.id, i.supply_id, i.product_id, COALESCE(p.name, ''), i.quantity, i.unit_price
FROM supply_items i
LEFT JOIN products p ON p.id = i.product_id
WHERE i.supply_id = $1
ORDER BY i.id`, id)
	if err != nil {
		return Supply{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var item Item
		if err := rows.Scan(&item.ID, &item.SupplyID, &item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return Supply{}, err
		}
		item.TotalPrice = item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		s.Items = append(s.Items, item)
	}
	return s, rows.Err()
}

// List returns supply headers ordered by delivery date, newest first.
func (r *Repository) List(ctx context.Context, filter ListFilter) ([]Supply, error) {
	query := selectSupplies + ` WHERE 1=1`
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += ` AND s.status = $` + strconv.Itoa(len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		query += ` AND s.delivery_date >= $` + strconv.Itoa(len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		query += ` AND s.delivery_date <= $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY s.delivery_date DESC, s.id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Supply
	for rows.Next() {
		s, err := scanSupply(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the supply and its items. Stock levels are left as they are.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM supplies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &shared.NotFoundError{Entity: "supply", ID: id}
	}
	return nil
}

// InvoiceExists reports whether a supply already uses invoice.
func (r *Repository) InvoiceExists(ctx context.Context, invoice string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM supplies WHERE invoice_number = $1)`, invoice).Scan(&exists)
	return exists, err
}

type txRepository struct {
	inventory.TxRepository
	tx pgx.Tx
}

func (r *txRepository) InsertSupply(ctx context.Context, header Header, total decimal.Decimal) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx, `INSERT INTO supplies (supplier_id, invoice_number, delivery_date, status, total_amount, created_by)
VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		header.SupplierID, header.InvoiceNumber, dateOnly(header.DeliveryDate), header.Status, total, header.CreatedBy).Scan(&id)
	if err != nil {
		return 0, mapHeaderError(err, header)
	}
	return id, nil
}

// InsertItems sends every line in one batch; the first failing line aborts the rest.
func (r *txRepository) InsertItems(ctx context.Context, supplyID int64, items []ItemInput) error {
	batch := &pgx.Batch{}
	for _, item := range items {
		batch.Queue(`INSERT INTO supply_items (supply_id, product_id, quantity, unit_price) VALUES ($1, $2, $3, $4)`,
			supplyID, item.ProductID, item.Quantity, item.UnitPrice)
	}
	results := r.tx.SendBatch(ctx, batch)
	for i, item := range items {
		if _, err := results.Exec(); err != nil {
			_ = results.Close()
			return mapItemError(err, i, item)
		}
	}
	return results.Close()
}

func (r *txRepository) GetStatusForUpdate(ctx context.Context, supplyID int64) (string, error) {
	var status string
	err := r.tx.QueryRow(ctx, `SELECT status FROM supplies WHERE id = $1 FOR UPDATE`, supplyID).Scan(&status)
	if db.IsNoRows(err) {
		return "", ErrSupplyNotFound
	}
	return status, err
}

func (r *txRepository) UpdateStatus(ctx context.Context, supplyID int64, status string) error {
	tag, err := r.tx.Exec(ctx, `UPDATE supplies SET status = $1 WHERE id = $2`, status, supplyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSupplyNotFound
	}
	return nil
}

func mapHeaderError(err error, header Header) error {
	name, ok := db.ConstraintError(err, db.CodeUniqueViolation, db.CodeForeignKeyViolation, db.CodeCheckViolation)
	if !ok {
		return err
	}
	switch name {
	case "supplies_invoice_number_key":
		return &shared.DuplicateError{Entity: "supply", Field: "invoice_number", Value: header.InvoiceNumber}
	case "supplies_supplier_id_fkey":
		var id any
		if header.SupplierID != nil {
			id = *header.SupplierID
		}
		return &shared.NotFoundError{Entity: "supplier", ID: id}
	case "supplies_created_by_fkey":
		return &shared.NotFoundError{Entity: "user", ID: header.CreatedBy}
	case "supplies_status_check":
		return shared.NewValidationError("status", "must be one of: pending delivered cancelled")
	case "supplies_total_amount_check":
		return shared.NewValidationError("total_amount", "must not be negative")
	}
	return err
}

func mapItemError(err error, index int, item ItemInput) error {
	switch {
	case db.IsForeignKeyViolation(err, "supply_items_product_id_fkey"):
		return &shared.NotFoundError{Entity: "product", ID: item.ProductID}
	case db.IsCheckViolation(err, "supply_items_unit_price_check"):
		return shared.NewValidationError("items["+strconv.Itoa(index)+"].unit_price", "must be greater than 0")
	case db.IsCheckViolation(err, "supply_items_quantity_check"):
		return shared.NewValidationError("items["+strconv.Itoa(index)+"].quantity", "must be at least 1")
	}
	return err
}

func scanSupply(row pgx.Row) (Supply, error) {
	var s Supply
	err := row.Scan(&s.ID, &s.SupplierID, &s.SupplierName, &s.InvoiceNumber, &s.DeliveryDate,
		&s.Status, &s.TotalAmount, &s.CreatedBy, &s.CreatedByName)
	return s, err
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
