package finance

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Repository stores financial operations.
type Repository interface {
	ListRange(ctx context.Context, start, end time.Time) ([]Operation, error)
	Get(ctx context.Context, id int64) (Operation, error)
	Create(ctx context.Context, form OperationForm) (Operation, error)
	Update(ctx context.Context, id int64, form OperationForm) error
	Delete(ctx context.Context, id int64) error
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository returns the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const selectOperations = `SELECT o.id, o.operation_date, o.type, o.amount, o.description, o.recorded_by, COALESCE(u.full_name, '')
FROM financial_operations o
LEFT JOIN users u ON u.id = o.recorded_by`

// ListRange returns operations dated within [start, end], newest first.
func (r *pgRepository) ListRange(ctx context.Context, start, end time.Time) ([]Operation, error) {
	rows, err := r.pool.Query(ctx, selectOperations+`
WHERE o.operation_date BETWEEN $1 AND $2
ORDER BY o.operation_date DESC, o.id DESC`, Day(start), Day(end))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

func (r *pgRepository) Get(ctx context.Context, id int64) (Operation, error) {
	op, err := scanOperation(r.pool.QueryRow(ctx, selectOperations+` WHERE o.id = $1`, id))
	if db.IsNoRows(err) {
		return Operation{}, &shared.NotFoundError{Entity: "financial operation", ID: id}
	}
	return op, err
}

func (r *pgRepository) Create(ctx context.Context, form OperationForm) (Operation, error) {
	op := Operation{
		Date:        Day(form.Date),
		Type:        form.Type,
		Amount:      form.Amount,
		Description: form.Description,
		RecordedBy:  form.RecordedBy,
	}
	err := r.pool.QueryRow(ctx, `INSERT INTO financial_operations (operation_date, type, amount, description, recorded_by)
VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		op.Date, op.Type, op.Amount, op.Description, op.RecordedBy).Scan(&op.ID)
	if err != nil {
		return Operation{}, mapError(err, form)
	}
	return op, nil
}

func (r *pgRepository) Update(ctx context.Context, id int64, form OperationForm) error {
	tag, err := r.pool.Exec(ctx, `UPDATE financial_operations
SET operation_date = $1, type = $2, amount = $3, description = $4, recorded_by = $5
WHERE id = $6`, Day(form.Date), form.Type, form.Amount, form.Description, form.RecordedBy, id)
	if err != nil {
		return mapError(err, form)
	}
	if tag.RowsAffected() == 0 {
		return &shared.NotFoundError{Entity: "financial operation", ID: id}
	}
	return nil
}

func (r *pgRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM financial_operations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &shared.NotFoundError{Entity: "financial operation", ID: id}
	}
	return nil
}

func scanOperation(row pgx.Row) (Operation, error) {
	var op Operation
	err := row.Scan(&op.ID, &op.Date, &op.Type, &op.Amount, &op.Description, &op.RecordedBy, &op.RecordedByName)
	return op, err
}

func mapError(err error, form OperationForm) error {
	if db.IsForeignKeyViolation(err, "financial_operations_recorded_by_fkey") {
		return &shared.NotFoundError{Entity: "user", ID: form.RecordedBy}
	}
	return err
}
