package suppliers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error)
	Get(ctx context.Context, id int64) (Supplier, error)
	Create(ctx context.Context, supplier Supplier) (Supplier, error)
	Update(ctx context.Context, id int64, supplier Supplier) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const supplierColumns = `id, name, contact_person, phone, email`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	var where shared.Where
	if filters.Search != "" {
		where.Add("(name ILIKE ? OR contact_person ILIKE ?)", "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM suppliers`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters)
	rows, err := r.pool.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers`+where.SQL()+
		` ORDER BY `+sortOrder(filters.SortBy, filters.Direction())+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var suppliers []Supplier
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email); err != nil {
			return nil, 0, err
		}
		suppliers = append(suppliers, s)
	}
	return suppliers, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Supplier, error) {
	var s Supplier
	err := r.pool.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.ContactPerson, &s.Phone, &s.Email)
	if db.IsNoRows(err) {
		return Supplier{}, &errs.NotFoundError{Entity: "supplier", ID: id}
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, supplier Supplier) (Supplier, error) {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO suppliers (name, contact_person, phone, email) VALUES ($1, $2, $3, $4) RETURNING id`,
		supplier.Name, supplier.ContactPerson, supplier.Phone, supplier.Email).Scan(&supplier.ID)
	if err != nil {
		return Supplier{}, mapError(err, supplier)
	}
	return supplier, nil
}

func (r *repository) Update(ctx context.Context, id int64, supplier Supplier) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE suppliers SET name = $1, contact_person = $2, phone = $3, email = $4 WHERE id = $5`,
		supplier.Name, supplier.ContactPerson, supplier.Phone, supplier.Email, id)
	if err != nil {
		return mapError(err, supplier)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "supplier", ID: id}
	}
	return nil
}

// Delete removes the supplier. Existing supplies keep their rows with no supplier.
func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "supplier", ID: id}
	}
	return nil
}

func mapError(err error, supplier Supplier) error {
	if db.IsUniqueViolation(err, "suppliers_name_key") {
		return &errs.DuplicateError{Entity: "supplier", Field: "name", Value: supplier.Name}
	}
	return err
}

func sortOrder(sortBy, dir string) string {
	switch sortBy {
	case "contact_person":
		return "contact_person " + dir + ", id"
	case "id":
		return "id " + dir
	default:
		return "name " + dir
	}
}
