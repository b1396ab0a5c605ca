package products

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, form ProductForm) (Product, error)
	Update(ctx context.Context, id int64, form ProductForm) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const selectProducts = `SELECT p.id, p.name, p.category_id, COALESCE(c.name, ''), p.price, p.quantity, p.description, p.created_date
FROM products p
LEFT JOIN categories c ON c.id = p.category_id`

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Product, int, error) {
	var where shared.Where
	if filters.Search != "" {
		where.Add("(p.name ILIKE ? OR p.description ILIKE ?)", "%"+filters.Search+"%")
	}
	if filters.CategoryID != nil {
		where.Add("p.category_id = ?", *filters.CategoryID)
	}
	if filters.CreatedSince != nil {
		where.Add("p.created_date >= ?", *filters.CreatedSince)
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters)
	rows, err := r.pool.Query(ctx, selectProducts+where.SQL()+
		` ORDER BY `+sortOrder(filters.SortBy, filters.Direction())+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, p)
	}
	return products, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.pool.QueryRow(ctx, selectProducts+` WHERE p.id = $1`, id))
	if db.IsNoRows(err) {
		return Product{}, &errs.NotFoundError{Entity: "product", ID: id}
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, form ProductForm) (Product, error) {
	p := Product{
		Name:        form.Name,
		CategoryID:  form.CategoryID,
		Price:       form.Price,
		Quantity:    form.Quantity,
		Description: form.Description,
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (name, category_id, price, quantity, description)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_date`,
		form.Name, form.CategoryID, form.Price, form.Quantity, form.Description).Scan(&p.ID, &p.CreatedDate)
	if err != nil {
		return Product{}, mapError(err, form)
	}
	return p, nil
}

func (r *repository) Update(ctx context.Context, id int64, form ProductForm) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name = $1, category_id = $2, price = $3, quantity = $4, description = $5 WHERE id = $6`,
		form.Name, form.CategoryID, form.Price, form.Quantity, form.Description, id)
	if err != nil {
		return mapError(err, form)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if db.IsForeignKeyViolation(err, "supply_items_product_id_fkey") {
		return errs.NewValidationError("id", "product is referenced by supplies")
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "product", ID: id}
	}
	return nil
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.CategoryID, &p.CategoryName, &p.Price, &p.Quantity, &p.Description, &p.CreatedDate)
	return p, err
}

func mapError(err error, form ProductForm) error {
	if db.IsForeignKeyViolation(err, "products_category_id_fkey") {
		var id any
		if form.CategoryID != nil {
			id = *form.CategoryID
		}
		return &errs.NotFoundError{Entity: "category", ID: id}
	}
	return err
}

func sortOrder(sortBy, dir string) string {
	switch sortBy {
	case "price":
		return "p.price " + dir + ", p.id"
	case "quantity":
		return "p.quantity " + dir + ", p.id"
	case "created_date":
		return "p.created_date " + dir + ", p.id " + dir
	default:
		return "p.name " + dir + ", p.id"
	}
}

func since(now time.Time) *time.Time {
	t := now.Add(-NewProductWindow)
	return &t
}
