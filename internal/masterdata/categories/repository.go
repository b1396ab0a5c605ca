package categories

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type Repository interface {
	List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error)
	Get(ctx context.Context, id int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, id int64, category Category) error
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	var where shared.Where
	if filters.Search != "" {
		where.Add("name ILIKE ?", "%"+filters.Search+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM categories`+where.SQL(), where.Args()...).Scan(&total); err != nil {
		return nil, 0, err
	}

	page, args := where.Page(filters)
	rows, err := r.pool.Query(ctx, `SELECT id, name, description FROM categories`+where.SQL()+
		` ORDER BY name `+filters.Direction()+page, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description); err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *repository) Get(ctx context.Context, id int64) (Category, error) {
	var c Category
	err := r.pool.QueryRow(ctx, `SELECT id, name, description FROM categories WHERE id = $1`, id).
		Scan(&c.ID, &c.Name, &c.Description)
	if db.IsNoRows(err) {
		return Category{}, &errs.NotFoundError{Entity: "category", ID: id}
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (name, description) VALUES ($1, $2) RETURNING id`,
		category.Name, category.Description).Scan(&category.ID)
	if err != nil {
		return Category{}, mapError(err, category)
	}
	return category, nil
}

func (r *repository) Update(ctx context.Context, id int64, category Category) error {
	tag, err := r.pool.Exec(ctx, `UPDATE categories SET name = $1, description = $2 WHERE id = $3`,
		category.Name, category.Description, id)
	if err != nil {
		return mapError(err, category)
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "category", ID: id}
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &errs.NotFoundError{Entity: "category", ID: id}
	}
	return nil
}

func mapError(err error, category Category) error {
	if db.IsUniqueViolation(err, "categories_name_key") {
		return &errs.DuplicateError{Entity: "category", Field: "name", Value: category.Name}
	}
	return err
}
