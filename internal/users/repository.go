package users

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// RepositoryPort defines data access for accounts.
type RepositoryPort interface {
	List(ctx context.Context, filter ListFilter) ([]User, error)
	Get(ctx context.Context, id int64) (User, error)
	FindByUsername(ctx context.Context, username string) (Credentials, error)
	Create(ctx context.Context, input CreateInput, passwordHash string) (User, error)
	Update(ctx context.Context, id int64, input UpdateInput) error
	SetActive(ctx context.Context, id int64, active bool) error
	SetPassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// Repository implements RepositoryPort on PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, username, full_name, role, is_active, created_at`

func (r *Repository) List(ctx context.Context, filter ListFilter) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users
WHERE ($1 = '' OR username ILIKE '%' || $1 || '%' OR full_name ILIKE '%' || $1 || '%')
  AND ($2 = '' OR role = $2)
  AND (NOT $3 OR is_active)
ORDER BY username`
	rows, err := r.pool.Query(ctx, query, filter.Search, filter.Role, filter.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *Repository) Get(ctx context.Context, id int64) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if db.IsNoRows(err) {
		return User{}, &shared.NotFoundError{Entity: "user", ID: id}
	}
	return u, err
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (Credentials, error) {
	var c Credentials
	err := r.pool.QueryRow(ctx, `SELECT `+userColumns+`, password FROM users WHERE username = $1`, username).
		Scan(&c.ID, &c.Username, &c.FullName, &c.Role, &c.IsActive, &c.CreatedAt, &c.PasswordHash)
	if db.IsNoRows(err) {
		return Credentials{}, &shared.NotFoundError{Entity: "user", ID: username}
	}
	return c, err
}

func (r *Repository) Create(ctx context.Context, input CreateInput, passwordHash string) (User, error) {
	u, err := scanUser(r.pool.QueryRow(ctx, `INSERT INTO users (username, password, full_name, role)
VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		input.Username, passwordHash, input.FullName, input.Role))
	if err != nil {
		return User{}, mapError(err, input.Username, input.Role)
	}
	return u, nil
}

func (r *Repository) Update(ctx context.Context, id int64, input UpdateInput) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET full_name = $1, role = $2 WHERE id = $3`, input.FullName, input.Role, id)
	if err != nil {
		return mapError(err, "", input.Role)
	}
	return affected(tag.RowsAffected(), id)
}

func (r *Repository) SetActive(ctx context.Context, id int64, active bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET is_active = $1 WHERE id = $2`, active, id)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected(), id)
}

func (r *Repository) SetPassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET password = $1 WHERE id = $2`, passwordHash, id)
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected(), id)
}

func (r *Repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if _, ok := db.ConstraintError(err, db.CodeForeignKeyViolation); ok {
		return shared.NewValidationError("id", "user has recorded supplies or financial operations; deactivate instead")
	}
	if err != nil {
		return err
	}
	return affected(tag.RowsAffected(), id)
}

func affected(n int64, id int64) error {
	if n == 0 {
		return &shared.NotFoundError{Entity: "user", ID: id}
	}
	return nil
}

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Username, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt)
	return u, err
}

func mapError(err error, username, role string) error {
	if db.IsUniqueViolation(err, "users_username_key") {
		return &shared.DuplicateError{Entity: "user", Field: "username", Value: username}
	}
	if db.IsForeignKeyViolation(err, "users_role_fkey") {
		return &shared.NotFoundError{Entity: "role", ID: role}
	}
	return err
}

var _ RepositoryPort = (*Repository)(nil)
