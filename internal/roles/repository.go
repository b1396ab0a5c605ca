package roles

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/odyssey-erp/productmanage/internal/platform/db"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListRoles returns all roles ordered by code.
func (r *Repository) ListRoles(ctx context.Context) ([]Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT code, display_name, description FROM roles ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		var role Role
		if err := rows.Scan(&role.Code, &role.DisplayName, &role.Description); err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, rows.Err()
}

// GetRole loads a role by code.
func (r *Repository) GetRole(ctx context.Context, code string) (Role, error) {
	var role Role
	err := r.pool.QueryRow(ctx, `SELECT code, display_name, description FROM roles WHERE code = $1`, code).
		Scan(&role.Code, &role.DisplayName, &role.Description)
	if db.IsNoRows(err) {
		return Role{}, &shared.NotFoundError{Entity: "role", ID: code}
	}
	return role, err
}
