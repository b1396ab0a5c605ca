package roles

import (
	"context"
	"strings"

	"github.com/odyssey-erp/productmanage/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	ListRoles(ctx context.Context) ([]Role, error)
	GetRole(ctx context.Context, code string) (Role, error)
}

// Service handles role lookups.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListRoles returns all roles with the permissions each grants.
func (s *Service) ListRoles(ctx context.Context) ([]Role, error) {
	roles, err := s.repo.ListRoles(ctx)
	if err != nil {
		return nil, shared.Infra("roles: list", err)
	}
	for i := range roles {
		roles[i].Permissions = shared.PermissionsFor(roles[i].Code)
	}
	return roles, nil
}

// GetRole returns one role.
func (s *Service) GetRole(ctx context.Context, code string) (Role, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return Role{}, shared.NewValidationError("code", "is required")
	}
	role, err := s.repo.GetRole(ctx, code)
	if err != nil {
		return Role{}, shared.Infra("roles: get", err)
	}
	role.Permissions = shared.PermissionsFor(role.Code)
	return role, nil
}
