package users

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/odyssey-erp/productmanage/internal/platform/validation"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// SessionRevoker ends the live sessions of an account.
type SessionRevoker interface {
	RevokeUser(ctx context.Context, userID int64) error
}

// Service manages accounts. Passwords are only ever stored as bcrypt hashes.
type Service struct {
	repo      RepositoryPort
	validator *validation.Validator
	logger    *slog.Logger
	cost      int
	sessions  SessionRevoker
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, validator: validation.New(), logger: logger, cost: bcrypt.DefaultCost}
}

// UseSessionRevoker makes deactivation, password changes and deletion end the
// account's sessions.
func (s *Service) UseSessionRevoker(r SessionRevoker) {
	s.sessions = r
}

// Register creates an active account with a hashed password.
func (s *Service) Register(ctx context.Context, input CreateInput) (User, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if err := s.validator.Struct(input); err != nil {
		return User{}, err
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return User{}, err
	}
	u, err := s.repo.Create(ctx, input, hash)
	if err != nil {
		return User{}, shared.Infra("users: register", err)
	}
	s.logger.Info("user registered", slog.Int64("user_id", u.ID), slog.String("username", u.Username), slog.String("role", u.Role))
	return u, nil
}

// Update changes the full name and role.
func (s *Service) Update(ctx context.Context, id int64, input UpdateInput) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid user ID")
	}
	input.FullName = strings.TrimSpace(input.FullName)
	input.Role = strings.ToLower(strings.TrimSpace(input.Role))
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	return shared.Infra("users: update", s.repo.Update(ctx, id, input))
}

// SetActive activates or deactivates an account.
func (s *Service) SetActive(ctx context.Context, id int64, active bool) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid user ID")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return shared.Infra("users: set active", err)
	}
	s.logger.Info("user activation changed", slog.Int64("user_id", id), slog.Bool("active", active))
	if !active {
		s.revoke(ctx, id)
	}
	return nil
}

// ChangePassword replaces the stored hash.
func (s *Service) ChangePassword(ctx context.Context, id int64, input PasswordInput) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid user ID")
	}
	if err := s.validator.Struct(input); err != nil {
		return err
	}
	hash, err := s.hash(input.Password)
	if err != nil {
		return err
	}
	if err := s.repo.SetPassword(ctx, id, hash); err != nil {
		return shared.Infra("users: change password", err)
	}
	s.revoke(ctx, id)
	return nil
}

// Delete removes an account that has no recorded history.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return shared.NewValidationError("id", "invalid user ID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return shared.Infra("users: delete", err)
	}
	s.revoke(ctx, id)
	return nil
}

// Get returns one account.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	if id <= 0 {
		return User{}, shared.NewValidationError("id", "invalid user ID")
	}
	u, err := s.repo.Get(ctx, id)
	return u, shared.Infra("users: get", err)
}

// List returns accounts ordered by username.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]User, error) {
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Role = strings.ToLower(strings.TrimSpace(filter.Role))
	users, err := s.repo.List(ctx, filter)
	return users, shared.Infra("users: list", err)
}

// Authenticate matches username and password against an active account.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	creds, err := s.repo.FindByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, shared.ErrNotFound) {
		return User{}, shared.ErrInvalidCredentials
	}
	if err != nil {
		return User{}, shared.Infra("users: authenticate", err)
	}
	if !creds.IsActive {
		return User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(password)); err != nil {
		return User{}, shared.ErrInvalidCredentials
	}
	return creds.User, nil
}

// revoke is best effort: sessions of a missing or inactive account are also
// refused when they are next resolved.
func (s *Service) revoke(ctx context.Context, id int64) {
	if s.sessions == nil {
		return
	}
	if err := s.sessions.RevokeUser(ctx, id); err != nil {
		s.logger.Warn("session revocation failed", slog.Int64("user_id", id), slog.Any("error", err))
	}
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", shared.NewValidationError("password", "must be at most 72 bytes")
	}
	if err != nil {
		return "", shared.Infra("users: hash password", err)
	}
	return string(hash), nil
}
