package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/odyssey-erp/productmanage/internal/shared"
	"github.com/odyssey-erp/productmanage/internal/users"
)

// Accounts matches credentials against stored accounts and re-reads them for live sessions.
type Accounts interface {
	Authenticate(ctx context.Context, username, password string) (users.User, error)
	Get(ctx context.Context, id int64) (users.User, error)
}

// Service issues and revokes sessions.
type Service struct {
	users    Accounts
	sessions *SessionStore
	logger   *slog.Logger
}

// NewService constructs the auth service.
func NewService(users Accounts, sessions *SessionStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{users: users, sessions: sessions, logger: logger}
}

// Login checks the credentials and opens a session for the matching active user.
func (s *Service) Login(ctx context.Context, username, password string) (Session, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Session{}, shared.ErrInvalidCredentials
	}
	user, err := s.users.Authenticate(ctx, username, password)
	if err != nil {
		if shared.IsDomain(err) {
			s.logger.Warn("login rejected", slog.String("username", username))
		}
		return Session{}, err
	}
	sess, err := s.sessions.Create(ctx, actorFor(user))
	if err != nil {
		return Session{}, shared.Infra("auth: login", err)
	}
	s.logger.Info("user logged in", slog.Int64("user_id", user.ID), slog.String("role", user.Role))
	return sess, nil
}

// Logout revokes token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return shared.Infra("auth: logout", s.sessions.Delete(ctx, token))
}

// Resolve maps a bearer token to its actor. The account is re-read on every call so
// role changes apply at once and removed or deactivated accounts lose their sessions.
func (s *Service) Resolve(ctx context.Context, token string) (shared.Actor, error) {
	cached, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		return shared.Actor{}, shared.Infra("auth: resolve", err)
	}
	user, err := s.users.Get(ctx, cached.UserID)
	switch {
	case errors.Is(err, shared.ErrNotFound), errors.Is(err, shared.ErrValidation):
		s.drop(ctx, token, cached.UserID, "account removed")
		return shared.Actor{}, shared.ErrUnauthorized
	case err != nil:
		return shared.Actor{}, shared.Infra("auth: resolve", err)
	case !user.IsActive:
		s.drop(ctx, token, cached.UserID, "account deactivated")
		return shared.Actor{}, shared.ErrUnauthorized
	}
	return actorFor(user), nil
}

// RevokeUser ends every session of userID.
func (s *Service) RevokeUser(ctx context.Context, userID int64) error {
	if err := s.sessions.RevokeUser(ctx, userID); err != nil {
		return shared.Infra("auth: revoke user", err)
	}
	s.logger.Info("user sessions revoked", slog.Int64("user_id", userID))
	return nil
}

func (s *Service) drop(ctx context.Context, token string, userID int64, reason string) {
	s.logger.Warn("session rejected", slog.Int64("user_id", userID), slog.String("reason", reason))
	if err := s.sessions.Delete(ctx, token); err != nil {
		s.logger.Warn("session delete failed", slog.Any("error", err))
	}
}

func actorFor(user users.User) shared.Actor {
	return shared.Actor{
		UserID:   user.ID,
		Username: user.Username,
		FullName: user.FullName,
		Role:     user.Role,
	}
}
