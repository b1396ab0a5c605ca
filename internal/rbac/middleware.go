// Package rbac enforces role permissions on HTTP routes.
package rbac

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Middleware checks the request actor against the role permission table.
type Middleware struct {
	Logger *slog.Logger
}

// New returns the guard used by every route group.
func New(logger *slog.Logger) Middleware {
	return Middleware{Logger: logger}
}

// RequireAny ensures the current user has at least one of the required permissions.
func (m Middleware) RequireAny(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), func(actor shared.Actor, required []string) bool {
		for _, p := range required {
			if actor.Can(p) {
				return true
			}
		}
		return false
	})
}

// RequireAll ensures the current user has all required permissions.
func (m Middleware) RequireAll(perms ...string) func(http.Handler) http.Handler {
	return m.require(normalizePermissions(perms), func(actor shared.Actor, required []string) bool {
		for _, p := range required {
			if !actor.Can(p) {
				return false
			}
		}
		return true
	})
}

func (m Middleware) require(required []string, allowed func(shared.Actor, []string) bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := shared.ActorFromContext(r.Context())
			if !ok {
				httpx.RespondError(w, m.Logger, shared.ErrUnauthorized)
				return
			}
			if len(required) == 0 || allowed(actor, required) {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("permission denied",
					slog.Int64("user_id", actor.UserID),
					slog.String("role", actor.Role),
					slog.String("path", r.URL.Path),
					slog.Any("required", required))
			}
			httpx.RespondError(w, m.Logger, shared.ErrForbidden)
		})
	}
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}

var _ shared.Guard = Middleware{}
