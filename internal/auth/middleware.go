package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Middleware resolves "Authorization: Bearer <token>" into the request actor.
// Requests without the header pass through anonymously and are rejected by route guards.
func Middleware(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, present := bearerToken(r)
			if !present {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := service.Resolve(r.Context(), token)
			if err != nil {
				httpx.RespondError(w, logger, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithActor(r.Context(), actor)))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
