package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger     *slog.Logger
	service    *Service
	loginLimit int
}

// NewHandler constructs a Handler instance. loginLimit caps login attempts per IP per minute.
func NewHandler(logger *slog.Logger, service *Service, loginLimit int) *Handler {
	if loginLimit <= 0 {
		loginLimit = 10
	}
	return &Handler{logger: logger, service: service, loginLimit: loginLimit}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.LimitByIP(h.loginLimit, time.Minute)).Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	sess, err := h.service.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, sess)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	token, present := bearerToken(r)
	if _, ok := shared.ActorFromContext(r.Context()); !ok || !present {
		httpx.RespondError(w, h.logger, shared.ErrUnauthorized)
		return
	}
	if err := h.service.Logout(r.Context(), token); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type meResponse struct {
	shared.Actor
	Permissions []string `json:"permissions"`
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	actor, ok := shared.ActorFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, h.logger, shared.ErrUnauthorized)
		return
	}
	httpx.JSON(w, http.StatusOK, meResponse{Actor: actor, Permissions: shared.PermissionsFor(actor.Role)})
}
