package categories

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmanage/internal/masterdata/shared"
	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	errs "github.com/odyssey-erp/productmanage/internal/shared"
)

type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   errs.Guard
}

func NewHandler(logger *slog.Logger, service *Service, guard errs.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(errs.PermMasterView))
		r.Get("/", h.List)
		r.Get("/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(errs.PermMasterEdit))
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filters := shared.FiltersFromRequest(r)
	items, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, shared.NewListResponse(items, total, filters))
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var c Category
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	created, err := h.service.Create(r.Context(), c)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var c Category
	if err := httpx.DecodeJSON(r, &c); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Update(r.Context(), id, c); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	c.ID = id
	httpx.JSON(w, http.StatusOK, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
