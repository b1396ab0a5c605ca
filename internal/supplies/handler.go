package supplies

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Handler exposes supplies over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   shared.Guard
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, guard shared.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers supply endpoints under the caller's prefix.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermSuppliesView))
		r.Get("/", h.list)
		r.Get("/invoice-exists", h.invoiceExists)
		r.Get("/{id}", h.show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermSuppliesEdit))
		r.Post("/", h.create)
		r.Post("/{id}/status", h.transition)
		r.Delete("/{id}", h.delete)
	})
}

type createRequest struct {
	SupplierID    *int64      `json:"supplier_id"`
	InvoiceNumber string      `json:"invoice_number"`
	DeliveryDate  httpx.Date  `json:"delivery_date"`
	Status        string      `json:"status"`
	CreatedBy     int64       `json:"created_by"`
	Items         []ItemInput `json:"items"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	header := Header{
		SupplierID:    req.SupplierID,
		InvoiceNumber: req.InvoiceNumber,
		DeliveryDate:  req.DeliveryDate.Time,
		Status:        req.Status,
		CreatedBy:     createdBy(r, req.CreatedBy),
	}
	id, err := h.service.CreateSupply(r.Context(), header, req.Items)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	supply, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supply)
}

// createdBy records the session user. Only admins may file a supply on behalf of someone else.
func createdBy(r *http.Request, requested int64) int64 {
	actor, _ := shared.ActorFromContext(r.Context())
	if requested > 0 && actor.HasRole(shared.RoleAdmin) {
		return requested
	}
	return actor.UserID
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req statusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.RequestTransition(r.Context(), id, req.Status); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"id": id, "status": req.Status})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	supply, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, supply)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{Status: r.URL.Query().Get("status")}
	if from, ok, err := httpx.DateQuery(r, "from"); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	} else if ok {
		filter.From = &from
	}
	if to, ok, err := httpx.DateQuery(r, "to"); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	} else if ok {
		filter.To = &to
	}
	items, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if items == nil {
		items = []Supply{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) invoiceExists(w http.ResponseWriter, r *http.Request) {
	invoice := r.URL.Query().Get("number")
	exists, err := h.service.InvoiceExists(r.Context(), invoice)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"invoice_number": invoice, "exists": exists})
}
