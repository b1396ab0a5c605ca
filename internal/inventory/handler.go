package inventory

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// Handler exposes the ledger over HTTP.
type Handler struct {
	logger  *slog.Logger
	service *Service
	guard   shared.Guard
}

// NewHandler builds Handler.
func NewHandler(logger *slog.Logger, service *Service, guard shared.Guard) *Handler {
	return &Handler{logger: logger, service: service, guard: guard}
}

// MountRoutes registers inventory endpoints under the products router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.guard.RequireAny(shared.PermStockAdjust)).Post("/{id}/adjust", h.adjust)
}

type adjustRequest struct {
	Delta int `json:"delta"`
}

func (h *Handler) adjust(w http.ResponseWriter, r *http.Request) {
	productID, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	var req adjustRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	quantity, err := h.service.AdjustQuantity(r.Context(), productID, req.Delta)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, StockLevel{ProductID: productID, Quantity: quantity})
}
