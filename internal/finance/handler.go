package finance

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/shared"
)

// ExportEnqueuer schedules asynchronous CSV exports.
type ExportEnqueuer interface {
	EnqueueReportExport(ctx context.Context, start, end time.Time, requestedBy int64) (string, error)
}

// Handler exposes operations and reports over HTTP.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	guard    shared.Guard
	exporter ExportEnqueuer
	now      func() time.Time
}

// NewHandler builds Handler. exporter may be nil, disabling async exports.
func NewHandler(logger *slog.Logger, service *Service, guard shared.Guard, exporter ExportEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, guard: guard, exporter: exporter, now: time.Now}
}

// MountRoutes registers finance endpoints.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermFinanceView))
		r.Get("/operations", h.listOperations)
		r.Get("/operations/{id}", h.showOperation)
		r.Get("/reports", h.report)
		r.Get("/reports/export", h.exportCSV)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAny(shared.PermFinanceEdit))
		r.Post("/operations", h.recordOperation)
		r.Put("/operations/{id}", h.updateOperation)
		r.Delete("/operations/{id}", h.deleteOperation)
		r.Post("/reports/export", h.enqueueExport)
	})
}

type operationRequest struct {
	Date        httpx.Date      `json:"operation_date"`
	Type        string          `json:"type"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	RecordedBy  int64           `json:"recorded_by"`
}

func (h *Handler) decodeForm(r *http.Request) (OperationForm, error) {
	var req operationRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		return OperationForm{}, err
	}
	if req.RecordedBy == 0 {
		if actor, ok := shared.ActorFromContext(r.Context()); ok {
			req.RecordedBy = actor.UserID
		}
	}
	return OperationForm{
		Date:        req.Date.Time,
		Type:        req.Type,
		Amount:      req.Amount,
		Description: req.Description,
		RecordedBy:  req.RecordedBy,
	}, nil
}

// dateRange reads start and end query parameters, defaulting to the month up to today.
func (h *Handler) dateRange(r *http.Request) (time.Time, time.Time, error) {
	end, ok, err := httpx.DateQuery(r, "end")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !ok {
		end = Day(h.now())
	}
	start, ok, err := httpx.DateQuery(r, "start")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if !ok {
		start = end.AddDate(0, -1, 0)
	}
	return start, end, nil
}

func (h *Handler) listOperations(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.dateRange(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	ops, err := h.service.ListOperations(r.Context(), start, end)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if ops == nil {
		ops = []Operation{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": ops})
}

func (h *Handler) showOperation(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	op, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, op)
}

func (h *Handler) recordOperation(w http.ResponseWriter, r *http.Request) {
	form, err := h.decodeForm(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	op, err := h.service.Record(r.Context(), form)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, op)
}

func (h *Handler) updateOperation(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	form, err := h.decodeForm(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if err := h.service.Update(r.Context(), id, form); err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	op, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, op)
}

func (h *Handler) deleteOperation(w http.ResponseWriter, r *http.Request) {
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

func (h *Handler) report(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.dateRange(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	report, err := h.filteredReport(r, start, end)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

func (h *Handler) filteredReport(r *http.Request, start, end time.Time) (Report, error) {
	kind := r.URL.Query().Get("type")
	if _, err := FilterOperations(Report{}, kind); err != nil {
		return Report{}, err
	}
	report, err := h.service.BuildReport(r.Context(), start, end)
	if err != nil {
		return Report{}, err
	}
	return FilterOperations(report, kind)
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	start, end, err := h.dateRange(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	report, err := h.filteredReport(r, start, end)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ExportFileName(report)+`"`)
	if err := WriteReportCSV(w, report); err != nil {
		h.logger.Error("write report csv", slog.Any("error", err))
	}
}

func (h *Handler) enqueueExport(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Export unavailable", "background exports are not configured")
		return
	}
	start, end, err := h.dateRange(r)
	if err != nil {
		httpx.RespondError(w, h.logger, err)
		return
	}
	if start.After(end) {
		httpx.RespondError(w, h.logger, shared.NewValidationError("start", "must not be after end"))
		return
	}
	var requestedBy int64
	if actor, ok := shared.ActorFromContext(r.Context()); ok {
		requestedBy = actor.UserID
	}
	taskID, err := h.exporter.EnqueueReportExport(r.Context(), start, end, requestedBy)
	if err != nil {
		httpx.RespondError(w, h.logger, shared.Infra("finance: enqueue export", err))
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"task_id": taskID})
}
