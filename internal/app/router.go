package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmanage/internal/auth"
	"github.com/odyssey-erp/productmanage/internal/finance"
	"github.com/odyssey-erp/productmanage/internal/inventory"
	"github.com/odyssey-erp/productmanage/internal/masterdata/categories"
	"github.com/odyssey-erp/productmanage/internal/masterdata/products"
	"github.com/odyssey-erp/productmanage/internal/masterdata/suppliers"
	"github.com/odyssey-erp/productmanage/internal/observability"
	"github.com/odyssey-erp/productmanage/internal/platform/httpx"
	"github.com/odyssey-erp/productmanage/internal/roles"
	"github.com/odyssey-erp/productmanage/internal/supplies"
	"github.com/odyssey-erp/productmanage/internal/users"
	"github.com/odyssey-erp/productmanage/jobs"
)

// Pinger reports dependency health for /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

// Ping calls f.
func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// RouterParams groups dependencies for building the HTTP router. Nil handlers are not mounted.
type RouterParams struct {
	Logger       *slog.Logger
	Config       *Config
	Metrics      *observability.Metrics
	Authenticate func(http.Handler) http.Handler
	Health       map[string]Pinger

	AuthHandler       *auth.Handler
	ProductsHandler   *products.Handler
	InventoryHandler  *inventory.Handler
	CategoriesHandler *categories.Handler
	SuppliersHandler  *suppliers.Handler
	SuppliesHandler   *supplies.Handler
	FinanceHandler    *finance.Handler
	UsersHandler      *users.Handler
	RolesHandler      *roles.Handler
	JobHandler        *jobs.Handler
}

// NewRouter constructs the chi.Router with the API defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:       params.Logger,
		Config:       params.Config,
		Metrics:      params.Metrics,
		Authenticate: params.Authenticate,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", "no route for "+r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Problem(w, http.StatusMethodNotAllowed, "Method Not Allowed", r.Method+" is not supported here")
	})

	r.Get("/healthz", healthHandler(params.Health, params.Logger))
	r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())

	if params.AuthHandler != nil {
		r.Route("/auth", params.AuthHandler.MountRoutes)
	}
	if params.ProductsHandler != nil || params.InventoryHandler != nil {
		r.Route("/products", func(r chi.Router) {
			if params.ProductsHandler != nil {
				params.ProductsHandler.MountRoutes(r)
			}
			if params.InventoryHandler != nil {
				params.InventoryHandler.MountRoutes(r)
			}
		})
	}
	if params.CategoriesHandler != nil {
		r.Route("/categories", params.CategoriesHandler.MountRoutes)
	}
	if params.SuppliersHandler != nil {
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
	}
	if params.SuppliesHandler != nil {
		r.Route("/supplies", params.SuppliesHandler.MountRoutes)
	}
	if params.FinanceHandler != nil {
		r.Route("/finance", params.FinanceHandler.MountRoutes)
	}
	if params.UsersHandler != nil {
		r.Route("/users", params.UsersHandler.MountRoutes)
	}
	if params.RolesHandler != nil {
		r.Route("/roles", params.RolesHandler.MountRoutes)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	return r
}

func healthHandler(checks map[string]Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		status := http.StatusOK
		report := map[string]string{}
		for name, check := range checks {
			if err := check.Ping(ctx); err != nil {
				if logger != nil {
					logger.Warn("health check failed", slog.String("dependency", name), slog.Any("error", err))
				}
				report[name] = "down"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "up"
		}
		state := "ok"
		if status != http.StatusOK {
			state = "degraded"
		}
		httpx.JSON(w, status, map[string]any{"status": state, "dependencies": report})
	}
}
