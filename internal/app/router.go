package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/almacen-erp/almacen-erp/internal/clients"
	"github.com/almacen-erp/almacen-erp/internal/observability"
	"github.com/almacen-erp/almacen-erp/internal/platform/httpx"
	"github.com/almacen-erp/almacen-erp/internal/products"
	"github.com/almacen-erp/almacen-erp/internal/sales"
	"github.com/almacen-erp/almacen-erp/internal/suppliers"
	"github.com/almacen-erp/almacen-erp/internal/users"
	"github.com/almacen-erp/almacen-erp/jobs"
)

// RouterParams carries the mounted handlers and shared infrastructure.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics

	Sales     *sales.Handler
	Products  *products.Handler
	Users     *users.Handler
	Clients   *clients.Handler
	Suppliers *suppliers.Handler
	Jobs      *jobs.Handler
}

// NewRouter assembles the HTTP surface: middleware stack, operational
// endpoints, and the per-domain route groups.
func NewRouter(p RouterParams) chi.Router {
	r := chi.NewRouter()
	for _, mw := range MiddlewareStack(MiddlewareConfig{Logger: p.Logger, Config: p.Config, Metrics: p.Metrics}) {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", p.Metrics.Handler())

	r.Route("/sales", p.Sales.MountRoutes)
	r.Route("/products", p.Products.MountRoutes)
	r.Route("/users", p.Users.MountRoutes)
	r.Route("/clients", p.Clients.MountRoutes)
	r.Route("/suppliers", p.Suppliers.MountRoutes)
	if p.Jobs != nil {
		r.Route("/jobs", p.Jobs.MountRoutes)
	}

	return r
}
