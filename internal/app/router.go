package app

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/adjustment"
	"github.com/scholaris-erp/scholaris-erp/internal/assets"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
	"github.com/scholaris-erp/scholaris-erp/internal/category"
	"github.com/scholaris-erp/scholaris-erp/internal/observability"
	"github.com/scholaris-erp/scholaris-erp/internal/reporting"
	"github.com/scholaris-erp/scholaris-erp/internal/settlement"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

// RouterConfig collects the handlers mounted on the API.
type RouterConfig struct {
	Middleware []func(http.Handler) http.Handler
	Metrics    *observability.Metrics

	Cashbook   *cashbook.Handler
	Accrual    *accrual.Handler
	Settlement *settlement.Handler
	Category   *category.Handler
	Assets     *assets.Handler
	Adjustment *adjustment.Handler
	Reporting  *reporting.Handler
}

// NewRouter assembles the HTTP surface.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	for _, mw := range cfg.Middleware {
		r.Use(mw)
	}

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		shared.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	}

	r.Route("/api", func(api chi.Router) {
		api.Route("/cashbook", cfg.Cashbook.MountRoutes)
		api.Route("/accrual", cfg.Accrual.MountRoutes)
		api.Route("/settlements", cfg.Settlement.MountRoutes)
		api.Route("/categories", cfg.Category.MountRoutes)
		api.Route("/assets", cfg.Assets.MountRoutes)
		api.Route("/adjustments", cfg.Adjustment.MountRoutes)
		api.Route("/reports", cfg.Reporting.MountRoutes)
	})

	return r
}
