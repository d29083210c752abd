package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ginjaninja78/oc-consolidator/api/controllers/imports"
	"github.com/ginjaninja78/oc-consolidator/api/controllers/orders"
	"github.com/ginjaninja78/oc-consolidator/api/handlers"
	"github.com/ginjaninja78/oc-consolidator/api/middleware"
	"github.com/ginjaninja78/oc-consolidator/internal/config"
	"github.com/ginjaninja78/oc-consolidator/pkg/logger"
)

// Dependencies are the services behind the HTTP API. Orders and Previews
// are optional and must be left nil (not typed-nil) when absent.
type Dependencies struct {
	Config   *config.Config
	Logger   *logger.Logger
	Importer imports.Importer
	Orders   orders.Store
	Previews imports.PreviewStore
	Pingers  map[string]handlers.Pinger
	Gatherer prometheus.Gatherer
}

func NewRouter(deps Dependencies) http.Handler {
	logg := deps.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	var maxUpload int64
	if deps.Config != nil {
		maxUpload = deps.Config.Server.MaxUploadBytes
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Get("/health", handlers.Health(logg))
	r.Get("/ready", handlers.Ready(logg, deps.Pingers))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/purchase-orders", func(r chi.Router) {
			r.Post("/batch-upsert", orders.BatchUpsert(deps.Orders, logg))
			r.Post("/upsert", orders.Upsert(deps.Orders, logg))
			r.Get("/pending-review", orders.PendingReview(deps.Orders, logg))
			r.Get("/{orderNumber}", orders.Get(deps.Orders, logg))
		})

		r.Route("/imports", func(r chi.Router) {
			r.Post("/", imports.Run(deps.Importer, maxUpload, logg))
			r.Post("/preview", imports.Preview(deps.Importer, deps.Previews, maxUpload, logg))
			r.Post("/{token}/commit", imports.Commit(deps.Importer, deps.Previews, logg))
		})
	})

	return r
}
