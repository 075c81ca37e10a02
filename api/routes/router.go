package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mlevasseur/batisuivi-backend/api/controllers"
	"github.com/mlevasseur/batisuivi-backend/api/middleware"
	"github.com/mlevasseur/batisuivi-backend/internal/contracts"
	"github.com/mlevasseur/batisuivi-backend/internal/export"
	"github.com/mlevasseur/batisuivi-backend/internal/progress"
	"github.com/mlevasseur/batisuivi-backend/internal/quotes"
	"github.com/mlevasseur/batisuivi-backend/internal/sites"
	"github.com/mlevasseur/batisuivi-backend/pkg/config"
	"github.com/mlevasseur/batisuivi-backend/pkg/logger"
	pkgredis "github.com/mlevasseur/batisuivi-backend/pkg/redis"
)

type Deps struct {
	Config        *config.Config
	Logger        *logger.Logger
	Redis         *pkgredis.Client
	Registry      *prometheus.Registry
	ReadyProbes   []func() error
	SiteService   sites.Service
	ContractSvc   contracts.Service
	ProgressSvc   progress.Service
	QuoteService  quotes.Service
	ExportService *export.Service
}

func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.ReadyProbes...))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/sites", func(r chi.Router) {
			r.Post("/", controllers.SiteCreate(deps.SiteService, logg))
			r.Get("/", controllers.SiteList(deps.SiteService, logg))
			r.Get("/{siteId}", controllers.SiteDetail(deps.SiteService, logg))
			r.Get("/{siteId}/contracts", controllers.ContractsBySite(deps.ContractSvc, logg))
		})

		r.Route("/subcontractors", func(r chi.Router) {
			r.Post("/", controllers.SubcontractorCreate(deps.SiteService, logg))
			r.Get("/", controllers.SubcontractorList(deps.SiteService, logg))
		})

		r.Route("/contracts", func(r chi.Router) {
			r.Post("/", controllers.ContractCreate(deps.ContractSvc, logg))
			r.Route("/{contractId}", func(r chi.Router) {
				r.Get("/", controllers.ContractDetail(deps.ContractSvc, logg))
				r.Post("/lock", controllers.ContractLock(deps.ContractSvc, logg))
				r.Get("/summary", controllers.ContractSummary(deps.ProgressSvc, logg))
				r.Get("/progress-states", controllers.ProgressStateList(deps.ProgressSvc, logg))
				r.Post("/progress-states", controllers.ProgressStateCreate(deps.ProgressSvc, logg))
				r.Post("/amendments", controllers.AmendmentIntegrate(deps.ProgressSvc, logg))
			})
		})

		r.Route("/progress-states/{stateId}", func(r chi.Router) {
			r.Get("/", controllers.ProgressStateDetail(deps.ProgressSvc, logg))
			r.Post("/finalize", controllers.ProgressStateFinalize(deps.ProgressSvc, logg))
			r.Post("/reopen", controllers.ProgressStateReopen(deps.ProgressSvc, logg))
			r.Patch("/lines/{lineId}", controllers.ProgressLineUpdate(deps.ProgressSvc, logg))
			r.Patch("/amendments/{amendmentId}", controllers.ProgressAmendmentUpdate(deps.ProgressSvc, logg))
			r.Get("/export.pdf", controllers.ProgressStateExport(deps.ExportService, logg))
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", controllers.QuoteCreate(deps.QuoteService, logg))
			r.Get("/", controllers.QuoteList(deps.QuoteService, logg))
			r.Route("/{quoteId}", func(r chi.Router) {
				r.Get("/", controllers.QuoteDetail(deps.QuoteService, logg))
				r.Post("/send", controllers.QuoteSend(deps.QuoteService, logg))
				r.Post("/accept", controllers.QuoteAccept(deps.QuoteService, logg))
				r.Post("/convert", controllers.QuoteConvert(deps.QuoteService, logg))
			})
		})
	})

	return r
}
