package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stockroomhq/stockroom-backend/api/controllers"
	"github.com/stockroomhq/stockroom-backend/api/middleware"
	"github.com/stockroomhq/stockroom-backend/internal/catalog"
	"github.com/stockroomhq/stockroom-backend/internal/ledger"
	"github.com/stockroomhq/stockroom-backend/internal/reports"
	"github.com/stockroomhq/stockroom-backend/pkg/config"
	"github.com/stockroomhq/stockroom-backend/pkg/db"
	"github.com/stockroomhq/stockroom-backend/pkg/logger"
	pkgredis "github.com/stockroomhq/stockroom-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config         *config.Config
	Logger         *logger.Logger
	DBPinger       db.Pinger
	Redis          *pkgredis.Client
	CatalogService catalog.Service
	LedgerService  ledger.Service
	ReportsService reports.Service
	Metrics        prometheus.Gatherer

	// IdempotencyStore overrides the Redis-backed store when set.
	IdempotencyStore pkgredis.IdempotencyStore
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, redisPinger(deps.Redis)))
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Metrics, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Identity(logg))
		store := deps.IdempotencyStore
		if store == nil {
			store = idempotencyStore(deps.Redis)
		}
		r.Use(middleware.Idempotency(store, logg, cfg.Ledger.IdempotencyTTL))

		r.Get("/ping", controllers.Ping())

		r.Route("/v1/categories", func(r chi.Router) {
			r.Get("/", controllers.CategoryList(deps.CatalogService, logg))
			r.Post("/", controllers.CategoryCreate(deps.CatalogService, logg))
			r.Get("/{categoryId}", controllers.CategoryDetail(deps.CatalogService, logg))
			r.Put("/{categoryId}", controllers.CategoryUpdate(deps.CatalogService, logg))
			r.Delete("/{categoryId}", controllers.CategoryDelete(deps.CatalogService, logg))
			r.Get("/{categoryId}/products", controllers.CategoryProducts(deps.CatalogService, logg))
		})

		r.Route("/v1/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(deps.CatalogService, logg))
			r.Post("/", controllers.ProductCreate(deps.CatalogService, logg))
			r.Get("/low-stock", controllers.ReportLowStock(deps.ReportsService, logg))
			r.Get("/out-of-stock", controllers.ReportOutOfStock(deps.ReportsService, logg))
			r.Get("/{productId}", controllers.ProductDetail(deps.CatalogService, logg))
			r.Put("/{productId}", controllers.ProductUpdate(deps.CatalogService, logg))
			r.Delete("/{productId}", controllers.ProductDelete(deps.CatalogService, logg))
			r.Post("/{productId}/transactions", controllers.TransactionApply(deps.LedgerService, logg))
			r.Get("/{productId}/transactions", controllers.ProductTransactions(deps.ReportsService, logg))
		})

		r.Route("/v1/transactions", func(r chi.Router) {
			r.Get("/", controllers.TransactionList(deps.ReportsService, logg))
			r.Get("/latest", controllers.ReportRecentTransactions(deps.ReportsService, logg))
			r.Get("/summary", controllers.ReportSummary(deps.ReportsService, logg))
			r.Get("/{transactionId}", controllers.TransactionDetail(deps.LedgerService, logg))
		})
	})

	return r
}

// redisPinger keeps a typed nil out of the Pinger interface.
func redisPinger(client *pkgredis.Client) pkgredis.Pinger {
	if client == nil {
		return nil
	}
	return client
}

func idempotencyStore(client *pkgredis.Client) pkgredis.IdempotencyStore {
	if client == nil {
		return nil
	}
	return client
}
