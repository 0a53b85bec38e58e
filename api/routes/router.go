package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utsavhq/utsav-backend/api/controllers"
	"github.com/utsavhq/utsav-backend/api/middleware"
	"github.com/utsavhq/utsav-backend/internal/bundles"
	"github.com/utsavhq/utsav-backend/internal/leads"
	"github.com/utsavhq/utsav-backend/internal/packages"
	"github.com/utsavhq/utsav-backend/internal/settings"
	"github.com/utsavhq/utsav-backend/internal/wallet"
	"github.com/utsavhq/utsav-backend/pkg/config"
	"github.com/utsavhq/utsav-backend/pkg/enums"
	"github.com/utsavhq/utsav-backend/pkg/logger"
	pkgredis "github.com/utsavhq/utsav-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       controllers.Pinger
	Redis    *pkgredis.Client
	Registry *prometheus.Registry

	Leads    leads.Service
	Wallet   wallet.Service
	Bundles  bundles.Service
	Packages packages.Service
	Settings settings.Service
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
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"postgres": deps.DB,
			"redis":    redisPinger(deps.Redis),
		}))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/public", func(r chi.Router) {
		r.Post("/inquiry", controllers.CreateInquiry(deps.Leads, logg))
		r.Get("/packages", controllers.ListPackages(deps.Packages, logg))
	})

	var idempotencyStore pkgredis.IdempotencyStore
	if deps.Redis != nil {
		idempotencyStore = deps.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.Idempotency(idempotencyStore, logg),
		)

		r.Get("/marketplace", controllers.Marketplace(deps.Leads, logg))
		r.Get("/my-leads", controllers.MyLeads(deps.Leads, logg))
		r.Post("/leads/{leadId}/buy", controllers.BuyLead(deps.Leads, logg))

		r.Get("/bundles", controllers.ListBundles(deps.Bundles, logg))
		r.Post("/bundles/buy", controllers.BuyBundle(deps.Wallet, logg))

		r.Get("/wallet", controllers.WalletBalance(deps.Wallet, logg))
		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(deps.Wallet, logg))
			r.Get("/transactions", controllers.WalletTransactions(deps.Wallet, logg))
			r.Post("/topup", controllers.WalletTopUp(deps.Wallet, logg))
			r.Post("/migrate-credits", controllers.MigrateMyCredits(deps.Wallet, logg))
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(
			middleware.Auth(cfg.JWT, logg),
			middleware.RequireRole(enums.ActorRoleAdmin.String(), logg),
			middleware.Idempotency(idempotencyStore, logg),
		)

		r.Get("/settings/lead-costs", controllers.GetLeadCosts(deps.Settings, logg))
		r.Put("/settings/lead-costs", controllers.UpdateLeadCosts(deps.Settings, logg))
		r.Post("/migrate-credits", controllers.MigrateAllCredits(deps.Wallet, logg))

		r.Post("/bundles", controllers.CreateBundle(deps.Bundles, logg))
		r.Delete("/bundles/{bundleId}", controllers.DeactivateBundle(deps.Bundles, logg))
		r.Post("/packages", controllers.CreatePackage(deps.Packages, logg))
	})

	return r
}

func redisPinger(client *pkgredis.Client) controllers.Pinger {
	if client == nil {
		return nil
	}
	return client
}
