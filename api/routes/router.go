package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmarquezdev/subvault-backend/api/controllers"
	"github.com/dmarquezdev/subvault-backend/api/middleware"
	"github.com/dmarquezdev/subvault-backend/internal/analytics"
	"github.com/dmarquezdev/subvault-backend/internal/authcodes"
	cartsvc "github.com/dmarquezdev/subvault-backend/internal/cart"
	"github.com/dmarquezdev/subvault-backend/internal/catalog"
	"github.com/dmarquezdev/subvault-backend/internal/currency"
	"github.com/dmarquezdev/subvault-backend/internal/refunds"
	subscriptionsvc "github.com/dmarquezdev/subvault-backend/internal/subscriptions"
	"github.com/dmarquezdev/subvault-backend/pkg/config"
	"github.com/dmarquezdev/subvault-backend/pkg/db"
	"github.com/dmarquezdev/subvault-backend/pkg/enums"
	"github.com/dmarquezdev/subvault-backend/pkg/logger"
	"github.com/dmarquezdev/subvault-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authCodeService authcodes.Service,
	subscriptionService subscriptionsvc.Service,
	cartService cartsvc.Service,
	refundService refunds.Service,
	catalogService catalog.Service,
	analyticsService analytics.Service,
	currencyPrefs *currency.PreferenceRepository,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
		r.Get("/currencies", controllers.CurrencyList(logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Route("/subscriptions", func(r chi.Router) {
			r.Get("/", controllers.SubscriptionList(subscriptionService, logg))
			r.Get("/{id}", controllers.SubscriptionGet(subscriptionService, currencyPrefs, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartGet(cartService, logg))
			r.Post("/items", controllers.CartAddItem(cartService, logg))
			r.Put("/items/{productID}", controllers.CartUpdateItem(cartService, logg))
			r.Delete("/items/{productID}", controllers.CartRemoveItem(cartService, logg))
			r.Post("/checkout", controllers.CartCheckout(cartService, logg))
		})

		r.Route("/refund-requests", func(r chi.Router) {
			r.Get("/", controllers.RefundRequestList(refundService, logg))
			r.Post("/", controllers.RefundRequestCreate(refundService, logg))
		})

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ProductList(catalogService, logg))
			r.Get("/{id}", controllers.ProductGet(catalogService, logg))
			r.Get("/{id}/plans", controllers.ProductPlans(catalogService, logg))
		})

		r.Route("/preferences/currency", func(r chi.Router) {
			r.Get("/", controllers.CurrencyPreferenceGet(currencyPrefs, logg))
			r.Put("/", controllers.CurrencyPreferenceSet(currencyPrefs, logg))
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.ActorRoleAdmin), logg))

			r.Route("/auth-codes", func(r chi.Router) {
				r.Get("/", controllers.AuthCodeList(authCodeService, logg))
				r.Post("/", controllers.AuthCodeCreate(authCodeService, logg))
				r.Get("/{id}", controllers.AuthCodeGet(authCodeService, logg))
				r.Put("/{id}", controllers.AuthCodeUpdate(authCodeService, logg))
				r.Delete("/{id}", controllers.AuthCodeDelete(authCodeService, logg))
			})

			r.Route("/subscriptions", func(r chi.Router) {
				r.Get("/", controllers.AdminSubscriptionList(subscriptionService, logg))
				r.Post("/", controllers.AdminSubscriptionCreate(subscriptionService, logg))
				r.Post("/recompute-statuses", controllers.AdminSubscriptionRecompute(subscriptionService, logg))
				r.Get("/{id}", controllers.AdminSubscriptionGet(subscriptionService, logg))
				r.Put("/{id}", controllers.AdminSubscriptionUpdate(subscriptionService, logg))
				r.Post("/{id}/cancel", controllers.AdminSubscriptionCancel(subscriptionService, logg))
				r.Delete("/{id}", controllers.AdminSubscriptionDelete(subscriptionService, logg))
			})

			r.Route("/refund-requests", func(r chi.Router) {
				r.Get("/", controllers.AdminRefundRequestList(refundService, logg))
				r.Get("/{id}", controllers.AdminRefundRequestGet(refundService, logg))
				r.Post("/{id}/transition", controllers.AdminRefundRequestTransition(refundService, logg))
			})

			r.Route("/analytics", func(r chi.Router) {
				r.Post("/backfill", controllers.AnalyticsBackfill(analyticsService, logg))
				r.Post("/repair", controllers.AnalyticsRepair(analyticsService, logg))
			})
		})
	})

	return r
}
