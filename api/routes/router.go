package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vasthra-labs/vasthra-backend/api/controllers"
	"github.com/vasthra-labs/vasthra-backend/api/middleware"
	"github.com/vasthra-labs/vasthra-backend/internal/cart"
	"github.com/vasthra-labs/vasthra-backend/internal/orders"
	"github.com/vasthra-labs/vasthra-backend/internal/users"
	"github.com/vasthra-labs/vasthra-backend/internal/wishlist"
	"github.com/vasthra-labs/vasthra-backend/pkg/auth/session"
	"github.com/vasthra-labs/vasthra-backend/pkg/config"
	"github.com/vasthra-labs/vasthra-backend/pkg/db"
	"github.com/vasthra-labs/vasthra-backend/pkg/logger"
	"github.com/vasthra-labs/vasthra-backend/pkg/metrics"
	pkgredis "github.com/vasthra-labs/vasthra-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config  *config.Config
	Logger  *logger.Logger
	DB      db.Pinger
	Redis   *pkgredis.Client
	Session session.AccessSessionChecker
	Metrics *metrics.HTTPMetrics

	Orders     orders.Service
	OrderQuery orders.Query
	Cart       cart.Service
	Wishlist   wishlist.Service
	Users      users.Service
}

func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	logg := deps.Logger

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(deps.Metrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(deps.Config))
		r.Get("/ready", controllers.HealthReady(deps.Config, logg, deps.DB, deps.Redis))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	checkoutPolicy := middleware.NewCheckoutRateLimitPolicy(
		deps.Config.RateLimit.CheckoutWindow,
		deps.Config.RateLimit.CheckoutLimit,
		deps.Config.RateLimit.CheckoutIPLimit,
	)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Session, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(middleware.CheckoutRateLimit(checkoutPolicy, deps.Redis, logg)).
				Post("/", controllers.CreateOrder(deps.Orders, logg))
			r.Get("/", controllers.ListMyOrders(deps.OrderQuery, logg))
			r.Get("/{orderId}", controllers.GetOrder(deps.OrderQuery, logg))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(deps.Orders, logg))
		})

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(deps.Cart, logg))
			r.Post("/items", controllers.CartAddItem(deps.Cart, logg))
			r.Patch("/items/{itemId}", controllers.CartUpdateItem(deps.Cart, logg))
			r.Delete("/items/{itemId}", controllers.CartRemoveItem(deps.Cart, logg))
			r.Delete("/", controllers.CartClear(deps.Cart, logg))
		})

		r.Route("/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistFetch(deps.Wishlist, logg))
			r.Post("/", controllers.WishlistAddItem(deps.Wishlist, logg))
			r.Delete("/{productId}", controllers.WishlistRemoveItem(deps.Wishlist, logg))
		})

		r.Route("/account", func(r chi.Router) {
			r.Get("/profile", controllers.AccountProfile(deps.Users, logg))
			r.Put("/profile", controllers.AccountUpdateProfile(deps.Users, logg))

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", controllers.AccountListAddresses(deps.Users, logg))
				r.Post("/", controllers.AccountAddAddress(deps.Users, logg))
				r.Put("/{addressId}", controllers.AccountUpdateAddress(deps.Users, logg))
				r.Delete("/{addressId}", controllers.AccountDeleteAddress(deps.Users, logg))
			})

			r.Route("/payment-methods", func(r chi.Router) {
				r.Get("/", controllers.AccountListPaymentMethods(deps.Users, logg))
				r.Post("/", controllers.AccountAddPaymentMethod(deps.Users, logg))
				r.Delete("/{methodId}", controllers.AccountDeletePaymentMethod(deps.Users, logg))
			})

			r.Route("/notification-preferences", func(r chi.Router) {
				r.Get("/", controllers.AccountNotificationPreferences(deps.Users, logg))
				r.Put("/", controllers.AccountUpdateNotificationPreferences(deps.Users, logg))
			})
		})
	})

	r.Route("/api/staff/v1", func(r chi.Router) {
		r.Use(middleware.Auth(deps.Config.JWT, deps.Session, logg))
		r.Use(middleware.RequireStaff(logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.StaffListOrders(deps.OrderQuery, logg))
			r.Get("/statistics", controllers.StaffOrderStatistics(deps.OrderQuery, logg))
			r.Get("/{orderId}", controllers.StaffGetOrder(deps.OrderQuery, logg))
			r.Patch("/{orderId}/status", controllers.StaffUpdateOrderStatus(deps.Orders, logg))
			r.Post("/{orderId}/tracking-events", controllers.StaffAddTrackingEvent(deps.Orders, logg))
		})
	})

	return r
}
