package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/origen-putumayo/storefront/api/controllers"
	cartcontrollers "github.com/origen-putumayo/storefront/api/controllers/cart"
	"github.com/origen-putumayo/storefront/api/middleware"
	"github.com/origen-putumayo/storefront/internal/admins"
	"github.com/origen-putumayo/storefront/internal/cart"
	checkoutsvc "github.com/origen-putumayo/storefront/internal/checkout"
	products "github.com/origen-putumayo/storefront/internal/products"
	"github.com/origen-putumayo/storefront/pkg/config"
	"github.com/origen-putumayo/storefront/pkg/db"
	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/redis"
)

// Deps bundles everything the router hands to controllers and middleware.
type Deps struct {
	Config          *config.Config
	Logger          *logger.Logger
	DB              db.Pinger
	Redis           *redis.Client
	Gatherer        prometheus.Gatherer
	Carts           *cart.Registry
	Admins          *admins.Checker
	ProductService  products.Service
	CheckoutService checkoutsvc.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.App.CORSOrigins),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, readinessDeps(d), logg))
	})
	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	var idempotencyStore redis.IdempotencyStore
	if d.Redis != nil {
		idempotencyStore = d.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.RateLimit, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.PublicListProducts(d.ProductService, logg))
			r.Get("/{slug}", controllers.PublicGetProduct(d.ProductService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.CartSession(cfg.Cart, d.Carts, logg))
			r.Use(middleware.Idempotency(idempotencyStore, logg))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cartcontrollers.CartFetch(logg))
				r.Delete("/", cartcontrollers.CartClear(logg))
				r.Post("/items", cartcontrollers.CartAddItem(d.ProductService, logg))
				r.Patch("/items/{itemId}", cartcontrollers.CartUpdateItem(logg))
				r.Delete("/items/{itemId}", cartcontrollers.CartRemoveItem(logg))
				r.Post("/panel/open", cartcontrollers.CartOpenPanel(logg))
				r.Post("/panel/close", cartcontrollers.CartClosePanel(logg))
				r.Post("/notification/pause", cartcontrollers.NotificationPause(logg))
				r.Post("/notification/resume", cartcontrollers.NotificationResume(logg))
				r.Post("/notification/dismiss", cartcontrollers.NotificationDismiss(logg))
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", controllers.CheckoutPreview(d.CheckoutService, logg))
				r.Post("/", controllers.CheckoutSubmit(d.CheckoutService, logg))
				r.Post("/{orderId}/handoff", controllers.CheckoutHandOff(d.CheckoutService, logg))
			})
		})
	})

	r.Route("/api/admin/v1", func(r chi.Router) {
		r.Use(middleware.AdminOnly(cfg.Auth, adminCheckerOrNil(d.Admins), logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.AdminListProducts(d.ProductService, logg))
			r.Post("/", controllers.AdminCreateProduct(d.ProductService, logg))
			r.Put("/{productId}", controllers.AdminUpdateProduct(d.ProductService, logg))
			r.Delete("/{productId}", controllers.AdminDeleteProduct(d.ProductService, logg))
		})
		r.Get("/companies", controllers.AdminListCompanies(d.ProductService, logg))
	})

	return r
}

func readinessDeps(d Deps) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if d.DB != nil {
		deps["db"] = d.DB
	}
	if d.Redis != nil {
		deps["redis"] = d.Redis
	}
	return deps
}

func adminCheckerOrNil(checker *admins.Checker) interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) (bool, error)
} {
	if checker == nil {
		return nil
	}
	return checker
}
