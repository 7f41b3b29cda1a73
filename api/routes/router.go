package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/storefront-backend/api/controllers"
	ordercontrollers "github.com/angelmondragon/storefront-backend/api/controllers/orders"
	paymentcontrollers "github.com/angelmondragon/storefront-backend/api/controllers/payments"
	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/payments"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/metrics"
	pkgredis "github.com/angelmondragon/storefront-backend/pkg/redis"
)

// RedisStore is the slice of the Redis client the HTTP layer needs.
type RedisStore interface {
	pkgredis.IdempotencyStore
	IncrWithTTL(context.Context, string, time.Duration) (int64, error)
	TTL(context.Context, string) (time.Duration, error)
	RateLimitKey(scope string) string
	Ping(context.Context) error
}

// Services groups the domain services mounted on the router.
type Services struct {
	Customers customers.Service
	Products  product.Service
	Orders    orders.Service
	Payments  payments.Service
}

// Infra groups the infrastructure handles the router wires into middleware and health checks.
// PubSub is optional and may be nil.
type Infra struct {
	DB          controllers.Pinger
	Redis       RedisStore
	PubSub      controllers.Pinger
	Gatherer    prometheus.Gatherer
	HTTPMetrics *metrics.HTTPMetrics
}

func NewRouter(cfg *config.Config, logg *logger.Logger, infra Infra, svcs Services) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(infra.HTTPMetrics),
		middleware.CORS(cfg.CORS),
	)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeNotFound, "route not found"))
	})

	issuePolicy := middleware.NewAuthRateLimitPolicy(
		"issue",
		cfg.AuthRateLimit.IssueWindow,
		cfg.AuthRateLimit.IssueIPLimit,
		cfg.AuthRateLimit.IssueEmailLimit,
	)

	var (
		idempotency  = middleware.Idempotency(nil, logg)
		issueLimiter = func(next http.Handler) http.Handler { return next }
	)
	if infra.Redis != nil {
		idempotency = middleware.Idempotency(infra.Redis, logg)
		issueLimiter = middleware.AuthRateLimit(issuePolicy, infra.Redis, logg)
	}

	r.Get("/", controllers.Root())

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, readinessChecks(infra)))
	})

	if infra.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(infra.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.With(issueLimiter).Put("/users/{email}", controllers.IssueCredential(svcs.Customers, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", controllers.ListProducts(svcs.Products, logg))
			r.Post("/", controllers.CreateProduct(svcs.Products, logg))
			r.Get("/count", controllers.CountProducts(svcs.Products, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Products, logg))
			r.Put("/{productId}", controllers.UpsertProduct(svcs.Products, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(svcs.Products, logg))
		})
		r.Get("/categories/{category}/products", controllers.ListProductsByCategory(svcs.Products, logg))

		r.Route("/orders", func(r chi.Router) {
			r.With(idempotency).Put("/", ordercontrollers.Upsert(svcs.Orders, logg))
			r.Put("/replace", ordercontrollers.Replace(svcs.Orders, logg))
			r.Get("/", ordercontrollers.List(svcs.Orders, logg))
			r.Get("/count", ordercontrollers.Count(svcs.Orders, logg))
			r.Delete("/{storageKey}", ordercontrollers.Delete(svcs.Orders, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Get("/me", controllers.WhoAmI())
			r.Get("/customers/{email}/orders", ordercontrollers.CustomerOrders(svcs.Orders, logg))
		})

		r.With(middleware.OptionalAuth(cfg.JWT, logg), idempotency).
			Post("/payments/intents", paymentcontrollers.CreateIntent(svcs.Payments, logg))
	})

	return r
}

func readinessChecks(infra Infra) map[string]controllers.Pinger {
	checks := map[string]controllers.Pinger{}
	if infra.DB != nil {
		checks["db"] = infra.DB
	}
	if infra.Redis != nil {
		checks["redis"] = infra.Redis
	}
	if infra.PubSub != nil {
		checks["pubsub"] = infra.PubSub
	}
	return checks
}
