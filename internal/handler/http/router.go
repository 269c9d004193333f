package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ahmad5farah/AmaKart/internal/account"
	"github.com/ahmad5farah/AmaKart/internal/auth"
	"github.com/ahmad5farah/AmaKart/internal/catalog"
	"github.com/ahmad5farah/AmaKart/internal/checkout"
	"github.com/ahmad5farah/AmaKart/internal/notify"
	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/pkg/health"
	"github.com/ahmad5farah/AmaKart/pkg/middleware"
)

// RouterDeps holds everything the router wires together.
type RouterDeps struct {
	ServiceName string

	States   *state.Manager
	Catalog  *catalog.Service
	Checkout *checkout.Service
	Account  *account.Service
	Auth     *auth.Service
	Notifier *notify.Notifier

	Tokens      middleware.TokenValidator
	Health      *health.Handler
	Metrics     *middleware.HTTPMetrics
	Gatherer    prometheus.Gatherer
	AuthLimiter *middleware.RateLimiter
	CORS        middleware.CORSConfig

	// AdminCIDRs may reach pprof and the cache admin endpoint.
	AdminCIDRs     []string
	ProductMaxAge  time.Duration
	RequestTimeout time.Duration

	Logger *slog.Logger
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()
	logger := d.Logger

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Tracing(d.ServiceName))
	r.Use(middleware.CORS(d.CORS))
	r.Use(middleware.VisitorSession)
	r.Use(middleware.Authenticate(d.Tokens))
	r.Use(middleware.RequestLogger(logger))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware)
	}
	r.Use(chimw.Compress(5))
	if d.RequestTimeout > 0 {
		r.Use(chimw.Timeout(d.RequestTimeout))
	}

	// Health check endpoints
	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))

	// Pprof debug endpoints with IP allowlist.
	middleware.RegisterPprof(r, d.AdminCIDRs, logger)

	products := NewProductHandler(d.Catalog, logger)
	cart := NewCartHandler(d.States, d.Catalog, logger)
	wishlist := NewWishlistHandler(d.States, d.Catalog, logger)
	prefs := NewPreferencesHandler(d.States, logger)
	checkoutHandler := NewCheckoutHandler(d.States, d.Checkout, logger)
	authHandler := NewAuthHandler(d.Auth, d.States, logger)
	accountHandler := NewAccountHandler(d.States, d.Account, logger)
	contact := NewContactHandler(d.Notifier, logger)

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(d.ProductMaxAge))
			r.Get("/products", products.List)
			r.Get("/products/featured", products.Featured)
			r.Get("/products/{productID}", products.Get)
			r.Get("/products/{productID}/related", products.Related)
			r.Get("/categories", products.Categories)
		})

		r.With(middleware.IPAllowlist(d.AdminCIDRs, logger)).
			Post("/admin/cache/clear", products.ClearCache)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NoStore)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", cart.Get)
				r.Delete("/", cart.Clear)
				r.Post("/items", cart.AddItem)
				r.Put("/items/{productID}", cart.UpdateQuantity)
				r.Delete("/items/{productID}", cart.RemoveItem)
			})

			r.Route("/wishlist", func(r chi.Router) {
				r.Get("/", wishlist.Get)
				r.Delete("/", wishlist.Clear)
				r.Post("/items", wishlist.AddItem)
				r.Post("/items/{productID}/toggle", wishlist.Toggle)
				r.Delete("/items/{productID}", wishlist.RemoveItem)
				r.Post("/move-to-cart", wishlist.MoveToCart)
			})

			r.Get("/preferences", prefs.Get)
			r.Put("/preferences", prefs.Update)

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/summary", checkoutHandler.Summary)
				r.Post("/card", checkoutHandler.ValidateCard)
				r.Post("/orders", checkoutHandler.PlaceOrder)
			})

			r.Route("/auth", func(r chi.Router) {
				if d.AuthLimiter != nil {
					r.Use(d.AuthLimiter.Middleware)
				}
				r.Post("/signin", authHandler.SignIn)
				r.Post("/register", authHandler.Register)
				r.Post("/signout", authHandler.SignOut)
				r.Post("/password-reset", authHandler.RequestPasswordReset)
				r.Post("/password-strength", authHandler.PasswordStrength)
			})

			r.Route("/account", func(r chi.Router) {
				r.Use(middleware.RequireAuth)
				r.Get("/", accountHandler.Dashboard)
				r.Put("/password", authHandler.ChangePassword)
				r.Get("/orders", accountHandler.Orders)
				r.Get("/orders/{orderID}", accountHandler.Order)
				r.Post("/orders/{orderID}/cancel", accountHandler.Cancel)
				r.Post("/orders/{orderID}/reorder", accountHandler.Reorder)
			})

			r.Post("/contact", contact.Contact)
			r.Post("/newsletter", contact.Subscribe)
		})
	})

	return r
}
