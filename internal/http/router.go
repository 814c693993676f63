package http

import (
	"context"
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront/internal/logging"
	"github.com/fjod/go_cart/storefront/internal/metrics"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/sirupsen/logrus"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouterConfig struct {
	Auth               *AuthHandler
	Products           *ProductHandler
	Cart               *CartHandler
	Orders             *OrdersHandler
	Verifier           TokenVerifier
	AuthLimiter        *RateLimiter
	Health             []Pinger
	AllowedOrigins     []string
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	Log                logrus.FieldLogger
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(cfg.Log))
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	if len(cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders:   []string{"Authorization", "Content-Type"},
			AllowCredentials: true, // session cookie
			MaxAge:           600,
		}))
	}
	if cfg.MaxRequestBodySize > 0 {
		r.Use(MaxBodySize(cfg.MaxRequestBodySize))
	}

	r.Get("/health", healthHandler(cfg.Health, cfg.Log))
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			if cfg.AuthLimiter != nil {
				r.Use(cfg.AuthLimiter.Handler)
			}
			r.Post("/register", cfg.Auth.Register)
			r.Post("/login", cfg.Auth.Login)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/products", cfg.Products.ListProducts)
			r.Get("/product/{id}", cfg.Products.GetProduct)

			r.Group(func(r chi.Router) {
				r.Use(AuthGate(cfg.Verifier, cfg.Log))

				r.Put("/addToCart/{id}", cfg.Cart.AddItem)
				r.Get("/cart", cfg.Cart.GetCart)
				r.Delete("/deleteFromCart/{id}", cfg.Cart.RemoveItem)

				r.Put("/buy/{id}", cfg.Orders.Buy)
				r.Get("/itemsBought", cfg.Orders.ItemsBought)
				r.Get("/order/{id}", cfg.Orders.GetOrder)

				r.Delete("/delete", cfg.Auth.DeleteAccount)
				r.Get("/logout", cfg.Auth.Logout)
			})
		})
	})

	return r
}

// healthHandler reports 503 when any dependency fails to answer. The cause
// is logged, never returned.
func healthHandler(deps []Pinger, log logrus.FieldLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, dep := range deps {
			if err := dep.Ping(ctx); err != nil {
				log.WithError(err).Error("health check failed")
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
