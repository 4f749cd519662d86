package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sahmly/engine/internal/adapter/http/handler"
	"github.com/sahmly/engine/internal/adapter/http/middleware"
	"github.com/sahmly/engine/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	PropertyHandler   *handler.PropertyHandler
	InvestmentHandler *handler.InvestmentHandler
	WalletHandler     *handler.WalletHandler
	AdminHandler      *handler.AdminHandler
	HealthHandler     *handler.HealthHandler
	IdempotencyStore  usecase.IdempotencyStore
	IdempotencyTTL    time.Duration
	RateLimiter       *middleware.RateLimiter
	RequestLogger     *middleware.LoggingMiddleware
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Recovery)
	r.Use(middleware.Metrics)
	if cfg.RequestLogger != nil {
		r.Use(cfg.RequestLogger.Wrap)
	}
	if cfg.RateLimiter != nil {
		r.Use(cfg.RateLimiter.Limit)
	}

	// Health and metrics endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Identity)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Property catalog and quotes
		r.Route("/properties", func(r chi.Router) {
			r.Get("/", cfg.PropertyHandler.List)
			r.Get("/{id}", cfg.PropertyHandler.Get)
			r.Get("/{id}/quote", cfg.PropertyHandler.Quote)
		})

		// Investments
		r.Route("/investments", func(r chi.Router) {
			r.Post("/", cfg.InvestmentHandler.Create)
			r.Get("/", cfg.InvestmentHandler.List)
			r.Get("/{id}", cfg.InvestmentHandler.Get)
		})

		// Wallet
		r.Route("/wallet", func(r chi.Router) {
			r.Post("/accounts", cfg.WalletHandler.OpenAccount)
			r.Get("/balance", cfg.WalletHandler.GetBalance)
			r.Get("/transactions", cfg.WalletHandler.ListTransactions)
			r.Post("/deposits", cfg.WalletHandler.Deposit)
			r.Post("/withdrawals", cfg.WalletHandler.Withdraw)
			r.Post("/bank-accounts", cfg.WalletHandler.AddBankAccount)
			r.Get("/bank-accounts", cfg.WalletHandler.ListBankAccounts)
		})

		// Back office. The gateway restricts these routes to operators.
		r.Route("/admin", func(r chi.Router) {
			r.Post("/properties", cfg.PropertyHandler.Create)
			r.Post("/transactions/{id}/settle", cfg.AdminHandler.SettleTransaction)
			r.Post("/investments/{id}/settle", cfg.InvestmentHandler.Settle)
			r.Post("/distributions", cfg.AdminHandler.RunDistribution)
			r.Get("/properties/{id}/distributions", cfg.AdminHandler.ListDistributions)
			r.Get("/properties/{id}/distributions/{period}", cfg.AdminHandler.GetDistribution)
			r.Post("/accounts/{id}/reconcile", cfg.AdminHandler.ReconcileAccount)
			r.Post("/reconcile", cfg.AdminHandler.ReconcileAll)
		})
	})

	return r
}
