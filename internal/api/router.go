// Package api provides the HTTP surface for WhereToLive: the HTML pages and
// the JSON API.
package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/wheretolive/wheretolive/internal/api/handler"
	"github.com/wheretolive/wheretolive/internal/api/middleware"
	"github.com/wheretolive/wheretolive/internal/directory"
	"github.com/wheretolive/wheretolive/internal/provider/resilience"
	"github.com/wheretolive/wheretolive/internal/recommend"
	"github.com/wheretolive/wheretolive/internal/web"
)

// RouterConfig holds configuration for the router.
type RouterConfig struct {
	Version          string
	BuildTime        string
	Logger           zerolog.Logger
	ServiceName      string
	Metrics          *middleware.Metrics
	ProviderMetrics  *middleware.ProviderMetrics
	Renderer         *web.Renderer
	Provider         recommend.Provider
	DirectoryService *directory.Service
	Registry         *resilience.Registry
}

// NewRouter creates a new chi router with all routes configured.
func NewRouter(cfg RouterConfig) *chi.Mux {
	r := chi.NewRouter()

	// Set default service name if not provided
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "wheretolive-api"
	}

	registry := cfg.Registry
	if registry == nil {
		registry = resilience.GlobalRegistry
	}

	// Global middleware - order matters
	r.Use(middleware.RequestID)            // Generate/propagate request ID first
	r.Use(middleware.Tracing(serviceName)) // Distributed tracing
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.Middleware()) // HTTP metrics
	}
	r.Use(middleware.Logger(cfg.Logger))   // Structured logging
	r.Use(middleware.Recovery(cfg.Logger)) // Panic recovery
	r.Use(chimiddleware.RealIP)            // Real IP extraction
	r.Use(middleware.SecurityHeaders)      // Security headers (HSTS, CSP, etc.)
	r.Use(middleware.RequireTLS)           // TLS enforcement (enabled via REQUIRE_TLS=true)

	// Initialize handlers
	opsHandler := handler.NewOpsHandler(cfg.Version, cfg.BuildTime, cfg.DirectoryService, registry)
	pagesHandler := handler.NewPagesHandler(cfg.Renderer, cfg.Provider, cfg.DirectoryService, cfg.ProviderMetrics, cfg.Logger)
	countriesHandler := handler.NewCountriesHandler(cfg.DirectoryService, cfg.Logger)
	recommendationsHandler := handler.NewRecommendationsHandler(cfg.Provider, cfg.ProviderMetrics, cfg.Logger)

	// Create rate limit middleware for different endpoint categories
	expensiveRateLimit := middleware.RateLimitByIP(middleware.ExpensiveRateLimit) // 30 req/min
	standardRateLimit := middleware.RateLimitByIP(middleware.StandardRateLimit)   // 100 req/min

	// HTML pages
	r.Group(func(r chi.Router) {
		r.With(standardRateLimit).Get("/", pagesHandler.Home)
		// Submissions call the scoring service, so they get the strict limit
		r.With(expensiveRateLimit).Post("/", pagesHandler.SubmitPreferences)
		r.With(standardRateLimit).Get("/about", pagesHandler.About)
	})

	// API v1 routes
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)
		r.Use(middleware.RequireJSON)

		// Ops endpoints (public)
		r.Route("/ops", func(r chi.Router) {
			r.Get("/health", opsHandler.HealthCheck)
			r.Get("/ready", opsHandler.ReadinessCheck)
			r.Get("/status", opsHandler.SystemStatus)
		})

		// Country directory - standard rate limiting
		r.With(standardRateLimit).Get("/countries", countriesHandler.List)

		// Recommendations call the scoring service - strict rate limiting
		r.With(expensiveRateLimit).Post("/recommendations", recommendationsHandler.Recommend)
	})

	return r
}
