// Package main provides the entrypoint for the WhereToLive server.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/wheretolive/wheretolive/internal/api"
	"github.com/wheretolive/wheretolive/internal/api/middleware"
	"github.com/wheretolive/wheretolive/internal/directory"
	"github.com/wheretolive/wheretolive/internal/provider/resilience"
	"github.com/wheretolive/wheretolive/internal/recommend/matchapi"
	"github.com/wheretolive/wheretolive/internal/telemetry"
	"github.com/wheretolive/wheretolive/internal/web"
)

// Version and BuildTime are set at compile time via ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	const serviceName = "wheretolive-api"

	// Load .env for local development; the file is optional
	_ = godotenv.Load()

	// Setup structured logging
	log := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Str("service", serviceName).
		Str("version", Version).
		Logger()

	log.Info().
		Str("build_time", BuildTime).
		Msg("starting WhereToLive")

	// Get configuration from environment
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	otlpEndpoint := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	if otlpEndpoint == "" {
		otlpEndpoint = "localhost:4317"
	}

	env := os.Getenv("APP_ENV")
	if env == "" {
		env = "development"
	}

	// Initialize OpenTelemetry
	ctx := context.Background()
	telemetryEnabled := os.Getenv("OTEL_ENABLED") == "true"

	tp, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    env,
		OTLPEndpoint:   otlpEndpoint,
		Enabled:        telemetryEnabled,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize telemetry")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := tp.Shutdown(shutdownCtx); shutdownErr != nil {
			log.Error().Err(shutdownErr).Msg("failed to shutdown telemetry")
		}
	}()

	if telemetryEnabled {
		log.Info().
			Str("otlp_endpoint", otlpEndpoint).
			Msg("OpenTelemetry initialized")
	}

	// Initialize metrics
	metrics, err := middleware.NewMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize metrics")
		os.Exit(1) //nolint:gocritic // intentional exit, telemetry cleanup is best-effort
	}
	providerMetrics, err := middleware.NewProviderMetrics()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize provider metrics")
		os.Exit(1)
	}

	// Initialize the page renderer
	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to parse page templates")
	}

	// Initialize the scoring service client
	client := matchapi.NewClient(matchapi.ClientConfig{
		BaseURL:  os.Getenv("RECOMMENDER_API_URL"),
		Registry: resilience.GlobalRegistry,
		Logger:   log,
	})
	log.Info().
		Str("base_url", client.BaseURL()).
		Msg("scoring service client initialized")

	// Initialize the country directory service
	directoryService := directory.NewService(directory.ServiceConfig{
		DatasetPath: os.Getenv("DATASET_PATH"),
		Logger:      log,
	})
	if _, err := os.Stat(directoryService.DatasetPath()); err != nil {
		log.Warn().
			Str("path", directoryService.DatasetPath()).
			Msg("dataset file not readable, about page will degrade")
	}

	// Create router with configuration
	router := api.NewRouter(api.RouterConfig{
		Version:          Version,
		BuildTime:        BuildTime,
		Logger:           log,
		ServiceName:      serviceName,
		Metrics:          metrics,
		ProviderMetrics:  providerMetrics,
		Renderer:         renderer,
		Provider:         client,
		DirectoryService: directoryService,
		Registry:         resilience.GlobalRegistry,
	})

	// Create HTTP server. The write timeout leaves headroom for the scoring
	// service's 30s request budget.
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().
			Str("addr", server.Addr).
			Msg("server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		os.Exit(1)
	}

	log.Info().Msg("server stopped")
}
