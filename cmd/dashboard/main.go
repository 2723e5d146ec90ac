package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hewittco/portfolio-dashboard-go/internal/config"
	"github.com/hewittco/portfolio-dashboard-go/internal/domain"
	"github.com/hewittco/portfolio-dashboard-go/internal/handler"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/cache"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/observability"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/phorest"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/resilience"
	"github.com/hewittco/portfolio-dashboard-go/internal/infra/supabase"
	"github.com/hewittco/portfolio-dashboard-go/internal/service"

	"go.uber.org/zap"
)

func main() {
	// --- Load .env file (for local development) ---
	_ = config.LoadDotEnv(".env")

	// --- Config ---
	cfg := config.Load()

	// --- Logger ---
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	logger.Info("configuration loaded",
		zap.Int("port", cfg.Port),
		zap.String("log_level", cfg.LogLevel),
		zap.Duration("http_timeout", cfg.HTTPTimeout),
		zap.Duration("report_cache_ttl", cfg.ReportCacheTTL),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_backoff", cfg.InitialBackoff),
		zap.Int("max_concurrency", cfg.MaxConcurrency),
	)

	// --- Tracing ---
	shutdown, err := observability.InitTracer(cfg.OTLPEndpoint, "portfolio-dashboard")
	if err != nil {
		logger.Fatal("failed to init tracer", zap.Error(err))
	}
	defer shutdown(context.Background())

	// --- Metrics ---
	metrics := observability.NewMetrics()

	// --- Cache ---
	reportCache := cache.New[*domain.CommissionReport](cfg.ReportCacheTTL)

	// --- Resilience ---
	resilienceCfg := resilience.Config{
		MaxRetries:     cfg.MaxRetries,
		InitialBackoff: cfg.InitialBackoff,
		MaxConcurrency: cfg.MaxConcurrency,
	}
	supabaseCB := resilience.NewCircuitBreaker("supabase")
	phorestCB := resilience.NewCircuitBreaker("phorest")
	bulkhead := resilience.NewBulkhead(cfg.MaxConcurrency)

	// --- Clients ---
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	if cfg.SupabaseURL == "" {
		logger.Warn("SUPABASE_URL not set, project tracker routes will fail")
	}
	supabaseClient := supabase.NewClient(
		httpClient,
		cfg.SupabaseURL,
		cfg.SupabaseAnonKey,
		cfg.SupabaseServiceKey,
		cfg.AttachmentsBucket,
		supabaseCB,
		resilienceCfg,
		metrics,
		logger,
	)

	phorestClient := phorest.NewClient(
		httpClient,
		phorest.Config{
			APIURL:     cfg.PhorestAPIURL,
			BusinessID: cfg.PhorestBusinessID,
			Username:   cfg.PhorestUsername,
			Password:   cfg.PhorestPassword,
		},
		phorestCB,
		bulkhead,
		metrics,
		logger,
	)
	if !phorestClient.Configured() {
		logger.Warn("Phorest credentials incomplete, commission reports unavailable")
	}

	// --- Services ---
	commissionSvc := service.NewCommissionService(phorestClient, reportCache, metrics, logger)
	trackerSvc := service.NewTrackerService(supabaseClient, supabaseClient, metrics, logger)

	// --- Router ---
	router := handler.NewRouter(handler.Dependencies{
		Tracker:            trackerSvc,
		Commission:         commissionSvc,
		SupabaseConfigured: func() bool { return cfg.SupabaseURL != "" && cfg.SupabaseAnonKey != "" },
		BookingConfigured:  phorestClient.Configured,
		Metrics:            metrics,
		Logger:             logger,
	})

	// --- Server ---
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// --- Graceful shutdown ---
	go func() {
		logger.Info("server starting", zap.Int("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced shutdown", zap.Error(err))
	}

	logger.Info("server stopped")
}
