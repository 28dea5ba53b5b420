package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cpapescrim1106/blueprintproject/internal/api/router"
	"github.com/cpapescrim1106/blueprintproject/internal/app/bootstrap"
	appconfig "github.com/cpapescrim1106/blueprintproject/internal/config"
	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/internal/observability/metrics"
	"github.com/cpapescrim1106/blueprintproject/internal/outreach"
	"github.com/cpapescrim1106/blueprintproject/internal/outreach/ringcentralclient"
	"github.com/cpapescrim1106/blueprintproject/internal/reports"
	"github.com/cpapescrim1106/blueprintproject/internal/scoring"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

func main() {
	// Load .env file when present; environment variables win otherwise.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting blueprint API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	if cfg.DatabaseURL == "" {
		logger.Error("api server requires DATABASE_URL")
		os.Exit(1)
	}
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	ingestMetrics := metrics.NewIngestMetrics(nil)
	outreachMetrics := metrics.NewOutreachMetrics(nil)

	ingestStore := ingest.NewPostgresStore(pool)
	pipeline := bootstrap.BuildIngestPipeline(ingestStore, cfg, redisClient, logger, ingestMetrics)

	scoringService := scoring.NewService(scoring.NewPostgresSource(pool), logger)
	reportsStore := reports.NewStore(pool)

	routerCfg := &router.Config{
		Logger:         logger,
		IngestHandler:  ingest.NewHandler(pipeline, logger),
		ScoringHandler: scoring.NewHandler(scoringService, logger),
		ReportsHandler: reports.NewHandler(reportsStore, logger),
		MetricsHandler: promhttp.Handler(),
	}

	if cfg.RingCentralClientID != "" && cfg.RingCentralClientSecret != "" {
		rcClient, err := ringcentralclient.New(ringcentralclient.Config{
			BaseURL:      cfg.RingCentralBaseURL,
			ClientID:     cfg.RingCentralClientID,
			ClientSecret: cfg.RingCentralClientSecret,
			AssertionKey: cfg.RingCentralAssertionKey,
			FromNumber:   cfg.RingCentralFromNumber,
			Timeout:      10 * time.Second,
			Logger:       logger.Logger,
		})
		if err != nil {
			logger.Error("failed to create ringcentral client", "error", err)
			os.Exit(1)
		}
		outreachService := outreach.NewService(
			outreach.NewRingCentralProvider(rcClient),
			outreach.NewStore(pool),
			logger,
		).WithMetrics(outreachMetrics)
		routerCfg.OutreachHandler = outreach.NewHandler(outreachService, logger)
	} else {
		logger.Warn("sms outreach disabled (RINGCENTRAL_CLIENT_ID or RINGCENTRAL_CLIENT_SECRET not set)")
	}

	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
