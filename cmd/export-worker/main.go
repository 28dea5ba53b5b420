package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/cpapescrim1106/blueprintproject/cmd/mainconfig"
	"github.com/cpapescrim1106/blueprintproject/internal/app/bootstrap"
	appconfig "github.com/cpapescrim1106/blueprintproject/internal/config"
	"github.com/cpapescrim1106/blueprintproject/internal/exportfeed"
	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/internal/observability/metrics"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

func main() {
	// Load .env file when present; environment variables win otherwise.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" || cfg.ExportBucket == "" || cfg.ExportQueueURL == "" {
		logger.Error("export worker requires DATABASE_URL, EXPORT_BUCKET, and EXPORT_QUEUE_URL")
		os.Exit(1)
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		defer func() { _ = redisClient.Close() }()
	}

	store := ingest.NewPostgresStore(pool)
	pipeline := bootstrap.BuildIngestPipeline(store, cfg, redisClient, logger, metrics.NewIngestMetrics(nil))

	downloader := exportfeed.NewDownloader(s3.NewFromConfig(awsCfg), cfg.ExportBucket)
	worker := exportfeed.NewWorker(sqs.NewFromConfig(awsCfg), cfg.ExportQueueURL, downloader, pipeline, logger).
		WithPollInterval(int32(cfg.ExportPollWaitSecs))

	go worker.Run(ctx)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("export worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
