package bootstrap

import (
	"context"
	"crypto/tls"
	"strings"

	"github.com/redis/go-redis/v9"

	appconfig "github.com/cpapescrim1106/blueprintproject/internal/config"
	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/internal/observability/metrics"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// BuildRedisClient returns a configured Redis client or nil when disabled.
// When verify is true, a ping is issued and failures return nil.
func BuildRedisClient(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, verify bool) *redis.Client {
	if cfg == nil || strings.TrimSpace(cfg.RedisAddr) == "" {
		return nil
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	redisOptions := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOptions.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	client := redis.NewClient(redisOptions)
	if !verify {
		return client
	}
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("redis not available", "error", err)
		return nil
	}
	return client
}

// BuildIngestPipeline wires the ingestion pipeline over the given store.
// When distributed locking is enabled and Redis is reachable, source keys
// are serialized across instances; otherwise an in-process lock is used.
func BuildIngestPipeline(store ingest.Store, cfg *appconfig.Config, redisClient *redis.Client, logger *logging.Logger, m *metrics.IngestMetrics) *ingest.Pipeline {
	pipeline := ingest.NewPipeline(store, logger).WithMetrics(m)
	if cfg == nil {
		return pipeline
	}
	pipeline.WithChunkSize(cfg.IngestChunkSize)

	if cfg.UseDistributedLocks {
		if redisClient == nil {
			logger.Warn("distributed ingest locks requested but redis is unavailable; using in-process locks")
		} else {
			pipeline.WithLocker(ingest.NewRedisLock(redisClient).WithTTL(cfg.IngestLockTTL))
			logger.Info("distributed ingest locks enabled", "ttl", cfg.IngestLockTTL.String())
		}
	}
	return pipeline
}
