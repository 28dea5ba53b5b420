package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port          string
	Env           string
	PublicBaseURL string
	LogLevel      string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisTLS      bool

	// Ingestion tuning.
	IngestChunkSize     int
	IngestLockTTL       time.Duration
	UseDistributedLocks bool

	AWSRegion           string
	AWSAccessKeyID      string
	AWSSecretAccessKey  string
	AWSEndpointOverride string

	// Export feed (report files land in S3, notifications on SQS).
	ExportBucket       string
	ExportQueueURL     string
	ExportPollWaitSecs int

	// RingCentral SMS outreach.
	RingCentralBaseURL      string
	RingCentralClientID     string
	RingCentralClientSecret string
	RingCentralAssertionKey string
	RingCentralFromNumber   string
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:          getEnv("PORT", "8080"),
		Env:           getEnv("ENV", "development"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisTLS:      getEnvAsBool("REDIS_TLS", false),

		IngestChunkSize:     getEnvAsInt("INGEST_CHUNK_SIZE", 200),
		IngestLockTTL:       getEnvAsDuration("INGEST_LOCK_TTL", 2*time.Minute),
		UseDistributedLocks: getEnvAsBool("USE_DISTRIBUTED_LOCKS", false),

		AWSRegion:           getEnv("AWS_REGION", "us-east-2"),
		AWSAccessKeyID:      getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretAccessKey:  getEnv("AWS_SECRET_ACCESS_KEY", ""),
		AWSEndpointOverride: getEnv("AWS_ENDPOINT_OVERRIDE", ""),

		ExportBucket:       getEnv("EXPORT_BUCKET", ""),
		ExportQueueURL:     getEnv("EXPORT_QUEUE_URL", ""),
		ExportPollWaitSecs: getEnvAsInt("EXPORT_POLL_WAIT_SECONDS", 20),

		RingCentralBaseURL:      getEnv("RINGCENTRAL_BASE_URL", ""),
		RingCentralClientID:     getEnv("RINGCENTRAL_CLIENT_ID", ""),
		RingCentralClientSecret: getEnv("RINGCENTRAL_CLIENT_SECRET", ""),
		RingCentralAssertionKey: getEnv("RINGCENTRAL_ASSERTION_KEY", ""),
		RingCentralFromNumber:   getEnv("RINGCENTRAL_FROM_NUMBER", ""),
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool retrieves an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}
