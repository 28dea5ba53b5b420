package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/cpapescrim1106/blueprintproject/internal/config"
	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

func TestBuildRedisClient(t *testing.T) {
	srv := miniredis.RunT(t)
	logger := logging.New("error")

	cfg := &appconfig.Config{RedisAddr: srv.Addr()}
	client := BuildRedisClient(context.Background(), cfg, logger, true)
	require.NotNil(t, client)
	defer func() { _ = client.Close() }()

	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{}, logger, true))

	// Verify mode returns nil when the server is unreachable.
	srv.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logger, true))
}

func TestBuildIngestPipeline(t *testing.T) {
	srv := miniredis.RunT(t)
	logger := logging.New("error")
	store := ingest.NewInMemoryStore()

	cfg := &appconfig.Config{
		RedisAddr:           srv.Addr(),
		IngestChunkSize:     50,
		IngestLockTTL:       time.Minute,
		UseDistributedLocks: true,
	}
	client := BuildRedisClient(context.Background(), cfg, logger, true)
	require.NotNil(t, client)
	defer func() { _ = client.Close() }()

	pipeline := BuildIngestPipeline(store, cfg, client, logger, nil)
	require.NotNil(t, pipeline)

	result, err := pipeline.Run(context.Background(), ingest.BatchRequest{
		ReportName:  "Appointments",
		CapturedAt:  "1756700000123",
		SourceKey:   "appointments_1756700000123",
		TargetTable: ingest.TargetAppointments,
		Rows:        nil,
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.Inserted)

	// Without redis the pipeline still works on in-process locks.
	pipeline = BuildIngestPipeline(store, cfg, nil, logger, nil)
	_, err = pipeline.Run(context.Background(), ingest.BatchRequest{
		ReportName:  "Appointments",
		CapturedAt:  "1756700000123",
		SourceKey:   "appointments_1756700000123",
		TargetTable: ingest.TargetAppointments,
	})
	require.NoError(t, err)
}
