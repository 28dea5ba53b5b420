package router

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := logging.New("error")
	pipeline := ingest.NewPipeline(ingest.NewInMemoryStore(), logger)
	registry := prometheus.NewRegistry()
	return New(&Config{
		Logger:         logger,
		IngestHandler:  ingest.NewHandler(pipeline, logger),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	})
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestIngestionRoute(t *testing.T) {
	router := newTestRouter(t)
	payload := `{
		"reportName": "Appointments",
		"capturedAt": 1756700000123,
		"sourceKey": "appointments_1756700000123",
		"targetTable": "appointments",
		"rows": [{"rowIndex": 0, "data": {"Location": "Main St", "Patient ID": "1042", "Appointment date": "1/15/2026", "Appointment type": "Hearing Test", "Provider": "Dr. Lane"}}]
	}`
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ingestions", strings.NewReader(payload)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUnconfiguredRoutesReturn404(t *testing.T) {
	router := newTestRouter(t)
	for _, path := range []string{
		"/api/reports/appointments",
		"/api/outreach/inbound",
		"/api/patients/1042/score",
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}
