package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/cpapescrim1106/blueprintproject/internal/http/middleware"
	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/internal/outreach"
	"github.com/cpapescrim1106/blueprintproject/internal/reports"
	"github.com/cpapescrim1106/blueprintproject/internal/scoring"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IngestHandler      *ingest.Handler
	ScoringHandler     *scoring.Handler
	ReportsHandler     *reports.Handler
	OutreachHandler    *outreach.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	WebhookRateLimit   float64
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.OutreachHandler != nil {
			rate := cfg.WebhookRateLimit
			if rate <= 0 {
				rate = 10
			}
			public.With(httpmiddleware.RateLimit(rate, int(rate)*2)).
				Post("/webhooks/sms", cfg.OutreachHandler.ReceiveInbound)
		}
	})

	r.Route("/api", func(api chi.Router) {
		if cfg.IngestHandler != nil {
			api.Post("/ingestions", cfg.IngestHandler.CreateIngestion)
		}
		if cfg.ScoringHandler != nil {
			api.Get("/patients/{patientID}/score", cfg.ScoringHandler.GetPatientScore)
		}
		if cfg.ReportsHandler != nil {
			api.Route("/reports", func(r chi.Router) {
				r.Get("/appointments", cfg.ReportsHandler.GetAppointmentRollup)
				r.Get("/revenue", cfg.ReportsHandler.GetRevenueRollup)
				r.Get("/recalls/funnel", cfg.ReportsHandler.GetRecallFunnel)
			})
		}
		if cfg.OutreachHandler != nil {
			api.Route("/outreach", func(r chi.Router) {
				r.Post("/messages", cfg.OutreachHandler.CreateMessages)
				r.Get("/messages/{messageID}", cfg.OutreachHandler.GetMessage)
				r.Get("/inbound", cfg.OutreachHandler.ListInbound)
			})
		}
	})

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
