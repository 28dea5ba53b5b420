package reports

import (
	"encoding/json"
	"net/http"

	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// Handler handles HTTP requests for reporting rollups.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a new reports handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// GetAppointmentRollup handles GET /api/reports/appointments?period=weekly requests.
func (h *Handler) GetAppointmentRollup(w http.ResponseWriter, r *http.Request) {
	period, ok := ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		http.Error(w, "period must be weekly, quarterly, or yearly", http.StatusBadRequest)
		return
	}

	rows, err := h.store.AppointmentRows(r.Context())
	if err != nil {
		h.logger.Error("failed to load appointment rows", "error", err)
		http.Error(w, "failed to load appointments", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"period":  period,
		"buckets": AppointmentsByPeriod(rows, period),
	})
}

// GetRevenueRollup handles GET /api/reports/revenue?period=quarterly requests.
func (h *Handler) GetRevenueRollup(w http.ResponseWriter, r *http.Request) {
	period, ok := ParsePeriod(r.URL.Query().Get("period"))
	if !ok {
		http.Error(w, "period must be weekly, quarterly, or yearly", http.StatusBadRequest)
		return
	}

	rows, err := h.store.SalesRows(r.Context())
	if err != nil {
		h.logger.Error("failed to load sales rows", "error", err)
		http.Error(w, "failed to load sales", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"period":  period,
		"buckets": RevenueByPeriod(rows, period),
	})
}

// GetRecallFunnel handles GET /api/reports/recalls/funnel requests.
func (h *Handler) GetRecallFunnel(w http.ResponseWriter, r *http.Request) {
	rows, err := h.store.RecallRows(r.Context())
	if err != nil {
		h.logger.Error("failed to load recall rows", "error", err)
		http.Error(w, "failed to load recalls", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"funnel": RecallFunnel(rows),
		"total":  len(rows),
	})
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
