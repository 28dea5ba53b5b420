package scoring

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// Handler handles HTTP requests for patient scores.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new scoring handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GetPatientScore handles GET /api/patients/{patientID}/score requests.
func (h *Handler) GetPatientScore(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patientID")
	if patientID == "" {
		http.Error(w, "missing patient id", http.StatusBadRequest)
		return
	}

	score, err := h.service.ScorePatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("failed to score patient", "error", err, "patient_id", patientID)
		http.Error(w, "failed to score patient", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(score)
}
