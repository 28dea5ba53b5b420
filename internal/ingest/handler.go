package ingest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

var ingestTracer = otel.Tracer("blueprint.internal.ingest")

// Handler handles HTTP requests for report ingestion.
type Handler struct {
	pipeline *Pipeline
	logger   *logging.Logger
}

// NewHandler creates a new ingestion handler.
func NewHandler(pipeline *Pipeline, logger *logging.Logger) *Handler {
	return &Handler{pipeline: pipeline, logger: logger}
}

// ingestRequest mirrors BatchRequest at the wire, accepting capturedAt as
// either a JSON number or a string.
type ingestRequest struct {
	ReportName  string          `json:"reportName"`
	CapturedAt  json.RawMessage `json:"capturedAt"`
	SourceKey   string          `json:"sourceKey"`
	TargetTable string          `json:"targetTable"`
	Rows        []Row           `json:"rows"`
}

// CreateIngestion handles POST /api/ingestions requests.
func (h *Handler) CreateIngestion(w http.ResponseWriter, r *http.Request) {
	ctx, span := ingestTracer.Start(r.Context(), "ingest.batch")
	defer span.End()

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode ingest request", "error", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	batch := BatchRequest{
		ReportName:  req.ReportName,
		CapturedAt:  strings.Trim(string(req.CapturedAt), `"`),
		SourceKey:   req.SourceKey,
		TargetTable: TargetTable(req.TargetTable),
		Rows:        req.Rows,
	}
	span.SetAttributes(
		attribute.String("blueprint.report", batch.ReportName),
		attribute.String("blueprint.source_key", batch.SourceKey),
		attribute.String("blueprint.target_table", string(batch.TargetTable)),
		attribute.Int("blueprint.rows", len(batch.Rows)),
	)

	result, err := h.pipeline.Run(ctx, batch)
	if err != nil {
		span.RecordError(err)
		if isValidationError(err) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("ingestion failed", "error", err, "source_key", batch.SourceKey)
		http.Error(w, "ingestion failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(result)
}

func isValidationError(err error) bool {
	return errors.Is(err, ErrMissingReportName) ||
		errors.Is(err, ErrMissingSourceKey) ||
		errors.Is(err, ErrBadCapturedAt) ||
		errors.Is(err, ErrUnknownTargetTable)
}
