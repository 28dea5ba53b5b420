package outreach

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

var outreachTracer = otel.Tracer("blueprint.internal.outreach")

// Handler handles HTTP requests for patient SMS outreach.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new outreach handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type bulkSendRequest struct {
	Recipients []Recipient `json:"recipients"`
	Body       string      `json:"body"`
}

// CreateMessages handles POST /api/outreach/messages requests.
func (h *Handler) CreateMessages(w http.ResponseWriter, r *http.Request) {
	ctx, span := outreachTracer.Start(r.Context(), "outreach.CreateMessages")
	defer span.End()

	var req bulkSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}
	if len(req.Recipients) == 0 {
		http.Error(w, "at least one recipient is required", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.Int("outreach.recipients", len(req.Recipients)))

	result, err := h.service.SendBulk(ctx, req.Recipients, req.Body)
	if err != nil {
		if errors.Is(err, ErrEmptyBody) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		h.logger.Error("bulk send failed", "error", err)
		http.Error(w, "failed to send messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(result)
}

// GetMessage handles GET /api/outreach/messages/{messageID} requests.
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	ctx, span := outreachTracer.Start(r.Context(), "outreach.GetMessage")
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "messageID"))
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	span.SetAttributes(attribute.String("outreach.message_id", id.String()))

	msg, err := h.service.Message(ctx, id)
	if errors.Is(err, ErrMessageNotFound) {
		http.Error(w, "message not found", http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to load message", "message_id", id, "error", err)
		http.Error(w, "failed to load message", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"messageId":         msg.ID,
		"patientId":         msg.PatientID,
		"toNumber":          msg.ToNumber,
		"body":              msg.Body,
		"status":            msg.Status,
		"providerMessageId": msg.ProviderMessageID,
		"error":             msg.ErrorText,
		"createdAt":         msg.CreatedAt,
	})
}

// ListInbound handles GET /api/outreach/inbound requests.
func (h *Handler) ListInbound(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = parsed
	}

	messages, err := h.service.RecentInbound(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list inbound messages", "error", err)
		http.Error(w, "failed to list inbound messages", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"messages": messages, "count": len(messages)})
}

type inboundWebhookPayload struct {
	Body struct {
		ID      json.Number `json:"id"`
		Subject string      `json:"subject"`
		From    struct {
			PhoneNumber string `json:"phoneNumber"`
		} `json:"from"`
		To []struct {
			PhoneNumber string `json:"phoneNumber"`
		} `json:"to"`
	} `json:"body"`
}

// ReceiveInbound handles POST /webhooks/sms notifications from the provider.
func (h *Handler) ReceiveInbound(w http.ResponseWriter, r *http.Request) {
	ctx, span := outreachTracer.Start(r.Context(), "outreach.ReceiveInbound")
	defer span.End()

	var payload inboundWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "invalid JSON payload", http.StatusBadRequest)
		return
	}

	msg := &InboundMessage{
		FromNumber:        payload.Body.From.PhoneNumber,
		Body:              payload.Body.Subject,
		ProviderMessageID: payload.Body.ID.String(),
	}
	if len(payload.Body.To) > 0 {
		msg.ToNumber = payload.Body.To[0].PhoneNumber
	}

	if err := h.service.HandleInbound(ctx, msg); err != nil {
		h.logger.Error("failed to record inbound message", "error", err)
		http.Error(w, "failed to record inbound message", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
