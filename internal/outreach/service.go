package outreach

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/cpapescrim1106/blueprintproject/internal/observability/metrics"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// Messages is the persistence surface the outreach service depends on.
type Messages interface {
	CreateOutbound(ctx context.Context, patientID, toNumber, body string) (uuid.UUID, error)
	MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error
	MarkFailed(ctx context.Context, id uuid.UUID, errorText string) error
	GetOutbound(ctx context.Context, id uuid.UUID) (*OutboundMessage, error)
	RecordInbound(ctx context.Context, msg *InboundMessage) error
	RecentInbound(ctx context.Context, limit int) ([]InboundMessage, error)
}

// Recipient identifies one patient phone number in a bulk send.
type Recipient struct {
	PatientID string `json:"patientId"`
	ToNumber  string `json:"toNumber"`
}

// SendOutcome reports the result of one recipient in a bulk send.
type SendOutcome struct {
	MessageID         uuid.UUID `json:"messageId"`
	ToNumber          string    `json:"toNumber"`
	Status            string    `json:"status"`
	ProviderMessageID string    `json:"providerMessageId,omitempty"`
	Error             string    `json:"error,omitempty"`
}

// BulkResult summarizes a bulk send.
type BulkResult struct {
	Sent     int           `json:"sent"`
	Failed   int           `json:"failed"`
	Outcomes []SendOutcome `json:"outcomes"`
}

// Service sends patient SMS through the configured provider and records
// every attempt.
type Service struct {
	provider Provider
	store    Messages
	logger   *logging.Logger
	metrics  *metrics.OutreachMetrics
}

// NewService creates an outreach service.
func NewService(provider Provider, store Messages, logger *logging.Logger) *Service {
	if provider == nil {
		panic("outreach: provider required")
	}
	if store == nil {
		panic("outreach: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{provider: provider, store: store, logger: logger}
}

// WithMetrics attaches outreach metrics.
func (s *Service) WithMetrics(m *metrics.OutreachMetrics) *Service {
	s.metrics = m
	return s
}

// ErrEmptyBody is returned when a bulk send has no message text.
var ErrEmptyBody = errors.New("outreach: message body is required")

// SendBulk sends body to every recipient. A provider failure for one
// recipient is recorded on that message and does not stop the rest.
func (s *Service) SendBulk(ctx context.Context, recipients []Recipient, body string) (*BulkResult, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	result := &BulkResult{Outcomes: make([]SendOutcome, 0, len(recipients))}
	for _, recipient := range recipients {
		to := strings.TrimSpace(recipient.ToNumber)
		if to == "" {
			result.Failed++
			result.Outcomes = append(result.Outcomes, SendOutcome{Status: StatusFailed, Error: "recipient phone number is required"})
			s.metrics.ObserveOutbound(StatusFailed)
			continue
		}

		id, err := s.store.CreateOutbound(ctx, recipient.PatientID, to, body)
		if err != nil {
			return nil, err
		}

		providerID, err := s.provider.SendText(ctx, to, body)
		if err != nil {
			if markErr := s.store.MarkFailed(ctx, id, err.Error()); markErr != nil {
				s.logger.Error("failed to record send failure", "message_id", id, "error", markErr)
			}
			s.logger.Warn("outbound message failed", "message_id", id, "to", to, "error", err)
			s.metrics.ObserveOutbound(StatusFailed)
			result.Failed++
			result.Outcomes = append(result.Outcomes, SendOutcome{MessageID: id, ToNumber: to, Status: StatusFailed, Error: err.Error()})
			continue
		}

		if err := s.store.MarkSent(ctx, id, providerID); err != nil {
			return nil, err
		}
		s.metrics.ObserveOutbound(StatusSent)
		result.Sent++
		result.Outcomes = append(result.Outcomes, SendOutcome{MessageID: id, ToNumber: to, Status: StatusSent, ProviderMessageID: providerID})
	}
	s.logger.Info("bulk send complete", "recipients", len(recipients), "sent", result.Sent, "failed", result.Failed)
	return result, nil
}

// Message loads one outbound message. When the provider accepted the
// message, the provider's current delivery status is layered on top of the
// stored record; provider lookup failures fall back to the stored status.
func (s *Service) Message(ctx context.Context, id uuid.UUID) (*OutboundMessage, error) {
	msg, err := s.store.GetOutbound(ctx, id)
	if err != nil {
		return nil, err
	}
	if msg.ProviderMessageID == "" {
		return msg, nil
	}
	providerMsg, err := s.provider.FetchMessage(ctx, msg.ProviderMessageID)
	if err != nil {
		s.logger.Warn("provider message lookup failed", "message_id", id, "provider_message_id", msg.ProviderMessageID, "error", err)
		return msg, nil
	}
	if providerMsg.Status != "" {
		msg.Status = strings.ToLower(providerMsg.Status)
	}
	return msg, nil
}

// HandleInbound records one patient reply delivered by the provider webhook.
func (s *Service) HandleInbound(ctx context.Context, msg *InboundMessage) error {
	if strings.TrimSpace(msg.FromNumber) == "" {
		return fmt.Errorf("outreach: inbound message missing sender number")
	}
	if err := s.store.RecordInbound(ctx, msg); err != nil {
		s.metrics.ObserveInbound("error")
		return err
	}
	s.metrics.ObserveInbound("received")
	s.logger.Info("inbound message recorded", "from", msg.FromNumber, "provider_message_id", msg.ProviderMessageID)
	return nil
}

// RecentInbound lists the newest patient replies.
func (s *Service) RecentInbound(ctx context.Context, limit int) ([]InboundMessage, error) {
	return s.store.RecentInbound(ctx, limit)
}
