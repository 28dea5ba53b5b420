package outreach

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Outbound message lifecycle statuses.
const (
	StatusQueued = "queued"
	StatusSent   = "sent"
	StatusFailed = "failed"
)

// ErrMessageNotFound is returned when an outbound message id is unknown.
var ErrMessageNotFound = errors.New("outreach: message not found")

// OutboundMessage is one SMS we attempted to send to a patient.
type OutboundMessage struct {
	ID                uuid.UUID
	PatientID         string
	ToNumber          string
	Body              string
	Status            string
	ProviderMessageID string
	ErrorText         string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// InboundMessage is one SMS reply received from a patient.
type InboundMessage struct {
	ID                uuid.UUID
	FromNumber        string
	ToNumber          string
	Body              string
	ProviderMessageID string
	ReceivedAt        time.Time
}

// PgxPool is the subset of pgxpool.Pool the outreach store needs.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists outreach messages in Postgres.
type Store struct {
	pool PgxPool
}

// NewStore initializes an outreach store backed by pgxpool.
func NewStore(pool PgxPool) *Store {
	if pool == nil {
		panic("outreach: pgx pool required")
	}
	return &Store{pool: pool}
}

// CreateOutbound records a queued outbound message and returns its id.
func (s *Store) CreateOutbound(ctx context.Context, patientID, toNumber, body string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO outbound_messages (id, patient_id, to_number, body, status, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, NOW(), NOW())
	`, id, patientID, toNumber, body, StatusQueued)
	if err != nil {
		return uuid.Nil, fmt.Errorf("outreach: insert outbound message: %w", err)
	}
	return id, nil
}

// MarkSent transitions a queued message to sent with its provider id.
func (s *Store) MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE outbound_messages
		SET status = $2, provider_message_id = $3, updated_at = NOW()
		WHERE id = $1
	`, id, StatusSent, providerMessageID)
	if err != nil {
		return fmt.Errorf("outreach: mark message sent: %w", err)
	}
	return nil
}

// MarkFailed transitions a queued message to failed with the provider error.
func (s *Store) MarkFailed(ctx context.Context, id uuid.UUID, errorText string) error {
	_, err := s.pool.Exec(ctx, `
		UPDATE outbound_messages
		SET status = $2, error_text = $3, updated_at = NOW()
		WHERE id = $1
	`, id, StatusFailed, errorText)
	if err != nil {
		return fmt.Errorf("outreach: mark message failed: %w", err)
	}
	return nil
}

// GetOutbound loads one outbound message by id.
func (s *Store) GetOutbound(ctx context.Context, id uuid.UUID) (*OutboundMessage, error) {
	var (
		msg        OutboundMessage
		patientID  *string
		providerID *string
		errorText  *string
	)
	err := s.pool.QueryRow(ctx, `
		SELECT id, patient_id, to_number, body, status, provider_message_id, error_text, created_at, updated_at
		FROM outbound_messages
		WHERE id = $1
	`, id).Scan(&msg.ID, &patientID, &msg.ToNumber, &msg.Body, &msg.Status, &providerID, &errorText, &msg.CreatedAt, &msg.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMessageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("outreach: get outbound message: %w", err)
	}
	if patientID != nil {
		msg.PatientID = *patientID
	}
	if providerID != nil {
		msg.ProviderMessageID = *providerID
	}
	if errorText != nil {
		msg.ErrorText = *errorText
	}
	return &msg, nil
}

// RecordInbound stores a patient reply received from the provider webhook.
func (s *Store) RecordInbound(ctx context.Context, msg *InboundMessage) error {
	if msg.ID == uuid.Nil {
		msg.ID = uuid.New()
	}
	if msg.ReceivedAt.IsZero() {
		msg.ReceivedAt = time.Now().UTC()
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO inbound_messages (id, from_number, to_number, body, provider_message_id, received_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)
	`, msg.ID, msg.FromNumber, msg.ToNumber, msg.Body, msg.ProviderMessageID, msg.ReceivedAt)
	if err != nil {
		return fmt.Errorf("outreach: insert inbound message: %w", err)
	}
	return nil
}

// RecentInbound returns the newest patient replies up to limit.
func (s *Store) RecentInbound(ctx context.Context, limit int) ([]InboundMessage, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, from_number, to_number, body, COALESCE(provider_message_id, ''), received_at
		FROM inbound_messages
		ORDER BY received_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("outreach: list inbound messages: %w", err)
	}
	defer rows.Close()

	var out []InboundMessage
	for rows.Next() {
		var msg InboundMessage
		if err := rows.Scan(&msg.ID, &msg.FromNumber, &msg.ToNumber, &msg.Body, &msg.ProviderMessageID, &msg.ReceivedAt); err != nil {
			return nil, fmt.Errorf("outreach: scan inbound message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}
