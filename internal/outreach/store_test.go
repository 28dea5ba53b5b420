package outreach

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateOutbound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO outbound_messages").
		WithArgs(pgxmock.AnyArg(), "1042", "+15550001111", "hello", StatusQueued).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock)
	id, err := store.CreateOutbound(context.Background(), "1042", "+15550001111", "hello")
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkSentAndFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectExec("UPDATE outbound_messages").
		WithArgs(id, StatusSent, "prov-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	mock.ExpectExec("UPDATE outbound_messages").
		WithArgs(id, StatusFailed, "number unreachable").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	store := NewStore(mock)
	require.NoError(t, store.MarkSent(context.Background(), id, "prov-1"))
	require.NoError(t, store.MarkFailed(context.Background(), id, "number unreachable"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOutbound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	now := time.Now()
	patientID := "1042"
	providerID := "prov-1"
	mock.ExpectQuery("SELECT id, patient_id, to_number").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "to_number", "body", "status", "provider_message_id", "error_text", "created_at", "updated_at",
		}).AddRow(id, &patientID, "+15550001111", "hello", StatusSent, &providerID, (*string)(nil), now, now))

	store := NewStore(mock)
	msg, err := store.GetOutbound(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "1042", msg.PatientID)
	assert.Equal(t, "prov-1", msg.ProviderMessageID)
	assert.Empty(t, msg.ErrorText)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOutboundNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	id := uuid.New()
	mock.ExpectQuery("SELECT id, patient_id, to_number").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "patient_id", "to_number", "body", "status", "provider_message_id", "error_text", "created_at", "updated_at",
		}))

	store := NewStore(mock)
	_, err = store.GetOutbound(context.Background(), id)
	assert.ErrorIs(t, err, ErrMessageNotFound)
}

func TestRecordInbound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("INSERT INTO inbound_messages").
		WithArgs(pgxmock.AnyArg(), "+15550001111", "+15550000001", "YES", "prov-9", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	store := NewStore(mock)
	msg := &InboundMessage{FromNumber: "+15550001111", ToNumber: "+15550000001", Body: "YES", ProviderMessageID: "prov-9"}
	require.NoError(t, store.RecordInbound(context.Background(), msg))
	assert.NotEqual(t, uuid.Nil, msg.ID)
	assert.False(t, msg.ReceivedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentInbound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectQuery("SELECT id, from_number, to_number").
		WithArgs(2).
		WillReturnRows(pgxmock.NewRows([]string{
			"id", "from_number", "to_number", "body", "provider_message_id", "received_at",
		}).
			AddRow(uuid.New(), "+15550001111", "+15550000001", "YES", "prov-9", now).
			AddRow(uuid.New(), "+15550002222", "+15550000001", "STOP", "", now.Add(-time.Minute)))

	store := NewStore(mock)
	messages, err := store.RecentInbound(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "YES", messages[0].Body)
	assert.NoError(t, mock.ExpectationsWereMet())
}
