package reports

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAppointmentRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	rows := pgxmock.NewRows([]string{"data"}).
		AddRow([]byte(`{"Appt. date":"1/5/2026","Status":"completed"}`)).
		AddRow([]byte(`{"Appt. date":"1/12/2026","Status":"no-show"}`))
	mock.ExpectQuery(`SELECT data FROM "canonical_appointments"`).WillReturnRows(rows)

	store := NewStore(mock)
	got, err := store.AppointmentRows(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "1/5/2026", got[0].Value("Appt. date"))
	assert.Equal(t, "no-show", got[1].Value("Status"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreSalesAndRecallRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT data FROM "canonical_sales_by_income_account"`).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).
			AddRow([]byte(`{"Date":"2/1/2026","Amount":"$1,200.00"}`)))
	mock.ExpectQuery(`SELECT data FROM "canonical_patient_recalls"`).
		WillReturnRows(pgxmock.NewRows([]string{"data"}))

	store := NewStore(mock)

	sales, err := store.SalesRows(context.Background())
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "$1,200.00", sales[0].Value("Amount"))

	recalls, err := store.RecallRows(context.Background())
	require.NoError(t, err)
	assert.Empty(t, recalls)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStoreQueryError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT data FROM "canonical_appointments"`).
		WillReturnError(errors.New("connection reset"))

	store := NewStore(mock)
	_, err = store.AppointmentRows(context.Background())
	assert.ErrorContains(t, err, "canonical_appointments")
}

func TestStoreBadRowJSON(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(`SELECT data FROM "canonical_patient_recalls"`).
		WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow([]byte(`not json`)))

	store := NewStore(mock)
	_, err = store.RecallRows(context.Background())
	assert.ErrorContains(t, err, "decode")
}
