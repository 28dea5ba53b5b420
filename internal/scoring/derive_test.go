package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

var deriveNow = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

func TestDeriveInputsEmptyRecords(t *testing.T) {
	in := DeriveInputs(PatientRecords{}, deriveNow)
	assert.Nil(t, in.PatientAgeYears)
	assert.Nil(t, in.DeviceAgeYears)
	assert.Nil(t, in.AppointmentsCreated24M)
	assert.Nil(t, in.LastCompletedApptMillis)
	assert.Nil(t, in.ThirdPartyBenefitAmount)
	assert.Nil(t, in.AccountValue)
}

func TestDeriveDeviceAgeUsesMostRecentSale(t *testing.T) {
	records := PatientRecords{Sales: []omsdata.RowData{
		omsdata.FromPairs("Date", "6/1/2020", "Amount", "$2,000.00"),
		omsdata.FromPairs("Date", "6/1/2024", "Amount", "$3,000.00"),
	}}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.DeviceAgeYears)
	assert.InDelta(t, 2.0, *in.DeviceAgeYears, 0.01)
}

func TestDeriveAppointmentsCreatedTrailingWindow(t *testing.T) {
	records := PatientRecords{Appointments: []omsdata.RowData{
		omsdata.FromPairs("Created date", "5/1/2026", "Appt. date", "6/1/2026", "Status", "scheduled"),
		omsdata.FromPairs("Created date", "1/1/2025", "Appt. date", "2/1/2025", "Status", "completed"),
		omsdata.FromPairs("Created date", "1/1/2020", "Appt. date", "2/1/2020", "Status", "completed"),
		omsdata.FromPairs("Appt. date", "3/1/2026", "Status", "scheduled"),
	}}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.AppointmentsCreated24M)
	assert.Equal(t, 2, *in.AppointmentsCreated24M)
}

func TestDeriveLastCompletedIgnoresOtherStatuses(t *testing.T) {
	records := PatientRecords{Appointments: []omsdata.RowData{
		omsdata.FromPairs("Appt. date", "5/1/2026", "Status", "scheduled"),
		omsdata.FromPairs("Appt. date", "2/1/2026", "Status", "Completed"),
		omsdata.FromPairs("Appt. date", "1/1/2026", "Status", "completed"),
	}}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.LastCompletedApptMillis)
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, *in.LastCompletedApptMillis)
}

func TestDeriveBenefitExactColumnFirst(t *testing.T) {
	active := omsdata.FromPairs("3rd Party Benefit", "$2,500.00", "Some benefit note", "$1.00")
	records := PatientRecords{ActivePatient: &active}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.ThirdPartyBenefitAmount)
	assert.InDelta(t, 2500, *in.ThirdPartyBenefitAmount, 0.001)
}

func TestDeriveBenefitSubstringFallback(t *testing.T) {
	active := omsdata.FromPairs("Remaining hearing benefit 2026", "$1,200.00")
	records := PatientRecords{ActivePatient: &active}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.ThirdPartyBenefitAmount)
	assert.InDelta(t, 1200, *in.ThirdPartyBenefitAmount, 0.001)
}

func TestDeriveBenefitFallsBackToRecallRecord(t *testing.T) {
	recall := omsdata.FromPairs("Benefit Amount", "$800.00")
	records := PatientRecords{Recall: &recall}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.ThirdPartyBenefitAmount)
	assert.InDelta(t, 800, *in.ThirdPartyBenefitAmount, 0.001)
}

func TestDeriveAccountValueSumsSales(t *testing.T) {
	records := PatientRecords{Sales: []omsdata.RowData{
		omsdata.FromPairs("Amount", "$1,000.00"),
		omsdata.FromPairs("Amount", "$2,500.50"),
		omsdata.FromPairs("Amount", "(500.00)"),
		omsdata.FromPairs("Note", "no amount column"),
	}}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.AccountValue)
	assert.InDelta(t, 3000.50, *in.AccountValue, 0.001)
}

func TestDerivePatientAgeFromBirthDate(t *testing.T) {
	active := omsdata.FromPairs("Date of birth", "6/1/1946")
	records := PatientRecords{ActivePatient: &active}
	in := DeriveInputs(records, deriveNow)
	require.NotNil(t, in.PatientAgeYears)
	assert.InDelta(t, 80, *in.PatientAgeYears, 0.1)
}
