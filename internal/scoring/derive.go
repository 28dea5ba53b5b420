package scoring

import (
	"strings"
	"time"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// Column candidates across report exports. The OMS renames columns between
// report versions, so each signal tries exact names in priority order; the
// benefit lookup additionally falls back to a substring scan as a documented
// last resort.
var (
	saleDateColumns   = []string{"Date", "Sale date", "Transaction date", "Invoice date"}
	saleAmountColumns = []string{"Amount", "Revenue", "Total", "Net amount"}
	benefitColumns    = []string{"3rd Party Benefit", "Third Party Benefit", "3rd party benefit amount", "Benefit Amount", "Benefit"}
	birthDateColumns  = []string{"Date of birth", "DOB", "Birth date"}
)

const (
	apptCreatedColumn   = "Created date"
	apptDateColumn      = "Appt. date"
	apptStatusColumn    = "Status"
	apptCompletedStatus = "completed"
	trailingWindowDays  = 730
)

// PatientRecords are the canonical rows gathered for one patient across
// tables, after id and name-fallback matching.
type PatientRecords struct {
	Appointments  []omsdata.RowData
	ActivePatient *omsdata.RowData
	Recall        *omsdata.RowData
	Sales         []omsdata.RowData
}

// DeriveInputs computes scorer inputs from a patient's canonical rows. Every
// signal is best-effort: unparseable or missing source data leaves the input
// nil rather than failing.
func DeriveInputs(records PatientRecords, now time.Time) Inputs {
	var in Inputs
	in.PatientAgeYears = derivePatientAge(records.ActivePatient, now)
	in.DeviceAgeYears = deriveDeviceAge(records.Sales, now)
	in.AppointmentsCreated24M = deriveAppointmentsCreated(records.Appointments, now)
	in.LastCompletedApptMillis = deriveLastCompleted(records.Appointments)
	in.ThirdPartyBenefitAmount = deriveBenefitAmount(records.ActivePatient, records.Recall)
	in.AccountValue = deriveAccountValue(records.Sales)
	return in
}

func derivePatientAge(active *omsdata.RowData, now time.Time) *float64 {
	if active == nil {
		return nil
	}
	raw, ok := active.FirstNonEmpty(birthDateColumns...)
	if !ok {
		return nil
	}
	born, ok := omsdata.ParseDate(raw)
	if !ok {
		return nil
	}
	years := now.Sub(born).Hours() / 24 / 365
	return &years
}

// deriveDeviceAge takes the most recent sale date as a proxy for the last
// device purchase.
func deriveDeviceAge(sales []omsdata.RowData, now time.Time) *float64 {
	var latest time.Time
	for _, sale := range sales {
		raw, ok := sale.FirstNonEmpty(saleDateColumns...)
		if !ok {
			continue
		}
		if d, ok := omsdata.ParseDate(raw); ok && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return nil
	}
	years := now.Sub(latest).Hours() / 24 / 365
	return &years
}

func deriveAppointmentsCreated(appointments []omsdata.RowData, now time.Time) *int {
	if len(appointments) == 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -trailingWindowDays)
	count := 0
	for _, appt := range appointments {
		raw, ok := appt.FirstNonEmpty(apptCreatedColumn)
		if !ok {
			continue
		}
		if created, ok := omsdata.ParseDate(raw); ok && !created.Before(cutoff) {
			count++
		}
	}
	return &count
}

func deriveLastCompleted(appointments []omsdata.RowData) *int64 {
	var latest time.Time
	found := false
	for _, appt := range appointments {
		if !strings.EqualFold(strings.TrimSpace(appt.Value(apptStatusColumn)), apptCompletedStatus) {
			continue
		}
		raw, ok := appt.FirstNonEmpty(apptDateColumn)
		if !ok {
			continue
		}
		if d, ok := omsdata.ParseDate(raw); ok && d.After(latest) {
			latest = d
			found = true
		}
	}
	if !found {
		return nil
	}
	millis := latest.UnixMilli()
	return &millis
}

// deriveBenefitAmount searches the patient's own active-patient record first,
// then the recall record. Exact column names are tried in order before the
// substring scan, which must stay: benefit data shows up under inconsistently
// named columns and the score depends on finding it.
func deriveBenefitAmount(active, recall *omsdata.RowData) *float64 {
	for _, row := range []*omsdata.RowData{active, recall} {
		if row == nil {
			continue
		}
		if raw, ok := row.FirstNonEmpty(benefitColumns...); ok {
			if v, ok := omsdata.ParseCurrency(raw); ok {
				return &v
			}
		}
		if raw, ok := row.FirstColumnContaining("benefit"); ok {
			if v, ok := omsdata.ParseCurrency(raw); ok {
				return &v
			}
		}
	}
	return nil
}

func deriveAccountValue(sales []omsdata.RowData) *float64 {
	var total float64
	found := false
	for _, sale := range sales {
		raw, ok := sale.FirstNonEmpty(saleAmountColumns...)
		if !ok {
			continue
		}
		if v, ok := omsdata.ParseCurrency(raw); ok {
			total += v
			found = true
		}
	}
	if !found {
		return nil
	}
	return &total
}
