package ingest

// TargetTable identifies one of the canonical per-report tables.
type TargetTable string

const (
	TargetAppointments         TargetTable = "appointments"
	TargetPatientRecalls       TargetTable = "patientRecalls"
	TargetActivePatients       TargetTable = "activePatients"
	TargetSalesByIncomeAccount TargetTable = "salesByIncomeAccount"
)

// defaultPatientIDColumns is tried for tables without an override.
var defaultPatientIDColumns = []string{"Patient ID", "Patient", "Account Number", "ID", "Reference #"}

// ReportPolicy describes how rows of one target table are keyed and linked to
// patients. NaturalKeyColumns nil means full-row identity: any field change
// yields a new canonical record and old values persist as separate records.
type ReportPolicy struct {
	SQLTable          string
	NaturalKeyColumns []string
	PatientIDColumns  []string
}

// policies is the static per-report configuration. Which reports use natural
// keys versus full-row identity is deliberate per-report behavior; do not
// unify the two paths.
var policies = map[TargetTable]ReportPolicy{
	TargetAppointments: {
		SQLTable:          "canonical_appointments",
		NaturalKeyColumns: []string{"Location", "Patient ID", "Appointment date", "Appointment type", "Provider"},
		PatientIDColumns:  defaultPatientIDColumns,
	},
	TargetPatientRecalls: {
		SQLTable:          "canonical_patient_recalls",
		NaturalKeyColumns: []string{"Location", "Patient ID", "Recall date", "Recall type"},
		PatientIDColumns:  defaultPatientIDColumns,
	},
	TargetActivePatients: {
		SQLTable:         "canonical_active_patients",
		PatientIDColumns: []string{"Patient", "Patient ID", "Account Number", "ID", "Reference #"},
	},
	TargetSalesByIncomeAccount: {
		SQLTable:         "canonical_sales_by_income_account",
		PatientIDColumns: defaultPatientIDColumns,
	},
}

// PolicyFor returns the policy for a target table. The second return is false
// for unknown tables, which callers must treat as a configuration error.
func PolicyFor(table TargetTable) (ReportPolicy, bool) {
	p, ok := policies[table]
	return p, ok
}

// KnownTargets lists the configured target tables, for error messages.
func KnownTargets() []TargetTable {
	return []TargetTable{TargetAppointments, TargetPatientRecalls, TargetActivePatients, TargetSalesByIncomeAccount}
}
