package exportfeed

import (
	"strings"

	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
)

// reportTargets maps normalized export report names to their ingestion
// target tables. Reports outside this map are acknowledged and skipped.
var reportTargets = map[string]ingest.TargetTable{
	"appointments":            ingest.TargetAppointments,
	"patient recalls":         ingest.TargetPatientRecalls,
	"active patients":         ingest.TargetActivePatients,
	"sales by income account": ingest.TargetSalesByIncomeAccount,
}

// TargetForReport resolves the ingestion target for an export report name.
func TargetForReport(reportName string) (ingest.TargetTable, bool) {
	normalized := strings.ToLower(strings.TrimSpace(reportName))
	target, ok := reportTargets[normalized]
	return target, ok
}
