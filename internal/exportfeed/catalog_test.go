package exportfeed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCatalog(t *testing.T) {
	envelope := `{"Type":"Notification","Message":"` +
		`{\"allowedCategories\":[` +
		`{\"description\":\"Scheduling\",\"reports\":[` +
		`{\"itemId\":101,\"description\":\"Appointments\",\"reportFile\":\"appointments.rpt\",\"active\":true},` +
		`{\"itemId\":102,\"description\":\"Patient Recalls\",\"reportFile\":\"recalls.rpt\"}]},` +
		`{\"reports\":[{\"itemId\":201,\"description\":\"Appointments\",\"reportFile\":\"appts_alt.rpt\",\"active\":false}]}]}"}`

	// Captured payloads carry trailing bytes past the JSON body.
	entries, err := ParseCatalog([]byte(envelope + "\x00\x00garbage"))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, ReportEntry{Category: "Scheduling", ReportID: 101, Description: "Appointments", File: "appointments.rpt", Active: true}, entries[0])
	assert.True(t, entries[1].Active, "missing active flag defaults to true")
	assert.Equal(t, "Unknown", entries[2].Category)
	assert.False(t, entries[2].Active)

	assert.Equal(t, []string{"Appointments", "Patient Recalls"}, ReportNames(entries))
}

func TestParseCatalogErrors(t *testing.T) {
	_, err := ParseCatalog([]byte("no json here"))
	assert.Error(t, err)

	_, err = ParseCatalog([]byte(`{"Type":"Notification"}`))
	assert.Error(t, err)
}

func TestInferCapturedAt(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(1756700000123), InferCapturedAt("appointments_export_1756700000123", now))
	assert.Equal(t, now.UnixMilli(), InferCapturedAt("appointments_export", now))
	// Trailing run must be at least ten digits.
	assert.Equal(t, now.UnixMilli(), InferCapturedAt("report_v2_123", now))
}

func TestSourceKey(t *testing.T) {
	assert.Equal(t, "appointments_1756700000123", SourceKey("exports/2026/appointments_1756700000123.csv"))
	assert.Equal(t, "recalls", SourceKey("recalls.csv"))
	assert.Equal(t, "plain", SourceKey("plain"))
}

func TestParseNotification(t *testing.T) {
	doubleEncoded := `{"Type":"Notification","Message":"{\"reportName\":\"Appointments\",\"reportResultXml\":\"exports/appts_1756700000123.csv\"}"}`
	notification, ok := ParseNotification(doubleEncoded)
	require.True(t, ok)
	assert.Equal(t, "Appointments", notification.ReportName)
	assert.Equal(t, "exports/appts_1756700000123.csv", notification.ResultKey)

	inline := `{"Message":{"reportName":"Active Patients","reportResultXml":"exports/active.csv"}}`
	notification, ok = ParseNotification(inline)
	require.True(t, ok)
	assert.Equal(t, "Active Patients", notification.ReportName)

	bare := `{"reportName":"Appointments","reportResultXml":"exports/a.csv"}`
	notification, ok = ParseNotification(bare)
	require.True(t, ok)
	assert.Equal(t, "exports/a.csv", notification.ResultKey)

	for _, invalid := range []string{"not json", `{"Message":"not json"}`, `{"reportName":"only name"}`} {
		_, ok := ParseNotification(invalid)
		assert.False(t, ok, invalid)
	}
}

func TestTargetForReport(t *testing.T) {
	target, ok := TargetForReport("  Patient Recalls ")
	require.True(t, ok)
	assert.Equal(t, "patientRecalls", string(target))

	_, ok = TargetForReport("Referral Source - Appointments")
	assert.False(t, ok)
}
