package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// UniqueKey derives the content-addressed canonical key for a row.
//
// Reports with declared natural-key columns hash the report name plus the
// lowercased key column values, so re-exports of the same logical row hash
// identically even when non-key fields change. Reports without a natural key
// hash every sorted key=value pair: full-row identity, where any field change
// produces a new key.
func UniqueKey(reportName string, policy ReportPolicy, row omsdata.RowData) string {
	if len(policy.NaturalKeyColumns) > 0 {
		values := make([]string, len(policy.NaturalKeyColumns))
		for i, col := range policy.NaturalKeyColumns {
			values[i] = row.Value(col)
		}
		return hashKey(reportName + "|" + strings.ToLower(strings.Join(values, "|")))
	}

	pairs := make([]string, 0, row.Len())
	for _, col := range row.Columns() {
		pairs = append(pairs, col+"="+row.Value(col))
	}
	sort.Strings(pairs)
	return hashKey(strings.Join(pairs, "|"))
}

// PatientID extracts the best-effort patient identifier for a row by trying
// the policy's candidate columns in order. Returns "" when no candidate has a
// non-empty value; callers store that as NULL rather than failing.
func PatientID(policy ReportPolicy, row omsdata.RowData) string {
	if v, ok := row.FirstNonEmpty(policy.PatientIDColumns...); ok {
		return v
	}
	return ""
}

func hashKey(material string) string {
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}
