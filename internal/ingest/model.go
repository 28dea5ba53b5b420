package ingest

import (
	"github.com/google/uuid"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// Row is one positional row of an incoming batch.
type Row struct {
	Index int             `json:"rowIndex"`
	Data  omsdata.RowData `json:"data"`
}

// BatchRequest is one OMS report export offered to the pipeline. CapturedAt
// is the caller-supplied capture time as a decimal epoch-millisecond string;
// it is validated before any write happens.
type BatchRequest struct {
	ReportName  string      `json:"reportName"`
	CapturedAt  string      `json:"capturedAt"`
	SourceKey   string      `json:"sourceKey"`
	TargetTable TargetTable `json:"targetTable"`
	Rows        []Row       `json:"rows"`
}

// Stats counts the canonical-table effect of each row in a batch.
type Stats struct {
	Inserted  int `json:"inserted"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

func (s *Stats) add(other Stats) {
	s.Inserted += other.Inserted
	s.Updated += other.Updated
	s.Unchanged += other.Unchanged
}

// Result reports the outcome of one accepted batch.
type Result struct {
	IngestionID uuid.UUID `json:"ingestionId"`
	Stats       Stats     `json:"stats"`
}

// IngestionMeta is the persisted metadata for one accepted batch. At most one
// ingestion exists per source key; re-ingesting replaces it.
type IngestionMeta struct {
	ReportName string
	CapturedAt int64
	SourceKey  string
	RowCount   int
}

// CanonicalEntry is one row prepared for canonical upsert.
type CanonicalEntry struct {
	UniqueKey string
	PatientID string
	Data      omsdata.RowData
}

// CanonicalRecord is a stored canonical row, as read back for scoring and
// reporting.
type CanonicalRecord struct {
	UniqueKey       string
	ReportName      string
	PatientID       string
	Data            omsdata.RowData
	FirstCapturedAt int64
	LastCapturedAt  int64
	LastIngestionID uuid.UUID
}
