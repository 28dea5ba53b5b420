package ingest

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// InMemoryStore implements Store with maps, for local development and tests.
type InMemoryStore struct {
	mu         sync.Mutex
	ingestions map[string]*memIngestion           // by source key
	reportRows map[uuid.UUID][]Row                // by ingestion id
	canonical  map[string]map[string]*CanonicalRecord // table -> unique key
}

type memIngestion struct {
	id   uuid.UUID
	meta IngestionMeta
}

// NewInMemoryStore initializes an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		ingestions: make(map[string]*memIngestion),
		reportRows: make(map[uuid.UUID][]Row),
		canonical:  make(map[string]map[string]*CanonicalRecord),
	}
}

func (s *InMemoryStore) ReplaceIngestion(_ context.Context, meta IngestionMeta) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.ingestions[meta.SourceKey]
	if existing == nil {
		existing = &memIngestion{id: uuid.New()}
		s.ingestions[meta.SourceKey] = existing
	}
	existing.meta = meta
	s.reportRows[existing.id] = nil
	return existing.id, nil
}

func (s *InMemoryStore) InsertReportRows(_ context.Context, ingestionID uuid.UUID, _ string, rows []Row) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reportRows[ingestionID] = append(s.reportRows[ingestionID], rows...)
	return nil
}

func (s *InMemoryStore) UpsertCanonicalChunk(_ context.Context, table string, reportName string, ingestionID uuid.UUID, capturedAt int64, entries []CanonicalEntry) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.canonical[table]
	if records == nil {
		records = make(map[string]*CanonicalRecord)
		s.canonical[table] = records
	}

	existing := make(map[string]string, len(entries))
	for _, e := range entries {
		if rec, ok := records[e.UniqueKey]; ok {
			existing[e.UniqueKey] = string(rec.Data.CanonicalJSON())
		}
	}

	ops, stats := classifyEntries(existing, entries)
	for _, op := range ops {
		switch op.Kind {
		case opInsert:
			records[op.Entry.UniqueKey] = &CanonicalRecord{
				UniqueKey:       op.Entry.UniqueKey,
				ReportName:      reportName,
				PatientID:       op.Entry.PatientID,
				Data:            op.Entry.Data,
				FirstCapturedAt: capturedAt,
				LastCapturedAt:  capturedAt,
				LastIngestionID: ingestionID,
			}
		case opUpdate:
			rec := records[op.Entry.UniqueKey]
			rec.Data = op.Entry.Data
			rec.PatientID = op.Entry.PatientID
			rec.LastCapturedAt = capturedAt
			rec.LastIngestionID = ingestionID
		case opTouch:
			rec := records[op.Entry.UniqueKey]
			rec.LastCapturedAt = capturedAt
			rec.LastIngestionID = ingestionID
		}
	}
	return stats, nil
}

// Ingestion returns the stored metadata for a source key, or nil.
func (s *InMemoryStore) Ingestion(sourceKey string) *IngestionMeta {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ing := s.ingestions[sourceKey]; ing != nil {
		meta := ing.meta
		return &meta
	}
	return nil
}

// ReportRows returns the audit rows for an ingestion id.
func (s *InMemoryStore) ReportRows(ingestionID uuid.UUID) []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]Row, len(s.reportRows[ingestionID]))
	copy(rows, s.reportRows[ingestionID])
	return rows
}

// CanonicalRecords returns all canonical records for a table.
func (s *InMemoryStore) CanonicalRecords(table string) []CanonicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]CanonicalRecord, 0, len(s.canonical[table]))
	for _, rec := range s.canonical[table] {
		out = append(out, *rec)
	}
	return out
}

// CanonicalRecord returns one canonical record by key, or nil.
func (s *InMemoryStore) CanonicalRecord(table, uniqueKey string) *CanonicalRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	if rec, ok := s.canonical[table][uniqueKey]; ok {
		cp := *rec
		return &cp
	}
	return nil
}
