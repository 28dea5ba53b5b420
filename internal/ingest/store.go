package ingest

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// Store is the persistence surface the pipeline writes through. Chunking is
// the pipeline's responsibility; each call here covers at most one chunk.
type Store interface {
	// ReplaceIngestion upserts the ingestion metadata for the source key and
	// discards any prior audit rows for it. The returned id is stable across
	// re-ingestions of the same source key.
	ReplaceIngestion(ctx context.Context, meta IngestionMeta) (uuid.UUID, error)
	// InsertReportRows appends one chunk of audit rows for the ingestion.
	InsertReportRows(ctx context.Context, ingestionID uuid.UUID, reportName string, rows []Row) error
	// UpsertCanonicalChunk applies one chunk of canonical entries with change
	// detection, serializing per unique key against concurrent writers.
	UpsertCanonicalChunk(ctx context.Context, table string, reportName string, ingestionID uuid.UUID, capturedAt int64, entries []CanonicalEntry) (Stats, error)
}

// PgxPool is the subset of pgxpool.Pool the store needs.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
}

// PostgresStore persists ingestions and canonical records in Postgres.
type PostgresStore struct {
	pool PgxPool
}

// NewPostgresStore initializes a store backed by pgxpool.
func NewPostgresStore(pool PgxPool) *PostgresStore {
	if pool == nil {
		panic("ingest: pgx pool required")
	}
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) ReplaceIngestion(ctx context.Context, meta IngestionMeta) (uuid.UUID, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return uuid.Nil, fmt.Errorf("ingest: begin replace ingestion: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO ingestions (id, report_name, captured_at, source_key, row_count)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (source_key) DO UPDATE
		SET report_name = EXCLUDED.report_name,
			captured_at = EXCLUDED.captured_at,
			row_count = EXCLUDED.row_count,
			updated_at = now()
		RETURNING id
	`
	var id uuid.UUID
	if err := tx.QueryRow(ctx, query, uuid.New(), meta.ReportName, meta.CapturedAt, meta.SourceKey, meta.RowCount).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("ingest: upsert ingestion: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM report_rows WHERE ingestion_id = $1`, id); err != nil {
		return uuid.Nil, fmt.Errorf("ingest: clear report rows: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("ingest: commit replace ingestion: %w", err)
	}
	return id, nil
}

func (s *PostgresStore) InsertReportRows(ctx context.Context, ingestionID uuid.UUID, reportName string, rows []Row) error {
	if len(rows) == 0 {
		return nil
	}
	source := make([][]any, 0, len(rows))
	for _, row := range rows {
		data, err := json.Marshal(row.Data)
		if err != nil {
			return fmt.Errorf("ingest: encode report row %d: %w", row.Index, err)
		}
		source = append(source, []any{ingestionID, reportName, row.Index, data})
	}
	_, err := s.pool.CopyFrom(ctx,
		pgx.Identifier{"report_rows"},
		[]string{"ingestion_id", "report_name", "row_index", "data"},
		pgx.CopyFromRows(source),
	)
	if err != nil {
		return fmt.Errorf("ingest: copy report rows: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpsertCanonicalChunk(ctx context.Context, table string, reportName string, ingestionID uuid.UUID, capturedAt int64, entries []CanonicalEntry) (Stats, error) {
	if len(entries) == 0 {
		return Stats{}, nil
	}
	ident := pgx.Identifier{table}.Sanitize()

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("ingest: begin canonical chunk: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	keys := make([]string, len(entries))
	for i, e := range entries {
		keys[i] = e.UniqueKey
	}

	// Row locks on the touched keys serialize the read-compare-write cycle
	// against a concurrent ingestion of overlapping rows.
	existing := make(map[string]string, len(entries))
	rows, err := tx.Query(ctx,
		fmt.Sprintf(`SELECT unique_key, data FROM %s WHERE unique_key = ANY($1) FOR UPDATE`, ident),
		keys,
	)
	if err != nil {
		return Stats{}, fmt.Errorf("ingest: lock canonical rows: %w", err)
	}
	for rows.Next() {
		var key string
		var data []byte
		if err := rows.Scan(&key, &data); err != nil {
			rows.Close()
			return Stats{}, fmt.Errorf("ingest: scan canonical row: %w", err)
		}
		var stored omsdata.RowData
		if err := json.Unmarshal(data, &stored); err != nil {
			rows.Close()
			return Stats{}, fmt.Errorf("ingest: decode canonical row %s: %w", key, err)
		}
		existing[key] = string(stored.CanonicalJSON())
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return Stats{}, fmt.Errorf("ingest: read canonical rows: %w", err)
	}

	ops, stats := classifyEntries(existing, entries)
	for _, op := range ops {
		switch op.Kind {
		case opInsert:
			data, err := json.Marshal(op.Entry.Data)
			if err != nil {
				return Stats{}, fmt.Errorf("ingest: encode canonical row: %w", err)
			}
			query := fmt.Sprintf(`
				INSERT INTO %s (unique_key, report_name, patient_id, data, first_captured_at, last_captured_at, last_ingestion_id)
				VALUES ($1, $2, NULLIF($3, ''), $4, $5, $5, $6)
			`, ident)
			if _, err := tx.Exec(ctx, query, op.Entry.UniqueKey, reportName, op.Entry.PatientID, data, capturedAt, ingestionID); err != nil {
				return Stats{}, fmt.Errorf("ingest: insert canonical row: %w", err)
			}
		case opUpdate:
			data, err := json.Marshal(op.Entry.Data)
			if err != nil {
				return Stats{}, fmt.Errorf("ingest: encode canonical row: %w", err)
			}
			query := fmt.Sprintf(`
				UPDATE %s
				SET data = $2,
					patient_id = NULLIF($3, ''),
					last_captured_at = $4,
					last_ingestion_id = $5
				WHERE unique_key = $1
			`, ident)
			if _, err := tx.Exec(ctx, query, op.Entry.UniqueKey, data, op.Entry.PatientID, capturedAt, ingestionID); err != nil {
				return Stats{}, fmt.Errorf("ingest: update canonical row: %w", err)
			}
		case opTouch:
			query := fmt.Sprintf(`
				UPDATE %s
				SET last_captured_at = $2,
					last_ingestion_id = $3
				WHERE unique_key = $1
			`, ident)
			if _, err := tx.Exec(ctx, query, op.Entry.UniqueKey, capturedAt, ingestionID); err != nil {
				return Stats{}, fmt.Errorf("ingest: touch canonical row: %w", err)
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Stats{}, fmt.Errorf("ingest: commit canonical chunk: %w", err)
	}
	return stats, nil
}
