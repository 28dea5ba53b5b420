package reports

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Store reads canonical tables for the reporting rollups. All queries are
// read-only over already-committed state.
type Store struct {
	pool queryer
}

// NewStore initializes a reporting store backed by pgxpool.
func NewStore(pool queryer) *Store {
	if pool == nil {
		panic("reports: pgx pool required")
	}
	return &Store{pool: pool}
}

func (s *Store) AppointmentRows(ctx context.Context) ([]omsdata.RowData, error) {
	return s.tableRows(ctx, "canonical_appointments")
}

func (s *Store) SalesRows(ctx context.Context) ([]omsdata.RowData, error) {
	return s.tableRows(ctx, "canonical_sales_by_income_account")
}

func (s *Store) RecallRows(ctx context.Context) ([]omsdata.RowData, error) {
	return s.tableRows(ctx, "canonical_patient_recalls")
}

func (s *Store) tableRows(ctx context.Context, table string) ([]omsdata.RowData, error) {
	query := fmt.Sprintf(`SELECT data FROM %s`, pgx.Identifier{table}.Sanitize())
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reports: query %s: %w", table, err)
	}
	defer rows.Close()

	var out []omsdata.RowData
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("reports: scan %s: %w", table, err)
		}
		var data omsdata.RowData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("reports: decode %s row: %w", table, err)
		}
		out = append(out, data)
	}
	return out, rows.Err()
}
