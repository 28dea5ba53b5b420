package scoring

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/cpapescrim1106/blueprintproject/internal/omsdata"
)

// Source gathers a patient's canonical rows for scoring.
type Source interface {
	PatientRecords(ctx context.Context, patientID string) (PatientRecords, error)
}

type queryer interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresSource reads canonical tables populated by the ingestion pipeline.
type PostgresSource struct {
	pool queryer
}

// NewPostgresSource initializes a source backed by pgxpool.
func NewPostgresSource(pool queryer) *PostgresSource {
	if pool == nil {
		panic("scoring: pgx pool required")
	}
	return &PostgresSource{pool: pool}
}

// PatientRecords fetches rows linked by patient id, then fills tables with no
// id link via the name+location composite. The fallback silently yields no
// match rather than erroring; that degradation is the documented contract.
func (s *PostgresSource) PatientRecords(ctx context.Context, patientID string) (PatientRecords, error) {
	var records PatientRecords

	appointments, err := s.rowsByPatient(ctx, "canonical_appointments", patientID)
	if err != nil {
		return records, err
	}
	records.Appointments = appointments

	sales, err := s.rowsByPatient(ctx, "canonical_sales_by_income_account", patientID)
	if err != nil {
		return records, err
	}
	records.Sales = sales

	actives, err := s.rowsByPatient(ctx, "canonical_active_patients", patientID)
	if err != nil {
		return records, err
	}
	if len(actives) > 0 {
		records.ActivePatient = &actives[0]
	}

	recalls, err := s.rowsByPatient(ctx, "canonical_patient_recalls", patientID)
	if err != nil {
		return records, err
	}
	if len(recalls) > 0 {
		records.Recall = &recalls[0]
	}

	if records.ActivePatient == nil || records.Recall == nil {
		key, ok := nameKeyFromRecords(records)
		if ok {
			if records.ActivePatient == nil {
				match, err := s.unlinkedRowByNameKey(ctx, "canonical_active_patients", key)
				if err != nil {
					return records, err
				}
				records.ActivePatient = match
			}
			if records.Recall == nil {
				match, err := s.unlinkedRowByNameKey(ctx, "canonical_patient_recalls", key)
				if err != nil {
					return records, err
				}
				records.Recall = match
			}
		}
	}

	return records, nil
}

func (s *PostgresSource) rowsByPatient(ctx context.Context, table, patientID string) ([]omsdata.RowData, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE patient_id = $1`, pgx.Identifier{table}.Sanitize())
	rows, err := s.pool.Query(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("scoring: query %s: %w", table, err)
	}
	defer rows.Close()

	var out []omsdata.RowData
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scoring: scan %s: %w", table, err)
		}
		var data omsdata.RowData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("scoring: decode %s row: %w", table, err)
		}
		out = append(out, data)
	}
	return out, rows.Err()
}

// unlinkedRowByNameKey scans rows with no patient id and matches them on the
// composite key in Go; the key is derived from free-text name columns, so a
// SQL-side match would be no cheaper.
func (s *PostgresSource) unlinkedRowByNameKey(ctx context.Context, table, key string) (*omsdata.RowData, error) {
	query := fmt.Sprintf(`SELECT data FROM %s WHERE patient_id IS NULL`, pgx.Identifier{table}.Sanitize())
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scoring: query unlinked %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scoring: scan unlinked %s: %w", table, err)
		}
		var data omsdata.RowData
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, fmt.Errorf("scoring: decode unlinked %s row: %w", table, err)
		}
		if rowKey, ok := RowNameLocationKey(data); ok && rowKey == key {
			row := data
			return &row, nil
		}
	}
	return nil, rows.Err()
}

func nameKeyFromRecords(records PatientRecords) (string, bool) {
	if records.ActivePatient != nil {
		if key, ok := RowNameLocationKey(*records.ActivePatient); ok {
			return key, true
		}
	}
	if records.Recall != nil {
		if key, ok := RowNameLocationKey(*records.Recall); ok {
			return key, true
		}
	}
	for _, appt := range records.Appointments {
		if key, ok := RowNameLocationKey(appt); ok {
			return key, true
		}
	}
	return "", false
}
