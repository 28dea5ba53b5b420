package scoring

import (
	"context"
	"time"

	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// PatientScore is the scored result for one patient.
type PatientScore struct {
	PatientID string `json:"patientId"`
	Result
}

// Service gathers canonical data and scores patients on demand. Scores are
// derived, never persisted.
type Service struct {
	source Source
	logger *logging.Logger
	now    func() time.Time
}

// NewService wires a scoring service over a record source.
func NewService(source Source, logger *logging.Logger) *Service {
	if source == nil {
		panic("scoring: source required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{source: source, logger: logger, now: time.Now}
}

// WithClock overrides the clock, for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// ScorePatient computes the health score for a patient id. A patient with no
// canonical rows at all still scores: every signal falls back to its missing
// baseline.
func (s *Service) ScorePatient(ctx context.Context, patientID string) (*PatientScore, error) {
	records, err := s.source.PatientRecords(ctx, patientID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	inputs := DeriveInputs(records, now)
	result := Score(inputs, now)

	s.logger.Debug("patient scored",
		"patient_id", patientID,
		"total", result.Total,
		"appointments", len(records.Appointments),
		"sales", len(records.Sales),
	)
	return &PatientScore{PatientID: patientID, Result: result}, nil
}
