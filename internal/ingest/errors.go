package ingest

import "errors"

var (
	// ErrMissingReportName is returned when the batch has no report name.
	ErrMissingReportName = errors.New("ingest: report name is required")
	// ErrMissingSourceKey is returned when the batch has no source key.
	ErrMissingSourceKey = errors.New("ingest: source key is required")
	// ErrBadCapturedAt is returned when capturedAt is not an integer millisecond timestamp.
	ErrBadCapturedAt = errors.New("ingest: capturedAt must be epoch milliseconds")
	// ErrUnknownTargetTable is returned for a target table outside the configured set.
	ErrUnknownTargetTable = errors.New("ingest: unknown target table")
)
