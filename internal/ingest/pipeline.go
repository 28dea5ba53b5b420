package ingest

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cpapescrim1106/blueprintproject/internal/observability/metrics"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// defaultChunkSize bounds write size per transaction. Chunk boundaries do not
// affect the final state of the canonical tables.
const defaultChunkSize = 200

// Pipeline ingests OMS report batches: it replaces the ingestion for the
// source key, rewrites the audit rows, and upserts canonical records with
// change detection. Re-running a byte-identical batch is fully idempotent.
type Pipeline struct {
	store     Store
	locks     SourceLocker
	chunkSize int
	logger    *logging.Logger
	metrics   *metrics.IngestMetrics
}

// NewPipeline wires a pipeline over the given store. Locking defaults to an
// in-process keyed mutex.
func NewPipeline(store Store, logger *logging.Logger) *Pipeline {
	if store == nil {
		panic("ingest: store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Pipeline{
		store:     store,
		locks:     NewKeyedLock(),
		chunkSize: defaultChunkSize,
		logger:    logger,
	}
}

// WithLocker replaces the per-source-key locker.
func (p *Pipeline) WithLocker(locks SourceLocker) *Pipeline {
	if locks != nil {
		p.locks = locks
	}
	return p
}

// WithChunkSize overrides the per-transaction chunk size.
func (p *Pipeline) WithChunkSize(size int) *Pipeline {
	if size > 0 {
		p.chunkSize = size
	}
	return p
}

// WithMetrics attaches pipeline metrics.
func (p *Pipeline) WithMetrics(m *metrics.IngestMetrics) *Pipeline {
	p.metrics = m
	return p
}

// Run ingests one batch. Validation failures surface before any write. A
// store failure mid-chunk leaves only this source key partially applied;
// re-running the same source key from scratch recovers it.
func (p *Pipeline) Run(ctx context.Context, req BatchRequest) (*Result, error) {
	capturedAt, policy, err := p.validate(&req)
	if err != nil {
		return nil, err
	}

	release, err := p.locks.Acquire(ctx, req.SourceKey)
	if err != nil {
		return nil, fmt.Errorf("ingest: serialize source %q: %w", req.SourceKey, err)
	}
	defer release()

	start := time.Now()
	result, err := p.run(ctx, req, capturedAt, policy)
	if err != nil {
		p.metrics.ObserveBatch(string(req.TargetTable), "error", time.Since(start).Seconds())
		return nil, err
	}
	p.metrics.ObserveBatch(string(req.TargetTable), "ok", time.Since(start).Seconds())
	p.metrics.ObserveRowEffects(string(req.TargetTable), result.Stats.Inserted, result.Stats.Updated, result.Stats.Unchanged)

	p.logger.Info("batch ingested",
		"report", req.ReportName,
		"source_key", req.SourceKey,
		"rows", len(req.Rows),
		"inserted", result.Stats.Inserted,
		"updated", result.Stats.Updated,
		"unchanged", result.Stats.Unchanged,
	)
	return result, nil
}

func (p *Pipeline) validate(req *BatchRequest) (int64, ReportPolicy, error) {
	req.ReportName = strings.TrimSpace(req.ReportName)
	req.SourceKey = strings.TrimSpace(req.SourceKey)
	if req.ReportName == "" {
		return 0, ReportPolicy{}, ErrMissingReportName
	}
	if req.SourceKey == "" {
		return 0, ReportPolicy{}, ErrMissingSourceKey
	}
	capturedAt, err := strconv.ParseInt(strings.TrimSpace(req.CapturedAt), 10, 64)
	if err != nil {
		return 0, ReportPolicy{}, fmt.Errorf("%w: %q", ErrBadCapturedAt, req.CapturedAt)
	}
	policy, ok := PolicyFor(req.TargetTable)
	if !ok {
		return 0, ReportPolicy{}, fmt.Errorf("%w: %q", ErrUnknownTargetTable, req.TargetTable)
	}
	return capturedAt, policy, nil
}

func (p *Pipeline) run(ctx context.Context, req BatchRequest, capturedAt int64, policy ReportPolicy) (*Result, error) {
	meta := IngestionMeta{
		ReportName: req.ReportName,
		CapturedAt: capturedAt,
		SourceKey:  req.SourceKey,
		RowCount:   len(req.Rows),
	}
	ingestionID, err := p.store.ReplaceIngestion(ctx, meta)
	if err != nil {
		return nil, err
	}

	result := &Result{IngestionID: ingestionID}
	for offset := 0; offset < len(req.Rows); offset += p.chunkSize {
		end := offset + p.chunkSize
		if end > len(req.Rows) {
			end = len(req.Rows)
		}
		chunk := req.Rows[offset:end]

		if err := p.store.InsertReportRows(ctx, ingestionID, req.ReportName, chunk); err != nil {
			return nil, err
		}

		entries := make([]CanonicalEntry, 0, len(chunk))
		for _, row := range chunk {
			// Rows with no columns are kept in the audit trail but carry no
			// canonical identity.
			if row.Data.Len() == 0 {
				continue
			}
			entries = append(entries, CanonicalEntry{
				UniqueKey: UniqueKey(req.ReportName, policy, row.Data),
				PatientID: PatientID(policy, row.Data),
				Data:      row.Data,
			})
		}
		stats, err := p.store.UpsertCanonicalChunk(ctx, policy.SQLTable, req.ReportName, ingestionID, capturedAt, entries)
		if err != nil {
			return nil, err
		}
		result.Stats.add(stats)
	}
	return result, nil
}
