package exportfeed

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// SQSAPI is the subset of the SQS client used by the worker.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// ObjectFetcher downloads an exported report file by object key.
type ObjectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, error)
}

// Ingestor runs one report batch through the ingestion pipeline.
type Ingestor interface {
	Run(ctx context.Context, req ingest.BatchRequest) (*ingest.Result, error)
}

// Worker polls the export notification queue, downloads finished report
// files, and feeds them to the ingestion pipeline.
type Worker struct {
	queue    SQSAPI
	queueURL string
	fetcher  ObjectFetcher
	pipeline Ingestor
	logger   *logging.Logger

	waitSeconds int32
	maxMessages int32
	idleDelay   time.Duration
	now         func() time.Time
}

// NewWorker creates an export feed worker.
func NewWorker(queue SQSAPI, queueURL string, fetcher ObjectFetcher, pipeline Ingestor, logger *logging.Logger) *Worker {
	if queue == nil {
		panic("exportfeed: SQS client cannot be nil")
	}
	if queueURL == "" {
		panic("exportfeed: queueURL cannot be empty")
	}
	if fetcher == nil {
		panic("exportfeed: fetcher cannot be nil")
	}
	if pipeline == nil {
		panic("exportfeed: pipeline cannot be nil")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Worker{
		queue:       queue,
		queueURL:    queueURL,
		fetcher:     fetcher,
		pipeline:    pipeline,
		logger:      logger,
		waitSeconds: 20,
		maxMessages: 5,
		idleDelay:   time.Second,
		now:         time.Now,
	}
}

// WithPollInterval overrides the long poll wait.
func (w *Worker) WithPollInterval(seconds int32) *Worker {
	if seconds > 0 {
		w.waitSeconds = seconds
	}
	return w
}

// Run polls the queue until ctx is canceled.
func (w *Worker) Run(ctx context.Context) {
	w.logger.Info("export feed worker started", "queue_url", w.queueURL)
	for {
		if ctx.Err() != nil {
			w.logger.Info("export feed worker stopped")
			return
		}
		if err := w.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			w.logger.Error("export feed poll failed", "error", err)
			select {
			case <-ctx.Done():
			case <-time.After(w.idleDelay):
			}
		}
	}
}

func (w *Worker) poll(ctx context.Context) error {
	out, err := w.queue.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(w.queueURL),
		MaxNumberOfMessages: w.maxMessages,
		WaitTimeSeconds:     w.waitSeconds,
	})
	if err != nil {
		return err
	}

	for _, msg := range out.Messages {
		if err := w.handle(ctx, aws.ToString(msg.Body)); err != nil {
			// Leave the message on the queue so the visibility timeout
			// returns it for another attempt.
			w.logger.Error("failed to process export notification", "error", err)
			continue
		}
		if _, err := w.queue.DeleteMessage(ctx, &sqs.DeleteMessageInput{
			QueueUrl:      aws.String(w.queueURL),
			ReceiptHandle: msg.ReceiptHandle,
		}); err != nil {
			w.logger.Error("failed to delete export notification", "error", err)
		}
	}
	return nil
}

func (w *Worker) handle(ctx context.Context, body string) error {
	notification, ok := ParseNotification(body)
	if !ok {
		w.logger.Warn("ignoring unrecognized export notification")
		return nil
	}

	target, ok := TargetForReport(notification.ReportName)
	if !ok {
		w.logger.Info("skipping report without ingestion target", "report_name", notification.ReportName)
		return nil
	}

	data, err := w.fetcher.Fetch(ctx, notification.ResultKey)
	if err != nil {
		return err
	}
	rows, err := ingest.ReadCSV(bytes.NewReader(data))
	if err != nil {
		return err
	}

	sourceKey := SourceKey(notification.ResultKey)
	capturedAt := InferCapturedAt(sourceKey, w.now())

	result, err := w.pipeline.Run(ctx, ingest.BatchRequest{
		ReportName:  notification.ReportName,
		CapturedAt:  strconv.FormatInt(capturedAt, 10),
		SourceKey:   sourceKey,
		TargetTable: target,
		Rows:        rows,
	})
	if err != nil {
		return err
	}

	w.logger.Info("ingested exported report",
		"report_name", notification.ReportName,
		"source_key", sourceKey,
		"rows", len(rows),
		"inserted", result.Stats.Inserted,
		"updated", result.Stats.Updated,
		"unchanged", result.Stats.Unchanged,
	)
	return nil
}
