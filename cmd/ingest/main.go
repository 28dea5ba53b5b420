package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/cpapescrim1106/blueprintproject/internal/config"
	"github.com/cpapescrim1106/blueprintproject/internal/exportfeed"
	"github.com/cpapescrim1106/blueprintproject/internal/ingest"
	"github.com/cpapescrim1106/blueprintproject/pkg/logging"
)

// ingest loads one exported CSV into the canonical tables:
//
//	ingest -file appointments.csv -report "Appointments" -target appointments
func main() {
	_ = godotenv.Load()

	var (
		file       = flag.String("file", "", "path to the exported CSV file (required)")
		report     = flag.String("report", "", "report name, e.g. \"Appointments\" (required)")
		target     = flag.String("target", "", "target table: appointments, patientRecalls, activePatients, salesByIncomeAccount (required)")
		sourceKey  = flag.String("source", "", "source key; defaults to the file name without extension")
		capturedAt = flag.String("captured-at", "", "capture time in epoch milliseconds; defaults to a trailing timestamp in the source key, then now")
	)
	flag.Parse()

	if *file == "" || *report == "" || *target == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	if cfg.DatabaseURL == "" {
		logger.Error("ingest requires DATABASE_URL")
		os.Exit(1)
	}

	handle, err := os.Open(*file)
	if err != nil {
		logger.Error("failed to open csv file", "file", *file, "error", err)
		os.Exit(1)
	}
	defer func() { _ = handle.Close() }()

	rows, err := ingest.ReadCSV(handle)
	if err != nil {
		logger.Error("failed to read csv file", "file", *file, "error", err)
		os.Exit(1)
	}

	key := *sourceKey
	if key == "" {
		key = exportfeed.SourceKey(*file)
	}
	captured := *capturedAt
	if captured == "" {
		captured = strconv.FormatInt(exportfeed.InferCapturedAt(key, time.Now()), 10)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	pipeline := ingest.NewPipeline(ingest.NewPostgresStore(pool), logger).
		WithChunkSize(cfg.IngestChunkSize)

	result, err := pipeline.Run(ctx, ingest.BatchRequest{
		ReportName:  *report,
		CapturedAt:  captured,
		SourceKey:   key,
		TargetTable: ingest.TargetTable(*target),
		Rows:        rows,
	})
	if err != nil {
		logger.Error("ingestion failed", "source_key", key, "error", err)
		os.Exit(1)
	}

	fmt.Printf("ingested %q (%d rows): %d inserted, %d updated, %d unchanged\n",
		key, len(rows), result.Stats.Inserted, result.Stats.Updated, result.Stats.Unchanged)
}
