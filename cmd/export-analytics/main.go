package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/propbooks/cardledger/internal/analytics"
	"github.com/propbooks/cardledger/internal/config"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/logger"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	project := flag.String("project", cfg.BigQueryProject, "GCP project ID (or set BIGQUERY_PROJECT)")
	dataset := flag.String("dataset", cfg.BigQueryDataset, "BigQuery dataset (or set BIGQUERY_DATASET)")
	includeDeleted := flag.Bool("include-deleted", true, "Mirror the deleted collection as well")
	flag.Parse()

	if *project == "" {
		log.Fatal().Msg("Error: --project is required")
	}
	if *dataset == "" {
		log.Fatal().Msg("Error: --dataset is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	blobs, err := cfg.OpenBlobStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open blob store")
	}

	store := ledger.New(blobs, log)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	exporter, err := analytics.NewExporter(ctx, *project, *dataset)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create exporter")
	}
	defer exporter.Close()

	exportedAt := time.Now().UTC()

	rows := analytics.RowsFromTransactions(store.Transactions(), false, exportedAt)
	if *includeDeleted {
		rows = append(rows, analytics.RowsFromTransactions(store.DeletedTransactions(), true, exportedAt)...)
	}

	if err := exporter.InsertTransactions(ctx, rows); err != nil {
		log.Fatal().Err(err).Msg("Export failed")
	}

	fmt.Printf("Exported %d rows to %s.%s.\n", len(rows), *project, *dataset)
}
