package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/propbooks/cardledger/internal/config"
	"github.com/propbooks/cardledger/internal/importer"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/logger"
)

func main() {
	log := logger.New()

	filePath := flag.String("file", "", "Path to statement CSV file (required)")
	cardLast4 := flag.String("card-last4", "", "Last four digits of the card (required)")
	category := flag.String("category", "", "Category applied to every imported transaction")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}
	if *cardLast4 == "" {
		log.Fatal().Msg("Error: --card-last4 is required")
	}

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read statement file")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
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

	result, err := importer.ImportStatement(ctx, store, string(raw), *cardLast4, *category, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Import failed")
	}

	fmt.Printf("Imported %d transactions (%d rows skipped).\n", result.Created, result.Skipped)
}
