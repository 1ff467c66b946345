package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/propbooks/cardledger/internal/config"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/logger"
)

func main() {
	log := logger.New()

	exportPath := flag.String("export", "", "Write a snapshot of the ledger to this file")
	importPath := flag.String("import", "", "Replace the ledger with the snapshot in this file")
	flag.Parse()

	if (*exportPath == "") == (*importPath == "") {
		log.Fatal().Msg("Error: exactly one of --export or --import is required")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	blobs, err := cfg.OpenBlobStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open blob store")
	}

	store := ledger.New(blobs, log)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	if *exportPath != "" {
		snapshot := store.ExportSnapshot()
		data, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to marshal snapshot")
		}
		if err := os.WriteFile(*exportPath, data, 0o644); err != nil {
			log.Fatal().Err(err).Str("file", *exportPath).Msg("Failed to write snapshot file")
		}
		fmt.Printf("Snapshot written to %s (%d transactions).\n", *exportPath, len(snapshot.Transactions))
		return
	}

	data, err := os.ReadFile(*importPath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *importPath).Msg("Failed to read snapshot file")
	}
	if err := store.ImportSnapshot(ctx, data); err != nil {
		log.Fatal().Err(err).Msg("Snapshot import failed, ledger unchanged")
	}

	fmt.Println("Snapshot imported.")
}
