package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/propbooks/cardledger/internal/config"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/logger"
	"github.com/propbooks/cardledger/internal/notion"
)

func main() {
	log := logger.New()
	cfg := config.Load()

	notionToken := flag.String("notion-token", cfg.NotionToken, "Notion API token (or set NOTION_TOKEN)")
	notionDBID := flag.String("notion-db-id", cfg.NotionDatabaseID, "Notion database ID (or set NOTION_DATABASE_ID)")
	dryRun := flag.Bool("dry-run", false, "Dry run mode - preview changes without syncing")
	flag.Parse()

	if *notionToken == "" {
		log.Fatal().Msg("Error: --notion-token is required")
	}
	if *notionDBID == "" {
		log.Fatal().Msg("Error: --notion-db-id is required")
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

	investorNames := make(map[string]string)
	for _, inv := range store.Investors() {
		investorNames[inv.ID] = inv.Name
	}

	client := notion.NewClient(*notionToken)

	result, err := notion.SyncTransactions(ctx, client, *notionDBID, store.Transactions(), investorNames, *dryRun, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Sync failed")
	}

	fmt.Printf("Sync complete: %d created, %d updated, %d archived.\n", result.Created, result.Updated, result.Deleted)
}
