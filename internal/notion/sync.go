package notion

import (
	"context"
	"fmt"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"

	"github.com/propbooks/cardledger/internal/domain"
)

// pageSize is the Notion API query page size.
const pageSize = 100

// SyncResult reports what one sync did.
type SyncResult struct {
	Created int
	Updated int
	Deleted int
}

// SyncTransactions mirrors the active transaction collection into a
// Notion database. The Transaction ID title property keys each page.
// Pages whose transaction no longer exists in the active set are
// archived; existing pages are updated in place.
//
// investorNames maps investor id to display name; dangling references
// render as "Unknown".
func SyncTransactions(ctx context.Context, svc Service, databaseID string, transactions []domain.Transaction, investorNames map[string]string, dryRun bool, log zerolog.Logger) (*SyncResult, error) {
	log.Info().
		Int("transactions", len(transactions)).
		Bool("dry_run", dryRun).
		Msg("Starting transaction sync to Notion")

	valid := make(map[string]bool, len(transactions))
	for _, tx := range transactions {
		valid[tx.ID] = true
	}

	pages, err := queryAllPages(ctx, svc, databaseID)
	if err != nil {
		return nil, fmt.Errorf("SyncTransactions: querying existing pages: %w", err)
	}

	// Page id by transaction id, for update-in-place.
	existing := make(map[string]string, len(pages))
	result := &SyncResult{}

	for _, page := range pages {
		txID := extractTransactionID(page)
		if txID != "" && valid[txID] {
			existing[txID] = string(page.ID)
			continue
		}

		// Stale page: its transaction was deleted or purged.
		if dryRun {
			log.Info().Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("[DRY RUN] Would archive stale Notion page")
			result.Deleted++
			continue
		}
		if err := svc.DeletePage(ctx, string(page.ID)); err != nil {
			log.Warn().Err(err).Str("transaction_id", txID).Str("page_id", string(page.ID)).Msg("Failed to archive stale Notion page")
			continue
		}
		result.Deleted++
	}

	for _, tx := range transactions {
		props := TransactionToProperties(tx, investorNames[tx.InvestorID])

		if pageID, ok := existing[tx.ID]; ok {
			if dryRun {
				log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would update Notion page")
				result.Updated++
				continue
			}
			if _, err := svc.UpdatePage(ctx, pageID, props); err != nil {
				log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to update Notion page")
				continue
			}
			result.Updated++
			continue
		}

		if dryRun {
			log.Info().Str("transaction_id", tx.ID).Msg("[DRY RUN] Would create Notion page")
			result.Created++
			continue
		}
		if _, err := svc.CreatePage(ctx, databaseID, props); err != nil {
			log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("Failed to create Notion page")
			continue
		}
		result.Created++
	}

	log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("deleted", result.Deleted).
		Msg("Notion sync complete")

	return result, nil
}

// queryAllPages pages through the whole database.
func queryAllPages(ctx context.Context, svc Service, databaseID string) ([]notionapi.Page, error) {
	var pages []notionapi.Page
	var cursor notionapi.Cursor

	for {
		req := &notionapi.DatabaseQueryRequest{
			PageSize:    pageSize,
			StartCursor: cursor,
		}

		resp, err := svc.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}

		pages = append(pages, resp.Results...)

		if !resp.HasMore {
			break
		}
		cursor = resp.NextCursor
	}

	return pages, nil
}
