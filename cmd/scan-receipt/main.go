package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/propbooks/cardledger/internal/config"
	"github.com/propbooks/cardledger/internal/domain"
	"github.com/propbooks/cardledger/internal/ledger"
	"github.com/propbooks/cardledger/internal/logger"
	"github.com/propbooks/cardledger/internal/ocr"
)

func main() {
	log := logger.New()

	filePath := flag.String("file", "", "Path to receipt image (required)")
	cardLast4 := flag.String("card-last4", "", "Last four digits of the card (required)")
	category := flag.String("category", "", "Category for the created transaction")
	dryRun := flag.Bool("dry-run", false, "Extract and print, do not create a transaction")
	flag.Parse()

	if *filePath == "" {
		log.Fatal().Msg("Error: --file is required")
	}
	if *cardLast4 == "" && !*dryRun {
		log.Fatal().Msg("Error: --card-last4 is required unless --dry-run")
	}

	image, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatal().Err(err).Str("file", *filePath).Msg("Failed to read receipt image")
	}

	mimeType := mime.TypeByExtension(filepath.Ext(*filePath))
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	extractor := ocr.NewGeminiExtractor(cfg.GeminiModel)
	receipt, err := extractor.ExtractReceipt(ctx, image, mimeType)
	if err != nil {
		log.Fatal().Err(err).Msg("Receipt extraction failed")
	}

	log.Info().
		Str("vendor", receipt.Vendor).
		Str("amount", receipt.Amount.StringFixed(2)).
		Str("date", receipt.Date.String()).
		Msg("Receipt extracted")

	if *dryRun {
		fmt.Printf("%s  %s  %s\n", receipt.Date, receipt.Vendor, receipt.Amount.StringFixed(2))
		return
	}

	blobs, err := cfg.OpenBlobStore(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open blob store")
	}

	store := ledger.New(blobs, log)
	if err := store.Load(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to load ledger")
	}

	card, ok := store.CardByLast4(*cardLast4)
	if !ok {
		log.Fatal().Str("card_last4", *cardLast4).Msg("No card with those last four digits")
	}

	tx, err := store.AddTransaction(ctx, domain.Transaction{
		Date:       receipt.Date,
		Vendor:     receipt.Vendor,
		Amount:     receipt.Amount,
		Category:   *category,
		CardID:     card.ID,
		InvestorID: card.InvestorID,
		Property:   card.Property,
		SourceType: domain.SourceOCR,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create transaction")
	}

	fmt.Printf("Created transaction %s: %s %s on %s.\n", tx.ID, tx.Vendor, tx.Amount.StringFixed(2), tx.Date)
}
