// Package importer bulk-loads statement CSV files into the ledger. The
// caller names a card by its last four digits; every created
// transaction inherits that card's investor and property.
package importer

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/propbooks/cardledger/internal/domain"
	"github.com/propbooks/cardledger/internal/recon"
)

// ErrUnknownCard is returned when no card matches the given last four
// digits.
var ErrUnknownCard = errors.New("importer: no card with those last four digits")

// Ledger is the slice of the ledger store the importer needs.
type Ledger interface {
	CardByLast4(last4 string) (domain.Card, bool)
	AddTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error)
}

// Result reports what one import did. Skipped counts both unparseable
// statement rows and rows with non-positive amounts (payments and
// credits are not expenses); a batch never fails because of one bad
// row.
type Result struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// ImportStatement parses raw statement text and creates one ledger
// transaction per charge row. A missing header fails the whole import;
// row-level problems are skipped and counted.
func ImportStatement(ctx context.Context, store Ledger, raw, cardLast4, category string, log zerolog.Logger) (*Result, error) {
	card, ok := store.CardByLast4(cardLast4)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCard, cardLast4)
	}

	parsed, err := recon.ParseStatement(raw)
	if err != nil {
		return nil, fmt.Errorf("ImportStatement: %w", err)
	}

	result := &Result{Skipped: parsed.Skipped}
	for _, line := range parsed.Lines {
		if !line.Amount.IsPositive() {
			result.Skipped++
			continue
		}

		_, err := store.AddTransaction(ctx, domain.Transaction{
			Date:        line.Date,
			Vendor:      line.Description,
			Description: line.Description,
			Amount:      line.Amount,
			Category:    category,
			CardID:      card.ID,
			InvestorID:  card.InvestorID,
			Property:    card.Property,
			SourceType:  domain.SourceImport,
		})
		if err != nil {
			return result, fmt.Errorf("ImportStatement: adding %q: %w", line.Description, err)
		}
		result.Created++
	}

	log.Info().
		Str("card_last4", cardLast4).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("Statement imported")

	return result, nil
}
