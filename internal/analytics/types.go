// Package analytics mirrors ledger transactions into BigQuery for
// reporting. The mirror is one-way and best-effort: the ledger core
// never reads from or depends on it.
package analytics

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"

	"github.com/propbooks/cardledger/internal/domain"
)

// TransactionRow is the BigQuery row shape for one ledger transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED

	Vendor      string `bigquery:"vendor"`      // REQUIRED
	Description string `bigquery:"description"` // NULLABLE

	Amount *big.Rat `bigquery:"amount"` // REQUIRED NUMERIC

	Category   bigquery.NullString `bigquery:"category"`    // NULLABLE
	CardID     bigquery.NullString `bigquery:"card_id"`     // NULLABLE
	InvestorID bigquery.NullString `bigquery:"investor_id"` // NULLABLE
	Property   bigquery.NullString `bigquery:"property"`    // NULLABLE
	UnitNumber bigquery.NullString `bigquery:"unit_number"` // NULLABLE

	Reconciled bool   `bigquery:"reconciled"`
	SourceType string `bigquery:"source_type"`
	Deleted    bool   `bigquery:"deleted"`

	ExportedTS time.Time `bigquery:"exported_ts"` // REQUIRED
}

// RowsFromTransactions converts ledger transactions into BigQuery rows.
// deleted marks rows exported from the deleted collection.
func RowsFromTransactions(txs []domain.Transaction, deleted bool, exportedAt time.Time) []*TransactionRow {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, &TransactionRow{
			TransactionID:   tx.ID,
			TransactionDate: tx.Date.Date,
			Vendor:          tx.Vendor,
			Description:     tx.Description,
			Amount:          tx.Amount.Rat(),
			Category:        nullString(tx.Category),
			CardID:          nullString(tx.CardID),
			InvestorID:      nullString(tx.InvestorID),
			Property:        nullString(tx.Property),
			UnitNumber:      nullString(tx.UnitNumber),
			Reconciled:      tx.Reconciled,
			SourceType:      string(tx.SourceType),
			Deleted:         deleted,
			ExportedTS:      exportedAt,
		})
	}
	return rows
}

func nullString(s string) bigquery.NullString {
	if s == "" {
		return bigquery.NullString{}
	}
	return bigquery.NullString{StringVal: s, Valid: true}
}
