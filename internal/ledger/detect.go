package ledger

import (
	"strings"

	"github.com/propbooks/cardledger/internal/domain"
)

// DetectDuplicates flags likely double-entries in the active
// transaction collection. Transactions are grouped by the signature
// (date, lowercased vendor, amount rounded to two decimals); every
// member of a group with more than one entry is flagged.
//
// Transactions already confirmed as duplicates are excluded from
// grouping entirely, so confirming one leaves any identical sibling
// unflagged on the next run. The function is pure, idempotent and
// order-independent; it is recomputed over a snapshot of the collection
// on every read rather than cached.
func DetectDuplicates(transactions []domain.Transaction) map[string]bool {
	groups := make(map[string][]string)
	for _, tx := range transactions {
		if tx.DuplicateConfirmed {
			continue
		}
		sig := tx.Date.String() + "|" + strings.ToLower(tx.Vendor) + "|" + tx.Amount.StringFixed(2)
		groups[sig] = append(groups[sig], tx.ID)
	}

	flagged := make(map[string]bool)
	for _, ids := range groups {
		if len(ids) > 1 {
			for _, id := range ids {
				flagged[id] = true
			}
		}
	}
	return flagged
}
