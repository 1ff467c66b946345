package recon

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

// matchWindowDays is the maximum calendar-day distance between a
// statement line and a candidate transaction.
const matchWindowDays = 3

// amountTolerance is the largest accepted magnitude difference. The
// statement sign is ignored; only magnitude is compared.
var amountTolerance = decimal.New(1, -2) // 0.01

// prefixLen is how many characters of the statement description feed
// the textual-overlap test.
const prefixLen = 10

// Candidates returns the unreconciled transactions matching one
// statement line. A transaction matches when all three hold: the dates
// are at most three days apart, the amount magnitudes differ by less
// than a cent, and there is textual overlap between vendor/description
// and the statement description.
//
// No ranking is applied among candidates: order is the insertion order
// of the unreconciled set, and the caller chooses. Matching never
// commits anything.
func Candidates(line domain.StatementLine, unreconciled []domain.Transaction) []domain.Transaction {
	stmtDesc := strings.ToLower(strings.TrimSpace(line.Description))
	prefix := stmtDesc
	if len(prefix) > prefixLen {
		prefix = prefix[:prefixLen]
	}
	magnitude := line.Amount.Abs()

	var out []domain.Transaction
	for _, tx := range unreconciled {
		if tx.Date.DaysApart(line.Date) > matchWindowDays {
			continue
		}
		if magnitude.Sub(tx.Amount).Abs().GreaterThanOrEqual(amountTolerance) {
			continue
		}
		if !textOverlap(prefix, stmtDesc, tx) {
			continue
		}
		out = append(out, tx)
	}
	return out
}

func textOverlap(prefix, stmtDesc string, tx domain.Transaction) bool {
	vendor := strings.ToLower(tx.Vendor)
	desc := strings.ToLower(tx.Description)

	if prefix != "" && (strings.Contains(vendor, prefix) || strings.Contains(desc, prefix)) {
		return true
	}
	if vendor != "" && strings.Contains(stmtDesc, vendor) {
		return true
	}
	return false
}
