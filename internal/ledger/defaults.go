package ledger

import (
	"github.com/propbooks/cardledger/internal/domain"
)

// Default dataset used to seed a fresh (or recovered) ledger. Kept
// minimal: one catch-all property and otherwise empty collections.

func defaultInvestors() []domain.Investor {
	return []domain.Investor{}
}

func defaultProperties() []string {
	return []string{"Personal"}
}

func defaultCards() []domain.Card {
	return []domain.Card{}
}

func defaultTransactions() []domain.Transaction {
	return []domain.Transaction{}
}
