// Package domain holds the record types shared by the ledger store and
// its surrounding tooling. These are plain data structs; all mutation
// goes through the ledger store.
package domain

import (
	"github.com/shopspring/decimal"
)

// SourceType records how a transaction entered the ledger.
type SourceType string

const (
	// SourceManual is a transaction typed in by hand.
	SourceManual SourceType = "manual"
	// SourceOCR is a transaction pre-filled from a scanned receipt.
	SourceOCR SourceType = "ocr"
	// SourceImport is a transaction created by bulk CSV import.
	SourceImport SourceType = "import"
)

// Investor is a person or entity that owns cards and expenses.
// Investors are append-only; the ledger never mutates or deletes them.
type Investor struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// Card is a payment card tied to an investor and a property.
type Card struct {
	ID                string           `json:"id"`
	CardName          string           `json:"cardName"`
	InvestorID        string           `json:"investorId"`
	Property          string           `json:"property"`
	IsPersonal        bool             `json:"isPersonal"`
	SpendLimitMonthly *decimal.Decimal `json:"spendLimitMonthly,omitempty"`
	Last4Digits       string           `json:"last4Digits,omitempty"`
}

// Transaction is one ledger entry. A transaction lives in exactly one of
// the active or deleted collections at any time.
type Transaction struct {
	ID                 string          `json:"id"`
	Date               Date            `json:"date"`
	Vendor             string          `json:"vendor"`
	Description        string          `json:"description"`
	Amount             decimal.Decimal `json:"amount"`
	Category           string          `json:"category"`
	CardID             string          `json:"cardId"`
	InvestorID         string          `json:"investorId"`
	Property           string          `json:"property"`
	UnitNumber         string          `json:"unitNumber,omitempty"`
	ReceiptImageURI    string          `json:"receiptImageUri,omitempty"`
	Reconciled         bool            `json:"reconciled"`
	SourceType         SourceType      `json:"sourceType"`
	DuplicateConfirmed bool            `json:"isDuplicateConfirmed,omitempty"`
}

// StatementLine is one row of externally supplied statement data. Lines
// are session-scoped and never persisted; Amount keeps the sign from the
// source (positive = charge, negative = payment/credit).
type StatementLine struct {
	ID          string          `json:"id"`
	Date        Date            `json:"date"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Reconciled  bool            `json:"isReconciled"`
}

// Snapshot is a full, versioned copy of the five ledger collections,
// used for backup export and import as a single atomic unit.
type Snapshot struct {
	Investors           []Investor    `json:"investors"`
	Properties          []string      `json:"properties"`
	Cards               []Card        `json:"cards"`
	Transactions        []Transaction `json:"transactions"`
	DeletedTransactions []Transaction `json:"deletedTransactions"`
	Timestamp           string        `json:"timestamp"`
	Version             string        `json:"version"`
}
