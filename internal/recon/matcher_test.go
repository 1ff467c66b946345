package recon

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

func stmtLine(date domain.Date, desc, amount string) domain.StatementLine {
	return domain.StatementLine{
		ID:          "line-1",
		Date:        date,
		Description: desc,
		Amount:      decimal.RequireFromString(amount),
	}
}

func ledgerTx(id string, date domain.Date, vendor, amount string) domain.Transaction {
	return domain.Transaction{
		ID:     id,
		Date:   date,
		Vendor: vendor,
		Amount: decimal.RequireFromString(amount),
	}
}

func TestCandidates(t *testing.T) {
	jan5 := domain.NewDate(2024, time.January, 5)

	tests := []struct {
		name    string
		line    domain.StatementLine
		txs     []domain.Transaction
		wantIDs []string
	}{
		{
			name: "prefix of statement description in vendor",
			line: stmtLine(jan5, "COFFEE INC PURCHASE 0142", "-12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", domain.NewDate(2024, time.January, 6), "Coffee Inc", "12.50"),
			},
			wantIDs: []string{"t1"},
		},
		{
			name: "vendor contained in statement description",
			line: stmtLine(jan5, "POS DEBIT COFFEE INC SEATTLE", "-12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "Coffee Inc", "12.50"),
			},
			wantIDs: []string{"t1"},
		},
		{
			name: "three days apart still matches",
			line: stmtLine(jan5, "Coffee Inc", "12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", domain.NewDate(2024, time.January, 8), "Coffee Inc", "12.50"),
			},
			wantIDs: []string{"t1"},
		},
		{
			name: "four days apart does not match",
			line: stmtLine(jan5, "Coffee Inc", "12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", domain.NewDate(2024, time.January, 9), "Coffee Inc", "12.50"),
			},
			wantIDs: nil,
		},
		{
			name: "amount difference under a cent matches",
			line: stmtLine(jan5, "Coffee Inc", "-12.509"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "Coffee Inc", "12.50"),
			},
			wantIDs: []string{"t1"},
		},
		{
			name: "amount difference of exactly a cent does not match",
			line: stmtLine(jan5, "Coffee Inc", "12.51"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "Coffee Inc", "12.50"),
			},
			wantIDs: nil,
		},
		{
			name: "sign on statement amount is ignored",
			line: stmtLine(jan5, "Coffee Inc", "-12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "Coffee Inc", "12.50"),
			},
			wantIDs: []string{"t1"},
		},
		{
			name: "no textual overlap",
			line: stmtLine(jan5, "AIRLINE TICKETS", "12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "Coffee Inc", "12.50"),
			},
			wantIDs: nil,
		},
		{
			name: "empty description and vendor never match",
			line: stmtLine(jan5, "", "12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "", "12.50"),
			},
			wantIDs: nil,
		},
		{
			name: "multiple candidates keep input order",
			line: stmtLine(jan5, "COFFEE INC PURCHASE", "12.50"),
			txs: []domain.Transaction{
				ledgerTx("t1", jan5, "Coffee Inc", "12.50"),
				ledgerTx("t2", domain.NewDate(2024, time.January, 6), "Coffee Inc Downtown", "12.50"),
				ledgerTx("t3", jan5, "Bakery", "12.50"),
			},
			wantIDs: []string{"t1", "t2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(tt.line, tt.txs)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("Candidates = %v, want ids %v", got, tt.wantIDs)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("Candidates[%d].ID = %s, want %s", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestCandidatesMatchOnTransactionDescription(t *testing.T) {
	line := stmtLine(domain.NewDate(2024, time.January, 5), "PLUMB SUPP ORDER 42", "88.00")
	tx := domain.Transaction{
		ID:          "t1",
		Date:        domain.NewDate(2024, time.January, 5),
		Vendor:      "ACME",
		Description: "plumb supplies for unit 2",
		Amount:      decimal.RequireFromString("88.00"),
	}

	got := Candidates(line, []domain.Transaction{tx})
	if len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("Candidates = %v, want [t1]", got)
	}
}
