package ledger

import (
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

func dupTx(id, vendor, amount string, confirmed bool) domain.Transaction {
	return domain.Transaction{
		ID:                 id,
		Date:               domain.NewDate(2024, time.January, 5),
		Vendor:             vendor,
		Amount:             decimal.RequireFromString(amount),
		DuplicateConfirmed: confirmed,
	}
}

func TestDetectDuplicates(t *testing.T) {
	tests := []struct {
		name string
		txs  []domain.Transaction
		want map[string]bool
	}{
		{
			name: "no duplicates",
			txs: []domain.Transaction{
				dupTx("t1", "Coffee Inc", "12.50", false),
				dupTx("t2", "Coffee Inc", "13.50", false),
			},
			want: map[string]bool{},
		},
		{
			name: "identical pair flagged",
			txs: []domain.Transaction{
				dupTx("t1", "Coffee Inc", "12.50", false),
				dupTx("t2", "Coffee Inc", "12.50", false),
			},
			want: map[string]bool{"t1": true, "t2": true},
		},
		{
			name: "vendor case insensitive",
			txs: []domain.Transaction{
				dupTx("t1", "COFFEE INC", "12.50", false),
				dupTx("t2", "coffee inc", "12.50", false),
			},
			want: map[string]bool{"t1": true, "t2": true},
		},
		{
			name: "amounts equal at two decimals",
			txs: []domain.Transaction{
				dupTx("t1", "Coffee Inc", "12.5", false),
				dupTx("t2", "Coffee Inc", "12.50", false),
			},
			want: map[string]bool{"t1": true, "t2": true},
		},
		{
			name: "confirmed member excluded, sibling unflagged",
			txs: []domain.Transaction{
				dupTx("t1", "Coffee Inc", "12.50", true),
				dupTx("t2", "Coffee Inc", "12.50", false),
			},
			want: map[string]bool{},
		},
		{
			name: "triple flags all three",
			txs: []domain.Transaction{
				dupTx("t1", "Coffee Inc", "12.50", false),
				dupTx("t2", "Coffee Inc", "12.50", false),
				dupTx("t3", "Coffee Inc", "12.50", false),
			},
			want: map[string]bool{"t1": true, "t2": true, "t3": true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDuplicates(tt.txs)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DetectDuplicates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetectDuplicatesIdempotent(t *testing.T) {
	txs := []domain.Transaction{
		dupTx("t1", "Coffee Inc", "12.50", false),
		dupTx("t2", "Coffee Inc", "12.50", false),
	}

	first := DetectDuplicates(txs)
	second := DetectDuplicates(txs)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeat runs disagree: %v vs %v", first, second)
	}
}

func TestDetectDuplicatesDifferentDates(t *testing.T) {
	a := dupTx("t1", "Coffee Inc", "12.50", false)
	b := dupTx("t2", "Coffee Inc", "12.50", false)
	b.Date = domain.NewDate(2024, time.January, 6)

	if got := DetectDuplicates([]domain.Transaction{a, b}); len(got) != 0 {
		t.Errorf("different dates flagged: %v", got)
	}
}
