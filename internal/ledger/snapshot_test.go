package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/blob"
	"github.com/propbooks/cardledger/internal/domain"
)

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	src, _ := newTestStore(t)

	inv, _ := src.AddInvestor(ctx, "Dana", "dana@example.com")
	if _, err := src.AddProperty(ctx, "Lakeside"); err != nil {
		t.Fatalf("AddProperty failed: %v", err)
	}
	card, _ := src.AddCard(ctx, domain.Card{CardName: "Ops Visa", InvestorID: inv.ID, Last4Digits: "4242"})
	tx, _ := src.AddTransaction(ctx, domain.Transaction{
		Vendor: "Coffee Inc",
		Amount: decimal.RequireFromString("12.50"),
		CardID: card.ID,
	})
	gone, _ := src.AddTransaction(ctx, domain.Transaction{
		Vendor: "Refunded",
		Amount: decimal.RequireFromString("9.99"),
	})
	if err := src.SoftDelete(ctx, gone.ID); err != nil {
		t.Fatalf("SoftDelete failed: %v", err)
	}

	snapshot := src.ExportSnapshot()
	if snapshot.Version != SnapshotVersion {
		t.Errorf("Version = %q, want %q", snapshot.Version, SnapshotVersion)
	}
	if snapshot.Timestamp == "" {
		t.Error("Timestamp is empty")
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	dst := New(blob.NewMemoryStore(), zerolog.Nop())
	if err := dst.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if err := dst.ImportSnapshot(ctx, data); err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}

	if got := dst.Properties(); len(got) != 2 {
		t.Errorf("Properties = %v, want 2 entries", got)
	}
	if got, ok := dst.TransactionByID(tx.ID); !ok || got.Vendor != "Coffee Inc" {
		t.Errorf("TransactionByID = %v, %t, want Coffee Inc", got, ok)
	}
	deleted := dst.DeletedTransactions()
	if len(deleted) != 1 || deleted[0].ID != gone.ID {
		t.Errorf("DeletedTransactions = %v, want [%s]", deleted, gone.ID)
	}
	if got, ok := dst.CardByLast4("4242"); !ok || got.ID != card.ID {
		t.Errorf("CardByLast4 = %v, %t, want card %s", got, ok, card.ID)
	}
}

func TestImportSnapshotRejectsMissingField(t *testing.T) {
	ctx := context.Background()

	fields := []string{"investors", "properties", "cards", "transactions", "deletedTransactions", "timestamp", "version"}
	for _, missing := range fields {
		t.Run(missing, func(t *testing.T) {
			store, _ := newTestStore(t)
			tx, _ := store.AddTransaction(ctx, domain.Transaction{
				Vendor: "Keeper",
				Amount: decimal.RequireFromString("1.00"),
			})

			payload := map[string]interface{}{
				"investors":           []interface{}{},
				"properties":          []interface{}{},
				"cards":               []interface{}{},
				"transactions":        []interface{}{},
				"deletedTransactions": []interface{}{},
				"timestamp":           "2024-01-05T00:00:00Z",
				"version":             "1",
			}
			delete(payload, missing)
			data, err := json.Marshal(payload)
			if err != nil {
				t.Fatalf("Marshal failed: %v", err)
			}

			err = store.ImportSnapshot(ctx, data)
			if !errors.Is(err, ErrInvalidSnapshot) {
				t.Fatalf("ImportSnapshot = %v, want ErrInvalidSnapshot", err)
			}

			// Rejection must leave state untouched.
			if _, ok := store.TransactionByID(tx.ID); !ok {
				t.Error("rejected import mutated the store")
			}
		})
	}
}

func TestImportSnapshotRejectsMalformedJSON(t *testing.T) {
	store, _ := newTestStore(t)

	err := store.ImportSnapshot(context.Background(), []byte("not json"))
	if !errors.Is(err, ErrInvalidSnapshot) {
		t.Errorf("ImportSnapshot = %v, want ErrInvalidSnapshot", err)
	}
}

func TestImportSnapshotCoercesDates(t *testing.T) {
	store, _ := newTestStore(t)

	data := []byte(`{
		"investors": [],
		"properties": ["Personal"],
		"cards": [],
		"transactions": [{"id":"t1","date":"garbage","vendor":"Coffee Inc","amount":"12.50"}],
		"deletedTransactions": [],
		"timestamp": "2024-01-05T00:00:00Z",
		"version": "1"
	}`)

	if err := store.ImportSnapshot(context.Background(), data); err != nil {
		t.Fatalf("ImportSnapshot failed: %v", err)
	}

	got, ok := store.TransactionByID("t1")
	if !ok {
		t.Fatal("imported transaction not found")
	}
	if got.Date != domain.Today() {
		t.Errorf("Date = %v, want today", got.Date)
	}
}
