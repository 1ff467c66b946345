package ledger

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/blob"
	"github.com/propbooks/cardledger/internal/domain"
)

// newTestStore returns a loaded store over a fresh in-memory blob
// backend, plus the backend for persistence assertions.
func newTestStore(t *testing.T) (*Store, *blob.MemoryStore) {
	t.Helper()

	blobs := blob.NewMemoryStore()
	store := New(blobs, zerolog.Nop())
	if err := store.Load(context.Background()); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return store, blobs
}

func TestLoadSeedsDefaults(t *testing.T) {
	store, blobs := newTestStore(t)

	props := store.Properties()
	if len(props) != 1 || props[0] != "Personal" {
		t.Errorf("Properties = %v, want [Personal]", props)
	}
	if got := store.Investors(); len(got) != 0 {
		t.Errorf("Investors = %v, want empty", got)
	}
	if got := store.Cards(); len(got) != 0 {
		t.Errorf("Cards = %v, want empty", got)
	}
	if got := store.Transactions(); len(got) != 0 {
		t.Errorf("Transactions = %v, want empty", got)
	}

	// Defaults must be written through, not just held in memory.
	for _, key := range []string{"investors", "properties", "cards", "transactions", "deleted_transactions"} {
		if _, err := blobs.Get(context.Background(), key); err != nil {
			t.Errorf("blob %q not persisted after Load: %v", key, err)
		}
	}
}

func TestLoadDiscardsCorruptBlob(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()
	if err := blobs.Put(ctx, "transactions", []byte("{definitely not an array")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	store := New(blobs, zerolog.Nop())
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got := store.Transactions(); len(got) != 0 {
		t.Errorf("Transactions = %v, want empty after corrupt blob recovery", got)
	}

	// The corrupt blob is replaced with a valid default payload.
	data, err := blobs.Get(ctx, "transactions")
	if err != nil {
		t.Fatalf("Get after recovery failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("persisted transactions = %s, want []", data)
	}
}

func TestLoadCoercesUnparseableDates(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()
	raw := `[{"id":"t1","date":"garbage","vendor":"Coffee Inc","amount":"12.50"}]`
	if err := blobs.Put(ctx, "transactions", []byte(raw)); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	store := New(blobs, zerolog.Nop())
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	txs := store.Transactions()
	if len(txs) != 1 {
		t.Fatalf("Transactions = %v, want one record", txs)
	}
	if txs[0].Date != domain.Today() {
		t.Errorf("Date = %v, want today", txs[0].Date)
	}
	if !txs[0].Amount.Equal(decimal.RequireFromString("12.50")) {
		t.Errorf("Amount = %v, want 12.50", txs[0].Amount)
	}
}

func TestLoadNullCollection(t *testing.T) {
	ctx := context.Background()
	blobs := blob.NewMemoryStore()
	if err := blobs.Put(ctx, "cards", []byte("null")); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	store := New(blobs, zerolog.Nop())
	if err := store.Load(ctx); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := store.Cards(); got == nil || len(got) != 0 {
		t.Errorf("Cards = %#v, want empty non-nil slice", got)
	}
}

func TestWriteThroughSurvivesReload(t *testing.T) {
	ctx := context.Background()
	store, blobs := newTestStore(t)

	tx, err := store.AddTransaction(ctx, domain.Transaction{
		Vendor: "Hardware Depot",
		Amount: decimal.RequireFromString("84.19"),
	})
	if err != nil {
		t.Fatalf("AddTransaction failed: %v", err)
	}

	reloaded := New(blobs, zerolog.Nop())
	if err := reloaded.Load(ctx); err != nil {
		t.Fatalf("reload failed: %v", err)
	}

	got, ok := reloaded.TransactionByID(tx.ID)
	if !ok {
		t.Fatalf("transaction %s not found after reload", tx.ID)
	}
	if got.Vendor != "Hardware Depot" {
		t.Errorf("Vendor = %q, want Hardware Depot", got.Vendor)
	}
}

func TestAddPropertyIsSetLike(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	if _, err := store.AddProperty(ctx, "Lakeside"); err != nil {
		t.Fatalf("AddProperty failed: %v", err)
	}
	if _, err := store.AddProperty(ctx, "  Lakeside  "); err != nil {
		t.Fatalf("AddProperty duplicate failed: %v", err)
	}
	if _, err := store.AddProperty(ctx, "Personal"); err != nil {
		t.Fatalf("AddProperty seeded duplicate failed: %v", err)
	}

	props := store.Properties()
	if len(props) != 2 {
		t.Errorf("Properties = %v, want [Personal Lakeside]", props)
	}
}

func TestAddInvestorAssignsID(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	inv, err := store.AddInvestor(ctx, "Dana", "dana@example.com")
	if err != nil {
		t.Fatalf("AddInvestor failed: %v", err)
	}
	if inv.ID == "" {
		t.Error("AddInvestor did not assign an id")
	}

	got, ok := store.InvestorByID(inv.ID)
	if !ok || got.Name != "Dana" {
		t.Errorf("InvestorByID = %v, %t, want Dana", got, ok)
	}
	if _, ok := store.InvestorByID("missing"); ok {
		t.Error("InvestorByID returned true for unknown id")
	}
}

func TestCardByLast4(t *testing.T) {
	ctx := context.Background()
	store, _ := newTestStore(t)

	card, err := store.AddCard(ctx, domain.Card{CardName: "Ops Visa", Last4Digits: "4242"})
	if err != nil {
		t.Fatalf("AddCard failed: %v", err)
	}

	got, ok := store.CardByLast4("4242")
	if !ok || got.ID != card.ID {
		t.Errorf("CardByLast4 = %v, %t, want card %s", got, ok, card.ID)
	}
	if _, ok := store.CardByLast4("0000"); ok {
		t.Error("CardByLast4 matched an unknown suffix")
	}
	if _, ok := store.CardByLast4(""); ok {
		t.Error("CardByLast4 matched an empty suffix")
	}
}
