package session

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

func testLines() []domain.StatementLine {
	return []domain.StatementLine{
		{
			ID:          "line-1",
			Date:        domain.NewDate(2024, time.January, 5),
			Description: "Coffee Inc",
			Amount:      decimal.RequireFromString("12.50"),
		},
		{
			ID:          "line-2",
			Date:        domain.NewDate(2024, time.January, 6),
			Description: "Hardware Depot",
			Amount:      decimal.RequireFromString("84.19"),
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	m := NewManager()

	created := m.Create(testLines(), 3)
	if created.ID == "" {
		t.Fatal("Create did not assign an id")
	}
	if created.Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", created.Skipped)
	}

	got, err := m.Get(created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(got.Lines) != 2 {
		t.Errorf("Lines = %v, want 2 lines", got.Lines)
	}

	if _, err := m.Get("missing"); err == nil {
		t.Error("Get unknown id succeeded, want error")
	}
}

func TestGetReturnsCopy(t *testing.T) {
	m := NewManager()
	s := m.Create(testLines(), 0)

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	got.Lines[0].Reconciled = true

	again, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if again.Lines[0].Reconciled {
		t.Error("mutating a returned session leaked into the manager")
	}
}

func TestMarkReconciled(t *testing.T) {
	m := NewManager()
	s := m.Create(testLines(), 0)

	if err := m.MarkReconciled(s.ID, "line-2"); err != nil {
		t.Fatalf("MarkReconciled failed: %v", err)
	}

	line, err := m.Line(s.ID, "line-2")
	if err != nil {
		t.Fatalf("Line failed: %v", err)
	}
	if !line.Reconciled {
		t.Error("line not marked reconciled")
	}

	other, err := m.Line(s.ID, "line-1")
	if err != nil {
		t.Fatalf("Line failed: %v", err)
	}
	if other.Reconciled {
		t.Error("unrelated line marked reconciled")
	}

	if err := m.MarkReconciled(s.ID, "missing"); err == nil {
		t.Error("MarkReconciled unknown line succeeded, want error")
	}
	if err := m.MarkReconciled("missing", "line-1"); err == nil {
		t.Error("MarkReconciled unknown session succeeded, want error")
	}
}

func TestClose(t *testing.T) {
	m := NewManager()
	s := m.Create(testLines(), 0)

	m.Close(s.ID)
	if _, err := m.Get(s.ID); err == nil {
		t.Error("Get after Close succeeded, want error")
	}

	// Closing an unknown id is a no-op.
	m.Close("missing")
}
