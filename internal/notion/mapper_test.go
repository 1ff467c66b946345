package notion

import (
	"testing"
	"time"

	"github.com/jomei/notionapi"
	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

func TestTransactionToProperties(t *testing.T) {
	tx := domain.Transaction{
		ID:         "t1",
		Date:       domain.NewDate(2024, time.January, 5),
		Vendor:     "Coffee Inc",
		Amount:     decimal.RequireFromString("12.50"),
		Category:   "Meals",
		Property:   "Lakeside",
		Reconciled: true,
		SourceType: domain.SourceManual,
	}

	props := TransactionToProperties(tx, "Dana")

	title, ok := props["Transaction ID"].(notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 || title.Title[0].Text.Content != "t1" {
		t.Errorf("Transaction ID property = %+v, want title t1", props["Transaction ID"])
	}

	amount, ok := props["Amount"].(notionapi.NumberProperty)
	if !ok || amount.Number != 12.5 {
		t.Errorf("Amount property = %+v, want 12.5", props["Amount"])
	}

	investor, ok := props["Investor"].(notionapi.SelectProperty)
	if !ok || investor.Select.Name != "Dana" {
		t.Errorf("Investor property = %+v, want Dana", props["Investor"])
	}

	reconciled, ok := props["Reconciled"].(notionapi.CheckboxProperty)
	if !ok || !reconciled.Checkbox {
		t.Errorf("Reconciled property = %+v, want checked", props["Reconciled"])
	}

	if _, ok := props["Date"]; !ok {
		t.Error("Date property missing for dated transaction")
	}
	if _, ok := props["Description"]; ok {
		t.Error("Description property present for empty description")
	}
}

func TestTransactionToPropertiesUnknownInvestor(t *testing.T) {
	tx := domain.Transaction{ID: "t1", Amount: decimal.RequireFromString("1.00")}

	props := TransactionToProperties(tx, "")
	investor, ok := props["Investor"].(notionapi.SelectProperty)
	if !ok || investor.Select.Name != "Unknown" {
		t.Errorf("Investor property = %+v, want Unknown", props["Investor"])
	}
}

func TestExtractTransactionID(t *testing.T) {
	page := notionapi.Page{
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: "t1"}},
			},
		},
	}
	if got := extractTransactionID(page); got != "t1" {
		t.Errorf("extractTransactionID = %q, want t1", got)
	}

	if got := extractTransactionID(notionapi.Page{Properties: notionapi.Properties{}}); got != "" {
		t.Errorf("extractTransactionID empty page = %q, want empty", got)
	}
}
