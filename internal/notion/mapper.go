package notion

import (
	"time"

	"github.com/jomei/notionapi"

	"github.com/propbooks/cardledger/internal/domain"
)

// TransactionToProperties converts a ledger transaction to Notion page
// properties. The Transaction ID title property is the sync key.
func TransactionToProperties(tx domain.Transaction, investorName string) notionapi.Properties {
	props := notionapi.Properties{
		"Transaction ID": notionapi.TitleProperty{
			Title: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.ID,
					},
				},
			},
		},
		"Vendor": notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Vendor,
					},
				},
			},
		},
	}

	amount, _ := tx.Amount.Float64()
	props["Amount"] = notionapi.NumberProperty{
		Number: amount,
	}

	if !tx.Date.IsZero() {
		date := notionapi.Date(tx.Date.In(time.UTC))
		props["Date"] = notionapi.DateProperty{
			Date: &notionapi.DateObject{
				Start: &date,
			},
		}
	}

	if tx.Description != "" {
		props["Description"] = notionapi.RichTextProperty{
			RichText: []notionapi.RichText{
				{
					Type: notionapi.ObjectTypeText,
					Text: &notionapi.Text{
						Content: tx.Description,
					},
				},
			},
		}
	}

	if tx.Category != "" {
		props["Category"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Category,
			},
		}
	}

	if tx.Property != "" {
		props["Property"] = notionapi.SelectProperty{
			Select: notionapi.Option{
				Name: tx.Property,
			},
		}
	}

	// A dangling investor reference renders as "Unknown" rather than
	// failing the sync.
	if investorName == "" {
		investorName = "Unknown"
	}
	props["Investor"] = notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: investorName,
		},
	}

	props["Reconciled"] = notionapi.CheckboxProperty{
		Checkbox: tx.Reconciled,
	}

	props["Source"] = notionapi.SelectProperty{
		Select: notionapi.Option{
			Name: string(tx.SourceType),
		},
	}

	return props
}

// extractTransactionID pulls the sync key back out of a Notion page.
// Returns "" when the page has no usable Transaction ID title.
func extractTransactionID(page notionapi.Page) string {
	prop, ok := page.Properties["Transaction ID"]
	if !ok {
		return ""
	}
	title, ok := prop.(*notionapi.TitleProperty)
	if !ok || len(title.Title) == 0 {
		return ""
	}
	return title.Title[0].PlainText
}
