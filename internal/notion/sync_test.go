package notion

import (
	"context"
	"testing"

	"github.com/jomei/notionapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/propbooks/cardledger/internal/domain"
)

// mockService records sync operations instead of calling the API.
type mockService struct {
	pages    []notionapi.Page
	created  []string
	updated  []string
	archived []string
}

func (m *mockService) CreatePage(ctx context.Context, databaseID string, properties notionapi.Properties) (*notionapi.Page, error) {
	title := properties["Transaction ID"].(notionapi.TitleProperty)
	m.created = append(m.created, title.Title[0].Text.Content)
	return &notionapi.Page{}, nil
}

func (m *mockService) UpdatePage(ctx context.Context, pageID string, properties notionapi.Properties) (*notionapi.Page, error) {
	m.updated = append(m.updated, pageID)
	return &notionapi.Page{}, nil
}

func (m *mockService) QueryDatabase(ctx context.Context, databaseID string, filter *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return &notionapi.DatabaseQueryResponse{
		Results: m.pages,
		HasMore: false,
	}, nil
}

func (m *mockService) DeletePage(ctx context.Context, pageID string) error {
	m.archived = append(m.archived, pageID)
	return nil
}

func pageFor(pageID, txID string) notionapi.Page {
	return notionapi.Page{
		ID: notionapi.ObjectID(pageID),
		Properties: notionapi.Properties{
			"Transaction ID": &notionapi.TitleProperty{
				Title: []notionapi.RichText{{PlainText: txID}},
			},
		},
	}
}

func TestSyncTransactions(t *testing.T) {
	svc := &mockService{
		pages: []notionapi.Page{
			pageFor("page-1", "t1"), // still active: update
			pageFor("page-2", "t9"), // no longer active: archive
		},
	}

	transactions := []domain.Transaction{
		{ID: "t1", Vendor: "Coffee Inc", Amount: decimal.RequireFromString("12.50")},
		{ID: "t2", Vendor: "Hardware Depot", Amount: decimal.RequireFromString("84.19")},
	}

	result, err := SyncTransactions(context.Background(), svc, "db-1", transactions, nil, false, zerolog.Nop())
	if err != nil {
		t.Fatalf("SyncTransactions failed: %v", err)
	}

	if result.Created != 1 || result.Updated != 1 || result.Deleted != 1 {
		t.Errorf("result = %+v, want 1 created, 1 updated, 1 deleted", result)
	}
	if len(svc.created) != 1 || svc.created[0] != "t2" {
		t.Errorf("created = %v, want [t2]", svc.created)
	}
	if len(svc.updated) != 1 || svc.updated[0] != "page-1" {
		t.Errorf("updated = %v, want [page-1]", svc.updated)
	}
	if len(svc.archived) != 1 || svc.archived[0] != "page-2" {
		t.Errorf("archived = %v, want [page-2]", svc.archived)
	}
}

func TestSyncTransactionsDryRun(t *testing.T) {
	svc := &mockService{
		pages: []notionapi.Page{pageFor("page-1", "t9")},
	}

	transactions := []domain.Transaction{
		{ID: "t1", Vendor: "Coffee Inc", Amount: decimal.RequireFromString("12.50")},
	}

	result, err := SyncTransactions(context.Background(), svc, "db-1", transactions, nil, true, zerolog.Nop())
	if err != nil {
		t.Fatalf("SyncTransactions failed: %v", err)
	}

	if result.Created != 1 || result.Deleted != 1 {
		t.Errorf("result = %+v, want counts reported in dry run", result)
	}
	if len(svc.created) != 0 || len(svc.archived) != 0 || len(svc.updated) != 0 {
		t.Error("dry run performed real operations")
	}
}
