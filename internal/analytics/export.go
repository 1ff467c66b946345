package analytics

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
)

const (
	transactionsTable = "transactions"
	dateFormat        = "2006-01-02"
)

// Exporter writes transaction rows to a BigQuery dataset.
type Exporter struct {
	client  *bigquery.Client
	dataset string
}

// NewExporter creates an Exporter for the given project and dataset.
func NewExporter(ctx context.Context, projectID, dataset string) (*Exporter, error) {
	client, err := bigquery.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("NewExporter: bigquery client: %w", err)
	}
	return &Exporter{client: client, dataset: dataset}, nil
}

// Close releases the underlying client.
func (e *Exporter) Close() error {
	return e.client.Close()
}

// InsertTransactions inserts a batch of TransactionRow into the
// transactions table.
func (e *Exporter) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := e.client.Dataset(e.dataset).Table(transactionsTable).Inserter()
	if err := inserter.Put(ctx, rows); err != nil {
		return fmt.Errorf("InsertTransactions: inserting rows: %w", err)
	}

	return nil
}

// QueryTransactionsByDateRange queries mirrored transactions within the
// specified date range, most recent export first.
func (e *Exporter) QueryTransactionsByDateRange(ctx context.Context, startDate, endDate time.Time) ([]*TransactionRow, error) {
	q := e.client.Query(fmt.Sprintf(`
		SELECT
			t.transaction_id,
			t.transaction_date,
			t.vendor,
			t.description,
			t.amount,
			t.category,
			t.card_id,
			t.investor_id,
			t.property,
			t.unit_number,
			t.reconciled,
			t.source_type,
			t.deleted,
			t.exported_ts
		FROM %s.%s t
		WHERE t.transaction_date >= @start_date
		  AND t.transaction_date <= @end_date
		ORDER BY t.transaction_date DESC, t.exported_ts DESC
	`, e.dataset, transactionsTable))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "start_date", Value: startDate.Format(dateFormat)},
		{Name: "end_date", Value: endDate.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryTransactionsByDateRange: query read: %w", err)
	}

	var rows []*TransactionRow
	for {
		var r TransactionRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryTransactionsByDateRange: iter next: %w", err)
		}
		rows = append(rows, &r)
	}

	return rows, nil
}
