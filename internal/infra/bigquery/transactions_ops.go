package bigquery

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"google.golang.org/api/iterator"
)

const dateFormat = "2006-01-02"

// insertBatchSize keeps streaming insert requests well under the API limits.
const insertBatchSize = 500

// TransactionArchive stores ledger transactions for long term analysis.
type TransactionArchive interface {
	InsertTransactions(ctx context.Context, rows []*TransactionRow) error
	QueryMonthlySpending(ctx context.Context, from, to time.Time) ([]*SpendingRow, error)
	Close() error
}

// Archive is the BigQuery implementation of TransactionArchive. It holds a
// shared client for the lifetime of the process.
type Archive struct {
	client  *bigquery.Client
	project string
	dataset string
	table   string
}

// NewArchive creates an Archive with its own client.
func NewArchive(ctx context.Context, project, dataset, table string) (*Archive, error) {
	if project == "" {
		return nil, fmt.Errorf("NewArchive: project is required")
	}
	client, err := bigquery.NewClient(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("NewArchive: creating client: %w", err)
	}
	return NewArchiveWithClient(client, dataset, table), nil
}

// NewArchiveWithClient creates an Archive using the provided BigQuery client.
func NewArchiveWithClient(client *bigquery.Client, dataset, table string) *Archive {
	return &Archive{
		client:  client,
		project: client.Project(),
		dataset: dataset,
		table:   table,
	}
}

// Close closes the BigQuery client connection.
func (a *Archive) Close() error {
	if a.client != nil {
		return a.client.Close()
	}
	return nil
}

// InsertTransactions streams rows into the archive table in batches.
func (a *Archive) InsertTransactions(ctx context.Context, rows []*TransactionRow) error {
	if len(rows) == 0 {
		return nil
	}

	inserter := a.client.DatasetInProject(a.project, a.dataset).Table(a.table).Inserter()
	for start := 0; start < len(rows); start += insertBatchSize {
		end := min(start+insertBatchSize, len(rows))
		savers := make([]*bigquery.StructSaver, 0, end-start)
		for _, r := range rows[start:end] {
			savers = append(savers, r.saver())
		}
		if err := inserter.Put(ctx, savers); err != nil {
			return fmt.Errorf("InsertTransactions: inserting rows %d-%d: %w", start, end, err)
		}
	}
	return nil
}

// QueryMonthlySpending sums archived expenses per month, category and
// currency for transaction dates in [from, to].
func (a *Archive) QueryMonthlySpending(ctx context.Context, from, to time.Time) ([]*SpendingRow, error) {
	q := a.client.Query(fmt.Sprintf(`
		SELECT
			DATE_TRUNC(transaction_date, MONTH) AS month,
			category,
			currency,
			SUM(amount) AS total,
			COUNT(DISTINCT transaction_id) AS tx_count
		FROM `+"`%s.%s.%s`"+`
		WHERE type = @type
		  AND transaction_date >= @start_date
		  AND transaction_date <= @end_date
		GROUP BY month, category, currency
		ORDER BY month, total DESC
	`, a.project, a.dataset, a.table))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "type", Value: string(domain.TransactionExpense)},
		{Name: "start_date", Value: from.Format(dateFormat)},
		{Name: "end_date", Value: to.Format(dateFormat)},
	}

	it, err := q.Read(ctx)
	if err != nil {
		return nil, fmt.Errorf("QueryMonthlySpending: query read: %w", err)
	}

	var rows []*SpendingRow
	for {
		var r SpendingRow
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("QueryMonthlySpending: iter next: %w", err)
		}
		rows = append(rows, &r)
	}
	return rows, nil
}

// ArchiveTransactions converts txs and inserts them.
func ArchiveTransactions(ctx context.Context, archive TransactionArchive, txs []domain.Transaction, now time.Time) (int, error) {
	rows := make([]*TransactionRow, 0, len(txs))
	for _, tx := range txs {
		rows = append(rows, ToRow(tx, now))
	}
	if err := archive.InsertTransactions(ctx, rows); err != nil {
		return 0, fmt.Errorf("ArchiveTransactions: %w", err)
	}
	return len(rows), nil
}

// Ensure Archive implements TransactionArchive.
var _ TransactionArchive = (*Archive)(nil)
