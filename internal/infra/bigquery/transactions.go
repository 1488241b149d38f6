package bigquery

import (
	"math/big"
	"time"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/civil"
	"github.com/dvloznov/pocket-ledger/internal/domain"
)

// TransactionRow is one archived ledger transaction.
type TransactionRow struct {
	TransactionID string `bigquery:"transaction_id"` // REQUIRED

	AccountID   string              `bigquery:"account_id"`    // REQUIRED
	ToAccountID bigquery.NullString `bigquery:"to_account_id"` // NULLABLE, transfers only

	TransactionDate civil.Date `bigquery:"transaction_date"` // REQUIRED, UTC calendar date
	BookedAt        time.Time  `bigquery:"booked_at"`        // REQUIRED TIMESTAMP

	Amount   *big.Rat `bigquery:"amount"`   // REQUIRED NUMERIC, always positive
	Currency string   `bigquery:"currency"` // REQUIRED

	Type        string              `bigquery:"type"`        // REQUIRED: income, expense, transfer
	Category    string              `bigquery:"category"`    // REQUIRED category key
	Title       string              `bigquery:"title"`       // REQUIRED
	Description bigquery.NullString `bigquery:"description"` // NULLABLE

	RecurringRuleID bigquery.NullString `bigquery:"recurring_rule_id"` // NULLABLE

	ArchivedTS time.Time `bigquery:"archived_ts"` // REQUIRED
}

// ToRow converts a ledger transaction into its archive row.
func ToRow(tx domain.Transaction, archivedAt time.Time) *TransactionRow {
	return &TransactionRow{
		TransactionID:   tx.ID,
		AccountID:       tx.AccountID,
		ToAccountID:     nullString(tx.ToAccountID),
		TransactionDate: civil.DateOf(tx.Date.UTC()),
		BookedAt:        tx.Date.UTC(),
		Amount:          tx.Amount.Rat(),
		Currency:        string(tx.Currency),
		Type:            string(tx.Type),
		Category:        tx.Category,
		Title:           tx.Title,
		Description:     nullString(tx.Description),
		RecurringRuleID: nullString(tx.GeneratedFromRuleID),
		ArchivedTS:      archivedAt.UTC(),
	}
}

// saver uses the transaction id as the streaming insert id, so archiving the
// same transaction twice in a short window stores it once.
func (r *TransactionRow) saver() *bigquery.StructSaver {
	return &bigquery.StructSaver{Struct: r, InsertID: r.TransactionID}
}

func nullString(s string) bigquery.NullString {
	return bigquery.NullString{StringVal: s, Valid: s != ""}
}

// SpendingRow is the expense total for one month, category and currency.
type SpendingRow struct {
	Month    civil.Date `bigquery:"month"`
	Category string     `bigquery:"category"`
	Currency string     `bigquery:"currency"`
	Total    *big.Rat   `bigquery:"total"`
	Count    int64      `bigquery:"tx_count"`
}
