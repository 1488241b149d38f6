package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/snapshot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImportRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, "A", "100", domain.USD)
	f.goal(t, "G", "500", "20")
	_, err := f.ledger.AddTransaction(ctx, tx("t", domain.TransactionExpense, "12.34", domain.USD, "A", ""), nil)
	require.NoError(t, err)

	data, err := f.ledger.Export()
	require.NoError(t, err)

	other := newFixture(t)
	require.NoError(t, other.ledger.Import(ctx, data))

	assert.Equal(t, f.ledger.Snapshot().Accounts[0].ID, other.ledger.Snapshot().Accounts[0].ID)
	assertDecimal(t, "87.66", other.balance(t, "A"))
	assertDecimal(t, "20", other.balance(t, "G"))
	assert.Len(t, other.ledger.Transactions(), 1)
	assert.NotEmpty(t, other.store.saved, "an import is persisted")
}

func TestImportIsAtomic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, "A", "100", domain.USD)
	before := f.ledger.Snapshot()
	saves := len(f.store.saved)

	err := f.ledger.Import(ctx, []byte(`{"accounts": [{"id": "B", "balance": "lots"}]}`))
	assert.ErrorIs(t, err, snapshot.ErrMalformed)
	assert.Equal(t, before, f.ledger.Snapshot())
	assert.Len(t, f.store.saved, saves)

	err = f.ledger.Import(ctx, []byte(`{"accounts": [{"id": "B", "name": "B", "balance": 7, "currency": "EUR"}]}`))
	require.NoError(t, err)
	accounts := f.ledger.Accounts()
	require.Len(t, accounts, 1)
	assert.Equal(t, "B", accounts[0].ID)
	assert.Equal(t, domain.DefaultSettings(), f.ledger.Settings())
}

func TestImportClearsPendingUndo(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, "A", "100", domain.USD)
	_, err := f.ledger.AddTransaction(ctx, tx("t", domain.TransactionExpense, "1", domain.USD, "A", ""), nil)
	require.NoError(t, err)
	_, err = f.ledger.DeleteTransaction(ctx, "t")
	require.NoError(t, err)

	require.NoError(t, f.ledger.Import(ctx, []byte(`{}`)))
	_, err = f.ledger.UndoDelete(ctx, "t")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestImportedRuleWithoutNextDueDateGeneratesNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.ledger.Import(ctx, []byte(`{
		"accounts": [{"id": "A", "name": "A", "balance": 100, "currency": "USD"}],
		"recurringRules": [{"id": "r", "frequency": "monthly", "template": {"amount": 10, "currency": "USD", "type": "expense", "accountId": "A", "title": "Rent"}}]
	}`)))

	report, err := f.ledger.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, report.Generated)
	assertDecimal(t, "100", f.balance(t, "A"))

	rule, err := f.ledger.SetRuleActive(ctx, "r", true)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC), rule.NextDueDate, "resumed one period from now")

	report, err = f.ledger.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, report.Generated)
	assert.Empty(t, report.Stalled)
}

func TestImportRejectsTransactionWithoutDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, "A", "100", domain.USD)
	before := f.ledger.Snapshot()

	err := f.ledger.Import(ctx, []byte(`{"transactions": [{"id": "t", "amount": 5, "type": "expense", "accountId": "A", "title": "x"}]}`))
	assert.ErrorIs(t, err, snapshot.ErrMalformed)
	assert.Equal(t, before, f.ledger.Snapshot())
}
