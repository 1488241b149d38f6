package snapshot

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleState() domain.State {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := domain.NewState()
	s.Settings.Name = "Dana"
	s.Accounts = []domain.Account{{
		ID: "acc-1", Name: "Checking", Type: domain.AccountChecking,
		Balance: decimal.RequireFromString("1234.56"), Currency: domain.USD,
		InterestConfig: domain.InterestConfig{Enabled: true, Rate: 1.5, Frequency: domain.Monthly, StartDate: &start},
	}}
	s.Transactions = []domain.Transaction{{
		ID: "tx-1", Amount: decimal.RequireFromString("0.1"), Currency: domain.USD,
		Type: domain.TransactionExpense, Category: "cat_food", AccountID: "acc-1",
		Date: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC), Title: "Coffee",
	}}
	s.Goals = []domain.Goal{{ID: "g-1", Name: "Trip", TargetAmount: decimal.NewFromInt(1000), CurrentAmount: decimal.NewFromInt(10), Currency: domain.USD}}
	s.RecurringRules = []domain.RecurringRule{{
		ID: "r-1", Template: domain.TemplateFrom(s.Transactions[0]), Frequency: domain.Monthly,
		NextDueDate: time.Date(2024, 4, 1, 12, 0, 0, 0, time.UTC), Active: true,
	}}
	return s
}

func TestExportImportRoundTrip(t *testing.T) {
	in := sampleState()
	now := time.Date(2024, 3, 2, 8, 0, 0, 0, time.UTC)

	data, err := Export(in, now)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.EqualValues(t, 1, doc["version"])
	assert.Equal(t, "2024-03-02T08:00:00Z", doc["timestamp"])
	for _, key := range []string{"settings", "accounts", "transactions", "goals", "debts", "budgets", "recurringRules"} {
		assert.Contains(t, doc, key)
	}

	out, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, in.Settings.Name, out.Settings.Name)
	require.Len(t, out.Accounts, 1)
	assert.True(t, out.Accounts[0].Balance.Equal(in.Accounts[0].Balance))
	assert.Equal(t, in.Accounts[0].InterestConfig.Rate, out.Accounts[0].InterestConfig.Rate)
	require.Len(t, out.Transactions, 1)
	assert.True(t, out.Transactions[0].Amount.Equal(decimal.RequireFromString("0.1")))
	assert.True(t, out.Transactions[0].Date.Equal(in.Transactions[0].Date))
	require.Len(t, out.RecurringRules, 1)
	assert.True(t, out.RecurringRules[0].NextDueDate.Equal(in.RecurringRules[0].NextDueDate))
	assert.Empty(t, out.Debts)
	assert.NotNil(t, out.Debts)
}

func TestImportTolerantShapes(t *testing.T) {
	data := []byte(`{
		"accounts": [{"id": "a", "name": "Wallet", "type": "cash", "balance": 50.25, "currency": "EUR", "interestRate": "2.5", "startDate": "2024-01-15"}],
		"transactions": [
			{"id": "t1", "amount": "12.5", "currency": "EUR", "type": "expense", "category": "cat_food", "accountId": "a", "date": "2024-03-01", "title": "Lunch"},
			{"id": "t2", "amount": 3, "currency": "EUR", "type": "income", "category": "cat_gift", "accountId": "a", "date": "2024-03-02T18:30", "title": "Gift"}
		],
		"goals": [{"id": "g", "name": "Bike", "targetAmount": 100, "currentAmount": 100, "currency": "EUR", "isCompleted": false, "deadline": ""}],
		"debts": [{"id": "d", "personName": "Sam", "amount": "20", "currency": "EUR", "type": "i_owe", "dueDate": null}],
		"recurringRules": [{"id": "r", "template": {"amount": 5, "currency": "EUR", "type": "expense", "accountId": "a", "title": "Gym"}, "frequency": "weekly", "nextDueDate": "2024-03-04"}],
		"settings": {"currency": "EUR", "notifications": {"lowBalance": false}}
	}`)

	state, err := Import(data)
	require.NoError(t, err)

	acc := state.Accounts[0]
	assert.True(t, acc.Balance.Equal(decimal.RequireFromString("50.25")))
	assert.Equal(t, 2.5, acc.InterestConfig.Rate)
	require.NotNil(t, acc.InterestConfig.StartDate)
	assert.Equal(t, time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC), *acc.InterestConfig.StartDate)

	assert.True(t, state.Transactions[0].Amount.Equal(decimal.RequireFromString("12.5")))
	assert.Equal(t, time.Date(2024, 3, 2, 18, 30, 0, 0, time.UTC), state.Transactions[1].Date)

	assert.True(t, state.Goals[0].IsCompleted, "completion is recomputed")
	assert.Nil(t, state.Goals[0].Deadline)
	assert.Nil(t, state.Debts[0].DueDate)
	assert.True(t, state.RecurringRules[0].Active, "missing active defaults to true")
	assert.Empty(t, state.Budgets)

	assert.Equal(t, domain.EUR, state.Settings.Currency)
	assert.Equal(t, "es", state.Settings.Language, "unspecified settings keep defaults")
	assert.False(t, state.Settings.Notifications.LowBalance)
	assert.True(t, state.Settings.Notifications.DebtReminders)
	assert.True(t, state.Settings.Notifications.LowBalanceThreshold.Equal(decimal.NewFromInt(100)))
}

func TestImportExplicitInactiveRule(t *testing.T) {
	state, err := Import([]byte(`{"recurringRules": [{"id": "r", "frequency": "daily", "nextDueDate": "2024-03-04", "active": false}]}`))
	require.NoError(t, err)
	assert.False(t, state.RecurringRules[0].Active)
}

func TestImportPausesRuleWithoutNextDueDate(t *testing.T) {
	state, err := Import([]byte(`{"recurringRules": [{"id": "r", "frequency": "monthly", "template": {"amount": 10, "currency": "USD", "type": "expense", "accountId": "A", "title": "Rent"}}]}`))
	require.NoError(t, err)
	require.Len(t, state.RecurringRules, 1)
	assert.True(t, state.RecurringRules[0].NextDueDate.IsZero())
	assert.False(t, state.RecurringRules[0].Active)
}

func TestImportEmptyObject(t *testing.T) {
	state, err := Import([]byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, domain.NewState(), *state)
}

func TestImportRejects(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{name: "not json", data: `{"accounts": [`, wantErr: ErrMalformed},
		{name: "array at top level", data: `[]`, wantErr: ErrMalformed},
		{name: "wrong field type", data: `{"accounts": {"id": "a"}}`, wantErr: ErrMalformed},
		{name: "bad amount", data: `{"transactions": [{"amount": "ten"}]}`, wantErr: ErrMalformed},
		{name: "bad date", data: `{"transactions": [{"date": "yesterday"}]}`, wantErr: ErrBadDate},
		{name: "future version", data: `{"version": 9}`, wantErr: ErrMalformed},
		{name: "transaction without date", data: `{"transactions": [{"id": "t", "amount": 5, "title": "x"}]}`, wantErr: ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, err := Import([]byte(tt.data))
			assert.Nil(t, state)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{in: "2024-03-01T10:00:00Z", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{in: "2024-03-01T10:00:00.123Z", want: time.Date(2024, 3, 1, 10, 0, 0, 123e6, time.UTC)},
		{in: "2024-03-01T10:00:00", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{in: "2024-03-01T10:00", want: time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)},
		{in: " 2024-03-01 ", want: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), "%s: got %s", tt.in, got)
	}

	_, err := ParseDate("03/01/2024")
	assert.ErrorIs(t, err, ErrBadDate)
}
