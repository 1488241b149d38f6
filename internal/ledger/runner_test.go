package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunRecurringCatchesUp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, "A", "1000", domain.USD)

	in := tx("seed", domain.TransactionExpense, "5", domain.USD, "A", "")
	in.Date = t0.AddDate(0, 0, -4)
	in.IsRecurring = true
	_, err := f.ledger.AddTransaction(ctx, in, &domain.RecurringOptions{Frequency: domain.Daily, Notify: true})
	require.NoError(t, err)
	rule := f.ledger.RecurringRules()[0]

	report, err := f.ledger.RunRecurring(ctx, t0)
	require.NoError(t, err)
	require.Len(t, report.Generated, 4)
	assert.Equal(t, []string{rule.ID}, report.Advanced)
	assert.Empty(t, report.Stalled)

	for i, g := range report.Generated {
		assert.Equal(t, t0.AddDate(0, 0, i-3), g.Date)
		assert.Equal(t, rule.ID, g.GeneratedFromRuleID)
		assert.Equal(t, in.Title, g.Title)
		assert.False(t, g.IsRecurring)
	}
	assertDecimal(t, "975", f.balance(t, "A"))
	assert.Equal(t, t0.AddDate(0, 0, 1), f.ledger.RecurringRules()[0].NextDueDate)

	alertsNow := f.ledger.Alerts()
	require.Len(t, alertsNow, 4)
	assert.Equal(t, "rec_"+report.Generated[3].ID, alertsNow[0].ID, "newest notice first")
	assert.Equal(t, domain.AlertRecurringProcessed, alertsNow[0].Type)
	assert.Equal(t, in.Title, alertsNow[0].Data)

	// A second run at the same instant is a no-op.
	saves := len(f.store.saved)
	report, err = f.ledger.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, report.Generated)
	assert.Len(t, f.store.saved, saves)
	assert.Len(t, f.ledger.Transactions(), 5)
}

func TestRunRecurringSkipsInactiveAndFutureRules(t *testing.T) {
	ctx := context.Background()
	state := domain.NewState()
	state.Accounts = []domain.Account{{ID: "A", Name: "A", Balance: dec("100"), Currency: domain.USD}}
	template := domain.TemplateFrom(tx("", domain.TransactionIncome, "10", domain.USD, "A", ""))
	state.RecurringRules = []domain.RecurringRule{
		{ID: "paused", Template: template, Frequency: domain.Daily, NextDueDate: t0.AddDate(0, 0, -2), Active: false},
		{ID: "future", Template: template, Frequency: domain.Daily, NextDueDate: t0.Add(time.Minute), Active: true},
	}
	l := New(state, Options{Logger: zerolog.Nop(), Now: func() time.Time { return t0 }})

	report, err := l.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Empty(t, report.Generated)

	_, err = l.SetRuleActive(ctx, "paused", true)
	require.NoError(t, err)
	report, err = l.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Len(t, report.Generated, 3)
	assert.True(t, l.Accounts()[0].Balance.Equal(dec("130")))

	_, err = l.SetRuleActive(ctx, "missing", true)
	assert.ErrorIs(t, err, ErrRuleNotFound)
}

func TestRunRecurringGuardsAgainstStalledRules(t *testing.T) {
	ctx := context.Background()
	state := domain.NewState()
	state.Accounts = []domain.Account{{ID: "A", Name: "A", Balance: dec("100"), Currency: domain.USD}}
	template := domain.TemplateFrom(tx("", domain.TransactionExpense, "1", domain.USD, "A", ""))
	state.RecurringRules = []domain.RecurringRule{
		{ID: "corrupt", Template: template, Frequency: "hourly", NextDueDate: t0.AddDate(-1, 0, 0), Active: true},
		{ID: "backlog", Template: template, Frequency: domain.Daily, NextDueDate: t0.AddDate(0, 0, -9), Active: true},
	}
	l := New(state, Options{Logger: zerolog.Nop(), Now: func() time.Time { return t0 }, MaxCatchUp: 4})

	report, err := l.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Len(t, report.Generated, 4)
	assert.ElementsMatch(t, []string{"corrupt", "backlog"}, report.Stalled)
	assert.Equal(t, []string{"backlog"}, report.Advanced)

	// The backlog drains over later runs; the corrupt rule never generates.
	report, err = l.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Len(t, report.Generated, 4)
	report, err = l.RunRecurring(ctx, t0)
	require.NoError(t, err)
	assert.Len(t, report.Generated, 2)
	assert.Equal(t, []string{"corrupt"}, report.Stalled)

	assert.True(t, l.Accounts()[0].Balance.Equal(dec("90")))
	for _, g := range l.Transactions() {
		assert.Equal(t, "backlog", g.GeneratedFromRuleID)
	}
}

func TestDeleteRecurringRuleKeepsGeneratedTransactions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.account(t, "A", "100", domain.USD)

	in := tx("seed", domain.TransactionExpense, "5", domain.USD, "A", "")
	in.Date = t0.AddDate(0, 0, -7)
	in.IsRecurring = true
	_, err := f.ledger.AddTransaction(ctx, in, &domain.RecurringOptions{Frequency: domain.Weekly})
	require.NoError(t, err)
	_, err = f.ledger.RunRecurring(ctx, t0)
	require.NoError(t, err)

	rule := f.ledger.RecurringRules()[0]
	require.NoError(t, f.ledger.DeleteRecurringRule(ctx, rule.ID))
	assert.Empty(t, f.ledger.RecurringRules())
	assert.Len(t, f.ledger.Transactions(), 2)
	assert.ErrorIs(t, f.ledger.DeleteRecurringRule(ctx, rule.ID), ErrRuleNotFound)
}
