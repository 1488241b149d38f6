package ledger

import (
	"fmt"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/alerts"
	"github.com/dvloznov/pocket-ledger/internal/budget"
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/interest"
	"github.com/shopspring/decimal"
)

// UnknownAccountName is shown for references to deleted entities.
const UnknownAccountName = "Unknown account"

// Snapshot returns a deep copy of the whole state.
func (l *Ledger) Snapshot() domain.State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Clone()
}

// Accounts returns a copy of every account.
func (l *Ledger) Accounts() []domain.Account {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Account{}, l.state.Accounts...)
}

// Account returns the account with id.
func (l *Ledger) Account(id string) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.accountIndex(id)
	if i < 0 {
		return domain.Account{}, fmt.Errorf("Account: %s: %w", id, ErrAccountNotFound)
	}
	return l.state.Accounts[i], nil
}

// Goals returns a copy of every goal.
func (l *Ledger) Goals() []domain.Goal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Goal{}, l.state.Goals...)
}

// Goal returns the goal with id.
func (l *Ledger) Goal(id string) (domain.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.goalIndex(id)
	if i < 0 {
		return domain.Goal{}, fmt.Errorf("Goal: %s: %w", id, ErrGoalNotFound)
	}
	return l.state.Goals[i], nil
}

// Debts returns a copy of every debt.
func (l *Ledger) Debts() []domain.Debt {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Debt{}, l.state.Debts...)
}

// Budgets returns a copy of every budget.
func (l *Ledger) Budgets() []domain.Budget {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Budget{}, l.state.Budgets...)
}

// RecurringRules returns a copy of every recurring rule.
func (l *Ledger) RecurringRules() []domain.RecurringRule {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.RecurringRule{}, l.state.RecurringRules...)
}

// Alerts returns the active alerts, most recent recurring notices first.
func (l *Ledger) Alerts() []domain.Alert {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Alert{}, l.active...)
}

// Settings returns the current settings.
func (l *Ledger) Settings() domain.Settings {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.Settings
}

// AccountName returns the name of the account or goal with id, or
// UnknownAccountName when it no longer exists.
func (l *Ledger) AccountName(id string) string {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := l.resolve(id)
	switch t.kind {
	case targetAccount:
		return l.state.Accounts[t.index].Name
	case targetGoal:
		return l.state.Goals[t.index].Name
	}
	return UnknownAccountName
}

// NetWorth sums account balances in the reporting currency.
func (l *Ledger) NetWorth() decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return alerts.TotalBalance(l.state.Accounts, l.state.Settings.Currency, l.rates)
}

// BudgetStatus reports spending against one budget for the month containing
// now.
func (l *Ledger) BudgetStatus(id string, now time.Time) (budget.Status, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.budgetIndex(id)
	if i < 0 {
		return budget.Status{}, fmt.Errorf("BudgetStatus: %s: %w", id, ErrBudgetNotFound)
	}
	return budget.Evaluate(l.state.Budgets[i], l.state.Transactions, now, l.rates), nil
}

// DebtView is a debt with its accrued interest.
type DebtView struct {
	domain.Debt
	Accrued interest.Details `json:"accrued"`
}

// DebtViews returns every debt with interest accrued up to asOf.
func (l *Ledger) DebtViews(asOf time.Time) []DebtView {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]DebtView, 0, len(l.state.Debts))
	for _, d := range l.state.Debts {
		out = append(out, DebtView{Debt: d, Accrued: interest.ForDebt(d, asOf)})
	}
	return out
}

// Overview is the dashboard summary in the reporting currency.
type Overview struct {
	Currency domain.Currency `json:"currency"`
	// NetWorth is the sum of balances. Total adds accrued interest.
	NetWorth decimal.Decimal `json:"netWorth"`
	Total    decimal.Decimal `json:"total"`
	OwedToMe decimal.Decimal `json:"owedToMe"`
	IOwe     decimal.Decimal `json:"iOwe"`
	Month    budget.Summary  `json:"month"`
	Pace     budget.Pace     `json:"pace"`
}

// Overview summarizes balances, debts and the month containing asOf.
func (l *Ledger) Overview(asOf time.Time) Overview {
	l.mu.Lock()
	defer l.mu.Unlock()

	cur := l.state.Settings.Currency
	o := Overview{
		Currency: cur,
		NetWorth: alerts.TotalBalance(l.state.Accounts, cur, l.rates),
		Total:    decimal.Zero,
		OwedToMe: decimal.Zero,
		IOwe:     decimal.Zero,
		Month:    budget.Summarize(l.state.Transactions, budget.MonthStart(asOf), time.Time{}, cur, l.rates),
		Pace:     budget.MonthPace(l.state.Transactions, asOf, cur, l.rates),
	}
	for _, a := range l.state.Accounts {
		o.Total = o.Total.Add(currency.Convert(interest.ForAccount(a, asOf).Total, a.Currency, cur, l.rates))
	}
	for _, d := range l.state.Debts {
		owed := currency.Convert(interest.ForDebt(d, asOf).Total, d.Currency, cur, l.rates)
		if d.Type == domain.DebtOwesMe {
			o.OwedToMe = o.OwedToMe.Add(owed)
		} else {
			o.IOwe = o.IOwe.Add(owed)
		}
	}
	return o
}
