package ledger

import (
	"context"
	"fmt"

	"github.com/dvloznov/pocket-ledger/internal/alerts"
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/recurrence"
)

// AddAccount registers an account. A missing id is generated and a missing
// currency defaults to the reporting currency.
func (l *Ledger) AddAccount(ctx context.Context, acc domain.Account) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if acc.Name == "" {
		return domain.Account{}, fmt.Errorf("AddAccount: %w", domain.ErrMissingName)
	}
	if acc.ID == "" {
		acc.ID = l.newID()
	}
	if acc.Currency == "" {
		acc.Currency = l.state.Settings.Currency
	}
	if l.resolve(acc.ID).kind != targetUnknown {
		return domain.Account{}, fmt.Errorf("AddAccount: %s: %w", acc.ID, ErrDuplicateID)
	}

	l.state.Accounts = append(l.state.Accounts, acc)
	l.log.Info().Str("account_id", acc.ID).Msg("Account added")
	return acc, l.commit(ctx)
}

// UpdateAccount replaces the account's descriptive fields. The balance only
// moves through transaction effects: the stored balance is kept, converted
// into the new currency when the currency changes.
func (l *Ledger) UpdateAccount(ctx context.Context, acc domain.Account) (domain.Account, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.accountIndex(acc.ID)
	if i < 0 {
		return domain.Account{}, fmt.Errorf("UpdateAccount: %s: %w", acc.ID, ErrAccountNotFound)
	}
	if acc.Name == "" {
		return domain.Account{}, fmt.Errorf("UpdateAccount: %w", domain.ErrMissingName)
	}
	prev := l.state.Accounts[i]
	if acc.Currency == "" {
		acc.Currency = prev.Currency
	}
	acc.Balance = currency.Convert(prev.Balance, prev.Currency, acc.Currency, l.rates)

	l.state.Accounts[i] = acc
	return acc, l.commit(ctx)
}

// DeleteAccount removes every transaction and recurring rule that references
// the account on either side, then the account itself. Removed transactions
// are not reverted.
func (l *Ledger) DeleteAccount(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.accountIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteAccount: %s: %w", id, ErrAccountNotFound)
	}

	txs := l.state.Transactions[:0]
	removedTxs := 0
	for _, tx := range l.state.Transactions {
		if tx.References(id) {
			removedTxs++
			continue
		}
		txs = append(txs, tx)
	}
	l.state.Transactions = txs

	for txID, d := range l.undo {
		if d.tx.References(id) {
			delete(l.undo, txID)
		}
	}

	rules := l.state.RecurringRules[:0]
	removedRules := 0
	for _, r := range l.state.RecurringRules {
		if r.References(id) {
			removedRules++
			continue
		}
		rules = append(rules, r)
	}
	l.state.RecurringRules = rules

	l.state.Accounts = append(l.state.Accounts[:i], l.state.Accounts[i+1:]...)

	l.log.Info().
		Str("account_id", id).
		Int("transactions_removed", removedTxs).
		Int("rules_removed", removedRules).
		Msg("Account deleted")
	return l.commit(ctx)
}

// AddGoal registers a goal and computes its completion flag.
func (l *Ledger) AddGoal(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if g.Name == "" {
		return domain.Goal{}, fmt.Errorf("AddGoal: %w", domain.ErrMissingName)
	}
	if g.ID == "" {
		g.ID = l.newID()
	}
	if g.Currency == "" {
		g.Currency = l.state.Settings.Currency
	}
	if l.resolve(g.ID).kind != targetUnknown {
		return domain.Goal{}, fmt.Errorf("AddGoal: %s: %w", g.ID, ErrDuplicateID)
	}
	g.RefreshCompletion()

	l.state.Goals = append(l.state.Goals, g)
	l.log.Info().Str("goal_id", g.ID).Msg("Goal added")
	return g, l.commit(ctx)
}

// UpdateGoal replaces the goal's descriptive fields and target. The current
// amount is kept, converted when the currency changes.
func (l *Ledger) UpdateGoal(ctx context.Context, g domain.Goal) (domain.Goal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.goalIndex(g.ID)
	if i < 0 {
		return domain.Goal{}, fmt.Errorf("UpdateGoal: %s: %w", g.ID, ErrGoalNotFound)
	}
	if g.Name == "" {
		return domain.Goal{}, fmt.Errorf("UpdateGoal: %w", domain.ErrMissingName)
	}
	prev := l.state.Goals[i]
	if g.Currency == "" {
		g.Currency = prev.Currency
	}
	g.CurrentAmount = currency.Convert(prev.CurrentAmount, prev.Currency, g.Currency, l.rates)
	g.RefreshCompletion()

	l.state.Goals[i] = g
	return g, l.commit(ctx)
}

// DeleteGoal removes a goal. Transactions that targeted it stay in the log
// and no longer affect any balance.
func (l *Ledger) DeleteGoal(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.goalIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteGoal: %s: %w", id, ErrGoalNotFound)
	}
	l.state.Goals = append(l.state.Goals[:i], l.state.Goals[i+1:]...)
	l.log.Info().Str("goal_id", id).Msg("Goal deleted")
	return l.commit(ctx)
}

// AddDebt records money owed to or by someone.
func (l *Ledger) AddDebt(ctx context.Context, d domain.Debt) (domain.Debt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if d.PersonName == "" {
		return domain.Debt{}, fmt.Errorf("AddDebt: %w", domain.ErrMissingName)
	}
	if d.ID == "" {
		d.ID = l.newID()
	}
	if d.Currency == "" {
		d.Currency = l.state.Settings.Currency
	}
	if l.debtIndex(d.ID) >= 0 {
		return domain.Debt{}, fmt.Errorf("AddDebt: %s: %w", d.ID, ErrDuplicateID)
	}

	l.state.Debts = append(l.state.Debts, d)
	l.log.Info().Str("debt_id", d.ID).Msg("Debt added")
	return d, l.commit(ctx)
}

// UpdateDebt replaces a stored debt.
func (l *Ledger) UpdateDebt(ctx context.Context, d domain.Debt) (domain.Debt, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.debtIndex(d.ID)
	if i < 0 {
		return domain.Debt{}, fmt.Errorf("UpdateDebt: %s: %w", d.ID, ErrDebtNotFound)
	}
	if d.PersonName == "" {
		return domain.Debt{}, fmt.Errorf("UpdateDebt: %w", domain.ErrMissingName)
	}
	if d.Currency == "" {
		d.Currency = l.state.Debts[i].Currency
	}

	l.state.Debts[i] = d
	return d, l.commit(ctx)
}

// DeleteDebt removes a debt.
func (l *Ledger) DeleteDebt(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.debtIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteDebt: %s: %w", id, ErrDebtNotFound)
	}
	l.state.Debts = append(l.state.Debts[:i], l.state.Debts[i+1:]...)
	l.log.Info().Str("debt_id", id).Msg("Debt deleted")
	return l.commit(ctx)
}

// AddBudget caps monthly spending in one category. Limits must be positive.
func (l *Ledger) AddBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !b.Limit.IsPositive() {
		return domain.Budget{}, fmt.Errorf("AddBudget: limit %s: %w", b.Limit, domain.ErrInvalidAmount)
	}
	if b.ID == "" {
		b.ID = l.newID()
	}
	if b.Currency == "" {
		b.Currency = l.state.Settings.Currency
	}
	if l.budgetIndex(b.ID) >= 0 {
		return domain.Budget{}, fmt.Errorf("AddBudget: %s: %w", b.ID, ErrDuplicateID)
	}

	l.state.Budgets = append(l.state.Budgets, b)
	return b, l.commit(ctx)
}

// UpdateBudget replaces a stored budget. Limits must stay positive.
func (l *Ledger) UpdateBudget(ctx context.Context, b domain.Budget) (domain.Budget, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.budgetIndex(b.ID)
	if i < 0 {
		return domain.Budget{}, fmt.Errorf("UpdateBudget: %s: %w", b.ID, ErrBudgetNotFound)
	}
	if !b.Limit.IsPositive() {
		return domain.Budget{}, fmt.Errorf("UpdateBudget: limit %s: %w", b.Limit, domain.ErrInvalidAmount)
	}
	if b.Currency == "" {
		b.Currency = l.state.Budgets[i].Currency
	}

	l.state.Budgets[i] = b
	return b, l.commit(ctx)
}

// DeleteBudget removes a budget.
func (l *Ledger) DeleteBudget(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.budgetIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteBudget: %s: %w", id, ErrBudgetNotFound)
	}
	l.state.Budgets = append(l.state.Budgets[:i], l.state.Budgets[i+1:]...)
	return l.commit(ctx)
}

// DeleteRecurringRule stops a rule. Transactions it generated stay.
func (l *Ledger) DeleteRecurringRule(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.ruleIndex(id)
	if i < 0 {
		return fmt.Errorf("DeleteRecurringRule: %s: %w", id, ErrRuleNotFound)
	}
	l.state.RecurringRules = append(l.state.RecurringRules[:i], l.state.RecurringRules[i+1:]...)
	l.log.Info().Str("rule_id", id).Msg("Recurring rule deleted")
	return l.commit(ctx)
}

// SetRuleActive pauses or resumes a rule. A resumed rule catches up on the
// next run; one without a next due date is scheduled one period from now.
func (l *Ledger) SetRuleActive(ctx context.Context, id string, active bool) (domain.RecurringRule, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.ruleIndex(id)
	if i < 0 {
		return domain.RecurringRule{}, fmt.Errorf("SetRuleActive: %s: %w", id, ErrRuleNotFound)
	}
	rule := &l.state.RecurringRules[i]
	rule.Active = active
	if active && rule.NextDueDate.IsZero() {
		rule.NextDueDate = recurrence.Next(l.now(), rule.Frequency)
		l.log.Info().Str("rule_id", id).Time("next_due_date", rule.NextDueDate).Msg("Recurring rule scheduled from now")
	}
	return *rule, l.commit(ctx)
}

// UpdateSettings replaces the settings. An empty currency or language keeps
// the current value.
func (l *Ledger) UpdateSettings(ctx context.Context, s domain.Settings) (domain.Settings, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if s.Currency == "" {
		s.Currency = l.state.Settings.Currency
	}
	if s.Language == "" {
		s.Language = l.state.Settings.Language
	}
	if s.Theme == "" {
		s.Theme = l.state.Settings.Theme
	}

	l.state.Settings = s
	return s, l.commit(ctx)
}

// DismissAlert removes an alert from the active set. It reports whether the
// alert was present.
func (l *Ledger) DismissAlert(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !alerts.Contains(l.active, id) {
		return false
	}
	l.active = alerts.Dismiss(l.active, id)
	return true
}
