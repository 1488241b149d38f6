// Package alerts derives user notifications from ledger state. Evaluate is a
// pure function: callers keep the returned Memory and pass it back on the
// next call so that dismissed alerts stay dismissed until their condition
// clears.
package alerts

import (
	"math"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	LowBalanceID = "low_balance"

	debtReminderDays = 3
)

// Memory is the evaluator state carried between calls.
type Memory struct {
	// LowBalance is set while the low balance condition holds.
	LowBalance bool
	// DebtDue maps a debt id to the due date that last raised an alert.
	DebtDue map[string]time.Time
	// GoalCompleted records each goal's completion at the last evaluation.
	GoalCompleted map[string]bool
}

type Input struct {
	Settings         domain.Settings
	Accounts         []domain.Account
	Debts            []domain.Debt
	Goals            []domain.Goal
	TransactionCount int
	Rates            currency.Rates
	Now              time.Time
	Active           []domain.Alert
	Memory           Memory
}

// Result holds the new active set, the alerts raised by this call and the
// memory to pass to the next call.
type Result struct {
	Active []domain.Alert
	Raised []domain.Alert
	Memory Memory
}

// Evaluate checks the low balance, debt due and goal milestone conditions.
// It never duplicates an alert already in the active set.
func Evaluate(in Input) Result {
	active := make([]domain.Alert, len(in.Active))
	copy(active, in.Active)

	res := Result{
		Memory: Memory{
			DebtDue:       map[string]time.Time{},
			GoalCompleted: make(map[string]bool, len(in.Goals)),
		},
	}
	raise := func(a domain.Alert) {
		if Contains(active, a.ID) {
			return
		}
		active = append(active, a)
		res.Raised = append(res.Raised, a)
	}

	notif := in.Settings.Notifications

	low := notif.LowBalance && len(in.Accounts) > 0 && in.TransactionCount > 0 &&
		TotalBalance(in.Accounts, in.Settings.Currency, in.Rates).LessThan(notif.LowBalanceThreshold)
	if low && !in.Memory.LowBalance {
		raise(domain.Alert{ID: LowBalanceID, Type: domain.AlertLowBalance, MessageKey: "alert_low_balance"})
	}
	res.Memory.LowBalance = low

	for _, d := range in.Debts {
		if !notif.DebtReminders || d.Type != domain.DebtIOwe || d.DueDate == nil {
			continue
		}
		due := *d.DueDate
		days := DaysUntil(due, in.Now)
		if days < 0 || days > debtReminderDays {
			continue
		}
		if prev, ok := in.Memory.DebtDue[d.ID]; !ok || !prev.Equal(due) {
			raise(domain.Alert{ID: "debt_" + d.ID, Type: domain.AlertDebtDue, MessageKey: "alert_debt_due", Data: d.PersonName})
		}
		res.Memory.DebtDue[d.ID] = due
	}

	for _, g := range in.Goals {
		reached := g.TargetAmount.IsPositive() && g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
		prev, known := in.Memory.GoalCompleted[g.ID]
		if notif.GoalMilestones && reached && known && !prev {
			raise(domain.Alert{ID: "goal_" + g.ID, Type: domain.AlertGoalMilestone, MessageKey: "alert_goal_milestone", Data: g.Name})
		}
		res.Memory.GoalCompleted[g.ID] = reached
	}

	res.Active = active
	return res
}

// RecurringProcessed is the alert emitted when a rule with notify generates a
// transaction.
func RecurringProcessed(tx domain.Transaction) domain.Alert {
	return domain.Alert{
		ID:         "rec_" + tx.ID,
		Type:       domain.AlertRecurringProcessed,
		MessageKey: "alert_recurring_processed",
		Data:       tx.Title,
	}
}

// TotalBalance sums account balances converted into cur.
func TotalBalance(accounts []domain.Account, cur domain.Currency, rates currency.Rates) decimal.Decimal {
	total := decimal.Zero
	for _, a := range accounts {
		total = total.Add(currency.Convert(a.Balance, a.Currency, cur, rates))
	}
	return total
}

// DaysUntil rounds the time remaining until due up to whole days.
func DaysUntil(due, now time.Time) int {
	return int(math.Ceil(due.Sub(now).Hours() / 24))
}

// Contains reports whether an alert with id is in the set.
func Contains(set []domain.Alert, id string) bool {
	for _, a := range set {
		if a.ID == id {
			return true
		}
	}
	return false
}

// Dismiss removes id from the set. Memory is untouched, so the condition
// has to clear before the alert can fire again.
func Dismiss(set []domain.Alert, id string) []domain.Alert {
	out := make([]domain.Alert, 0, len(set))
	for _, a := range set {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}
