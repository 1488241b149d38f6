package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InterestConfig is embedded in accounts and debts. Interest is derived on
// read and never written back to the balance.
type InterestConfig struct {
	Enabled   bool       `json:"enableInterest,omitempty"`
	Rate      float64    `json:"interestRate,omitempty"` // percent per period
	Frequency Frequency  `json:"interestFrequency,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
}

type AccountType string

const (
	AccountCash       AccountType = "cash"
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCreditCard AccountType = "credit_card"
	AccountInvestment AccountType = "investment"
)

// Account holds a signed balance expressed in its own currency.
type Account struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Type     AccountType     `json:"type"`
	Balance  decimal.Decimal `json:"balance"`
	Currency Currency        `json:"currency"`
	Icon     string          `json:"icon,omitempty"`
	InterestConfig
}

// Goal is a savings target. Income transactions targeting a goal contribute
// to it, expenses withdraw from it.
type Goal struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	TargetAmount  decimal.Decimal `json:"targetAmount"`
	CurrentAmount decimal.Decimal `json:"currentAmount"`
	Currency      Currency        `json:"currency"`
	Deadline      *time.Time      `json:"deadline,omitempty"`
	IsCompleted   bool            `json:"isCompleted"`
}

// RefreshCompletion recomputes IsCompleted from the amounts.
func (g *Goal) RefreshCompletion() {
	g.IsCompleted = g.CurrentAmount.GreaterThanOrEqual(g.TargetAmount)
}

type DebtType string

const (
	DebtOwesMe DebtType = "owes_me"
	DebtIOwe   DebtType = "i_owe"
)

// Debt is money lent or borrowed outside the account graph. Transactions never
// target debts.
type Debt struct {
	ID          string          `json:"id"`
	PersonName  string          `json:"personName"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	Type        DebtType        `json:"type"`
	DueDate     *time.Time      `json:"dueDate,omitempty"`
	Description string          `json:"description,omitempty"`
	InterestConfig
}

// Budget caps monthly spending in one expense category.
type Budget struct {
	ID         string          `json:"id"`
	CategoryID string          `json:"categoryId"` // category key, e.g. cat_food
	Limit      decimal.Decimal `json:"limit"`
	Currency   Currency        `json:"currency"`
}

type AlertType string

const (
	AlertLowBalance         AlertType = "low_balance"
	AlertDebtDue            AlertType = "debt_due"
	AlertGoalMilestone      AlertType = "goal_milestone"
	AlertRecurringProcessed AlertType = "recurring_processed"
)

// Alert is a user-facing notification. MessageKey is a translation key and
// Data fills its placeholder.
type Alert struct {
	ID         string    `json:"id"`
	Type       AlertType `json:"type"`
	MessageKey string    `json:"messageKey"`
	Data       string    `json:"data,omitempty"`
}
