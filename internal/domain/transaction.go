package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType selects how a transaction moves money.
type TransactionType string

const (
	TransactionExpense  TransactionType = "expense"
	TransactionIncome   TransactionType = "income"
	TransactionTransfer TransactionType = "transfer"
)

// Valid reports whether t is one of the known transaction types.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionExpense, TransactionIncome, TransactionTransfer:
		return true
	}
	return false
}

// Transaction is one immutable ledger entry. Amount is always positive; the
// direction of the balance change is derived from Type and the entity that
// AccountID resolves to.
type Transaction struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	AccountID   string          `json:"accountId"`             // account or goal id
	ToAccountID string          `json:"toAccountId,omitempty"` // transfers only, always an account
	Date        time.Time       `json:"date"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`

	IsRecurring         bool      `json:"isRecurring,omitempty"`
	Frequency           Frequency `json:"frequency,omitempty"`
	GeneratedFromRuleID string    `json:"generatedFromRuleId,omitempty"`
}

// Validate checks the fields a transaction needs before it may touch any
// balance. It does not check that the referenced entities exist.
func (tx Transaction) Validate() error {
	if !tx.Amount.IsPositive() {
		return fmt.Errorf("Validate: amount %s: %w", tx.Amount.String(), ErrInvalidAmount)
	}
	if tx.Title == "" {
		return ErrMissingTitle
	}
	if !tx.Type.Valid() {
		return fmt.Errorf("Validate: type %q: %w", tx.Type, ErrInvalidType)
	}
	if tx.AccountID == "" {
		return ErrMissingAccount
	}
	if tx.Type == TransactionTransfer {
		if tx.ToAccountID == "" {
			return ErrMissingDestination
		}
		if tx.ToAccountID == tx.AccountID {
			return ErrSameAccount
		}
	}
	if tx.Frequency != "" && !tx.Frequency.Valid() {
		return fmt.Errorf("Validate: frequency %q: %w", tx.Frequency, ErrInvalidFrequency)
	}
	return nil
}

// References reports whether the transaction names id on either side.
func (tx Transaction) References(id string) bool {
	return tx.AccountID == id || tx.ToAccountID == id
}

// TransactionTemplate is the part of a transaction a recurring rule copies on
// every occurrence.
type TransactionTemplate struct {
	Amount      decimal.Decimal `json:"amount"`
	Currency    Currency        `json:"currency"`
	Type        TransactionType `json:"type"`
	Category    string          `json:"category"`
	AccountID   string          `json:"accountId"`
	ToAccountID string          `json:"toAccountId,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
}

// TemplateFrom strips the per-occurrence fields off tx.
func TemplateFrom(tx Transaction) TransactionTemplate {
	return TransactionTemplate{
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		Type:        tx.Type,
		Category:    tx.Category,
		AccountID:   tx.AccountID,
		ToAccountID: tx.ToAccountID,
		Title:       tx.Title,
		Description: tx.Description,
	}
}

// Materialize builds the concrete transaction for one occurrence of a rule.
func (t TransactionTemplate) Materialize(id string, date time.Time, ruleID string) Transaction {
	return Transaction{
		ID:                  id,
		Amount:              t.Amount,
		Currency:            t.Currency,
		Type:                t.Type,
		Category:            t.Category,
		AccountID:           t.AccountID,
		ToAccountID:         t.ToAccountID,
		Date:                date,
		Title:               t.Title,
		Description:         t.Description,
		GeneratedFromRuleID: ruleID,
	}
}

// RecurringRule produces one transaction per period starting at NextDueDate.
type RecurringRule struct {
	ID          string              `json:"id"`
	Template    TransactionTemplate `json:"template"`
	Frequency   Frequency           `json:"frequency"`
	Notify      bool                `json:"notify"`
	NextDueDate time.Time           `json:"nextDueDate"`
	Active      bool                `json:"active"`
}

// References reports whether the rule's template names id on either side.
func (r RecurringRule) References(id string) bool {
	return r.Template.AccountID == id || r.Template.ToAccountID == id
}

// RecurringOptions accompany a new transaction that should repeat.
type RecurringOptions struct {
	Frequency Frequency `json:"frequency"`
	Notify    bool      `json:"notify"`
}
