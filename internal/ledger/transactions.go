package ledger

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/dvloznov/pocket-ledger/internal/recurrence"
)

// AddTransaction records tx and applies its balance effect. A missing id or
// date is filled in. When tx.IsRecurring is set and opts is given, a rule is
// registered whose first occurrence is one period after tx.Date.
func (l *Ledger) AddTransaction(ctx context.Context, tx domain.Transaction, opts *domain.RecurringOptions) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if tx.ID == "" {
		tx.ID = l.newID()
	}
	if tx.Date.IsZero() {
		tx.Date = l.now()
	}
	registerRule := tx.IsRecurring && opts != nil
	if registerRule {
		if !opts.Frequency.Valid() {
			return domain.Transaction{}, fmt.Errorf("AddTransaction: frequency %q: %w", opts.Frequency, domain.ErrInvalidFrequency)
		}
		tx.Frequency = opts.Frequency
	}
	if err := l.checkTransaction(tx); err != nil {
		return domain.Transaction{}, fmt.Errorf("AddTransaction: %w", err)
	}
	if l.transactionIndex(tx.ID) >= 0 {
		return domain.Transaction{}, fmt.Errorf("AddTransaction: transaction %s: %w", tx.ID, ErrDuplicateID)
	}

	l.insertTransaction(tx)

	if registerRule {
		rule := domain.RecurringRule{
			ID:          l.newID(),
			Template:    domain.TemplateFrom(tx),
			Frequency:   opts.Frequency,
			Notify:      opts.Notify,
			NextDueDate: recurrence.Next(tx.Date, opts.Frequency),
			Active:      true,
		}
		l.state.RecurringRules = append(l.state.RecurringRules, rule)
		l.log.Info().
			Str("rule_id", rule.ID).
			Str("frequency", string(rule.Frequency)).
			Time("next_due_date", rule.NextDueDate).
			Msg("Recurring rule registered")
	}

	return tx, l.commit(ctx)
}

// insertTransaction applies tx and appends it to the log. The caller holds mu.
func (l *Ledger) insertTransaction(tx domain.Transaction) {
	l.applyEffect(tx, false)
	l.state.Transactions = append(l.state.Transactions, tx)
	l.log.Info().
		Str("transaction_id", tx.ID).
		Str("type", string(tx.Type)).
		Str("amount", tx.Amount.String()).
		Str("currency", string(tx.Currency)).
		Msg("Transaction recorded")
}

// UpdateTransaction replaces the stored transaction with the same id,
// reverting the old effect before applying the new one.
func (l *Ledger) UpdateTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.transactionIndex(tx.ID)
	if i < 0 {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: %s: %w", tx.ID, ErrTransactionNotFound)
	}
	prev := l.state.Transactions[i]
	if tx.Date.IsZero() {
		tx.Date = prev.Date
	}
	if tx.GeneratedFromRuleID == "" {
		tx.GeneratedFromRuleID = prev.GeneratedFromRuleID
	}
	if err := l.checkTransaction(tx); err != nil {
		return domain.Transaction{}, fmt.Errorf("UpdateTransaction: %w", err)
	}

	l.applyEffect(prev, true)
	l.applyEffect(tx, false)
	l.state.Transactions[i] = tx

	l.log.Info().Str("transaction_id", tx.ID).Msg("Transaction updated")
	return tx, l.commit(ctx)
}

// DeleteTransaction reverts and removes a transaction. It can be restored
// with UndoDelete until the undo window passes.
func (l *Ledger) DeleteTransaction(ctx context.Context, id string) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.transactionIndex(id)
	if i < 0 {
		return domain.Transaction{}, fmt.Errorf("DeleteTransaction: %s: %w", id, ErrTransactionNotFound)
	}
	tx := l.state.Transactions[i]

	l.applyEffect(tx, true)
	l.state.Transactions = append(l.state.Transactions[:i], l.state.Transactions[i+1:]...)

	now := l.now()
	l.pruneUndo(now)
	l.undo[id] = deletedTransaction{tx: tx, deletedAt: now}

	l.log.Info().Str("transaction_id", id).Msg("Transaction deleted")
	return tx, l.commit(ctx)
}

// UndoDelete restores a transaction removed by DeleteTransaction with the
// same id and date. It fails with ErrUndoExpired once the window has passed.
func (l *Ledger) UndoDelete(ctx context.Context, id string) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	d, ok := l.undo[id]
	if !ok {
		return domain.Transaction{}, fmt.Errorf("UndoDelete: %s: %w", id, ErrTransactionNotFound)
	}
	delete(l.undo, id)

	if l.now().Sub(d.deletedAt) > l.undoWindow {
		return domain.Transaction{}, fmt.Errorf("UndoDelete: %s: %w", id, ErrUndoExpired)
	}
	if l.transactionIndex(id) >= 0 {
		return domain.Transaction{}, fmt.Errorf("UndoDelete: transaction %s: %w", id, ErrDuplicateID)
	}

	l.insertTransaction(d.tx)
	l.log.Info().Str("transaction_id", id).Msg("Transaction restored")
	return d.tx, l.commit(ctx)
}

func (l *Ledger) pruneUndo(now time.Time) {
	for id, d := range l.undo {
		if now.Sub(d.deletedAt) > l.undoWindow {
			delete(l.undo, id)
		}
	}
}

// Transactions returns the log, newest first.
func (l *Ledger) Transactions() []domain.Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.Transaction, len(l.state.Transactions))
	copy(out, l.state.Transactions)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out
}

// Transaction looks a transaction up by id.
func (l *Ledger) Transaction(id string) (domain.Transaction, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.transactionIndex(id)
	if i < 0 {
		return domain.Transaction{}, fmt.Errorf("Transaction: %s: %w", id, ErrTransactionNotFound)
	}
	return l.state.Transactions[i], nil
}
