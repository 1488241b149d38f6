package ledger

import (
	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
)

// applyEffect moves balances for tx, or undoes that movement when reverse is
// set. Each side converts tx.Amount into the currency of the entity it
// touches. References that resolve to nothing are skipped.
func (l *Ledger) applyEffect(tx domain.Transaction, reverse bool) {
	amount := tx.Amount
	if reverse {
		amount = amount.Neg()
	}
	log := l.log.With().Str("transaction_id", tx.ID).Bool("reverse", reverse).Logger()

	if tx.Type == domain.TransactionTransfer && tx.ToAccountID != "" {
		if src := l.resolve(tx.AccountID); src.kind == targetAccount {
			acc := &l.state.Accounts[src.index]
			acc.Balance = acc.Balance.Sub(currency.Convert(amount, tx.Currency, acc.Currency, l.rates))
		} else {
			log.Warn().Str("account_id", tx.AccountID).Msg("Transfer source is not an account, skipping debit")
		}

		if dst := l.resolve(tx.ToAccountID); dst.kind == targetAccount {
			acc := &l.state.Accounts[dst.index]
			acc.Balance = acc.Balance.Add(currency.Convert(amount, tx.Currency, acc.Currency, l.rates))
		} else {
			log.Warn().Str("account_id", tx.ToAccountID).Msg("Transfer destination is not an account, skipping credit")
		}
		return
	}

	t := l.resolve(tx.AccountID)
	switch t.kind {
	case targetGoal:
		// Income contributes to a goal, anything else withdraws.
		delta := amount
		if tx.Type != domain.TransactionIncome {
			delta = delta.Neg()
		}
		goal := &l.state.Goals[t.index]
		goal.CurrentAmount = goal.CurrentAmount.Add(currency.Convert(delta, tx.Currency, goal.Currency, l.rates))
		goal.RefreshCompletion()
	case targetAccount:
		delta := amount
		if tx.Type == domain.TransactionExpense {
			delta = delta.Neg()
		}
		acc := &l.state.Accounts[t.index]
		acc.Balance = acc.Balance.Add(currency.Convert(delta, tx.Currency, acc.Currency, l.rates))
	default:
		log.Warn().Str("account_id", tx.AccountID).Msg("Transaction target not found, balances unchanged")
	}
}

// checkTransaction validates tx and rejects transfers that touch a goal.
func (l *Ledger) checkTransaction(tx domain.Transaction) error {
	if err := tx.Validate(); err != nil {
		return err
	}
	if tx.Type != domain.TransactionTransfer {
		return nil
	}
	if l.resolve(tx.AccountID).kind == targetGoal || l.resolve(tx.ToAccountID).kind == targetGoal {
		return ErrTransferToGoal
	}
	return nil
}
