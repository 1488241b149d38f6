package ledger

type targetKind int

const (
	targetUnknown targetKind = iota
	targetAccount
	targetGoal
)

// target is what a transaction's account reference resolves to. index
// points into the matching state slice.
type target struct {
	kind  targetKind
	index int
}

// resolve looks id up among accounts first, then goals.
func (l *Ledger) resolve(id string) target {
	if i := l.accountIndex(id); i >= 0 {
		return target{kind: targetAccount, index: i}
	}
	if i := l.goalIndex(id); i >= 0 {
		return target{kind: targetGoal, index: i}
	}
	return target{kind: targetUnknown, index: -1}
}

func (l *Ledger) accountIndex(id string) int {
	for i := range l.state.Accounts {
		if l.state.Accounts[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) goalIndex(id string) int {
	for i := range l.state.Goals {
		if l.state.Goals[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) debtIndex(id string) int {
	for i := range l.state.Debts {
		if l.state.Debts[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) budgetIndex(id string) int {
	for i := range l.state.Budgets {
		if l.state.Budgets[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) ruleIndex(id string) int {
	for i := range l.state.RecurringRules {
		if l.state.RecurringRules[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) transactionIndex(id string) int {
	for i := range l.state.Transactions {
		if l.state.Transactions[i].ID == id {
			return i
		}
	}
	return -1
}
