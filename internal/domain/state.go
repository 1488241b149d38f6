package domain

// State is the whole persisted document.
type State struct {
	Settings       Settings        `json:"settings"`
	Accounts       []Account       `json:"accounts"`
	Transactions   []Transaction   `json:"transactions"`
	Goals          []Goal          `json:"goals"`
	Debts          []Debt          `json:"debts"`
	Budgets        []Budget        `json:"budgets"`
	RecurringRules []RecurringRule `json:"recurringRules"`
}

// NewState returns an empty state with default settings.
func NewState() State {
	return State{
		Settings:       DefaultSettings(),
		Accounts:       []Account{},
		Transactions:   []Transaction{},
		Goals:          []Goal{},
		Debts:          []Debt{},
		Budgets:        []Budget{},
		RecurringRules: []RecurringRule{},
	}
}

// Clone returns a copy whose slices can be modified without affecting s.
// Pointer fields are shared; times are never mutated in place.
func (s State) Clone() State {
	return State{
		Settings:       s.Settings,
		Accounts:       cloneSlice(s.Accounts),
		Transactions:   cloneSlice(s.Transactions),
		Goals:          cloneSlice(s.Goals),
		Debts:          cloneSlice(s.Debts),
		Budgets:        cloneSlice(s.Budgets),
		RecurringRules: cloneSlice(s.RecurringRules),
	}
}

func cloneSlice[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
