// Package budget aggregates the transaction log into read-only spending
// views: per-category budget status, period summaries and spending pace.
package budget

import (
	"sort"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/currency"
	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Level buckets how much of a budget has been used.
type Level string

const (
	LevelOK       Level = "ok"
	LevelWarning  Level = "warning"  // above 75%
	LevelCritical Level = "critical" // above 95%
)

var hundred = decimal.NewFromInt(100)

// Status is the state of one budget for the current month.
type Status struct {
	Budget     domain.Budget   `json:"budget"`
	Spent      decimal.Decimal `json:"spent"`
	Remaining  decimal.Decimal `json:"remaining"`
	Percentage decimal.Decimal `json:"percentage"` // capped at 100
	Level      Level           `json:"level"`
}

// MonthStart returns midnight on the first day of now's month.
func MonthStart(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, now.Location())
}

// Spent sums expenses in the budget's category dated on or after since,
// converted into the budget currency.
func Spent(txs []domain.Transaction, b domain.Budget, since time.Time, rates currency.Rates) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		if tx.Type != domain.TransactionExpense || tx.Category != b.CategoryID || tx.Date.Before(since) {
			continue
		}
		total = total.Add(currency.Convert(tx.Amount, tx.Currency, b.Currency, rates))
	}
	return total
}

// Evaluate reports the budget's status for the month containing now.
func Evaluate(b domain.Budget, txs []domain.Transaction, now time.Time, rates currency.Rates) Status {
	spent := Spent(txs, b, MonthStart(now), rates)

	pct := decimal.Zero
	switch {
	case b.Limit.IsPositive():
		pct = decimal.Min(spent.Div(b.Limit).Mul(hundred), hundred)
	case spent.IsPositive():
		pct = hundred
	}

	level := LevelOK
	if pct.GreaterThan(decimal.NewFromInt(75)) {
		level = LevelWarning
	}
	if pct.GreaterThan(decimal.NewFromInt(95)) {
		level = LevelCritical
	}

	return Status{
		Budget:     b,
		Spent:      spent,
		Remaining:  decimal.Max(b.Limit.Sub(spent), decimal.Zero),
		Percentage: pct,
		Level:      level,
	}
}

// CategoryTotal is the amount spent in one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// Summary totals income and expenses over a period in one currency.
type Summary struct {
	Currency   domain.Currency `json:"currency"`
	Income     decimal.Decimal `json:"income"`
	Expenses   decimal.Decimal `json:"expenses"`
	Net        decimal.Decimal `json:"net"`
	ByCategory []CategoryTotal `json:"byCategory"` // expenses, largest first
}

// Summarize aggregates transactions dated in [from, to). A zero to means no
// upper bound. Transfers are ignored.
func Summarize(txs []domain.Transaction, from, to time.Time, cur domain.Currency, rates currency.Rates) Summary {
	s := Summary{Currency: cur, Income: decimal.Zero, Expenses: decimal.Zero}
	byCat := map[string]decimal.Decimal{}

	for _, tx := range txs {
		if tx.Date.Before(from) || (!to.IsZero() && !tx.Date.Before(to)) {
			continue
		}
		amount := currency.Convert(tx.Amount, tx.Currency, cur, rates)
		switch tx.Type {
		case domain.TransactionIncome:
			s.Income = s.Income.Add(amount)
		case domain.TransactionExpense:
			s.Expenses = s.Expenses.Add(amount)
			byCat[tx.Category] = byCat[tx.Category].Add(amount)
		}
	}

	s.Net = s.Income.Sub(s.Expenses)
	s.ByCategory = make([]CategoryTotal, 0, len(byCat))
	for cat, amount := range byCat {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: cat, Amount: amount})
	}
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if c := s.ByCategory[i].Amount.Cmp(s.ByCategory[j].Amount); c != 0 {
			return c > 0
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})
	return s
}

// PaceStatus compares the share of income spent with the share of the month
// elapsed.
type PaceStatus string

const (
	PaceNeutral PaceStatus = "neutral"
	PaceSafe    PaceStatus = "safe"
	PaceWarning PaceStatus = "warning"
)

type Pace struct {
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Percent  int64           `json:"percent"` // expenses as a share of income
	Status   PaceStatus      `json:"status"`
}

// MonthPace reports spending pace for the month containing now. Spending
// more than ten points ahead of the calendar is a warning.
func MonthPace(txs []domain.Transaction, now time.Time, cur domain.Currency, rates currency.Rates) Pace {
	s := Summarize(txs, MonthStart(now), time.Time{}, cur, rates)
	p := Pace{Income: s.Income, Expenses: s.Expenses, Status: PaceNeutral}
	if !s.Income.IsPositive() {
		return p
	}

	ratio := s.Expenses.Div(s.Income)
	y, m, _ := now.Date()
	daysInMonth := time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
	elapsed := decimal.NewFromInt(int64(now.Day())).Div(decimal.NewFromInt(int64(daysInMonth)))

	switch {
	case ratio.GreaterThan(elapsed.Add(decimal.NewFromFloat(0.1))):
		p.Status = PaceWarning
	case ratio.LessThan(elapsed):
		p.Status = PaceSafe
	}
	p.Percent = ratio.Mul(hundred).Round(0).IntPart()
	return p
}
