// Package interest computes compound interest accrued on accounts and debts.
// Results are derived on read and never written back to balances.
package interest

import (
	"math"
	"time"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	daysPerWeek  = 7.0
	daysPerMonth = 30.44
	daysPerYear  = 365.25
)

// Details splits an accrued total into principal and interest.
type Details struct {
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
	Total     decimal.Decimal `json:"total"`
}

// Accrue returns principal grown at cfg.Rate percent per period from
// cfg.StartDate to asOf. Both instants are truncated to their calendar day and
// only whole elapsed days count; fractional periods compound.
func Accrue(principal decimal.Decimal, cfg domain.InterestConfig, asOf time.Time) decimal.Decimal {
	if !cfg.Enabled || cfg.Rate == 0 || cfg.StartDate == nil {
		return principal
	}

	days := ElapsedDays(*cfg.StartDate, asOf)
	if days < 0 {
		return principal
	}

	factor := math.Pow(1+cfg.Rate/100, Periods(days, cfg.Frequency))
	if math.IsNaN(factor) || math.IsInf(factor, 0) {
		return principal
	}
	return principal.Mul(decimal.NewFromFloat(factor))
}

// Periods converts whole days into compounding periods. Unknown frequencies
// compound monthly.
func Periods(days int, freq domain.Frequency) float64 {
	switch freq {
	case domain.Daily:
		return float64(days)
	case domain.Weekly:
		return float64(days) / daysPerWeek
	case domain.Yearly:
		return float64(days) / daysPerYear
	default:
		return float64(days) / daysPerMonth
	}
}

// ElapsedDays counts calendar days from start to end in end's location.
// It is negative when start falls on a later day.
func ElapsedDays(start, end time.Time) int {
	start = start.In(end.Location())
	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()
	from := time.Date(sy, sm, sd, 0, 0, 0, 0, time.UTC)
	to := time.Date(ey, em, ed, 0, 0, 0, 0, time.UTC)
	return int(to.Sub(from).Hours() / 24)
}

func detailsFor(principal decimal.Decimal, cfg domain.InterestConfig, asOf time.Time) Details {
	total := Accrue(principal, cfg, asOf)
	return Details{
		Principal: principal,
		Interest:  total.Sub(principal),
		Total:     total,
	}
}

// ForAccount returns the accrued view of an account. Cash accounts never
// accrue.
func ForAccount(acc domain.Account, asOf time.Time) Details {
	if acc.Type == domain.AccountCash {
		return Details{Principal: acc.Balance, Interest: decimal.Zero, Total: acc.Balance}
	}
	return detailsFor(acc.Balance, acc.InterestConfig, asOf)
}

// ForDebt returns the accrued view of a debt.
func ForDebt(debt domain.Debt, asOf time.Time) Details {
	return detailsFor(debt.Amount, debt.InterestConfig, asOf)
}
