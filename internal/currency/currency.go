// Package currency converts amounts between currencies using an injected
// exchange rate table.
package currency

import (
	"strings"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/shopspring/decimal"
)

// Rates maps a currency code to units per one base unit. Callers treat a
// table as immutable once handed to a converter.
type Rates map[domain.Currency]decimal.Decimal

// Supported lists the currencies with a fallback rate and a known symbol.
var Supported = []domain.Currency{
	domain.USD, domain.EUR, domain.COP, domain.MXN, domain.GBP, domain.BRL,
	domain.ARS, domain.CLP, domain.PEN, domain.JPY, domain.CNY, domain.INR,
	domain.KRW, domain.CAD, domain.AUD, domain.CHF,
}

var fallbackRates = map[domain.Currency]string{
	domain.USD: "1",
	domain.EUR: "0.92",
	domain.GBP: "0.79",
	domain.COP: "3900",
	domain.MXN: "17.5",
	domain.BRL: "5.0",
	domain.ARS: "850",
	domain.CLP: "950",
	domain.PEN: "3.7",
	domain.JPY: "150",
	domain.CNY: "7.2",
	domain.INR: "83",
	domain.KRW: "1330",
	domain.CAD: "1.35",
	domain.AUD: "1.52",
	domain.CHF: "0.88",
}

// Fallback returns the approximate USD based table used when no live rates
// are configured.
func Fallback() Rates {
	r := make(Rates, len(fallbackRates))
	for c, v := range fallbackRates {
		r[c] = decimal.RequireFromString(v)
	}
	return r
}

// Rate returns the rate for c, or 1 when it is missing or not positive.
func (r Rates) Rate(c domain.Currency) decimal.Decimal {
	v, ok := r[c]
	if !ok || !v.IsPositive() {
		return decimal.NewFromInt(1)
	}
	return v
}

// Merge returns a new table with other's entries laid over r.
func (r Rates) Merge(other Rates) Rates {
	out := make(Rates, len(r)+len(other))
	for c, v := range r {
		out[c] = v
	}
	for c, v := range other {
		out[domain.Currency(strings.ToUpper(string(c)))] = v
	}
	return out
}

// Convert expresses amount, given in from, in to. Unknown currencies convert
// at 1:1, so Convert never divides by zero.
func Convert(amount decimal.Decimal, from, to domain.Currency, rates Rates) decimal.Decimal {
	if from == to {
		return amount
	}
	return amount.Div(rates.Rate(from)).Mul(rates.Rate(to))
}

// Symbol returns the display symbol for c.
func Symbol(c domain.Currency) string {
	switch c {
	case domain.EUR:
		return "€"
	case domain.GBP:
		return "£"
	case domain.BRL:
		return "R$"
	case domain.JPY, domain.CNY:
		return "¥"
	case domain.INR:
		return "₹"
	case domain.KRW:
		return "₩"
	case domain.CHF:
		return "Fr"
	case domain.PEN:
		return "S/"
	default:
		return "$"
	}
}

var regionCurrency = map[string]domain.Currency{
	"US": domain.USD, "GB": domain.GBP, "EU": domain.EUR, "ES": domain.EUR,
	"FR": domain.EUR, "DE": domain.EUR, "IT": domain.EUR, "CO": domain.COP,
	"MX": domain.MXN, "BR": domain.BRL, "AR": domain.ARS, "CL": domain.CLP,
	"PE": domain.PEN, "JP": domain.JPY, "CN": domain.CNY, "IN": domain.INR,
	"KR": domain.KRW, "CA": domain.CAD, "AU": domain.AUD, "CH": domain.CHF,
}

// ForLocale picks a default currency for a locale tag such as "es-CO".
func ForLocale(locale string) domain.Currency {
	locale = strings.ReplaceAll(locale, "_", "-")
	parts := strings.Split(locale, "-")
	if len(parts) > 1 {
		if c, ok := regionCurrency[strings.ToUpper(parts[1])]; ok {
			return c
		}
	}
	switch strings.ToLower(parts[0]) {
	case "ja":
		return domain.JPY
	case "de", "it":
		return domain.EUR
	case "hi":
		return domain.INR
	case "zh":
		return domain.CNY
	}
	return domain.USD
}
