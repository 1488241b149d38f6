package currency

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dvloznov/pocket-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestConvert(t *testing.T) {
	rates := Rates{domain.USD: d("1"), domain.EUR: d("0.9"), domain.COP: d("3900")}

	tests := []struct {
		name   string
		amount decimal.Decimal
		from   domain.Currency
		to     domain.Currency
		want   decimal.Decimal
	}{
		{name: "same currency", amount: d("12.34"), from: domain.EUR, to: domain.EUR, want: d("12.34")},
		{name: "usd to eur", amount: d("10"), from: domain.USD, to: domain.EUR, want: d("9")},
		{name: "eur to usd", amount: d("9"), from: domain.EUR, to: domain.USD, want: d("10")},
		{name: "usd to cop", amount: d("2"), from: domain.USD, to: domain.COP, want: d("7800")},
		{name: "unknown source treated as 1", amount: d("5"), from: "XYZ", to: domain.EUR, want: d("4.5")},
		{name: "unknown target treated as 1", amount: d("5"), from: domain.USD, to: "XYZ", want: d("5")},
		{name: "both unknown", amount: d("5"), from: "AAA", to: "BBB", want: d("5")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Convert(tt.amount, tt.from, tt.to, rates)
			assert.True(t, got.Equal(tt.want), "got %s want %s", got, tt.want)
		})
	}
}

func TestConvertZeroRateNeverDivides(t *testing.T) {
	rates := Rates{domain.USD: decimal.Zero, domain.EUR: d("0.9")}
	got := Convert(d("10"), domain.USD, domain.EUR, rates)
	assert.True(t, got.Equal(d("9")))

	assert.True(t, Convert(d("10"), domain.USD, domain.EUR, nil).Equal(d("10")))
}

func TestConvertIdentityForEveryFallbackCurrency(t *testing.T) {
	rates := Fallback()
	amount := d("123.45")
	for _, c := range Supported {
		assert.True(t, Convert(amount, c, c, rates).Equal(amount), string(c))
	}
}

func TestFallback(t *testing.T) {
	rates := Fallback()
	assert.Len(t, rates, len(Supported))
	assert.True(t, rates[domain.EUR].Equal(d("0.92")))
	assert.True(t, rates[domain.KRW].Equal(d("1330")))
}

func TestMerge(t *testing.T) {
	base := Fallback()
	merged := base.Merge(Rates{"eur": d("0.95"), "XAU": d("0.0005")})

	assert.True(t, merged[domain.EUR].Equal(d("0.95")))
	assert.True(t, merged["XAU"].Equal(d("0.0005")))
	assert.True(t, base[domain.EUR].Equal(d("0.92")), "merge must not modify the receiver")
}

func TestSymbol(t *testing.T) {
	assert.Equal(t, "€", Symbol(domain.EUR))
	assert.Equal(t, "S/", Symbol(domain.PEN))
	assert.Equal(t, "$", Symbol(domain.COP))
	assert.Equal(t, "$", Symbol("XYZ"))
}

func TestForLocale(t *testing.T) {
	assert.Equal(t, domain.COP, ForLocale("es-CO"))
	assert.Equal(t, domain.EUR, ForLocale("de_DE"))
	assert.Equal(t, domain.EUR, ForLocale("it"))
	assert.Equal(t, domain.JPY, ForLocale("ja"))
	assert.Equal(t, domain.USD, ForLocale("xx-YY"))
}

func TestParse(t *testing.T) {
	flat, err := Parse([]byte(`{"USD": 1, "EUR": "0.91"}`))
	require.NoError(t, err)
	assert.True(t, flat[domain.EUR].Equal(d("0.91")))

	wrapped, err := Parse([]byte(`{"base_code": "USD", "rates": {"USD": 1, "GBP": 0.8}}`))
	require.NoError(t, err)
	assert.True(t, wrapped[domain.GBP].Equal(d("0.8")))

	_, err = Parse([]byte(`not json`))
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"CHF": 0.87}`), 0o600))

	rates, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, rates[domain.CHF].Equal(d("0.87")))

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
