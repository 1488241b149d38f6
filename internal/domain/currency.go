package domain

// Currency is an ISO 4217 code such as "USD". Codes outside the supported set
// are carried through unchanged.
type Currency string

const (
	USD Currency = "USD"
	EUR Currency = "EUR"
	GBP Currency = "GBP"
	COP Currency = "COP"
	MXN Currency = "MXN"
	BRL Currency = "BRL"
	ARS Currency = "ARS"
	CLP Currency = "CLP"
	PEN Currency = "PEN"
	JPY Currency = "JPY"
	CNY Currency = "CNY"
	INR Currency = "INR"
	KRW Currency = "KRW"
	CAD Currency = "CAD"
	AUD Currency = "AUD"
	CHF Currency = "CHF"
)

// Frequency is how often interest compounds or a rule repeats.
type Frequency string

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return true
	}
	return false
}
