package utils

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Money formats calculated amounts for display. Calculation happens in
// float64; rounding to the currency's minor unit happens only here.
type Money struct {
	Currency string
	Decimals int32
	// Thousands and DecimalMark default to "," and "."
	Thousands   string
	DecimalMark string
}

// NewMoney returns a formatter with "," thousands and "." decimal mark.
func NewMoney(currency string, decimals int32) Money {
	return Money{Currency: currency, Decimals: decimals, Thousands: ",", DecimalMark: "."}
}

// Round rounds amount half away from zero to the minor unit.
func (m Money) Round(amount float64) decimal.Decimal {
	return decimal.NewFromFloat(amount).Round(m.Decimals)
}

// RoundFloat is Round converted back for storage.
func (m Money) RoundFloat(amount float64) float64 {
	f, _ := m.Round(amount).Float64()
	return f
}

// Format renders amount like "$1,234.50" (USD) or "COP 12.500" style,
// depending on the separators.
func (m Money) Format(amount float64) string {
	d := m.Round(amount)
	neg := d.IsNegative()
	s := d.Abs().StringFixed(m.Decimals)

	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i+1:]
	}

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + 4)
	if neg {
		b.WriteString("-")
	}
	b.WriteString(m.symbol())

	// Insert separators from the left.
	rem := len(intPart) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(intPart[:rem])
	for i := rem; i < len(intPart); i += 3 {
		b.WriteString(m.thousands())
		b.WriteString(intPart[i : i+3])
	}

	if frac != "" {
		b.WriteString(m.decimalMark())
		b.WriteString(frac)
	}
	return b.String()
}

func (m Money) symbol() string {
	switch strings.ToUpper(m.Currency) {
	case "", "USD", "COP":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	default:
		return strings.ToUpper(m.Currency) + " "
	}
}

func (m Money) thousands() string {
	if m.Thousands == "" {
		return ","
	}
	return m.Thousands
}

func (m Money) decimalMark() string {
	if m.DecimalMark == "" {
		return "."
	}
	return m.DecimalMark
}

// FormatCOP formats a whole-peso amount like "$12.500", dot as thousands
// separator.
func FormatCOP(amount float64) string {
	return Money{Currency: "COP", Decimals: 0, Thousands: ".", DecimalMark: ","}.Format(amount)
}
