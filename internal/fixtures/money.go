package fixtures

import (
	"strconv"
)

// Money is an amount in US cents.
type Money int64

// Dollars builds Money from whole dollars and cents, e.g. Dollars(29, 99).
func Dollars(whole, cents int64) Money {
	return Money(whole*100 + cents)
}

// String formats the amount the way the storefront prints it: no currency
// sign, no trailing zeros after the decimal point (29.99, 4.5, 60).
func (m Money) String() string {
	return strconv.FormatFloat(float64(m)/100, 'f', -1, 64)
}

// Label prefixes the amount with a dollar sign.
func (m Money) Label() string {
	return "$" + m.String()
}

// Percent returns pct percent of m, rounded half away from zero to the cent.
func (m Money) Percent(pct int64) Money {
	n := int64(m) * pct
	if n >= 0 {
		return Money((n + 50) / 100)
	}
	return Money((n - 50) / 100)
}

// Sum adds amounts.
func Sum(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total += a
	}
	return total
}
