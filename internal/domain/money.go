package domain

import "github.com/shopspring/decimal"

// Money is a fixed-point monetary amount stored as an integer count of
// minor units (cents). All arithmetic stays in integers; decimals only
// appear when parsing input or rendering output.
type Money struct {
	cents int64
}

// Cents builds a Money from a raw minor-unit count.
func Cents(n int64) Money {
	return Money{cents: n}
}

// ParseMoney converts a decimal string such as "42.50" into Money.
// Values with more than two fractional digits are rounded half away
// from zero. Returns ErrInvalidAmount when the input is not a valid
// decimal number.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, ErrInvalidAmount
	}
	return FromDecimal(d), nil
}

// FromDecimal rounds a decimal to two fractional digits (half away
// from zero) and converts it to minor units.
func FromDecimal(d decimal.Decimal) Money {
	return Money{cents: d.Round(2).Shift(2).IntPart()}
}

// Cents returns the raw minor-unit count.
func (m Money) Cents() int64 {
	return m.cents
}

func (m Money) Add(other Money) Money {
	return Money{cents: m.cents + other.cents}
}

func (m Money) Sub(other Money) Money {
	return Money{cents: m.cents - other.cents}
}

// GreaterThan reports whether m is strictly larger than other.
func (m Money) GreaterThan(other Money) bool {
	return m.cents > other.cents
}

func (m Money) IsPositive() bool {
	return m.cents > 0
}

func (m Money) IsZero() bool {
	return m.cents == 0
}

// Decimal returns the amount in major units, e.g. 4250 cents -> 42.50.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.cents, -2)
}

// String renders the amount with exactly two fractional digits.
func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}
