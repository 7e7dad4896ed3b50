package domain

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// MinimumPrice is the lowest price a discount may leave on a product.
var MinimumPrice = MustParseMoney("0.01")

// Money is an immutable currency amount backed by decimal.Decimal.
type Money struct {
	amount decimal.Decimal
}

// NewMoney wraps a decimal amount.
func NewMoney(amount decimal.Decimal) Money {
	return Money{amount: amount}
}

// ParseMoney parses a decimal string such as "15.00".
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid money amount %q: %w", s, err)
	}
	return Money{amount: d}, nil
}

// MustParseMoney is ParseMoney for literals; it panics on bad input.
func MustParseMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// MoneyFromRat converts a Spanner NUMERIC value.
func MoneyFromRat(r *big.Rat) Money {
	return Money{amount: DecimalFromRat(r)}
}

// DecimalFromRat converts a big.Rat with NUMERIC precision (9 fractional digits).
func DecimalFromRat(r *big.Rat) decimal.Decimal {
	if r == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(r.FloatString(9))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// RatFromDecimal converts a decimal into the representation Spanner NUMERIC expects.
func RatFromDecimal(d decimal.Decimal) *big.Rat {
	r, ok := new(big.Rat).SetString(d.String())
	if !ok {
		return new(big.Rat)
	}
	return r
}

func (m Money) Decimal() decimal.Decimal { return m.amount }
func (m Money) Rat() *big.Rat            { return RatFromDecimal(m.amount) }

func (m Money) Add(o Money) Money { return Money{amount: m.amount.Add(o.amount)} }
func (m Money) Sub(o Money) Money { return Money{amount: m.amount.Sub(o.amount)} }

// RoundCents rounds half away from zero to two decimal places.
func (m Money) RoundCents() Money { return Money{amount: m.amount.Round(2)} }

func (m Money) Cmp(o Money) int           { return m.amount.Cmp(o.amount) }
func (m Money) Equal(o Money) bool        { return m.amount.Equal(o.amount) }
func (m Money) GreaterThan(o Money) bool  { return m.amount.GreaterThan(o.amount) }
func (m Money) LessThan(o Money) bool     { return m.amount.LessThan(o.amount) }
func (m Money) IsZero() bool              { return m.amount.IsZero() }
func (m Money) IsNegative() bool          { return m.amount.IsNegative() }
func (m Money) IsPositive() bool          { return m.amount.IsPositive() }
func (m Money) String() string            { return m.amount.StringFixed(2) }

// MaxMoney returns the larger amount.
func MaxMoney(a, b Money) Money {
	if a.GreaterThan(b) {
		return a
	}
	return b
}

// MinMoney returns the smaller amount.
func MinMoney(a, b Money) Money {
	if a.LessThan(b) {
		return a
	}
	return b
}

// MarshalJSON writes the amount as a JSON number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.amount.StringFixed(2)), nil
}

// UnmarshalJSON accepts a JSON number or a quoted decimal string.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.amount.UnmarshalJSON(data)
}
