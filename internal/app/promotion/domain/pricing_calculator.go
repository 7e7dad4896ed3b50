package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DiscountKind is how a promotion's value is interpreted.
type DiscountKind string

const (
	DiscountPercentage  DiscountKind = "percentage"
	DiscountFixedAmount DiscountKind = "fixed_amount"
)

var hundred = decimal.NewFromInt(100)

// ParseDiscountKind accepts the canonical names case-insensitively.
func ParseDiscountKind(s string) (DiscountKind, error) {
	switch k := DiscountKind(strings.ToLower(strings.TrimSpace(s))); k {
	case DiscountPercentage, DiscountFixedAmount:
		return k, nil
	default:
		return "", ErrInvalidDiscountKind
	}
}

// ValidateDiscount checks the value bounds for a kind:
// percentage in (0, 100], fixed amount > 0.
func ValidateDiscount(kind DiscountKind, value decimal.Decimal) error {
	switch kind {
	case DiscountPercentage:
		if !value.IsPositive() || value.GreaterThan(hundred) {
			return ErrInvalidPercentage
		}
	case DiscountFixedAmount:
		if !value.IsPositive() {
			return ErrInvalidDiscountValue
		}
	default:
		return ErrInvalidDiscountKind
	}
	return nil
}

// PricingCalculator computes discount amounts. It is stateless.
type PricingCalculator struct{}

// NewPricingCalculator creates a new PricingCalculator.
func NewPricingCalculator() *PricingCalculator {
	return &PricingCalculator{}
}

// ExactDiscount returns the unrounded amount taken off price, clamped so the
// discounted price never drops below MinimumPrice. Candidates are ranked on
// this value so sub-cent differences are not lost to rounding.
func (pc *PricingCalculator) ExactDiscount(kind DiscountKind, value decimal.Decimal, price Money) Money {
	var raw Money
	switch kind {
	case DiscountPercentage:
		raw = NewMoney(price.Decimal().Mul(value).Div(hundred))
	case DiscountFixedAmount:
		raw = NewMoney(value)
	default:
		return Money{}
	}

	ceiling := MaxMoney(price.Sub(MinimumPrice), Money{})
	return MinMoney(MaxMoney(raw, Money{}), ceiling)
}

// Discount is ExactDiscount rounded to cents.
func (pc *PricingCalculator) Discount(kind DiscountKind, value decimal.Decimal, price Money) Money {
	ceiling := MaxMoney(price.Sub(MinimumPrice), Money{})
	return MinMoney(pc.ExactDiscount(kind, value, price).RoundCents(), ceiling)
}

// DiscountedPrice is price minus discount, floored at MinimumPrice.
func (pc *PricingCalculator) DiscountedPrice(price, discount Money) Money {
	return MaxMoney(price.Sub(discount), MinimumPrice)
}
