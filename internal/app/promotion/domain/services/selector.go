package services

import (
	"time"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// Selector picks the single best promotion for a product.
type Selector struct {
	calc *domain.PricingCalculator
}

// NewSelector creates a new Selector.
func NewSelector(calc *domain.PricingCalculator) *Selector {
	if calc == nil {
		calc = domain.NewPricingCalculator()
	}
	return &Selector{calc: calc}
}

// Select evaluates every eligible promotion that matches the product and
// returns the snapshot of the one with the greatest discount, or nil when no
// promotion gives a positive discount in cents. Discounts are compared before
// rounding; on an exact tie the promotion with the lexicographically lowest
// id wins, so the result does not depend on the order of eligible.
func (s *Selector) Select(product domain.ProductPricing, eligible []domain.PromotionSnapshot, at time.Time) *domain.PriceSnapshot {
	ref := product.Ref()

	var (
		best         *domain.PromotionSnapshot
		bestExact    domain.Money
		bestDiscount domain.Money
	)
	for i := range eligible {
		promo := &eligible[i]
		if !promo.IsEligibleAt(at) || !promo.Matches(ref) {
			continue
		}

		discount := s.calc.Discount(promo.Kind, promo.Value, product.Price)
		if !discount.IsPositive() {
			continue
		}

		exact := s.calc.ExactDiscount(promo.Kind, promo.Value, product.Price)
		switch cmp := exact.Cmp(bestExact); {
		case best == nil, cmp > 0:
		case cmp == 0 && promo.ID < best.ID:
		default:
			continue
		}
		best, bestExact, bestDiscount = promo, exact, discount
	}

	if best == nil {
		return nil
	}

	return &domain.PriceSnapshot{
		PromotionID:      best.ID,
		OriginalPrice:    product.Price,
		DiscountedPrice:  s.calc.DiscountedPrice(product.Price, bestDiscount),
		DiscountKind:     best.Kind,
		DiscountValue:    best.Value,
		ComputedAt:       at,
		PromotionEndDate: best.EndDate,
	}
}
