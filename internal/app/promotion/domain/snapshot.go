package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PromotionSnapshot is an immutable copy of a promotion at one version.
// The same shape is used for audit before-images, field diffs and the
// payload of recalculation jobs.
type PromotionSnapshot struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Kind        DiscountKind    `json:"kind"`
	Value       decimal.Decimal `json:"value"`
	Scope       Scope           `json:"scope"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     time.Time       `json:"end_date"`
	Active      bool            `json:"active"`
	Version     int64           `json:"version"`
	CreatedBy   string          `json:"created_by,omitempty"`
	UpdatedBy   string          `json:"updated_by,omitempty"`
}

// IsEligibleAt reports active && start <= t < end.
func (s PromotionSnapshot) IsEligibleAt(t time.Time) bool {
	return s.Active && !t.Before(s.StartDate) && t.Before(s.EndDate)
}

// Matches evaluates the promotion's scope against a product.
func (s PromotionSnapshot) Matches(p ProductRef) bool {
	return s.Scope.Matches(p)
}

// Deactivated returns a copy with the active flag cleared.
func (s PromotionSnapshot) Deactivated() PromotionSnapshot {
	s.Active = false
	return s
}

// PriceSnapshot is the promotion decision persisted on a product.
type PriceSnapshot struct {
	PromotionID      string          `json:"promotion_id"`
	OriginalPrice    Money           `json:"original_price"`
	DiscountedPrice  Money           `json:"discounted_price"`
	DiscountKind     DiscountKind    `json:"discount_kind"`
	DiscountValue    decimal.Decimal `json:"discount_value"`
	ComputedAt       time.Time       `json:"computed_at"`
	PromotionEndDate time.Time       `json:"promotion_end_date"`
}

// ProductPricing is the catalog projection the engine reads.
type ProductPricing struct {
	ID       string
	SKU      string
	Category string
	Brand    string
	Price    Money
	Snapshot *PriceSnapshot
}

// Ref returns the fields scope matching looks at.
func (p ProductPricing) Ref() ProductRef {
	return ProductRef{SKU: p.SKU, Category: p.Category, Brand: p.Brand}
}

// EffectivePrice is the snapshot's discounted price while its promotion has
// not ended, otherwise the list price. Stale snapshots are left for the next
// recalculation to clear.
func (p ProductPricing) EffectivePrice(at time.Time) Money {
	if p.Snapshot != nil && at.Before(p.Snapshot.PromotionEndDate) {
		return p.Snapshot.DiscountedPrice
	}
	return p.Price
}
