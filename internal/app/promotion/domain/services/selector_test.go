package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func promo(id string, kind domain.DiscountKind, value string, scope domain.Scope) domain.PromotionSnapshot {
	return domain.PromotionSnapshot{
		ID:        id,
		Kind:      kind,
		Value:     decimal.RequireFromString(value),
		Scope:     scope,
		StartDate: now.Add(-time.Hour),
		EndDate:   now.Add(7 * 24 * time.Hour),
		Active:    true,
	}
}

func pen(price string) domain.ProductPricing {
	return domain.ProductPricing{
		ID:       "prod-1",
		SKU:      "PEN-001",
		Category: "PENS",
		Brand:    "Pilot",
		Price:    domain.MustParseMoney(price),
	}
}

func TestSelector_FixedBeatsPercentage(t *testing.T) {
	pens, err := domain.CategoryScope("PENS")
	require.NoError(t, err)

	a := promo("a", domain.DiscountPercentage, "10", domain.GlobalScope())
	b := promo("b", domain.DiscountFixedAmount, "2", pens)

	got := NewSelector(nil).Select(pen("15.00"), []domain.PromotionSnapshot{a, b}, now)

	require.NotNil(t, got)
	assert.Equal(t, "b", got.PromotionID)
	assert.Equal(t, "13.00", got.DiscountedPrice.String())
	assert.Equal(t, "15.00", got.OriginalPrice.String())
	assert.Equal(t, domain.DiscountFixedAmount, got.DiscountKind)
	assert.Equal(t, now, got.ComputedAt)
	assert.Equal(t, b.EndDate, got.PromotionEndDate)
}

func TestSelector_NoMatchClears(t *testing.T) {
	paper, _ := domain.CategoryScope("PAPER")
	got := NewSelector(nil).Select(pen("15.00"), []domain.PromotionSnapshot{
		promo("a", domain.DiscountPercentage, "10", paper),
	}, now)
	assert.Nil(t, got)

	assert.Nil(t, NewSelector(nil).Select(pen("15.00"), nil, now))
}

func TestSelector_ZeroDiscountIsNoPromotion(t *testing.T) {
	got := NewSelector(nil).Select(pen("0.01"), []domain.PromotionSnapshot{
		promo("a", domain.DiscountFixedAmount, "5", domain.GlobalScope()),
	}, now)
	assert.Nil(t, got)
}

func TestSelector_SkipsIneligible(t *testing.T) {
	inactive := promo("a", domain.DiscountPercentage, "50", domain.GlobalScope()).Deactivated()
	expired := promo("b", domain.DiscountPercentage, "40", domain.GlobalScope())
	expired.EndDate = now
	live := promo("c", domain.DiscountPercentage, "5", domain.GlobalScope())

	got := NewSelector(nil).Select(pen("10.00"), []domain.PromotionSnapshot{inactive, expired, live}, now)
	require.NotNil(t, got)
	assert.Equal(t, "c", got.PromotionID)
}

func TestSelector_TieBreakIsOrderIndependent(t *testing.T) {
	x := promo("f3c1", domain.DiscountFixedAmount, "1.50", domain.GlobalScope())
	y := promo("0a9e", domain.DiscountPercentage, "10", domain.GlobalScope())

	sel := NewSelector(nil)
	first := sel.Select(pen("15.00"), []domain.PromotionSnapshot{x, y}, now)
	second := sel.Select(pen("15.00"), []domain.PromotionSnapshot{y, x}, now)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, "0a9e", first.PromotionID)
	assert.Equal(t, "0a9e", second.PromotionID)
}

func TestSelector_SubCentDifferenceIsNotATie(t *testing.T) {
	pct := promo("a", domain.DiscountPercentage, "33.333", domain.GlobalScope())
	fixed := promo("b", domain.DiscountFixedAmount, "1.00", domain.GlobalScope())

	got := NewSelector(nil).Select(pen("3.00"), []domain.PromotionSnapshot{pct, fixed}, now)

	require.NotNil(t, got)
	assert.Equal(t, "b", got.PromotionID, "1.00 off beats 0.99999 off")
	assert.Equal(t, "2.00", got.DiscountedPrice.String())
}

func TestSelector_BestOfProperty(t *testing.T) {
	calc := domain.NewPricingCalculator()
	sel := NewSelector(calc)
	brand, _ := domain.BrandScope("Pilot")
	sku, _ := domain.SkuScope("PEN-001")

	eligible := []domain.PromotionSnapshot{
		promo("p1", domain.DiscountPercentage, "15", domain.GlobalScope()),
		promo("p2", domain.DiscountFixedAmount, "3.10", brand),
		promo("p3", domain.DiscountPercentage, "22.5", sku),
		promo("p4", domain.DiscountFixedAmount, "0.75", domain.GlobalScope()),
	}

	for _, price := range []string{"0.50", "4.99", "13.79", "20.00", "250.00"} {
		product := pen(price)
		got := sel.Select(product, eligible, now)
		require.NotNil(t, got, price)

		chosen := calc.Discount(got.DiscountKind, got.DiscountValue, product.Price)
		for _, p := range eligible {
			other := calc.Discount(p.Kind, p.Value, product.Price)
			assert.False(t, other.GreaterThan(chosen), "price %s: %s beats chosen %s", price, p.ID, got.PromotionID)
		}
		assert.False(t, got.DiscountedPrice.LessThan(domain.MinimumPrice))
	}
}

func TestSelector_MixedScopeOrSemantics(t *testing.T) {
	mixed, err := domain.MixedScope([]string{"PENS"}, nil, nil)
	require.NoError(t, err)

	product := pen("10.00")
	product.Brand = "Lamy"

	got := NewSelector(nil).Select(product, []domain.PromotionSnapshot{
		promo("m", domain.DiscountPercentage, "20", mixed),
	}, now)
	require.NotNil(t, got)
	assert.Equal(t, "8.00", got.DiscountedPrice.String())
}

func TestSelector_HundredPercentFloor(t *testing.T) {
	got := NewSelector(nil).Select(pen("1.00"), []domain.PromotionSnapshot{
		promo("free", domain.DiscountPercentage, "100", domain.GlobalScope()),
	}, now)
	require.NotNil(t, got)
	assert.Equal(t, "0.01", got.DiscountedPrice.String())
}
