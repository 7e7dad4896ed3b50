package get_product_price

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/cache"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/app/promotion/fakes"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

var now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

func discounted(end time.Time) domain.ProductPricing {
	return domain.ProductPricing{
		ID:       "p-1",
		SKU:      "SKU-1",
		Category: "shoes",
		Price:    domain.MustParseMoney("15.00"),
		Snapshot: &domain.PriceSnapshot{
			PromotionID:      "promo-1",
			OriginalPrice:    domain.MustParseMoney("15.00"),
			DiscountedPrice:  domain.MustParseMoney("13.50"),
			DiscountKind:     domain.DiscountPercentage,
			ComputedAt:       now.Add(-time.Hour),
			PromotionEndDate: end,
		},
	}
}

func TestGetProductPrice(t *testing.T) {
	t.Run("discounted product is cached", func(t *testing.T) {
		catalog := fakes.NewCatalog(discounted(now.Add(24 * time.Hour)))
		clk := clock.NewMockClock(now)
		m := metrics.NewRegistry()
		q := NewQuery(catalog, cache.NewMemoryPriceCache(10*time.Minute, clk), clk, m, zap.NewNop())

		view, err := q.Execute(context.Background(), &Request{ProductID: "p-1"})
		require.NoError(t, err)
		assert.Equal(t, "13.50", view.EffectivePrice.String())
		assert.Equal(t, "15.00", view.ListPrice.String())
		assert.Equal(t, "promo-1", view.PromotionID)
		require.NotNil(t, view.PromotionEndDate)

		_, err = q.Execute(context.Background(), &Request{ProductID: "p-1"})
		require.NoError(t, err)
		assert.Equal(t, 1, catalog.ReadCalls)
		assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheHits))
		assert.Equal(t, float64(1), testutil.ToFloat64(m.CacheMisses))
	})

	t.Run("expired snapshot falls back to list price", func(t *testing.T) {
		catalog := fakes.NewCatalog(discounted(now.Add(-time.Minute)))
		clk := clock.NewMockClock(now)
		q := NewQuery(catalog, cache.NewMemoryPriceCache(10*time.Minute, clk), clk, metrics.NewRegistry(), zap.NewNop())

		view, err := q.Execute(context.Background(), &Request{ProductID: "p-1"})
		require.NoError(t, err)
		assert.Equal(t, "15.00", view.EffectivePrice.String())
		assert.Empty(t, view.PromotionID)
		assert.Nil(t, view.PromotionEndDate)
	})

	t.Run("cached view expires with its promotion", func(t *testing.T) {
		catalog := fakes.NewCatalog(discounted(now.Add(time.Hour)))
		clk := clock.NewMockClock(now)
		q := NewQuery(catalog, cache.NewMemoryPriceCache(24*time.Hour, clk), clk, metrics.NewRegistry(), zap.NewNop())

		_, err := q.Execute(context.Background(), &Request{ProductID: "p-1"})
		require.NoError(t, err)

		clk.Advance(2 * time.Hour)
		view, err := q.Execute(context.Background(), &Request{ProductID: "p-1"})
		require.NoError(t, err)
		assert.Equal(t, "15.00", view.EffectivePrice.String())
		assert.Equal(t, 2, catalog.ReadCalls)
	})

	t.Run("catalog reprice shows after the cache TTL", func(t *testing.T) {
		catalog := fakes.NewCatalog(domain.ProductPricing{
			ID:    "p-2",
			SKU:   "SKU-2",
			Price: domain.MustParseMoney("15.00"),
		})
		clk := clock.NewMockClock(now)
		q := NewQuery(catalog, cache.NewMemoryPriceCache(10*time.Minute, clk), clk, metrics.NewRegistry(), zap.NewNop())

		view, err := q.Execute(context.Background(), &Request{ProductID: "p-2"})
		require.NoError(t, err)
		assert.Equal(t, "15.00", view.ListPrice.String())

		catalog.Put(domain.ProductPricing{ID: "p-2", SKU: "SKU-2", Price: domain.MustParseMoney("9.00")})

		clk.Advance(5 * time.Minute)
		view, err = q.Execute(context.Background(), &Request{ProductID: "p-2"})
		require.NoError(t, err)
		assert.Equal(t, "15.00", view.ListPrice.String(), "still served from cache")

		clk.Advance(5 * time.Minute)
		view, err = q.Execute(context.Background(), &Request{ProductID: "p-2"})
		require.NoError(t, err)
		assert.Equal(t, "9.00", view.ListPrice.String())
		assert.Equal(t, "9.00", view.EffectivePrice.String())
		assert.Equal(t, 2, catalog.ReadCalls)
	})

	t.Run("unknown product", func(t *testing.T) {
		clk := clock.NewMockClock(now)
		q := NewQuery(fakes.NewCatalog(), cache.NewMemoryPriceCache(10*time.Minute, clk), clk, metrics.NewRegistry(), zap.NewNop())
		_, err := q.Execute(context.Background(), &Request{ProductID: "missing"})
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}
