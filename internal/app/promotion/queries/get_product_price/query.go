package get_product_price

import (
	"context"

	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

// Request names the product to price.
type Request struct {
	ProductID string
}

// Query reads the stored snapshot through the price cache. It never runs
// the selector; prices only change when the engine writes a snapshot.
type Query struct {
	catalog contracts.CatalogRepository
	cache   contracts.PriceCache
	clock   clock.Clock
	metrics *metrics.Registry
	logger  *zap.Logger
}

// NewQuery creates a new price query.
func NewQuery(
	catalog contracts.CatalogRepository,
	cache contracts.PriceCache,
	clk clock.Clock,
	m *metrics.Registry,
	logger *zap.Logger,
) *Query {
	return &Query{
		catalog: catalog,
		cache:   cache,
		clock:   clk,
		metrics: m,
		logger:  logger.Named("price_query"),
	}
}

// Execute returns the price view for one product.
func (q *Query) Execute(ctx context.Context, req *Request) (*contracts.PriceView, error) {
	now := q.clock.Now()

	cached, err := q.cache.Get(ctx, req.ProductID)
	if err != nil {
		q.logger.Warn("price cache read failed", zap.String("product_id", req.ProductID), zap.Error(err))
	}
	if cached != nil && (cached.PromotionEndDate == nil || now.Before(*cached.PromotionEndDate)) {
		q.metrics.CacheHits.Inc()
		return cached, nil
	}
	q.metrics.CacheMisses.Inc()

	product, err := q.catalog.GetPricing(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}

	view := &contracts.PriceView{
		ProductID:      product.ID,
		SKU:            product.SKU,
		ListPrice:      product.Price,
		EffectivePrice: product.EffectivePrice(now),
	}
	if s := product.Snapshot; s != nil && now.Before(s.PromotionEndDate) {
		end := s.PromotionEndDate
		view.PromotionID = s.PromotionID
		view.PromotionEndDate = &end
	}

	if err := q.cache.Set(ctx, view); err != nil {
		q.logger.Warn("price cache write failed", zap.String("product_id", req.ProductID), zap.Error(err))
	}
	return view, nil
}
