package contracts

import (
	"context"
	"time"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// PromotionDTO is the read-side view of a promotion.
type PromotionDTO struct {
	domain.PromotionSnapshot
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ListFilter defines filtering options for listing promotions.
type ListFilter struct {
	Active    *bool
	PageSize  int
	PageToken string // name of the last promotion on the previous page
}

// ListResult contains one page of promotions ordered by name.
type ListResult struct {
	Promotions    []*PromotionDTO
	NextPageToken string
}

// ReadModel serves promotion queries without loading aggregates.
type ReadModel interface {
	GetPromotionByID(ctx context.Context, promotionID string) (*PromotionDTO, error)
	ListPromotions(ctx context.Context, filter *ListFilter) (*ListResult, error)
}

// PriceView is what a storefront shows for one product.
type PriceView struct {
	ProductID        string       `json:"product_id"`
	SKU              string       `json:"sku"`
	ListPrice        domain.Money `json:"list_price"`
	EffectivePrice   domain.Money `json:"effective_price"`
	PromotionID      string       `json:"promotion_id,omitempty"`
	PromotionEndDate *time.Time   `json:"promotion_end_date,omitempty"`
}

// PriceCache caches PriceViews. Misses return (nil, nil).
type PriceCache interface {
	Get(ctx context.Context, productID string) (*PriceView, error)
	Set(ctx context.Context, view *PriceView) error
	Invalidate(ctx context.Context, productIDs ...string) error
}
