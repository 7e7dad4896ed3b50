package m_product

import (
	"math/big"
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a full catalog row. It is used by seeding and tests;
// the engine reads PricingData.
type Data struct {
	ProductID string
	SKU       string
	Name      string
	Category  string
	Brand     string
	Price     big.Rat
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PricingData is the minimal projection plus the stored snapshot.
type PricingData struct {
	ProductID            string              `spanner:"product_id"`
	SKU                  string              `spanner:"sku"`
	Category             string              `spanner:"category"`
	Brand                string              `spanner:"brand"`
	Price                big.Rat             `spanner:"price"`
	PromoPromotionID     spanner.NullString  `spanner:"promo_promotion_id"`
	PromoOriginalPrice   spanner.NullNumeric `spanner:"promo_original_price"`
	PromoDiscountedPrice spanner.NullNumeric `spanner:"promo_discounted_price"`
	PromoDiscountKind    spanner.NullString  `spanner:"promo_discount_kind"`
	PromoDiscountValue   spanner.NullNumeric `spanner:"promo_discount_value"`
	PromoComputedAt      spanner.NullTime    `spanner:"promo_computed_at"`
	PromoEndDate         spanner.NullTime    `spanner:"promo_end_date"`
}

// SnapshotData is one snapshot write. Valid=false clears the columns.
type SnapshotData struct {
	Valid           bool
	PromotionID     string
	OriginalPrice   *big.Rat
	DiscountedPrice *big.Rat
	DiscountKind    string
	DiscountValue   *big.Rat
	ComputedAt      time.Time
	EndDate         time.Time
}
