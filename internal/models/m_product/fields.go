package m_product

// Field name constants for the products table.
// The catalog owns every column except the promo_* snapshot columns,
// which only the recalculation engine writes.
const (
	TableName = "products"

	ProductID = "product_id"
	SKU       = "sku"
	Name      = "name"
	Category  = "category"
	Brand     = "brand"
	Price     = "price"
	CreatedAt = "created_at"
	UpdatedAt = "updated_at"

	PromoPromotionID     = "promo_promotion_id"
	PromoOriginalPrice   = "promo_original_price"
	PromoDiscountedPrice = "promo_discounted_price"
	PromoDiscountKind    = "promo_discount_kind"
	PromoDiscountValue   = "promo_discount_value"
	PromoComputedAt      = "promo_computed_at"
	PromoEndDate         = "promo_end_date"
)

// PricingColumns is the projection the engine reads, in PricingData order.
var PricingColumns = []string{
	ProductID,
	SKU,
	Category,
	Brand,
	Price,
	PromoPromotionID,
	PromoOriginalPrice,
	PromoDiscountedPrice,
	PromoDiscountKind,
	PromoDiscountValue,
	PromoComputedAt,
	PromoEndDate,
}

// SnapshotColumns are the columns ApplySnapshot writes after the key.
var SnapshotColumns = []string{
	PromoPromotionID,
	PromoOriginalPrice,
	PromoDiscountedPrice,
	PromoDiscountKind,
	PromoDiscountValue,
	PromoComputedAt,
	PromoEndDate,
}
