package m_promotion

// Field name constants for the promotions table.
const (
	TableName = "promotions"

	// NameIndex is the unique secondary index on name.
	NameIndex = "promotions_by_name"

	PromotionID     = "promotion_id"
	Code            = "code"
	Name            = "name"
	Description     = "description"
	Kind            = "kind"
	Value           = "value"
	ScopeKind       = "scope_kind"
	ScopeCategories = "scope_categories"
	ScopeBrands     = "scope_brands"
	ScopeSkus       = "scope_skus"
	StartDate       = "start_date"
	EndDate         = "end_date"
	Active          = "active"
	Version         = "version"
	CreatedBy       = "created_by"
	UpdatedBy       = "updated_by"
	CreatedAt       = "created_at"
	UpdatedAt       = "updated_at"
)

// AllColumns lists every column in Data field order.
var AllColumns = []string{
	PromotionID,
	Code,
	Name,
	Description,
	Kind,
	Value,
	ScopeKind,
	ScopeCategories,
	ScopeBrands,
	ScopeSkus,
	StartDate,
	EndDate,
	Active,
	Version,
	CreatedBy,
	UpdatedBy,
	CreatedAt,
	UpdatedAt,
}
