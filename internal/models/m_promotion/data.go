package m_promotion

import (
	"math/big"
	"time"
)

// Data represents the database model for the promotions table.
type Data struct {
	PromotionID     string    `spanner:"promotion_id"`
	Code            string    `spanner:"code"`
	Name            string    `spanner:"name"`
	Description     string    `spanner:"description"`
	Kind            string    `spanner:"kind"`
	Value           big.Rat   `spanner:"value"`
	ScopeKind       string    `spanner:"scope_kind"`
	ScopeCategories []string  `spanner:"scope_categories"`
	ScopeBrands     []string  `spanner:"scope_brands"`
	ScopeSkus       []string  `spanner:"scope_skus"`
	StartDate       time.Time `spanner:"start_date"`
	EndDate         time.Time `spanner:"end_date"`
	Active          bool      `spanner:"active"`
	Version         int64     `spanner:"version"`
	CreatedBy       string    `spanner:"created_by"`
	UpdatedBy       string    `spanner:"updated_by"`
	CreatedAt       time.Time `spanner:"created_at"`
	UpdatedAt       time.Time `spanner:"updated_at"`
}
