package contracts

import (
	"context"
	"time"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// PromotionRepository defines promotion persistence.
// Write methods return mutations; the caller commits them.
type PromotionRepository interface {
	// InsertMut creates a mutation for a new promotion.
	InsertMut(promo *domain.Promotion) (*spanner.Mutation, error)

	// UpdateMut writes only dirty fields plus version and audit columns.
	// Returns nil when nothing changed.
	UpdateMut(promo *domain.Promotion) (*spanner.Mutation, error)

	// DeleteMut removes a promotion row.
	DeleteMut(promotionID string) *spanner.Mutation

	// GetByID loads the aggregate or returns domain.ErrPromotionNotFound.
	GetByID(ctx context.Context, promotionID string) (*domain.Promotion, error)

	// NameTaken reports whether another promotion (not excludeID) uses name.
	NameTaken(ctx context.Context, name, excludeID string) (bool, error)

	// ListEligible returns every promotion eligible at t.
	ListEligible(ctx context.Context, t time.Time) ([]domain.PromotionSnapshot, error)
}
