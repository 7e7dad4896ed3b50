package contracts

import (
	"context"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// SnapshotWrite sets or, when Snapshot is nil, clears a product's promotion snapshot.
type SnapshotWrite struct {
	ProductID string
	Snapshot  *domain.PriceSnapshot
}

// CatalogRepository is the engine's view of the product catalog.
type CatalogRepository interface {
	// ProductIDsInScope queries the catalog with the scope's native filter.
	// A global scope returns every product; a scope that matches nothing returns none.
	ProductIDsInScope(ctx context.Context, scope domain.Scope) ([]string, error)

	// GetPricingByIDs reads the minimal projection for the given products.
	// Unknown ids are skipped.
	GetPricingByIDs(ctx context.Context, productIDs []string) ([]domain.ProductPricing, error)

	// GetPricing reads one product or returns domain.ErrProductNotFound.
	GetPricing(ctx context.Context, productID string) (*domain.ProductPricing, error)

	// ProductIDsWithStaleSnapshot returns products whose snapshot references a
	// promotion outside liveIDs.
	ProductIDsWithStaleSnapshot(ctx context.Context, liveIDs []string) ([]string, error)

	// ApplySnapshots writes one batch of snapshot changes in a single commit.
	ApplySnapshots(ctx context.Context, writes []SnapshotWrite) error
}

// OrderRepository exposes the order store's pending count.
type OrderRepository interface {
	CountPending(ctx context.Context) (int64, error)
}

// HistoryRepository appends audit entries. It is never read at runtime.
type HistoryRepository interface {
	Append(ctx context.Context, entry *domain.HistoryEntry) error
}
