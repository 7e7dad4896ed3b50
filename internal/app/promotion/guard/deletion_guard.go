// Package guard decides whether a promotion may be removed.
package guard

import (
	"context"
	"fmt"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// DeletionGuard blocks deletion while any order in the store is pending.
// The check is store-wide, not per promotion: a single pending order
// anywhere blocks every deletion.
type DeletionGuard struct {
	orders contracts.OrderRepository
}

// NewDeletionGuard creates a DeletionGuard.
func NewDeletionGuard(orders contracts.OrderRepository) *DeletionGuard {
	return &DeletionGuard{orders: orders}
}

// Check returns domain.ErrDeletionBlocked when pending orders exist.
func (g *DeletionGuard) Check(ctx context.Context) error {
	pending, err := g.orders.CountPending(ctx)
	if err != nil {
		return fmt.Errorf("failed to check pending orders: %w", err)
	}
	if pending > 0 {
		return fmt.Errorf("%w: %d pending orders", domain.ErrDeletionBlocked, pending)
	}
	return nil
}
