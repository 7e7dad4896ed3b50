package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/models/m_order"
	"github.com/light-bringer/promo-engine/internal/pkg/query"
)

// OrderRepo reads the order store for the deletion guard.
type OrderRepo struct {
	client *spanner.Client
}

// NewOrderRepo creates a new OrderRepo.
func NewOrderRepo(client *spanner.Client) contracts.OrderRepository {
	return &OrderRepo{client: client}
}

// CountPending counts orders in status pending across the whole store.
func (r *OrderRepo) CountPending(ctx context.Context) (int64, error) {
	stmt := query.From(m_order.TableName).
		Where(query.Eq(m_order.Status, m_order.StatusPending)).
		Count().
		Build()

	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	row, err := iter.Next()
	if err != nil {
		return 0, fmt.Errorf("failed to count pending orders: %w", err)
	}

	var n int64
	if err := row.Column(0, &n); err != nil {
		return 0, fmt.Errorf("failed to parse pending order count: %w", err)
	}
	return n, nil
}
