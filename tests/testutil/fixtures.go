package testutil

import (
	"context"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/models/m_order"
	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
	"github.com/light-bringer/promo-engine/internal/models/m_product"
	"github.com/light-bringer/promo-engine/internal/models/m_promotion_history"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
)

// ProductSpec describes a catalog row for CreateTestProduct.
type ProductSpec struct {
	SKU      string
	Category string
	Brand    string
	Price    string
}

// CreateTestProduct inserts a catalog product and returns its id.
func CreateTestProduct(t *testing.T, client *spanner.Client, spec ProductSpec) string {
	t.Helper()

	productID := uuid.New().String()
	data := &m_product.Data{
		ProductID: productID,
		SKU:       spec.SKU,
		Name:      "Test " + spec.SKU,
		Category:  spec.Category,
		Brand:     spec.Brand,
	}
	price, err := decimal.NewFromString(spec.Price)
	require.NoError(t, err)
	data.Price.Set(domain.RatFromDecimal(price))

	_, err = client.Apply(context.Background(), []*spanner.Mutation{m_product.NewModel().InsertMut(data)})
	require.NoError(t, err, "failed to create test product")

	return productID
}

// CreateTestOrder inserts an order with the given status.
func CreateTestOrder(t *testing.T, client *spanner.Client, status string) string {
	t.Helper()

	orderID := uuid.New().String()
	_, err := client.Apply(context.Background(), []*spanner.Mutation{m_order.NewModel().InsertMut(orderID, status)})
	require.NoError(t, err, "failed to create test order")

	return orderID
}

// NewTestPromotion builds a valid promotion starting at clk's current time.
func NewTestPromotion(t *testing.T, clk clock.Clock, name string, kind domain.DiscountKind, value string, scope domain.Scope) *domain.Promotion {
	t.Helper()

	now := clk.Now()
	promo, err := domain.NewPromotion(domain.NewPromotionParams{
		ID:        uuid.New().String(),
		Name:      name,
		Kind:      kind,
		Value:     decimal.RequireFromString(value),
		Scope:     scope,
		StartDate: now,
		EndDate:   now.Add(7 * 24 * time.Hour),
		Active:    true,
		CreatedBy: "tester",
	}, clk)
	require.NoError(t, err)

	return promo
}

// GetOutboxEvents returns every outbox row of an aggregate, oldest first.
func GetOutboxEvents(t *testing.T, client *spanner.Client, aggregateID string) []m_outbox.Data {
	t.Helper()

	stmt := spanner.Statement{
		SQL:    "SELECT * FROM outbox_events WHERE aggregate_id = @id ORDER BY created_at, event_type",
		Params: map[string]interface{}{"id": aggregateID},
	}

	var out []m_outbox.Data
	iter := client.Single().Query(context.Background(), stmt)
	defer iter.Stop()
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return out
		}
		require.NoError(t, err)

		var data m_outbox.Data
		require.NoError(t, row.ToStruct(&data))
		out = append(out, data)
	}
}

// GetHistory returns the audit entries of a promotion, oldest first.
func GetHistory(t *testing.T, client *spanner.Client, promotionID string) []m_promotion_history.Data {
	t.Helper()

	stmt := spanner.Statement{
		SQL: "SELECT " + strings.Join(m_promotion_history.NewModel().ReadColumns(), ", ") +
			" FROM " + m_promotion_history.TableName +
			" WHERE promotion_id = @id ORDER BY created_at",
		Params: map[string]interface{}{"id": promotionID},
	}

	iter := client.Single().Query(context.Background(), stmt)
	defer iter.Stop()

	var out []m_promotion_history.Data
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			return out
		}
		require.NoError(t, err)

		var data m_promotion_history.Data
		require.NoError(t, row.ToStruct(&data))
		out = append(out, data)
	}
}
