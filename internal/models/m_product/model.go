package m_product

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the products table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting a catalog product.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{
			ProductID,
			SKU,
			Name,
			Category,
			Brand,
			Price,
			CreatedAt,
			UpdatedAt,
		},
		[]interface{}{
			data.ProductID,
			data.SKU,
			data.Name,
			data.Category,
			data.Brand,
			&data.Price,
			spanner.CommitTimestamp,
			spanner.CommitTimestamp,
		},
	)
}

// SnapshotMut sets or clears the promotion snapshot on one product.
// It is an Update so a product deleted from the catalog mid-run fails the
// batch instead of being resurrected.
func (m *Model) SnapshotMut(productID string, s *SnapshotData) *spanner.Mutation {
	columns := append([]string{ProductID}, SnapshotColumns...)
	if s == nil || !s.Valid {
		return spanner.Update(TableName, columns, []interface{}{
			productID,
			spanner.NullString{},
			spanner.NullNumeric{},
			spanner.NullNumeric{},
			spanner.NullString{},
			spanner.NullNumeric{},
			spanner.NullTime{},
			spanner.NullTime{},
		})
	}
	return spanner.Update(TableName, columns, []interface{}{
		productID,
		s.PromotionID,
		s.OriginalPrice,
		s.DiscountedPrice,
		s.DiscountKind,
		s.DiscountValue,
		s.ComputedAt,
		s.EndDate,
	})
}

// DeleteMut creates a Spanner mutation for deleting a product (hard delete).
func (m *Model) DeleteMut(productID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{productID})
}
