package m_promotion

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the promotions table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting a promotion.
// A clash on the unique name index surfaces as AlreadyExists at commit.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(
		TableName,
		AllColumns,
		[]interface{}{
			data.PromotionID,
			data.Code,
			data.Name,
			data.Description,
			data.Kind,
			&data.Value,
			data.ScopeKind,
			nonNil(data.ScopeCategories),
			nonNil(data.ScopeBrands),
			nonNil(data.ScopeSkus),
			data.StartDate,
			data.EndDate,
			data.Active,
			data.Version,
			data.CreatedBy,
			data.UpdatedBy,
			data.CreatedAt,
			data.UpdatedAt,
		},
	)
}

// UpdateMut creates a Spanner mutation for updating specific promotion fields.
func (m *Model) UpdateMut(promotionID string, updates map[string]interface{}) *spanner.Mutation {
	if len(updates) == 0 {
		return nil
	}

	columns := make([]string, 0, len(updates)+1)
	values := make([]interface{}, 0, len(updates)+1)

	columns = append(columns, PromotionID)
	values = append(values, promotionID)

	for col, val := range updates {
		columns = append(columns, col)
		values = append(values, val)
	}

	return spanner.Update(TableName, columns, values)
}

// DeleteMut creates a Spanner mutation for deleting a promotion.
func (m *Model) DeleteMut(promotionID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{promotionID})
}

func nonNil(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}
