package m_order

import (
	"cloud.google.com/go/spanner"
)

// Model provides a facade for the orders table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates an order row. Used by fixtures.
func (m *Model) InsertMut(orderID, status string) *spanner.Mutation {
	return spanner.InsertOrUpdate(
		TableName,
		[]string{OrderID, Status, CreatedAt},
		[]interface{}{orderID, status, spanner.CommitTimestamp},
	)
}
