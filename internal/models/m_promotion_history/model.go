package m_promotion_history

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Data represents a promotion history record in the database.
type Data struct {
	HistoryID      string             `spanner:"history_id"`
	PromotionID    string             `spanner:"promotion_id"`
	Action         string             `spanner:"action"`
	ActorID        spanner.NullString `spanner:"actor_id"`
	BeforeSnapshot spanner.NullJSON   `spanner:"before_snapshot"`
	Changes        spanner.NullJSON   `spanner:"changes"`
	CreatedAt      time.Time          `spanner:"created_at"`
}

// Model provides type-safe database operations for promotion history.
type Model struct{}

// NewModel creates a new promotion history model.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a mutation for inserting a history record.
func (m *Model) InsertMut(data *Data) (*spanner.Mutation, error) {
	return spanner.InsertStruct(TableName, data)
}

// ReadColumns returns the column names for reading history.
func (m *Model) ReadColumns() []string {
	return []string{
		HistoryID,
		PromotionID,
		Action,
		ActorID,
		BeforeSnapshot,
		Changes,
		CreatedAt,
	}
}
