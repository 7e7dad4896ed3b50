package m_outbox

import (
	"time"

	"cloud.google.com/go/spanner"
)

// Model provides a facade for type-safe operations on the outbox_events table.
type Model struct{}

// NewModel creates a new Model instance.
func NewModel() *Model {
	return &Model{}
}

// InsertMut creates a Spanner mutation for inserting an outbox event.
// created_at is the commit timestamp, so events of one commit share it.
func (m *Model) InsertMut(data *Data) *spanner.Mutation {
	return spanner.Insert(
		TableName,
		AllColumns,
		[]interface{}{
			data.EventID,
			data.EventType,
			data.AggregateID,
			data.Payload,
			data.Status,
			spanner.CommitTimestamp,
			data.ProcessedAt,
			data.RetryCount,
			data.ErrorMessage,
		},
	)
}

// CompletedMut marks an event as delivered.
func (m *Model) CompletedMut(eventID string, at time.Time) *spanner.Mutation {
	return spanner.Update(
		TableName,
		[]string{EventID, Status, ProcessedAt, ErrorMessage},
		[]interface{}{eventID, StatusCompleted, at, spanner.NullString{}},
	)
}

// FailedMut records a delivery failure. The event stays pending until
// retryCount reaches the caller's limit.
func (m *Model) FailedMut(eventID string, retryCount int64, status, message string) *spanner.Mutation {
	return spanner.Update(
		TableName,
		[]string{EventID, Status, RetryCount, ErrorMessage},
		[]interface{}{eventID, status, retryCount, spanner.NullString{StringVal: message, Valid: message != ""}},
	)
}

// DeleteMut creates a Spanner mutation for deleting an outbox event.
func (m *Model) DeleteMut(eventID string) *spanner.Mutation {
	return spanner.Delete(TableName, spanner.Key{eventID})
}
