package contracts

import (
	"cloud.google.com/go/spanner"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
)

// OutboxEvent is a domain event enriched for persistence.
type OutboxEvent struct {
	EventID     string
	EventType   string
	AggregateID string
	Payload     string // JSON
	Status      string
}

// OutboxRepository builds outbox mutations committed with the aggregate.
type OutboxRepository interface {
	InsertMut(event *OutboxEvent) *spanner.Mutation

	// EnrichEvent serializes a domain event into an outbox event.
	EnrichEvent(event domain.DomainEvent) (*OutboxEvent, error)
}
