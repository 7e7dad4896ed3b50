package domain

import (
	"strings"
	"time"
)

// Event type names as stored in the outbox.
const (
	EventPromotionCreated     = "promotion.created"
	EventPromotionUpdated     = "promotion.updated"
	EventPromotionDeactivated = "promotion.deactivated"
	EventPromotionDeleted     = "promotion.deleted"
)

var promotionEventTypes = []string{
	EventPromotionCreated,
	EventPromotionUpdated,
	EventPromotionDeactivated,
	EventPromotionDeleted,
}

// ParseEventType accepts a full event type name or its short form
// ("created", "updated", "deactivated", "deleted").
func ParseEventType(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(name, "promotion.") {
		name = "promotion." + name
	}
	for _, t := range promotionEventTypes {
		if t == name {
			return t, nil
		}
	}
	return "", ErrInvalidEventType
}

// DomainEvent is the base interface for all domain events.
type DomainEvent interface {
	EventType() string
	AggregateID() string
}

// PromotionCreatedEvent is emitted when a promotion is created.
type PromotionCreatedEvent struct {
	PromotionID string            `json:"promotion_id"`
	Snapshot    PromotionSnapshot `json:"snapshot"`
	CreatedAt   time.Time         `json:"created_at"`
}

func (e *PromotionCreatedEvent) EventType() string   { return EventPromotionCreated }
func (e *PromotionCreatedEvent) AggregateID() string { return e.PromotionID }

// PromotionUpdatedEvent is emitted once per committed edit.
type PromotionUpdatedEvent struct {
	PromotionID   string    `json:"promotion_id"`
	Version       int64     `json:"version"`
	ChangedFields []string  `json:"changed_fields"`
	UpdatedBy     string    `json:"updated_by"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (e *PromotionUpdatedEvent) EventType() string   { return EventPromotionUpdated }
func (e *PromotionUpdatedEvent) AggregateID() string { return e.PromotionID }

// PromotionDeactivatedEvent is emitted when an edit turns the active flag off.
type PromotionDeactivatedEvent struct {
	PromotionID string    `json:"promotion_id"`
	Timestamp   time.Time `json:"timestamp"`
}

func (e *PromotionDeactivatedEvent) EventType() string   { return EventPromotionDeactivated }
func (e *PromotionDeactivatedEvent) AggregateID() string { return e.PromotionID }

// PromotionDeletedEvent is emitted when a promotion is removed.
type PromotionDeletedEvent struct {
	PromotionID string    `json:"promotion_id"`
	DeletedBy   string    `json:"deleted_by"`
	DeletedAt   time.Time `json:"deleted_at"`
}

func (e *PromotionDeletedEvent) EventType() string   { return EventPromotionDeleted }
func (e *PromotionDeletedEvent) AggregateID() string { return e.PromotionID }
