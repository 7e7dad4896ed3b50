package list_events

import (
	"context"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

// Request is the caller's view of the event feed of one or all promotions.
type Request struct {
	PromotionID string   // optional
	Types       []string // "created", "updated", "deactivated", "deleted" or full names
	Status      string   // "pending", "completed", "failed"; empty for any
	Since       time.Time
	Limit       int
}

// Filter is a validated Request as handed to the read model.
type Filter struct {
	PromotionID string
	EventTypes  []string // full names, sorted, no duplicates
	Status      string
	Since       time.Time // zero for no lower bound
	Limit       int
}

// EventsReadModel defines the interface for reading events.
type EventsReadModel interface {
	ListEvents(ctx context.Context, filter *Filter) ([]*m_outbox.Data, error)
}

// Query handles the list events query use case.
type Query struct {
	readModel EventsReadModel
}

// NewQuery creates a new list events query.
func NewQuery(readModel EventsReadModel) *Query {
	return &Query{
		readModel: readModel,
	}
}

// Execute returns the newest promotion events matching the request.
func (q *Query) Execute(ctx context.Context, req *Request) ([]*m_outbox.Data, error) {
	filter := &Filter{
		Status: req.Status,
		Since:  req.Since,
		Limit:  req.Limit,
	}

	if req.PromotionID != "" {
		if _, err := uuid.Parse(req.PromotionID); err != nil {
			return nil, domain.ErrInvalidPromotionID
		}
		filter.PromotionID = req.PromotionID
	}

	for _, t := range req.Types {
		name, err := domain.ParseEventType(t)
		if err != nil {
			return nil, err
		}
		filter.EventTypes = append(filter.EventTypes, name)
	}
	slices.Sort(filter.EventTypes)
	filter.EventTypes = slices.Compact(filter.EventTypes)

	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}

	return q.readModel.ListEvents(ctx, filter)
}
