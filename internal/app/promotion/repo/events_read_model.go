package repo

import (
	"context"
	"fmt"

	"cloud.google.com/go/spanner"
	"google.golang.org/api/iterator"

	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/list_events"
	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
	"github.com/light-bringer/promo-engine/internal/pkg/query"
)

// EventsReadModel lists outbox events for the events endpoint.
type EventsReadModel struct {
	client *spanner.Client
}

// NewEventsReadModel creates a new EventsReadModel.
func NewEventsReadModel(client *spanner.Client) *EventsReadModel {
	return &EventsReadModel{
		client: client,
	}
}

// ListEvents retrieves events newest first.
func (r *EventsReadModel) ListEvents(ctx context.Context, filter *list_events.Filter) ([]*m_outbox.Data, error) {
	q := query.From(m_outbox.TableName).
		Select(m_outbox.AllColumns...).
		OrderBy(query.Desc, m_outbox.CreatedAt).
		Limit(int64(filter.Limit))

	if filter.PromotionID != "" {
		q = q.Where(query.Eq(m_outbox.AggregateID, filter.PromotionID))
	}
	if len(filter.EventTypes) > 0 {
		q = q.Where(query.In(m_outbox.EventType, filter.EventTypes))
	}
	if filter.Status != "" {
		q = q.Where(query.Eq(m_outbox.Status, filter.Status))
	}
	if !filter.Since.IsZero() {
		q = q.Where(query.Gte(m_outbox.CreatedAt, filter.Since))
	}

	return r.query(ctx, q.Build())
}

// ListPending returns the oldest pending events for the relay.
func (r *EventsReadModel) ListPending(ctx context.Context, limit int) ([]*m_outbox.Data, error) {
	stmt := query.From(m_outbox.TableName).
		Select(m_outbox.AllColumns...).
		Where(query.Eq(m_outbox.Status, m_outbox.StatusPending)).
		OrderBy(query.Asc, m_outbox.CreatedAt).
		Limit(int64(limit)).
		Build()

	return r.query(ctx, stmt)
}

func (r *EventsReadModel) query(ctx context.Context, stmt spanner.Statement) ([]*m_outbox.Data, error) {
	iter := r.client.Single().Query(ctx, stmt)
	defer iter.Stop()

	var events []*m_outbox.Data
	for {
		row, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate events: %w", err)
		}

		var event m_outbox.Data
		if err := row.ToStruct(&event); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &event)
	}

	return events, nil
}
