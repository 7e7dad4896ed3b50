package http

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/light-bringer/promo-engine/internal/app/promotion/queries/list_events"
	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
)

type eventLister interface {
	Execute(ctx context.Context, req *list_events.Request) ([]*m_outbox.Data, error)
}

// EventsHandler handles HTTP requests for outbox events.
type EventsHandler struct {
	query eventLister
}

// NewEventsHandler creates a new HTTP events handler.
func NewEventsHandler(query eventLister) *EventsHandler {
	return &EventsHandler{query: query}
}

// Event represents a domain event in the HTTP response.
type Event struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	AggregateID  string          `json:"aggregate_id"`
	Payload      json.RawMessage `json:"payload,omitempty"`
	Status       string          `json:"status"`
	RetryCount   int64           `json:"retry_count"`
	ErrorMessage string          `json:"error_message,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	ProcessedAt  *time.Time      `json:"processed_at,omitempty"`
}

// ListEventsQuery holds the query string of GET /events. Type may repeat.
type ListEventsQuery struct {
	PromotionID string    `form:"promotion_id"`
	Types       []string  `form:"type"`
	Status      string    `form:"status" binding:"omitempty,oneof=pending completed failed"`
	Since       time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit       int       `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// RegisterRoutes mounts the event feeds on rg.
func (h *EventsHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/events", h.List)
	rg.GET("/promotions/:id/events", h.ListForPromotion)
}

// List handles GET /events.
func (h *EventsHandler) List(c *gin.Context) {
	h.list(c, "")
}

// ListForPromotion handles GET /promotions/:id/events.
func (h *EventsHandler) ListForPromotion(c *gin.Context) {
	h.list(c, c.Param("id"))
}

func (h *EventsHandler) list(c *gin.Context, promotionID string) {
	var q ListEventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, bindingMessage(err))
		return
	}
	if promotionID == "" {
		promotionID = q.PromotionID
	}

	req := &list_events.Request{
		PromotionID: promotionID,
		Types:       q.Types,
		Status:      q.Status,
		Since:       q.Since,
		Limit:       q.Limit,
	}

	rows, err := h.query.Execute(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		event := Event{
			EventID:     row.EventID,
			EventType:   row.EventType,
			AggregateID: row.AggregateID,
			Status:      row.Status,
			RetryCount:  row.RetryCount,
			CreatedAt:   row.CreatedAt,
		}
		if row.Payload.Valid {
			if raw, err := json.Marshal(row.Payload.Value); err == nil {
				event.Payload = raw
			}
		}
		if row.ErrorMessage.Valid {
			event.ErrorMessage = row.ErrorMessage.StringVal
		}
		if row.ProcessedAt.Valid {
			processedAt := row.ProcessedAt.Time
			event.ProcessedAt = &processedAt
		}
		events = append(events, event)
	}

	ok(c, gin.H{"events": events})
}
