// Package outbox publishes committed outbox events to Kafka.
package outbox

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

const (
	DefaultPollInterval = 2 * time.Second
	DefaultBatchSize    = 100
	DefaultMaxRetries   = 5
)

// PendingSource lists pending events oldest first.
type PendingSource interface {
	ListPending(ctx context.Context, limit int) ([]*m_outbox.Data, error)
}

// Publisher is the subset of kafka.Writer the relay needs.
type Publisher interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Config tunes the relay loop.
type Config struct {
	PollInterval time.Duration
	BatchSize    int
	MaxRetries   int64
}

// Relay moves pending outbox events to a topic. Each event is published
// on its own so one bad message does not hold back the rest; the status
// updates of one pass are committed together.
type Relay struct {
	source    PendingSource
	publisher Publisher
	committer contracts.Committer
	model     *m_outbox.Model
	clock     clock.Clock
	cfg       Config
	metrics   *metrics.Registry
	logger    *zap.Logger
}

// NewKafkaPublisher creates a writer for the events topic.
func NewKafkaPublisher(brokers []string, topic string) Publisher {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
}

// NewRelay creates a Relay. Zero config values take the defaults.
func NewRelay(
	source PendingSource,
	publisher Publisher,
	comm contracts.Committer,
	clk clock.Clock,
	cfg Config,
	m *metrics.Registry,
	logger *zap.Logger,
) *Relay {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	return &Relay{
		source:    source,
		publisher: publisher,
		committer: comm,
		model:     m_outbox.NewModel(),
		clock:     clk,
		cfg:       cfg,
		metrics:   m,
		logger:    logger.Named("outbox_relay"),
	}
}

// Run polls until ctx is cancelled. A pass that fails is logged and the
// loop carries on at the next tick.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.RelayOnce(ctx); err != nil && ctx.Err() == nil {
			r.logger.Error("outbox relay pass failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// Close closes the publisher.
func (r *Relay) Close() error {
	return r.publisher.Close()
}

// RelayOnce publishes up to one batch of pending events and returns how
// many were delivered.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	events, err := r.source.ListPending(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending events: %w", err)
	}
	if len(events) == 0 {
		return 0, nil
	}

	plan := committer.NewPlan()
	published := 0
	for _, event := range events {
		if err := r.publish(ctx, event); err != nil {
			plan.Add(r.failure(event, err))
			continue
		}
		plan.Add(r.model.CompletedMut(event.EventID, r.clock.Now()))
		r.metrics.OutboxRelayed.WithLabelValues("published").Inc()
		published++
	}

	if err := r.committer.Apply(ctx, plan); err != nil {
		return published, fmt.Errorf("failed to record relay results: %w", err)
	}

	r.logger.Debug("outbox relay pass finished",
		zap.Int("pending", len(events)),
		zap.Int("published", published),
	)
	return published, nil
}

func (r *Relay) publish(ctx context.Context, event *m_outbox.Data) error {
	payload, err := event.Payload.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	return r.publisher.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.AggregateID),
		Value: payload,
		Time:  event.CreatedAt,
		Headers: []kafka.Header{
			{Key: "event_id", Value: []byte(event.EventID)},
			{Key: "event_type", Value: []byte(event.EventType)},
		},
	})
}

// failure keeps the event pending until it has used up its retries.
func (r *Relay) failure(event *m_outbox.Data, err error) *spanner.Mutation {
	retries := event.RetryCount + 1
	status := m_outbox.StatusPending
	result := "retry"
	if retries >= r.cfg.MaxRetries {
		status = m_outbox.StatusFailed
		result = "failed"
	}
	r.metrics.OutboxRelayed.WithLabelValues(result).Inc()

	r.logger.Warn("failed to publish outbox event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", event.EventType),
		zap.Int64("retry_count", retries),
		zap.Error(err),
	)
	return r.model.FailedMut(event.EventID, retries, status, err.Error())
}
