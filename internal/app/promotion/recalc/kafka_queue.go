package recalc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
)

// messageWriter abstracts kafka.Writer for testability.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// messageReader abstracts kafka.Reader for testability.
type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaConfig names the topic and consumer group.
type KafkaConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// KafkaQueue is a durable Queue on a Kafka topic. Jobs are keyed by
// promotion id so the changes of one promotion stay ordered per partition.
// Offsets are committed after the handler returns, success or not.
type KafkaQueue struct {
	writer    messageWriter
	newReader func() messageReader
	logger    *zap.Logger
}

// NewKafkaQueue creates a queue backed by kafka-go. Each Consume call joins
// the consumer group with its own reader.
func NewKafkaQueue(cfg KafkaConfig, logger *zap.Logger) *KafkaQueue {
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireAll,
		AllowAutoTopicCreation: true,
		WriteTimeout:           5 * time.Second,
	}
	newReader := func() messageReader {
		return kafka.NewReader(kafka.ReaderConfig{
			Brokers:  cfg.Brokers,
			Topic:    cfg.Topic,
			GroupID:  cfg.GroupID,
			MinBytes: 1,
			MaxBytes: 10e6,
		})
	}
	return newKafkaQueueWith(writer, newReader, logger)
}

func newKafkaQueueWith(writer messageWriter, newReader func() messageReader, logger *zap.Logger) *KafkaQueue {
	return &KafkaQueue{
		writer:    writer,
		newReader: newReader,
		logger:    logger.Named("kafka_queue"),
	}
}

// Enqueue publishes a job. The write is synchronous but bounded by the
// writer timeout, so a broker outage surfaces as an error instead of a hang.
func (q *KafkaQueue) Enqueue(ctx context.Context, job contracts.RecalcJob) error {
	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal recalculation job: %w", err)
	}

	msg := kafka.Message{Key: []byte(jobKey(job)), Value: payload}
	if err := q.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish recalculation job: %w", err)
	}
	return nil
}

// Consume reads jobs until ctx is cancelled.
func (q *KafkaQueue) Consume(ctx context.Context, handle HandlerFunc) error {
	reader := q.newReader()
	defer reader.Close()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				return nil
			}
			q.logger.Error("failed to fetch recalculation job", zap.Error(err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Second):
			}
			continue
		}

		var job contracts.RecalcJob
		if err := json.Unmarshal(msg.Value, &job); err != nil {
			q.logger.Error("skipping malformed recalculation job",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		} else {
			_ = handle(ctx, job)
		}

		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			q.logger.Warn("failed to commit recalculation job offset",
				zap.Int64("offset", msg.Offset),
				zap.Error(err))
		}
	}
}

// Close flushes and closes the writer.
func (q *KafkaQueue) Close() error {
	return q.writer.Close()
}

func jobKey(job contracts.RecalcJob) string {
	switch {
	case job.New != nil:
		return job.New.ID
	case job.Old != nil:
		return job.Old.ID
	default:
		return job.ID
	}
}
