package outbox

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"cloud.google.com/go/spanner"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/fakes"
	"github.com/light-bringer/promo-engine/internal/models/m_outbox"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/committer"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

type stubSource struct {
	events []*m_outbox.Data
	err    error
	limit  int
}

func (s *stubSource) ListPending(_ context.Context, limit int) ([]*m_outbox.Data, error) {
	s.limit = limit
	return s.events, s.err
}

type stubPublisher struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	failOn map[string]error
}

func (p *stubPublisher) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		for _, h := range m.Headers {
			if h.Key == "event_id" {
				if err := p.failOn[string(h.Value)]; err != nil {
					return err
				}
			}
		}
	}
	p.msgs = append(p.msgs, msgs...)
	return nil
}

func (p *stubPublisher) Close() error { return nil }

func event(id string, retries int64) *m_outbox.Data {
	return &m_outbox.Data{
		EventID:     id,
		EventType:   "promotion.created",
		AggregateID: "promo-" + id,
		Payload:     spanner.NullJSON{Value: map[string]interface{}{"promotion_id": "promo-" + id}, Valid: true},
		Status:      m_outbox.StatusPending,
		CreatedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		RetryCount:  retries,
	}
}

func newRelay(source PendingSource, pub Publisher, comm *fakes.Committer, m *metrics.Registry) *Relay {
	clk := clock.NewMockClock(time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC))
	return NewRelay(source, pub, comm, clk, Config{MaxRetries: 3}, m, zap.NewNop())
}

func planWithCount(n int) interface{} {
	return mock.MatchedBy(func(p *committer.CommitPlan) bool { return p.Count() == n })
}

func TestRelayOnce_PublishesAndMarksCompleted(t *testing.T) {
	m := metrics.NewRegistry()
	source := &stubSource{events: []*m_outbox.Data{event("1", 0), event("2", 0)}}
	pub := &stubPublisher{}
	comm := &fakes.Committer{}
	comm.On("Apply", mock.Anything, planWithCount(2)).Return(nil).Once()

	n, err := newRelay(source, pub, comm, m).RelayOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.Equal(t, DefaultBatchSize, source.limit)
	require.Len(t, pub.msgs, 2)
	assert.Equal(t, "promo-1", string(pub.msgs[0].Key))
	assert.JSONEq(t, `{"promotion_id":"promo-1"}`, string(pub.msgs[0].Value))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("published")))
	comm.AssertExpectations(t)
}

func TestRelayOnce_FailureIsRecordedAndOthersContinue(t *testing.T) {
	m := metrics.NewRegistry()
	source := &stubSource{events: []*m_outbox.Data{event("1", 0), event("2", 2), event("3", 0)}}
	pub := &stubPublisher{failOn: map[string]error{
		"1": errors.New("broker unavailable"),
		"2": errors.New("broker unavailable"),
	}}
	comm := &fakes.Committer{}
	comm.On("Apply", mock.Anything, planWithCount(3)).Return(nil).Once()

	n, err := newRelay(source, pub, comm, m).RelayOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, n)
	assert.Len(t, pub.msgs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("retry")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OutboxRelayed.WithLabelValues("failed")))
	comm.AssertExpectations(t)
}

func TestRelayOnce_NothingPending(t *testing.T) {
	comm := &fakes.Committer{}

	n, err := newRelay(&stubSource{}, &stubPublisher{}, comm, metrics.NewRegistry()).RelayOnce(context.Background())
	require.NoError(t, err)

	assert.Zero(t, n)
	comm.AssertNotCalled(t, "Apply", mock.Anything, mock.Anything)
}

func TestRelayOnce_Errors(t *testing.T) {
	t.Run("list fails", func(t *testing.T) {
		source := &stubSource{err: errors.New("spanner down")}
		_, err := newRelay(source, &stubPublisher{}, &fakes.Committer{}, metrics.NewRegistry()).RelayOnce(context.Background())
		assert.ErrorContains(t, err, "failed to list pending events")
	})

	t.Run("commit fails", func(t *testing.T) {
		comm := &fakes.Committer{}
		comm.On("Apply", mock.Anything, mock.Anything).Return(errors.New("aborted"))

		source := &stubSource{events: []*m_outbox.Data{event("1", 0)}}
		n, err := newRelay(source, &stubPublisher{}, comm, metrics.NewRegistry()).RelayOnce(context.Background())
		assert.Equal(t, 1, n)
		assert.ErrorContains(t, err, "failed to record relay results")
	})
}

func TestRun_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	relay := newRelay(&stubSource{}, &stubPublisher{}, &fakes.Committer{}, metrics.NewRegistry())
	go func() { done <- relay.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("relay did not stop")
	}
}
