package recalc

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/light-bringer/promo-engine/internal/app/promotion/contracts"
	"github.com/light-bringer/promo-engine/internal/app/promotion/domain"
	"github.com/light-bringer/promo-engine/internal/pkg/clock"
	"github.com/light-bringer/promo-engine/internal/pkg/metrics"
)

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Recalculate(ctx context.Context, old, current *domain.PromotionSnapshot) (Result, error) {
	args := m.Called(ctx, old, current)
	return args.Get(0).(Result), args.Error(1)
}

func (m *mockRunner) RecalculateAll(ctx context.Context) (Result, error) {
	args := m.Called(ctx)
	return args.Get(0).(Result), args.Error(1)
}

func TestMemoryQueue_EnqueueNeverBlocks(t *testing.T) {
	ctx := context.Background()
	q := NewMemoryQueue(1)

	require.NoError(t, q.Enqueue(ctx, contracts.RecalcJob{ID: "1"}))
	err := q.Enqueue(ctx, contracts.RecalcJob{ID: "2"})
	assert.ErrorIs(t, err, contracts.ErrQueueFull)
	assert.Equal(t, 1, q.Len())

	require.NoError(t, q.Close())
	assert.ErrorIs(t, q.Enqueue(ctx, contracts.RecalcJob{ID: "3"}), ErrQueueClosed)
}

func TestScheduler_StampsAndCounts(t *testing.T) {
	ctx := context.Background()
	m := metrics.NewRegistry()
	q := NewMemoryQueue(1)
	s := NewScheduler(q, clock.NewMockClock(now), m, zap.NewNop())

	require.NoError(t, s.Enqueue(ctx, contracts.RecalcJob{Origin: contracts.OriginCreate}))
	err := s.Enqueue(ctx, contracts.RecalcJob{Origin: contracts.OriginUpdate})
	assert.ErrorIs(t, err, contracts.ErrQueueFull)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsEnqueued.WithLabelValues(contracts.OriginCreate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsDropped))

	var got contracts.RecalcJob
	cctx, cancel := context.WithCancel(ctx)
	_ = q.Consume(cctx, func(_ context.Context, job contracts.RecalcJob) error {
		got = job
		cancel()
		return nil
	})
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, now, got.EnqueuedAt)
}

func TestWorker_DispatchesJobs(t *testing.T) {
	old := &domain.PromotionSnapshot{ID: "a"}
	current := &domain.PromotionSnapshot{ID: "a", Version: 2}

	runner := new(mockRunner)
	runner.On("Recalculate", mock.Anything, old, current).Return(Result{Upserts: 1}, nil).Once()
	runner.On("RecalculateAll", mock.Anything).Return(Result{}, nil).Once()

	w := NewWorker(NewMemoryQueue(4), runner, 1, metrics.NewRegistry(), zap.NewNop())

	require.NoError(t, w.Handle(context.Background(), contracts.RecalcJob{ID: "1", Old: old, New: current}))
	require.NoError(t, w.Handle(context.Background(), contracts.RecalcJob{ID: "2", Full: true}))
	runner.AssertExpectations(t)
}

func TestWorker_FailurePublishedWithoutRetry(t *testing.T) {
	boom := errors.New("write failed")
	runner := new(mockRunner)
	runner.On("Recalculate", mock.Anything, mock.Anything, mock.Anything).Return(Result{}, boom).Once()

	m := metrics.NewRegistry()
	q := NewMemoryQueue(4)
	w := NewWorker(q, runner, 2, m, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = w.Run(ctx)
	}()

	require.NoError(t, q.Enqueue(ctx, contracts.RecalcJob{ID: "job-1", New: &domain.PromotionSnapshot{ID: "a"}}))

	select {
	case jobErr := <-w.Errors():
		assert.Equal(t, "job-1", jobErr.Job.ID)
		assert.ErrorIs(t, jobErr.Err, boom)
	case <-time.After(2 * time.Second):
		t.Fatal("expected a job error")
	}

	cancel()
	wg.Wait()

	runner.AssertNumberOfCalls(t, "Recalculate", 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.JobsFailed))
}
